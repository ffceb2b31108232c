package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultRulesFile is the rule document looked up in the project root.
const DefaultRulesFile = "architect.json"

// Config holds all application configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Graph    GraphConfig    `mapstructure:"graph"`
	Temporal TemporalConfig `mapstructure:"temporal"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AnalysisConfig controls which files are linted and how.
type AnalysisConfig struct {
	RulesFile  string   `mapstructure:"rules_file"`
	Workers    int      `mapstructure:"workers"`
	Extensions []string `mapstructure:"extensions"`
	Exclude    []string `mapstructure:"exclude"`
	// Strict makes skipped files fail the run.
	Strict bool `mapstructure:"strict"`
}

type WatchConfig struct {
	Debounce    time.Duration `mapstructure:"debounce"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
}

type TracingConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

type GraphConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type TemporalConfig struct {
	Host      string `mapstructure:"host"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
	// ChunkSize is the number of files per analysis activity.
	ChunkSize int `mapstructure:"chunk_size"`
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if c.Analysis.Workers < 0 {
		warnings = append(warnings, fmt.Sprintf("analysis.workers %d is negative; the CPU count will be used", c.Analysis.Workers))
	}

	for _, ext := range c.Analysis.Extensions {
		if !strings.HasPrefix(ext, ".") {
			warnings = append(warnings, fmt.Sprintf("analysis.extensions entry %q does not start with a dot", ext))
		}
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		warnings = append(warnings, fmt.Sprintf("tracing.sample_rate %.2f is outside [0.0, 1.0]", c.Tracing.SampleRate))
	}

	if c.Graph.URI != "" && c.Graph.Username == "" {
		warnings = append(warnings, "graph.uri is set but graph.username is empty")
	}

	if c.Temporal.ChunkSize < 0 {
		warnings = append(warnings, fmt.Sprintf("temporal.chunk_size %d is negative", c.Temporal.ChunkSize))
	}

	return warnings
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("analysis.rules_file", DefaultRulesFile)
	v.SetDefault("analysis.workers", 0)
	v.SetDefault("analysis.extensions", []string{".ts", ".tsx"})
	v.SetDefault("analysis.exclude", []string{})
	v.SetDefault("analysis.strict", false)
	v.SetDefault("watch.debounce", 300*time.Millisecond)
	v.SetDefault("tracing.service_name", "archlint")
	v.SetDefault("tracing.sample_rate", 1.0)
	v.SetDefault("graph.uri", "")
	v.SetDefault("graph.username", "neo4j")
	v.SetDefault("graph.password", "")
	v.SetDefault("temporal.host", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "archlint")
	v.SetDefault("temporal.chunk_size", 50)
}

// Load reads configuration from file and environment. An empty path looks for
// archlint.yaml in the working directory and falls back to defaults when it
// is absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("ARCHLINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("archlint")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if warnings := cfg.Validate(); len(warnings) > 0 {
		for _, warning := range warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
		}
	}

	return &cfg, nil
}
