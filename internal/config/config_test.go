package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/efebarandurmaz/archlint/internal/rules"
)

func TestValidate_Empty(t *testing.T) {
	cfg := &Config{}
	if warnings := cfg.Validate(); len(warnings) != 0 {
		t.Errorf("empty config should have no warnings, got %v", warnings)
	}
}

func TestValidate_Warnings(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"negative workers", Config{Analysis: AnalysisConfig{Workers: -1}}, "analysis.workers"},
		{"extension without dot", Config{Analysis: AnalysisConfig{Extensions: []string{"ts"}}}, "analysis.extensions"},
		{"sample rate", Config{Tracing: TracingConfig{SampleRate: 2}}, "sample_rate"},
		{"graph user", Config{Graph: GraphConfig{URI: "neo4j://localhost"}}, "graph.username"},
		{"chunk size", Config{Temporal: TemporalConfig{ChunkSize: -5}}, "chunk_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := tt.cfg.Validate()
			found := false
			for _, w := range warnings {
				if strings.Contains(w, tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected warning mentioning %q, got %v", tt.want, warnings)
			}
		})
	}
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "archlint.yaml")
	content := `analysis:
  workers: 3
  exclude: [generated]
watch:
  debounce: 1s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analysis.Workers != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.Analysis.Workers)
	}
	if len(cfg.Analysis.Exclude) != 1 || cfg.Analysis.Exclude[0] != "generated" {
		t.Errorf("unexpected exclude %v", cfg.Analysis.Exclude)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("expected 1s debounce, got %s", cfg.Watch.Debounce)
	}
	if cfg.Analysis.RulesFile != DefaultRulesFile {
		t.Errorf("expected default rules file, got %q", cfg.Analysis.RulesFile)
	}
	if len(cfg.Analysis.Extensions) != 2 {
		t.Errorf("expected default extensions, got %v", cfg.Analysis.Extensions)
	}
	if cfg.Temporal.TaskQueue != "archlint" {
		t.Errorf("expected default task queue, got %q", cfg.Temporal.TaskQueue)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "archlint.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ARCHLINT_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected env override, got %q", cfg.Log.Level)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func writeRules(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRules_JSON(t *testing.T) {
	path := writeRules(t, "architect.json", `{
  "max_lines_per_function": 40,
  "architecture_pattern": "Hexagonal",
  "forbidden_imports": [{"from": "/domain/", "to": "/infra/", "reason": "ports only"}]
}`)
	cfg, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if cfg.MaxLinesPerFunction() != 40 || cfg.Pattern() != rules.PatternHexagonal {
		t.Errorf("unexpected config %+v", cfg)
	}
	if r := cfg.ForbiddenImports(); len(r) != 1 || r[0].Reason != "ports only" {
		t.Errorf("unexpected rules %+v", r)
	}
}

func TestLoadRules_YAML(t *testing.T) {
	path := writeRules(t, "architect.yaml", `max_lines_per_function: 25
architecture_pattern: Ninguno
forbidden_imports:
  - from: ui
    to: db
`)
	cfg, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if cfg.MaxLinesPerFunction() != 25 || cfg.Pattern() != rules.PatternNone {
		t.Errorf("unexpected config: max=%d pattern=%s", cfg.MaxLinesPerFunction(), cfg.Pattern())
	}
}

func TestLoadRules_TOML(t *testing.T) {
	path := writeRules(t, "architect.toml", `max_lines_per_function = 35
architecture_pattern = "Clean"

[[forbidden_imports]]
from = "/domain/"
to = "/infra/"
reason = "ports only"

[[forbidden_imports]]
file_pattern = "controller"
prohibited = "repository"
`)
	cfg, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if cfg.MaxLinesPerFunction() != 35 || cfg.Pattern() != rules.PatternClean {
		t.Errorf("unexpected config: max=%d pattern=%s", cfg.MaxLinesPerFunction(), cfg.Pattern())
	}
	r := cfg.ForbiddenImports()
	if len(r) != 2 {
		t.Fatalf("expected 2 rules, got %+v", r)
	}
	if r[0].From != "/domain/" || r[0].To != "/infra/" || r[0].Reason != "ports only" {
		t.Errorf("unexpected first rule %+v", r[0])
	}
	if r[1].From != "controller" || r[1].To != "repository" {
		t.Errorf("expected migrated legacy rule, got %+v", r[1])
	}
}

func TestLoadRules_LegacyMigration(t *testing.T) {
	path := writeRules(t, "architect.json", `{
  "max_lines_per_function": 30,
  "forbidden_imports": [
    {"file_pattern": "controller", "prohibited": "repository"},
    {"from": "ui", "to": "db", "file_pattern": "ignored", "prohibited": "ignored"}
  ]
}`)
	cfg, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	r := cfg.ForbiddenImports()
	if len(r) != 2 {
		t.Fatalf("expected 2 rules, got %+v", r)
	}
	if r[0].From != "controller" || r[0].To != "repository" {
		t.Errorf("expected migrated legacy rule, got %+v", r[0])
	}
	if r[1].From != "ui" || r[1].To != "db" {
		t.Errorf("expected from/to to win over legacy keys, got %+v", r[1])
	}
}

func TestLoadRules_Invalid(t *testing.T) {
	path := writeRules(t, "architect.json", `{"max_lines_per_function": 0}`)
	_, err := LoadRules(path)
	var cfgErr *rules.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Kind != rules.ErrInvalidValue {
		t.Fatalf("expected InvalidValue config error, got %v", err)
	}
}

func TestMigrateLegacy_Count(t *testing.T) {
	raw := map[string]any{
		rules.KeyForbiddenImports: []any{
			map[string]any{"file_pattern": "a", "prohibited": "b"},
			map[string]any{"from": "c", "to": "d"},
			"not an object",
		},
	}
	if n := MigrateLegacy(raw); n != 1 {
		t.Errorf("expected 1 migrated entry, got %d", n)
	}
	if MigrateLegacy(map[string]any{}) != 0 {
		t.Error("expected no migration without a rule list")
	}
}

func TestSaveRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "architect.json")
	cfg, err := rules.New(50, rules.PatternMVC, rules.ForbiddenRule{From: "a", To: "b"})
	if err != nil {
		t.Fatal(err)
	}

	if err := SaveRules(path, cfg, false); err != nil {
		t.Fatalf("SaveRules: %v", err)
	}
	if err := SaveRules(path, cfg, false); !errors.Is(err, ErrRulesExist) {
		t.Fatalf("expected ErrRulesExist, got %v", err)
	}
	if err := SaveRules(path, cfg, true); err != nil {
		t.Fatalf("SaveRules overwrite: %v", err)
	}

	back, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if back.MaxLinesPerFunction() != 50 || back.Pattern() != rules.PatternMVC {
		t.Errorf("unexpected round trip: max=%d pattern=%s", back.MaxLinesPerFunction(), back.Pattern())
	}
}
