package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default: info).
	Level string
	// Format is one of text, json, logfmt (default: text).
	Format string
	// Prefix is printed before every text line.
	Prefix string
	// Output defaults to stderr so reports on stdout stay clean.
	Output io.Writer
}

// NewLogger builds an slog.Logger backed by a charmbracelet/log handler.
func NewLogger(cfg LogConfig) (*slog.Logger, error) {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(orDefault(cfg.Level, "info"))))
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	var formatter log.Formatter
	switch strings.ToLower(orDefault(cfg.Format, "text")) {
	case "text":
		formatter = log.TextFormatter
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	handler := log.NewWithOptions(out, log.Options{
		Level:           level,
		Formatter:       formatter,
		Prefix:          cfg.Prefix,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	return slog.New(handler), nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
