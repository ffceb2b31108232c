package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/efebarandurmaz/archlint/internal/rules"
)

// ErrRulesExist is returned by SaveRules when the target exists and
// overwriting was not requested.
var ErrRulesExist = errors.New("rules file already exists")

// Legacy rule entry keys, replaced by from/to.
const (
	legacyFromKey = "file_pattern"
	legacyToKey   = "prohibited"
)

// LoadRules reads a rule document (JSON, YAML or TOML, chosen by extension),
// migrates legacy entries and validates it.
func LoadRules(path string) (*rules.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("json")
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading rules %s: %w", path, err)
	}

	raw := v.AllSettings()
	if n := MigrateLegacy(raw); n > 0 {
		slog.Debug("migrated legacy rule entries", "path", path, "entries", n)
	}

	cfg, err := rules.Load(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid rules %s: %w", path, err)
	}
	return cfg, nil
}

// MigrateLegacy rewrites forbidden_imports entries of the form
// {"file_pattern": ..., "prohibited": ...} to {"from": ..., "to": ...} in
// place. When an entry carries both forms the from/to keys are kept. It
// returns the number of entries that were changed.
func MigrateLegacy(raw map[string]any) int {
	list, ok := raw[rules.KeyForbiddenImports].([]any)
	if !ok {
		return 0
	}
	migrated := 0
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		changed := false
		if legacy, ok := entry[legacyFromKey]; ok {
			if _, has := entry["from"]; !has {
				entry["from"] = legacy
			}
			delete(entry, legacyFromKey)
			changed = true
		}
		if legacy, ok := entry[legacyToKey]; ok {
			if _, has := entry["to"]; !has {
				entry["to"] = legacy
			}
			delete(entry, legacyToKey)
			changed = true
		}
		if changed {
			migrated++
		}
	}
	return migrated
}

// SaveRules writes cfg as an indented JSON rule document.
func SaveRules(path string, cfg *rules.Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrRulesExist)
		}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding rules: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}
