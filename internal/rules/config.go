// Package rules holds the validated rule configuration and the engine that
// evaluates it against the facts extracted from one source file.
package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Pattern is the architecture label a project declares. It is advisory: the
// engine never changes behaviour based on it.
type Pattern string

const (
	PatternHexagonal Pattern = "Hexagonal"
	PatternClean     Pattern = "Clean"
	PatternMVC       Pattern = "MVC"
	PatternNone      Pattern = "None"
)

// ParsePattern resolves a pattern name case-insensitively. "Ninguno" is
// accepted as a legacy spelling of None.
func ParsePattern(s string) (Pattern, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hexagonal":
		return PatternHexagonal, true
	case "clean":
		return PatternClean, true
	case "mvc":
		return PatternMVC, true
	case "none", "ninguno", "":
		return PatternNone, true
	}
	return "", false
}

// ForbiddenRule forbids files whose path contains From from importing modules
// whose specifier contains To. Both patterns are lower-cased at load time.
type ForbiddenRule struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
}

// Config is the rule configuration for one run. It is immutable once built
// and safe to share between goroutines.
type Config struct {
	maxLines int
	pattern  Pattern
	rules    []ForbiddenRule
}

// MaxLinesPerFunction returns the function length limit.
func (c *Config) MaxLinesPerFunction() int { return c.maxLines }

// Pattern returns the declared architecture label.
func (c *Config) Pattern() Pattern { return c.pattern }

// ForbiddenImports returns a copy of the rules in declaration order.
func (c *Config) ForbiddenImports() []ForbiddenRule {
	out := make([]ForbiddenRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// MarshalJSON writes the config in document form.
func (c *Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(document{
		MaxLinesPerFunction: c.maxLines,
		ArchitecturePattern: string(c.pattern),
		ForbiddenImports:    c.ForbiddenImports(),
	})
}

type document struct {
	MaxLinesPerFunction int             `json:"max_lines_per_function"`
	ArchitecturePattern string          `json:"architecture_pattern"`
	ForbiddenImports    []ForbiddenRule `json:"forbidden_imports"`
}

// Document keys.
const (
	KeyMaxLines         = "max_lines_per_function"
	KeyPattern          = "architecture_pattern"
	KeyForbiddenImports = "forbidden_imports"
)

// New builds a Config through the same validation as Load.
func New(maxLines int, pattern Pattern, forbidden ...ForbiddenRule) (*Config, error) {
	raw := map[string]any{
		KeyMaxLines: maxLines,
		KeyPattern:  string(pattern),
	}
	list := make([]any, 0, len(forbidden))
	for _, r := range forbidden {
		entry := map[string]any{"from": r.From, "to": r.To}
		if r.Reason != "" {
			entry["reason"] = r.Reason
		}
		list = append(list, entry)
	}
	raw[KeyForbiddenImports] = list
	return Load(raw)
}

// LoadJSON decodes a rule document and validates it.
func LoadJSON(data []byte) (*Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, &ConfigError{Kind: ErrInvalidType, Field: "$", Message: fmt.Sprintf("not a JSON object: %v", err)}
	}
	return Load(raw)
}

// Load validates a decoded rule document:
//
//	{"max_lines_per_function": 40, "architecture_pattern": "MVC",
//	 "forbidden_imports": [{"from": "/domain/", "to": "/infra/", "reason": "..."}]}
//
// Only the from/to rule schema is understood here; older documents must be
// migrated by the caller first.
func Load(raw map[string]any) (*Config, error) {
	if raw == nil {
		return nil, &ConfigError{Kind: ErrMissingField, Field: KeyMaxLines, Message: "empty configuration"}
	}

	maxRaw, ok := raw[KeyMaxLines]
	if !ok || maxRaw == nil {
		return nil, &ConfigError{Kind: ErrMissingField, Field: KeyMaxLines, Message: "required"}
	}
	maxLines, err := toInt(KeyMaxLines, maxRaw)
	if err != nil {
		return nil, err
	}
	if maxLines <= 0 {
		return nil, &ConfigError{Kind: ErrInvalidValue, Field: KeyMaxLines, Message: fmt.Sprintf("must be greater than zero, got %d", maxLines)}
	}

	pattern := PatternNone
	if p, ok := raw[KeyPattern]; ok && p != nil {
		s, ok := p.(string)
		if !ok {
			return nil, &ConfigError{Kind: ErrInvalidType, Field: KeyPattern, Message: fmt.Sprintf("expected string, got %T", p)}
		}
		pattern, ok = ParsePattern(s)
		if !ok {
			return nil, &ConfigError{Kind: ErrInvalidValue, Field: KeyPattern, Message: fmt.Sprintf("unknown pattern %q (want Hexagonal, Clean, MVC or None)", s)}
		}
	}

	var forbidden []ForbiddenRule
	if list, ok := raw[KeyForbiddenImports]; ok && list != nil {
		items, ok := list.([]any)
		if !ok {
			return nil, &ConfigError{Kind: ErrInvalidType, Field: KeyForbiddenImports, Message: fmt.Sprintf("expected list, got %T", list)}
		}
		forbidden = make([]ForbiddenRule, 0, len(items))
		for i, item := range items {
			rule, err := loadRule(i, item)
			if err != nil {
				return nil, err
			}
			forbidden = append(forbidden, rule)
		}
	}

	return &Config{maxLines: maxLines, pattern: pattern, rules: forbidden}, nil
}

func loadRule(i int, item any) (ForbiddenRule, error) {
	field := fmt.Sprintf("%s[%d]", KeyForbiddenImports, i)
	entry, ok := item.(map[string]any)
	if !ok {
		return ForbiddenRule{}, &ConfigError{Kind: ErrInvalidType, Field: field, Message: fmt.Sprintf("expected object, got %T", item)}
	}

	from, err := patternField(field, entry, "from")
	if err != nil {
		return ForbiddenRule{}, err
	}
	to, err := patternField(field, entry, "to")
	if err != nil {
		return ForbiddenRule{}, err
	}

	var reason string
	if r, ok := entry["reason"]; ok && r != nil {
		s, ok := r.(string)
		if !ok {
			return ForbiddenRule{}, &ConfigError{Kind: ErrInvalidType, Field: field + ".reason", Message: fmt.Sprintf("expected string, got %T", r)}
		}
		reason = strings.TrimSpace(s)
	}

	return ForbiddenRule{From: from, To: to, Reason: reason}, nil
}

func patternField(field string, entry map[string]any, key string) (string, error) {
	v, ok := entry[key]
	if !ok || v == nil {
		return "", &ConfigError{Kind: ErrMissingField, Field: field + "." + key, Message: "required"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &ConfigError{Kind: ErrInvalidType, Field: field + "." + key, Message: fmt.Sprintf("expected string, got %T", v)}
	}
	if strings.TrimSpace(s) == "" {
		return "", &ConfigError{Kind: ErrEmptyPattern, Field: field + "." + key, Message: "pattern must not be empty"}
	}
	return strings.ToLower(s), nil
}

func toInt(field string, v any) (int, error) {
	invalid := func() error {
		return &ConfigError{Kind: ErrInvalidType, Field: field, Message: fmt.Sprintf("expected integer, got %T(%v)", v, v)}
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint:
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		if n > math.MaxInt32 {
			return 0, invalid()
		}
		return int(n), nil
	case float32:
		return floatToInt(float64(n), invalid)
	case float64:
		return floatToInt(n, invalid)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, invalid()
		}
		return floatToInt(f, invalid)
	}
	return 0, invalid()
}

func floatToInt(f float64, invalid func() error) (int, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) || math.Abs(f) > math.MaxInt32 {
		return 0, invalid()
	}
	return int(f), nil
}
