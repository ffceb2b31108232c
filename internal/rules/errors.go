package rules

import "fmt"

// ErrorKind classifies configuration failures.
type ErrorKind string

const (
	ErrMissingField ErrorKind = "missing_field"
	ErrInvalidType  ErrorKind = "invalid_type"
	ErrEmptyPattern ErrorKind = "empty_pattern"
	ErrInvalidValue ErrorKind = "invalid_value"
)

// ConfigError is returned when a rule document cannot be turned into a Config.
// It is always fatal: no file is analyzed with an invalid configuration.
type ConfigError struct {
	Kind    ErrorKind
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s: %s", e.Kind, e.Field, e.Message)
}
