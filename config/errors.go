package config

import (
	"fmt"
	"strings"
)

// Error categories
const (
	CategoryMissing = "missing"
	CategoryInvalid = "invalid"
)

// ConfigError reports a bad or absent setting together with a hint on how
// to fix it.
//
//nolint:revive // config.ConfigError reads better than config.Error at call sites
type ConfigError struct {
	Category string
	Field    string
	Problem  string
	Hint     string
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: %s: %s", e.Field, e.Problem)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// NewMissingFieldError reports a required setting with no value.
func NewMissingFieldError(field string) *ConfigError {
	return &ConfigError{
		Category: CategoryMissing,
		Field:    field,
		Problem:  "required",
		Hint:     fmt.Sprintf("set %s or add %s to the config file", EnvVar(field), field),
	}
}

// NewInvalidFieldError reports a setting whose value is rejected. options,
// when given, lists the accepted values.
func NewInvalidFieldError(field, problem string, options []string) *ConfigError {
	e := &ConfigError{Category: CategoryInvalid, Field: field, Problem: problem}
	if len(options) > 0 {
		e.Hint = "one of " + strings.Join(options, ", ")
	}
	return e
}

// EnvVar returns the environment variable that overrides field.
func EnvVar(field string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(field, ".", "_"))
}
