package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Probe strategies
const (
	StrategyRace       = "race"
	StrategySequential = "sequential"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field constraints, then the rules that span fields.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return translate(err)
	}

	if err := validateStore(&cfg.Store); err != nil {
		return fmt.Errorf("store config: %w", err)
	}

	if cfg.Connectivity.Enabled && cfg.Connectivity.URL == "" {
		return fmt.Errorf("connectivity config: %w", NewMissingFieldError("connectivity.url"))
	}

	return nil
}

func validateStore(cfg *StoreConfig) error {
	switch cfg.Type {
	case StoreFile:
		if cfg.Path == "" {
			return NewMissingFieldError("store.path")
		}
	case StoreRedis:
		if cfg.Redis.Host == "" {
			return NewMissingFieldError("store.redis.host")
		}
	}
	return nil
}

// translate turns the first validator failure into a ConfigError.
func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	field := fieldPath(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return NewMissingFieldError(field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return NewMissingFieldError(field)
		}
		return NewInvalidFieldError(field, fmt.Sprintf("must be at least %s", fe.Param()), nil)
	case "oneof":
		return NewInvalidFieldError(field, fmt.Sprintf("invalid value %q", fmt.Sprint(fe.Value())), strings.Fields(fe.Param()))
	case "url":
		return NewInvalidFieldError(field, fmt.Sprintf("%q is not an absolute url", fmt.Sprint(fe.Value())), nil)
	case "gt":
		return NewInvalidFieldError(field, "must be positive", nil)
	default:
		return NewInvalidFieldError(field, fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param()), nil)
	}
}

// fieldPath converts "Config.endpoint.candidates[1]" to "endpoint.candidates[1]".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

// DefaultStorePath is the JSON file store location under the user's config
// directory.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".plantify", "store.json")
	}
	return filepath.Join(dir, "plantify", "store.json")
}
