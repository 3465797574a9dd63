// Package config loads client configuration from defaults, an optional YAML
// file and PLANTIFY_ environment variables, in increasing priority.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables before they are mapped
// onto config keys: PLANTIFY_REQUEST_MAXATTEMPTS sets request.maxattempts.
const EnvPrefix = "PLANTIFY_"

// Default candidate base URLs: the Android emulator host alias, then loopback.
var DefaultCandidates = []string{
	"http://10.0.2.2:8000/account",
	"http://127.0.0.1:8000/account",
	"http://localhost:8000/account",
}

// Load reads configuration with priority:
// 1. Environment variables (highest priority)
// 2. The YAML file at path, when path is not empty
// 3. Default values (lowest priority)
func Load(path string) (*Config, error) {
	return load(func(k *koanf.Koanf) error {
		if path == "" {
			return nil
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		return nil
	})
}

// LoadBytes is Load with the YAML document supplied in memory.
func LoadBytes(data []byte) (*Config, error) {
	return load(func(k *koanf.Koanf) error {
		if len(data) == 0 {
			return nil
		}
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
		return nil
	})
}

func load(loadFile func(*koanf.Koanf) error) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := loadFile(k); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnv,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// transformEnv maps PLANTIFY_STORE_REDIS_HOST to store.redis.host. The
// candidate list is comma separated.
func transformEnv(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "_", ".")

	if key == "endpoint.candidates" {
		var out []string
		for _, c := range strings.Split(value, ",") {
			if c = strings.TrimSpace(c); c != "" {
				out = append(out, c)
			}
		}
		return key, out
	}
	return key, value
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":    "plantify",
		"app.version": "v1.0.0",
		"app.env":     EnvDevelopment,

		"log.level":  "info",
		"log.pretty": false,

		"endpoint.candidates":          DefaultCandidates,
		"endpoint.probepath":           "/register/",
		"endpoint.probetimeout":        "5s",
		"endpoint.ttl":                 "5m",
		"endpoint.strategy":            StrategyRace,
		"endpoint.failedroundinterval": "10s",
		"endpoint.accountsegment":      "/account",
		"endpoint.diseasesegment":      "/crop-disease",

		"connectivity.enabled": true,
		"connectivity.url":     "https://www.google.com",
		"connectivity.timeout": "5s",

		"request.timeout":     "30s",
		"request.maxattempts": 3,
		"request.retrydelay":  "1s",
		"request.logpayloads": false,

		"store.type":           StoreFile,
		"store.path":           DefaultStorePath(),
		"store.redis.port":     6379,
		"store.redis.database": 0,
		"store.redis.timeout":  "5s",

		"telemetry.enabled":     false,
		"telemetry.servicename": "plantify-cli",
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
