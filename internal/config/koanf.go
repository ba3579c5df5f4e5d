// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/gantry/internal/logging"
)

// ConfigPathEnvVar names the environment variable that points at the
// configuration file when no explicit path is given.
const ConfigPathEnvVar = "GANTRY_CFG"

// DefaultConfigPaths are searched, in order, when neither an explicit
// path nor GANTRY_CFG is set.
var DefaultConfigPaths = []string{
	"./gantry.yml",
	"./gantry.yaml",
}

// Load reads the configuration for this process. Layering order is
// defaults, then the main YAML file, then its include files, then
// environment variables, with later layers overriding earlier ones.
// The returned Config has passed Validate.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: struct defaults
	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: main config file
	configPath, err := findConfigFile(path)
	if err != nil {
		return nil, err
	}
	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	// Layer 3: include files, merged in order over the main file.
	// Relative include paths resolve against the main file's
	// directory. Includes are single-level, an include's own
	// include list is not followed.
	baseDir := filepath.Dir(configPath)
	for _, inc := range k.Strings("include") {
		incPath := inc
		if !filepath.IsAbs(incPath) {
			incPath = filepath.Join(baseDir, incPath)
		}
		if err := k.Load(file.Provider(incPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load include file %s: %w", inc, err)
		}
	}

	// Layer 4: environment variables (highest priority).
	// Transform GANTRY_* variable names to koanf config paths:
	//	GANTRY_MODEL_NAME -> model.name
	//	GANTRY_API_PORT   -> api.port
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	// The API version always tracks the model version. A configured
	// api.version would silently drift from the artifact metadata,
	// so it is rejected outright.
	if k.Exists("api.version") {
		return nil, fmt.Errorf("do not set api.version: the API version is always taken from model.version")
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Path = configPath

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	logging.Debug().
		Str("path", configPath).
		Int("sources", len(cfg.Sources)).
		Int("sinks", len(cfg.Sinks)).
		Msg("Configuration loaded")

	return cfg, nil
}

// findConfigFile resolves the config file location. An explicit path
// wins, then GANTRY_CFG, then the default paths. Falling back to a
// default path is logged because it is a frequent source of surprise
// in deployments that meant to set GANTRY_CFG.
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("config file %s (from %s): %w", envPath, ConfigPathEnvVar, err)
		}
		return envPath, nil
	}

	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			logging.Warn().
				Str("path", p).
				Msgf("No config file specified, falling back to %s. Set %s or pass a path to silence this warning", p, ConfigPathEnvVar)
			return p, nil
		}
	}

	return "", fmt.Errorf("no configuration file found: pass a path, set %s, or create %s", ConfigPathEnvVar, DefaultConfigPaths[0])
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"include",
	"plugins",
	"api.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf
// config paths. Only explicitly mapped GANTRY_* variables are
// consumed, everything else in the environment is ignored.
//
// Examples:
//   - GANTRY_MODEL_NAME -> model.name
//   - GANTRY_API_PORT -> api.port
//   - GANTRY_LOGGING_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"gantry_model_store_location": "model_store.location",

		"gantry_model_name":                  "model.name",
		"gantry_model_version":               "model.version",
		"gantry_model_module":                "model.module",
		"gantry_model_order_columns_warning": "model.order_columns_warning",

		"gantry_plugins": "plugins",

		"gantry_api_name":                "api.name",
		"gantry_api_host":                "api.host",
		"gantry_api_port":                "api.port",
		"gantry_api_timeout":             "api.timeout",
		"gantry_api_cors_origins":        "api.cors_origins",
		"gantry_api_rate_limit_requests": "api.rate_limit_requests",
		"gantry_api_rate_limit_window":   "api.rate_limit_window",
		"gantry_api_auth_secret_var":     "api.auth_secret_var",

		"gantry_logging_level":     "logging.level",
		"gantry_logging_format":    "logging.format",
		"gantry_logging_caller":    "logging.caller",
		"gantry_logging_timestamp": "logging.timestamp",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Returning empty skips the variable entirely
	return ""
}

// WatchConfigFile watches the given config file for changes and calls
// the callback on each change. The callback should reload via Load and
// decide what to do with the result. The returned stop function ends
// the watch.
func WatchConfigFile(path string, callback func()) (func() error, error) {
	provider := file.Provider(path)

	err := provider.Watch(func(event interface{}, err error) {
		if err != nil {
			logging.Error().Err(err).Str("path", path).Msg("Config file watch error")
			return
		}
		logging.Info().Str("path", path).Msg("Config file changed")
		callback()
	})
	if err != nil {
		return nil, err
	}

	return provider.Unwatch, nil
}
