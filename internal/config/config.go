// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/gantry/internal/logging"
)

// Config is the complete Gantry configuration tree.
type Config struct {
	// Include lists additional YAML files merged over the main file
	// before environment overrides are applied. Later files win.
	Include []string `koanf:"include"`

	ModelStore ModelStore `koanf:"model_store"`
	Model      Model      `koanf:"model"`

	// Plugins selects and orders active resource plugins by name.
	// Names must have been registered before Load is called.
	Plugins []string `koanf:"plugins"`

	// Connections groups named connection definitions by main type,
	// e.g. connections.dbms.my_db or connections.kv.session_store.
	Connections map[string]map[string]Connection `koanf:"connections"`

	Sources map[string]Resource `koanf:"sources"`
	Sinks   map[string]Resource `koanf:"sinks"`

	API     API            `koanf:"api"`
	Logging logging.Config `koanf:"logging"`

	// Path is the file this configuration was loaded from. Set by
	// Load, not a configuration key.
	Path string `koanf:"-"`
}

// ModelStore locates the artifact store on disk.
type ModelStore struct {
	Location string `koanf:"location" validate:"required"`
}

// Model identifies the model this process trains, tests and serves.
type Model struct {
	Name    string `koanf:"name" validate:"required"`
	Version string `koanf:"version" validate:"required"`

	// Module names the registered maker/predictor pair to use.
	Module string `koanf:"module" validate:"required"`

	// OrderColumnsWarning controls the column-order advisory emitted
	// after train and test runs: "always", "test_and_predict" or
	// "never".
	OrderColumnsWarning string `koanf:"order_columns_warning"`

	// Options carries free-form model parameters through to the
	// maker and predictor unchanged.
	Options map[string]any `koanf:"options"`
}

// Connection holds the shared settings for a named backend that
// connection-qualified resources refer to.
type Connection struct {
	// Type refines capability resolution, e.g. a dbms connection of
	// type "duckdb" resolves the "dbms.duckdb" capability before
	// falling back to plain "dbms".
	Type string `koanf:"type"`

	Driver   string `koanf:"driver"`
	DSN      string `koanf:"dsn"`
	Path     string `koanf:"path"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`

	// UserVar and PasswordVar name environment variables holding
	// credentials. Credentials never appear in config files.
	UserVar     string `koanf:"user_var"`
	PasswordVar string `koanf:"password_var"`

	Options map[string]any `koanf:"options"`
}

// Resource describes a single named source or sink.
type Resource struct {
	// Type is either a simple capability like "csv" or a
	// connection-qualified reference like "dbms.my_db".
	Type string `koanf:"type"`

	Path  string `koanf:"path"`
	Query string `koanf:"query"`
	Table string `koanf:"table"`
	Key   string `koanf:"key"`

	// Tags restrict which process kinds may use this resource. An
	// empty list matches everything.
	Tags []string `koanf:"tags"`

	// Expires controls caching: 0 disables the cache, -1 caches
	// forever and a positive value is a TTL in seconds.
	Expires int `koanf:"expires"`

	// CacheSize bounds the per-resource cache entry count. Zero
	// selects the default capacity.
	CacheSize int `koanf:"cache_size"`

	Options map[string]any `koanf:"options"`
}

// API configures the prediction HTTP service.
type API struct {
	// Name is the public name of the prediction API. It is recorded
	// in artifact metadata and reported by the health endpoint.
	Name string `koanf:"name"`

	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`

	// AuthSecretVar names an environment variable holding the JWT
	// signing secret. Empty disables bearer authentication.
	AuthSecretVar string `koanf:"auth_secret_var"`
}

// Valid order_columns_warning modes.
const (
	OrderWarnAlways         = "always"
	OrderWarnTestAndPredict = "test_and_predict"
	OrderWarnNever          = "never"
)

// DefaultConfig returns the configuration defaults that file,
// include and environment layers are merged over.
func DefaultConfig() *Config {
	return &Config{
		Model: Model{
			OrderColumnsWarning: OrderWarnAlways,
		},
		API: API{
			Host:              "0.0.0.0",
			Port:              8080,
			Timeout:           30 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Validate checks the configuration for errors. Tag-declared shape
// constraints run first, then the semantic checks tags cannot express.
// It returns the first problem found so startup fails before any
// resource is touched.
func (c *Config) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}
	if err := c.Model.validate(); err != nil {
		return err
	}
	for name, res := range c.Sources {
		if err := res.validate("sources", name); err != nil {
			return err
		}
	}
	for name, res := range c.Sinks {
		if err := res.validate("sinks", name); err != nil {
			return err
		}
	}
	for main, conns := range c.Connections {
		if main == "" {
			return fmt.Errorf("connections: empty main type key")
		}
		for name, conn := range conns {
			if name == "" {
				return fmt.Errorf("connections.%s: empty connection name", main)
			}
			if conn.Type == "" {
				return fmt.Errorf("connections.%s.%s: type is required", main, name)
			}
		}
	}
	for i, p := range c.Plugins {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("plugins[%d]: empty plugin name", i)
		}
	}
	return nil
}

func (m *Model) validate() error {
	switch m.OrderColumnsWarning {
	case OrderWarnAlways, OrderWarnTestAndPredict, OrderWarnNever:
	default:
		return fmt.Errorf("model.order_columns_warning: unknown mode %q (want %s, %s or %s)",
			m.OrderColumnsWarning, OrderWarnAlways, OrderWarnTestAndPredict, OrderWarnNever)
	}
	return nil
}

func (r *Resource) validate(section, name string) error {
	if name == "" {
		return fmt.Errorf("%s: empty resource name", section)
	}
	if r.Type == "" {
		return fmt.Errorf("%s.%s: type is required", section, name)
	}
	if strings.Count(r.Type, ".") > 1 {
		return fmt.Errorf("%s.%s: malformed type %q (at most one dot)", section, name, r.Type)
	}
	if r.Expires < -1 {
		return fmt.Errorf("%s.%s: expires must be >= -1, got %d", section, name, r.Expires)
	}
	if r.CacheSize < 0 {
		return fmt.Errorf("%s.%s: cache_size must be >= 0, got %d", section, name, r.CacheSize)
	}
	return nil
}

// ConnectionFor resolves a connection-qualified type reference like
// "dbms.my_db" to its Connection definition.
func (c *Config) ConnectionFor(mainType, name string) (Connection, bool) {
	group, ok := c.Connections[mainType]
	if !ok {
		return Connection{}, false
	}
	conn, ok := group[name]
	return conn, ok
}
