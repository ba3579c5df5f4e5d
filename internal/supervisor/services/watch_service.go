// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package services

import (
	"context"
	"fmt"

	"github.com/tomtom215/gantry/internal/config"
	"github.com/tomtom215/gantry/internal/logging"
)

// ConfigWatchService watches the config file and invokes the callback
// on every change. Serve mode uses the callback to clear coordinator
// caches so new configuration and retrained artifacts are picked up
// without a restart.
type ConfigWatchService struct {
	path     string
	onChange func()
	name     string
}

// NewConfigWatchService creates a watch service for the given config
// file path.
func NewConfigWatchService(path string, onChange func()) *ConfigWatchService {
	return &ConfigWatchService{
		path:     path,
		onChange: onChange,
		name:     "config-watch",
	}
}

// Serve implements suture.Service. The watch itself runs on a
// filesystem-notification goroutine; Serve holds the service slot and
// tears the watch down when the context ends.
func (c *ConfigWatchService) Serve(ctx context.Context) error {
	stop, err := config.WatchConfigFile(c.path, c.onChange)
	if err != nil {
		return fmt.Errorf("watching config file %s: %w", c.path, err)
	}

	logging.Info().Str("path", c.path).Msg("Config file watch started")

	<-ctx.Done()

	if err := stop(); err != nil {
		logging.Warn().Err(err).Str("path", c.path).Msg("Stopping config file watch failed")
	}
	return ctx.Err()
}

// String identifies the service in supervisor logs.
func (c *ConfigWatchService) String() string {
	return c.name
}
