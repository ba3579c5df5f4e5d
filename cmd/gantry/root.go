// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/gantry/internal/config"
	"github.com/tomtom215/gantry/internal/lifecycle"
	"github.com/tomtom215/gantry/internal/logging"
)

// rootOptions carries the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// newRootCommand assembles the gantry command tree.
func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "gantry",
		Short: "Train, test, store and serve machine learning models",
		Long: `Gantry manages the lifecycle of machine learning models around a
configured model module: train and test it, persist the trained
artifact with its metadata, and serve predictions over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"path to the configuration file (default $GANTRY_CFG, then ./gantry.yml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"override the configured log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "",
		"override the configured log format (json, console)")

	cmd.AddCommand(
		newTrainCommand(opts),
		newRetestCommand(opts),
		newPredictCommand(opts),
		newServeCommand(opts),
		newModelsCommand(opts),
		newVersionCommand(),
	)

	return cmd
}

// boot loads the configuration, initializes logging and builds the
// lifecycle coordinator the model commands run against.
func boot(opts *rootOptions) (*config.Config, *lifecycle.Coordinator, error) {
	// The level override applies before Load so configuration
	// resolution itself logs at the requested level.
	if opts.logLevel != "" {
		logging.SetLevelString(opts.logLevel)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}

	logCfg := cfg.Logging
	if opts.logLevel != "" {
		logCfg.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		logCfg.Format = opts.logFormat
	}
	logging.Init(logCfg)

	return cfg, lifecycle.NewCoordinator(cfg), nil
}

// printJSON writes v to w as indented JSON, the output format of every
// command that reports a result.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
