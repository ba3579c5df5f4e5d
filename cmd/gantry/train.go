// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package main

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/gantry/internal/lifecycle"
)

// newTrainCommand trains the configured model, tests it and stores the
// artifact. The test metrics are printed as JSON.
func newTrainCommand(opts *rootOptions) *cobra.Command {
	var skipTest, skipPersist bool

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the configured model and store the trained artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, coord, err := boot(opts)
			if err != nil {
				return err
			}

			var callOpts []lifecycle.CallOption
			if skipTest {
				callOpts = append(callOpts, lifecycle.SkipTest())
			}
			if skipPersist {
				callOpts = append(callOpts, lifecycle.SkipPersist())
			}

			metrics, err := coord.Train(cmd.Context(), callOpts...)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), metrics)
		},
	}

	cmd.Flags().BoolVar(&skipTest, "skip-test", false,
		"train without the test phase (stored metrics stay empty)")
	cmd.Flags().BoolVar(&skipPersist, "skip-persist", false,
		"keep the trained artifact out of the model store")

	return cmd
}

// newRetestCommand re-runs the test phase against the stored artifact
// and updates its metrics. The fresh metrics are printed as JSON.
func newRetestCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "retest",
		Short: "Re-run the test phase against the stored artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, coord, err := boot(opts)
			if err != nil {
				return err
			}

			metrics, err := coord.Retest(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), metrics)
		},
	}
}
