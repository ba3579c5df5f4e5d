// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// newPredictCommand runs one prediction against the stored artifact
// and prints the result as JSON.
func newPredictCommand(opts *rootOptions) *cobra.Command {
	var argsJSON string

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run a single prediction against the stored artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args := map[string]any{}
			if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
				return fmt.Errorf("parsing --args: %w", err)
			}

			_, coord, err := boot(opts)
			if err != nil {
				return err
			}

			output, err := coord.Predict(cmd.Context(), args)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), output)
		},
	}

	cmd.Flags().StringVar(&argsJSON, "args", "{}",
		"prediction arguments as a JSON object")

	return cmd
}
