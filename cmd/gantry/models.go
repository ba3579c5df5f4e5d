// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package main

import (
	"github.com/spf13/cobra"
)

// newModelsCommand lists every artifact in the configured model store.
func newModelsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List stored model artifacts as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, coord, err := boot(opts)
			if err != nil {
				return err
			}

			models, err := coord.ListModels()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), models)
		},
	}
}
