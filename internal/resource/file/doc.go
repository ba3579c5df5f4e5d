// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

// Package file provides the filesystem resource types: csv and
// euro_csv for tables, text_file and binary_file for raw bytes.
// euro_csv reads and writes semicolon-separated files with decimal
// commas, the common continental European export format.
package file
