// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

// Package resource turns the sources and sinks sections of the
// configuration into live Source and Sink values.
//
// Providers register capabilities (type strings such as "csv" or
// "dbms.duckdb") either as builtins at package load or as plugins at
// runtime. A Factory resolves each configured resource against the
// registered capabilities, restricted by tag matching, and wraps
// sources in a per-resource cache according to their expires setting.
package resource
