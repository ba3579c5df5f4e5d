// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

// Package dbms provides query sources and table sinks over
// database/sql. DuckDB and PostgreSQL (via pgx) are linked in, any
// other driver works through the generic path when the binary links
// it and the connection names it.
//
// Sources run the configured query with :name parameters rewritten to
// the driver's placeholder style. Sinks insert a table's rows into the
// configured target table inside one transaction.
package dbms
