// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

/*
Package middleware provides HTTP middleware for the prediction API.

All middleware uses the chi-compatible func(http.Handler) http.Handler
shape so it can be registered with r.Use():

  - RequestID: UUID request tracking wired into the logging context
  - RequestLogging: one structured log line per completed request
  - Prometheus: request count and duration instrumentation
  - Compression: gzip for JSON responses when the client accepts it
*/
package middleware
