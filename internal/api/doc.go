// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

/*
Package api exposes the trained model over HTTP.

The router serves prediction requests against a lifecycle coordinator,
a listing of stored model artifacts, liveness and readiness probes and
the Prometheus scrape endpoint:

	GET  /healthz             liveness
	GET  /readyz              readiness (artifact present in the store)
	GET  /metrics             Prometheus metrics
	GET  /api/v1/predict      prediction, arguments from query parameters
	POST /api/v1/predict      prediction, arguments from a JSON body
	GET  /api/v1/models       stored model artifacts and their backups

All /api/v1 responses share one JSON envelope (see response.go). The
data routes carry per-IP rate limiting, request metrics and, when
api.auth_secret_var names an environment variable with a signing
secret, JWT bearer authentication.
*/
package api
