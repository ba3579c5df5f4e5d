// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

/*
Package services wraps long-running components as suture services.

  - HTTPServerService bridges http.Server's blocking ListenAndServe
    to suture's context-aware Serve with graceful shutdown
  - ConfigWatchService keeps a config-file watch alive and runs a
    callback on every change
*/
package services
