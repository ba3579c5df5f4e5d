// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/gantry/internal/logging"
)

// RequestLogging emits one structured log line per completed request
// with method, path, status, duration and the request ID from the
// context. Server errors log at error level, client errors at warn.
func RequestLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapper := &statusResponseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapper, r)

			event := logging.Ctx(r.Context()).Info()
			switch {
			case wrapper.statusCode >= http.StatusInternalServerError:
				event = logging.Ctx(r.Context()).Error()
			case wrapper.statusCode >= http.StatusBadRequest:
				event = logging.Ctx(r.Context()).Warn()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapper.statusCode).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("Request completed")
		})
	}
}
