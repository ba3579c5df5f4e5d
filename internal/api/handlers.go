// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gantry/internal/logging"
	"github.com/tomtom215/gantry/internal/store"
)

// healthStatus is the liveness probe payload.
type healthStatus struct {
	Status        string  `json:"status"`
	API           string  `json:"api,omitempty"`
	Model         string  `json:"model"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// readyStatus is the readiness probe payload.
type readyStatus struct {
	Status  string `json:"status"`
	Model   string `json:"model"`
	Version string `json:"version"`
}

// modelListing is the /api/v1/models payload.
type modelListing struct {
	Models map[string]*store.ModelInfo `json:"models"`
	Count  int                         `json:"count"`
}

// handleHealthz reports process liveness.
func (rt *Router) handleHealthz(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(healthStatus{
		Status:        "ok",
		API:           rt.cfg.API.Name,
		Model:         rt.cfg.Model.Name,
		Version:       rt.cfg.Model.Version,
		UptimeSeconds: time.Since(rt.startTime).Seconds(),
	})
}

// handleReadyz reports whether a trained artifact for the configured
// model is present in the store. Kubernetes-style probes gate traffic
// on this, so a deleted or never-trained artifact flips the service
// out of rotation instead of serving 500s.
func (rt *Router) handleReadyz(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	models, err := rt.coord.ListModels()
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Readiness check failed to list models")
		rw.ServiceUnavailable("Model store unavailable")
		return
	}

	name, version := rt.cfg.Model.Name, rt.cfg.Model.Version
	info, ok := models[name]
	if !ok || info.Versions[version] == nil {
		rw.ServiceUnavailable(fmt.Sprintf("No trained artifact for model %s version %s", name, version))
		return
	}

	rw.Success(readyStatus{
		Status:  "ready",
		Model:   name,
		Version: version,
	})
}

// handlePredictGet serves predictions with arguments taken from the
// query string. Values arrive as strings; repeated parameters become
// a list.
func (rt *Router) handlePredictGet(w http.ResponseWriter, r *http.Request) {
	rt.predict(w, r, queryArgs(r.URL.Query()))
}

// handlePredictPost serves predictions with arguments taken from a
// JSON object in the request body. An empty body means no arguments.
func (rt *Router) handlePredictPost(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		NewResponseWriter(w, r).BadRequest("Failed to read request body")
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &args); err != nil {
			NewResponseWriter(w, r).ValidationError(
				"Request body must be a JSON object",
				map[string]string{"parse_error": err.Error()},
			)
			return
		}
	}

	rt.predict(w, r, args)
}

// predict runs one prediction and writes the enveloped result.
func (rt *Router) predict(w http.ResponseWriter, r *http.Request, args map[string]any) {
	rw := NewResponseWriter(w, r)

	out, err := rt.coord.Predict(r.Context(), args)
	if err != nil {
		rt.respondPredictError(rw, r, err)
		return
	}

	rw.Success(out)
}

// respondPredictError maps coordinator errors onto envelope responses.
// A missing artifact is the client-visible case; everything else is a
// server-side failure reported without internal detail.
func (rt *Router) respondPredictError(rw *ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Prediction requested without a trained artifact")
		rw.NotFound(fmt.Sprintf("No trained artifact for model %s version %s",
			rt.cfg.Model.Name, rt.cfg.Model.Version))
	case errors.Is(err, store.ErrCorrupt):
		logging.Ctx(r.Context()).Error().Err(err).Msg("Prediction failed on corrupt artifact")
		rw.InternalError("Stored model artifact is corrupt")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Prediction failed")
		rw.InternalError("Prediction failed")
	}
}

// handleModels lists every stored artifact with metadata and backups.
func (rt *Router) handleModels(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	models, err := rt.coord.ListModels()
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Model listing failed")
		rw.InternalError("Failed to list models")
		return
	}

	rw.Success(modelListing{
		Models: models,
		Count:  len(models),
	})
}

// queryArgs converts query parameters to prediction arguments. Single
// values stay strings, repeated keys become a list of strings.
func queryArgs(values url.Values) map[string]any {
	args := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 1 {
			args[key] = vals[0]
			continue
		}
		list := make([]any, len(vals))
		for i, v := range vals {
			list[i] = v
		}
		args[key] = list
	}
	return args
}
