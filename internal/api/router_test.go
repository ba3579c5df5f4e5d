// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/gantry/internal/config"
	"github.com/tomtom215/gantry/internal/lifecycle"
	"github.com/tomtom215/gantry/internal/store"
)

// stubCoordinator stands in for the lifecycle coordinator.
type stubCoordinator struct {
	predictFn func(ctx context.Context, args map[string]any) (any, error)
	listFn    func() (map[string]*store.ModelInfo, error)
	lastArgs  map[string]any
}

func (s *stubCoordinator) Predict(ctx context.Context, args map[string]any, _ ...lifecycle.CallOption) (any, error) {
	s.lastArgs = args
	if s.predictFn != nil {
		return s.predictFn(ctx, args)
	}
	return map[string]any{"ok": true}, nil
}

func (s *stubCoordinator) ListModels() (map[string]*store.ModelInfo, error) {
	if s.listFn != nil {
		return s.listFn()
	}
	return map[string]*store.ModelInfo{}, nil
}

func testRouterConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Model.Name = "iris"
	cfg.Model.Version = "1.0.0"
	cfg.Model.Module = "tree"
	cfg.API.Name = "iris-api"
	return cfg
}

func newTestHandler(t *testing.T, cfg *config.Config, coord Coordinator) http.Handler {
	t.Helper()
	rt, err := NewRouter(cfg, coord)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return rt.Setup()
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding envelope: %v (body %q)", err, rec.Body.String())
	}
	return resp
}

func TestPredictPostPassesArgs(t *testing.T) {
	coord := &stubCoordinator{}
	handler := newTestHandler(t, testRouterConfig(), coord)

	body := strings.NewReader(`{"sepal_length": 5.1, "species": "setosa"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	resp := decodeEnvelope(t, rec)
	if !resp.Success {
		t.Error("envelope Success = false, want true")
	}
	data, ok := resp.Data.(map[string]any)
	if !ok || data["ok"] != true {
		t.Errorf("data = %#v, want ok=true", resp.Data)
	}

	if got := coord.lastArgs["sepal_length"]; got != 5.1 {
		t.Errorf("args[sepal_length] = %#v, want 5.1", got)
	}
	if got := coord.lastArgs["species"]; got != "setosa" {
		t.Errorf("args[species] = %#v, want setosa", got)
	}
}

func TestPredictGetQueryArgs(t *testing.T) {
	coord := &stubCoordinator{}
	handler := newTestHandler(t, testRouterConfig(), coord)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/predict?flower=iris&x=1&x=2", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := coord.lastArgs["flower"]; got != "iris" {
		t.Errorf("args[flower] = %#v, want iris", got)
	}
	multi, ok := coord.lastArgs["x"].([]any)
	if !ok || len(multi) != 2 || multi[0] != "1" || multi[1] != "2" {
		t.Errorf("args[x] = %#v, want [1 2] as strings", coord.lastArgs["x"])
	}
}

func TestPredictEmptyBodyMeansNoArgs(t *testing.T) {
	coord := &stubCoordinator{}
	handler := newTestHandler(t, testRouterConfig(), coord)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if coord.lastArgs == nil || len(coord.lastArgs) != 0 {
		t.Errorf("args = %#v, want empty map", coord.lastArgs)
	}
}

func TestPredictRejectsMalformedBody(t *testing.T) {
	handler := newTestHandler(t, testRouterConfig(), &stubCoordinator{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != ErrCodeValidationFailed {
		t.Errorf("error = %+v, want code %s", resp.Error, ErrCodeValidationFailed)
	}
}

func TestPredictMissingArtifactIs404(t *testing.T) {
	coord := &stubCoordinator{
		predictFn: func(context.Context, map[string]any) (any, error) {
			return nil, fmt.Errorf("loading model iris_1.0.0: %w", store.ErrNotFound)
		},
	}
	handler := newTestHandler(t, testRouterConfig(), coord)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/predict", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != ErrCodeNotFound {
		t.Errorf("error = %+v, want code %s", resp.Error, ErrCodeNotFound)
	}
	if !strings.Contains(resp.Error.Message, "iris") {
		t.Errorf("error message %q should name the model", resp.Error.Message)
	}
}

func TestPredictFailureIs500(t *testing.T) {
	coord := &stubCoordinator{
		predictFn: func(context.Context, map[string]any) (any, error) {
			return nil, errors.New("module exploded")
		},
	}
	handler := newTestHandler(t, testRouterConfig(), coord)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/predict", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != ErrCodeInternalError {
		t.Errorf("error = %+v, want code %s", resp.Error, ErrCodeInternalError)
	}
	if strings.Contains(resp.Error.Message, "exploded") {
		t.Error("internal error detail should not leak to clients")
	}
}

func TestModelsListing(t *testing.T) {
	coord := &stubCoordinator{
		listFn: func() (map[string]*store.ModelInfo, error) {
			return map[string]*store.ModelInfo{
				"iris": {
					Name:   "iris",
					Latest: "1.0.0",
					Versions: map[string]*store.Metadata{
						"1.0.0": {Name: "iris", Version: "1.0.0"},
					},
				},
			}, nil
		},
	}
	handler := newTestHandler(t, testRouterConfig(), coord)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/models", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("data = %#v, want object", resp.Data)
	}
	if data["count"] != float64(1) {
		t.Errorf("count = %v, want 1", data["count"])
	}
	models, ok := data["models"].(map[string]any)
	if !ok || models["iris"] == nil {
		t.Errorf("models = %#v, want iris entry", data["models"])
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestHandler(t, testRouterConfig(), &stubCoordinator{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("data = %#v, want object", resp.Data)
	}
	if data["status"] != "ok" || data["model"] != "iris" {
		t.Errorf("health = %#v, want status ok for model iris", data)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response should carry X-Request-ID")
	}
}

func TestReadyzReflectsArtifactPresence(t *testing.T) {
	withArtifact := map[string]*store.ModelInfo{
		"iris": {
			Name:     "iris",
			Latest:   "1.0.0",
			Versions: map[string]*store.Metadata{"1.0.0": {Name: "iris", Version: "1.0.0"}},
		},
	}

	tests := []struct {
		name       string
		models     map[string]*store.ModelInfo
		wantStatus int
	}{
		{"artifact present", withArtifact, http.StatusOK},
		{"store empty", map[string]*store.ModelInfo{}, http.StatusServiceUnavailable},
		{
			"other version only",
			map[string]*store.ModelInfo{
				"iris": {
					Name:     "iris",
					Latest:   "0.9.0",
					Versions: map[string]*store.Metadata{"0.9.0": {Name: "iris", Version: "0.9.0"}},
				},
			},
			http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coord := &stubCoordinator{
				listFn: func() (map[string]*store.ModelInfo, error) { return tt.models, nil },
			}
			handler := newTestHandler(t, testRouterConfig(), coord)

			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestAuthRequiredWhenSecretConfigured(t *testing.T) {
	const secret = "unit-test-signing-secret-0123456789"
	t.Setenv("GANTRY_TEST_AUTH_SECRET", secret)

	cfg := testRouterConfig()
	cfg.API.AuthSecretVar = "GANTRY_TEST_AUTH_SECRET"
	handler := newTestHandler(t, cfg, &stubCoordinator{})

	// Data route without a token is rejected.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/predict", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != ErrCodeUnauthorized {
		t.Errorf("error = %+v, want code %s", resp.Error, ErrCodeUnauthorized)
	}

	// A valid HMAC token passes.
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "ci",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/predict", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status with token = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	// A token signed with a different secret is rejected.
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("some-other-secret"))
	if err != nil {
		t.Fatalf("signing forged token: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/predict", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status with forged token = %d, want 401", rec.Code)
	}

	// Probes stay open so the platform can check health without keys.
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz with auth enabled = %d, want 200", rec.Code)
	}
}

func TestAuthSecretVarMustBeSet(t *testing.T) {
	cfg := testRouterConfig()
	cfg.API.AuthSecretVar = "GANTRY_TEST_UNSET_SECRET"

	if _, err := NewRouter(cfg, &stubCoordinator{}); err == nil {
		t.Fatal("expected error when the secret environment variable is empty")
	}
}

func TestRateLimitExceeded(t *testing.T) {
	cfg := testRouterConfig()
	cfg.API.RateLimitRequests = 2
	cfg.API.RateLimitWindow = time.Minute
	handler := newTestHandler(t, cfg, &stubCoordinator{})

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/models", nil)
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", last.Code)
	}
	resp := decodeEnvelope(t, last)
	if resp.Error == nil || resp.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("error = %+v, want code %s", resp.Error, ErrCodeTooManyRequests)
	}
}

func TestUnknownRouteAndMethodEnvelopes(t *testing.T) {
	handler := newTestHandler(t, testRouterConfig(), &stubCoordinator{})

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown route status = %d, want 404", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != ErrCodeNotFound {
		t.Errorf("error = %+v, want code %s", resp.Error, ErrCodeNotFound)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/models", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("wrong method status = %d, want 405", rec.Code)
	}
	resp = decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != ErrCodeMethodNotAllowed {
		t.Errorf("error = %+v, want code %s", resp.Error, ErrCodeMethodNotAllowed)
	}
}
