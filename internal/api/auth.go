// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/gantry/internal/logging"
)

// authenticator validates HMAC-signed bearer tokens on data routes.
type authenticator struct {
	secret []byte
}

// newAuthenticator reads the signing secret from the environment
// variable named by api.auth_secret_var.
func newAuthenticator(secretVar string) (*authenticator, error) {
	secret := os.Getenv(secretVar)
	if secret == "" {
		return nil, fmt.Errorf("api.auth_secret_var: environment variable %s is empty", secretVar)
	}
	return &authenticator{secret: []byte(secret)}, nil
}

// Middleware rejects requests that do not carry a valid bearer token.
func (a *authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			NewResponseWriter(w, r).Unauthorized("Missing bearer token")
			return
		}

		claims, err := a.validate(token)
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Rejected bearer token")
			NewResponseWriter(w, r).Unauthorized("Invalid bearer token")
			return
		}

		if claims.Subject != "" {
			enriched := logging.Ctx(r.Context()).With().Str("subject", claims.Subject).Logger()
			r = r.WithContext(logging.ContextWithLogger(r.Context(), enriched))
		}

		next.ServeHTTP(w, r)
	})
}

// validate checks signature, algorithm and time claims. Only HMAC
// methods are accepted, which closes the algorithm confusion hole.
func (a *authenticator) validate(tokenString string) (*jwt.RegisteredClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}
