// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package resource

import (
	"fmt"
	"os"

	"github.com/tomtom215/gantry/internal/config"
	"github.com/tomtom215/gantry/internal/logging"
)

// Credentials resolves the user and password for a connection from
// the environment variables it names. Credentials never live in the
// configuration itself.
//
// A connection without user_var needs no credentials. A named but
// unset user variable is an error. A missing password is only warned
// about, some backends authenticate by user alone.
func Credentials(conn config.Connection) (user, password string, err error) {
	if conn.UserVar == "" {
		if conn.PasswordVar != "" {
			return "", "", fmt.Errorf("password_var %s set without user_var: %w", conn.PasswordVar, ErrConfig)
		}
		return "", "", nil
	}

	user = os.Getenv(conn.UserVar)
	if user == "" {
		return "", "", fmt.Errorf("credential environment variable %s is not set: %w", conn.UserVar, ErrConfig)
	}

	if conn.PasswordVar == "" {
		logging.Warn().
			Str("user_var", conn.UserVar).
			Msg("Connection has user_var but no password_var, connecting without password")
		return user, "", nil
	}

	password = os.Getenv(conn.PasswordVar)
	if password == "" {
		logging.Warn().
			Str("password_var", conn.PasswordVar).
			Msg("Password environment variable is empty, connecting without password")
	}
	return user, password, nil
}
