// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package resource

import (
	"fmt"
	"strings"

	"github.com/tomtom215/gantry/internal/config"
)

// TypeRef is a parsed resource type reference. A simple reference like
// "csv" names a capability directly. A qualified reference like
// "dbms.my_db" names a connection group and a connection within it.
type TypeRef struct {
	Main string
	Conn string
}

// Qualified reports whether the reference points at a named connection.
func (r TypeRef) Qualified() bool {
	return r.Conn != ""
}

// ParseTypeRef splits a type string into its main type and optional
// connection name.
func ParseTypeRef(s string) (TypeRef, error) {
	if s == "" {
		return TypeRef{}, fmt.Errorf("empty resource type: %w", ErrConfig)
	}
	parts := strings.Split(s, ".")
	switch len(parts) {
	case 1:
		return TypeRef{Main: parts[0]}, nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return TypeRef{}, fmt.Errorf("malformed resource type %q: %w", s, ErrConfig)
		}
		return TypeRef{Main: parts[0], Conn: parts[1]}, nil
	default:
		return TypeRef{}, fmt.Errorf("malformed resource type %q (at most one dot): %w", s, ErrConfig)
	}
}

// resolveRef resolves a type reference against the configuration and
// the capability registry. For qualified references the connection's
// own type refines the capability lookup: "dbms.my_db" with a duckdb
// connection tries "dbms.duckdb" before falling back to plain "dbms".
func resolveRef(cfg *config.Config, reg map[string]Provider, section, name, typ string) (Provider, config.Connection, error) {
	ref, err := ParseTypeRef(typ)
	if err != nil {
		return nil, config.Connection{}, fmt.Errorf("%s.%s: %w", section, name, err)
	}

	if !ref.Qualified() {
		p, ok := reg[ref.Main]
		if !ok {
			return nil, config.Connection{}, fmt.Errorf("%s.%s: no capability registered for type %q: %w",
				section, name, ref.Main, ErrConfig)
		}
		return p, config.Connection{}, nil
	}

	conn, ok := cfg.ConnectionFor(ref.Main, ref.Conn)
	if !ok {
		return nil, config.Connection{}, fmt.Errorf("%s.%s: no connection %q defined under connections.%s: %w",
			section, name, ref.Conn, ref.Main, ErrConfig)
	}

	if p, ok := reg[ref.Main+"."+conn.Type]; ok {
		return p, conn, nil
	}
	if p, ok := reg[ref.Main]; ok {
		return p, conn, nil
	}
	return nil, config.Connection{}, fmt.Errorf("%s.%s: no capability registered for %q or %q: %w",
		section, name, ref.Main+"."+conn.Type, ref.Main, ErrConfig)
}
