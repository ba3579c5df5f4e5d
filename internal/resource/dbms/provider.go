// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package dbms

import (
	"database/sql"
	"fmt"
	"net/url"
	"runtime"
	"strings"
	"sync"
	"time"

	// DuckDB and pgx register their database/sql drivers on import.
	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/jackc/pgx/v4/stdlib"

	"github.com/tomtom215/gantry/internal/config"
	"github.com/tomtom215/gantry/internal/logging"
	"github.com/tomtom215/gantry/internal/resource"
)

func init() {
	resource.RegisterBuiltin(&provider{pools: make(map[string]*sql.DB)})
}

// provider creates dbms sources and sinks. Connection pools are
// shared per driver and DSN for the life of the process, the way a
// service holds one sql.DB per backend.
type provider struct {
	mu    sync.Mutex
	pools map[string]*sql.DB
}

func (p *provider) Name() string { return "dbms" }

func (p *provider) Serves() []string {
	return []string{"dbms", "dbms.duckdb", "dbms.postgres"}
}

func (p *provider) NewSource(name string, res config.Resource, conn config.Connection) (resource.Source, error) {
	db, style, err := p.open(conn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if res.Query == "" {
		return nil, fmt.Errorf("%s: dbms sources need a query: %w", name, resource.ErrConfig)
	}
	return &source{id: name, db: db, query: res.Query, style: style}, nil
}

func (p *provider) NewSink(name string, res config.Resource, conn config.Connection) (resource.Sink, error) {
	db, style, err := p.open(conn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if res.Table == "" {
		return nil, fmt.Errorf("%s: dbms sinks need a table: %w", name, resource.ErrConfig)
	}
	truncate, _ := res.Options["truncate"].(bool)
	return &sink{id: name, db: db, table: res.Table, style: style, truncate: truncate}, nil
}

// open returns the shared pool for the connection, creating it on
// first use, together with the placeholder style its driver expects.
func (p *provider) open(conn config.Connection) (*sql.DB, placeholderStyle, error) {
	driver, style, err := driverFor(conn)
	if err != nil {
		return nil, 0, err
	}
	dsn, err := dsnFor(driver, conn)
	if err != nil {
		return nil, 0, err
	}

	key := driver + "\x00" + dsn
	p.mu.Lock()
	defer p.mu.Unlock()
	if db, ok := p.pools[key]; ok {
		return db, style, nil
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s connection: %w", driver, err)
	}
	configurePool(db, driver, dsn)
	p.pools[key] = db
	logging.Debug().Str("driver", driver).Msg("Database pool opened")
	return db, style, nil
}

func configurePool(db *sql.DB, driver, dsn string) {
	// Every pooled connection to an in-memory DuckDB gets its own
	// catalog, so the pool must stay at a single connection there.
	if driver == "duckdb" && (dsn == "" || strings.HasPrefix(dsn, ":memory:")) {
		db.SetMaxOpenConns(1)
		return
	}
	db.SetMaxOpenConns(runtime.NumCPU())
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(5 * time.Minute)
}

// driverFor picks the database/sql driver and placeholder style. An
// explicit driver in the connection wins, otherwise the connection
// type decides.
func driverFor(conn config.Connection) (string, placeholderStyle, error) {
	if conn.Type == "" {
		return "", 0, fmt.Errorf("dbms resources must reference a connection under connections.dbms: %w", resource.ErrConfig)
	}
	if conn.Driver != "" {
		return conn.Driver, styleForDriver(conn.Driver), nil
	}
	switch conn.Type {
	case "duckdb":
		return "duckdb", styleQuestion, nil
	case "postgres", "postgresql":
		return "pgx", styleDollar, nil
	default:
		return "", 0, fmt.Errorf("connection type %q has no built-in driver, set driver explicitly: %w",
			conn.Type, resource.ErrConfig)
	}
}

func styleForDriver(driver string) placeholderStyle {
	if driver == "pgx" || driver == "postgres" {
		return styleDollar
	}
	return styleQuestion
}

// dsnFor builds the data source name. An explicit dsn wins; duckdb
// falls back to the path (empty means in-memory) and postgres builds
// a URL from the connection parts plus environment credentials.
func dsnFor(driver string, conn config.Connection) (string, error) {
	if conn.DSN != "" {
		return conn.DSN, nil
	}
	switch driver {
	case "duckdb":
		return conn.Path, nil
	case "pgx":
		user, password, err := resource.Credentials(conn)
		if err != nil {
			return "", err
		}
		if conn.Host == "" || conn.Database == "" {
			return "", fmt.Errorf("postgres connections need host and database (or an explicit dsn): %w", resource.ErrConfig)
		}
		u := url.URL{Scheme: "postgres", Host: conn.Host, Path: "/" + conn.Database}
		if conn.Port != 0 {
			u.Host = fmt.Sprintf("%s:%d", conn.Host, conn.Port)
		}
		if user != "" {
			if password != "" {
				u.User = url.UserPassword(user, password)
			} else {
				u.User = url.User(user)
			}
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("connection with driver %q needs an explicit dsn: %w", driver, resource.ErrConfig)
	}
}
