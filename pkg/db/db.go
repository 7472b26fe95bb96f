// Package db is the SQLite plumbing under the history ledger: one database
// file, WAL mode, single-writer pool, timestamp-versioned migrations.
package db

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// DefaultDBPath returns where the ledger database lives. SKILLET_BASE_PATH
// relocates it (used by tests and sandboxed installs); otherwise it sits in
// ~/.skillet next to the config file.
func DefaultDBPath() (string, error) {
	if base := os.Getenv("SKILLET_BASE_PATH"); base != "" {
		return filepath.Join(base, "skillet.db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolving home directory")
	}
	return filepath.Join(home, ".skillet", "skillet.db"), nil
}

// Open opens (creating if needed) the SQLite database at dbPath and puts it
// into WAL mode with a single-connection pool. SQLite serializes writers
// anyway; one connection avoids SQLITE_BUSY churn between the CLI's short
// transactions.
func Open(ctx context.Context, dbPath string) (*sqlx.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating database directory")
	}

	conn, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "pinging database")
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=1000",
		"PRAGMA temp_store=memory",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "applying %s", pragma)
		}
	}
	conn.SetMaxIdleConns(1)
	conn.SetMaxOpenConns(1)

	var mode string
	if err := conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "reading journal mode")
	}
	if !strings.EqualFold(mode, "wal") {
		conn.Close()
		return nil, errors.Errorf("journal mode is %s, want wal", mode)
	}

	return conn, nil
}

// VerifyConfiguration reports whether the connection carries the pragmas
// Open sets.
func VerifyConfiguration(conn *sqlx.DB) error {
	checks := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"foreign_keys", "1"},
	}
	for _, c := range checks {
		var got string
		if err := conn.Get(&got, "PRAGMA "+c.pragma); err != nil {
			return errors.Wrapf(err, "reading %s", c.pragma)
		}
		if !strings.EqualFold(got, c.want) {
			return errors.Errorf("%s is %s, want %s", c.pragma, got, c.want)
		}
	}
	return nil
}
