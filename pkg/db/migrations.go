package db

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Migration is one schema change. Versions are YYYYMMDDHHmmss timestamps so
// independently written migrations order themselves.
type Migration struct {
	Version     int64
	Description string
	Up          func(*sql.Tx) error
	// Down is optional; a migration without one cannot be rolled back.
	Down func(*sql.Tx) error
}

// MigrationRunner applies and rolls back migrations, tracking state in a
// schema_migrations table it creates on first use.
type MigrationRunner struct {
	conn *sqlx.DB
}

func NewMigrationRunner(conn *sqlx.DB) *MigrationRunner {
	return &MigrationRunner{conn: conn}
}

// Run applies every pending migration in version order. Already applied
// versions are skipped, so calling Run at every startup is cheap.
func (r *MigrationRunner) Run(ctx context.Context, migrations []Migration) error {
	applied, err := r.GetAppliedVersions(ctx)
	if err != nil {
		return err
	}
	done := make(map[int64]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	pending := make([]Migration, 0, len(migrations))
	for _, m := range migrations {
		if !done[m.Version] {
			pending = append(pending, m)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })

	for _, m := range pending {
		if err := r.apply(ctx, m); err != nil {
			return errors.Wrapf(err, "applying migration %d (%s)", m.Version, m.Description)
		}
	}
	return nil
}

// Rollback undoes the most recently applied migration. It is a no-op when
// nothing has been applied.
func (r *MigrationRunner) Rollback(ctx context.Context, migrations []Migration) error {
	applied, err := r.GetAppliedVersions(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		return nil
	}
	last := applied[len(applied)-1]

	for _, m := range migrations {
		if m.Version != last {
			continue
		}
		if m.Down == nil {
			return errors.Errorf("migration %d (%s) has no rollback", m.Version, m.Description)
		}
		return r.revert(ctx, m)
	}
	return errors.Errorf("applied migration %d is not in the known set", last)
}

// GetAppliedVersions returns the applied migration versions in ascending
// order.
func (r *MigrationRunner) GetAppliedVersions(ctx context.Context) ([]int64, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	var versions []int64
	if err := r.conn.SelectContext(ctx, &versions, "SELECT version FROM schema_migrations ORDER BY version"); err != nil {
		return nil, errors.Wrap(err, "reading applied migrations")
	}
	return versions, nil
}

func (r *MigrationRunner) ensureTable(ctx context.Context) error {
	_, err := r.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME NOT NULL,
			description TEXT
		)
	`)
	return errors.Wrap(err, "creating schema_migrations table")
}

func (r *MigrationRunner) apply(ctx context.Context, m Migration) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := m.Up(tx.Tx); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, applied_at, description) VALUES (?, ?, ?)",
			m.Version, time.Now(), m.Description)
		return errors.Wrap(err, "recording migration")
	})
}

func (r *MigrationRunner) revert(ctx context.Context, m Migration) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := m.Down(tx.Tx); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", m.Version)
		return errors.Wrap(err, "removing migration record")
	})
}

func (r *MigrationRunner) inTx(ctx context.Context, f func(*sqlx.Tx) error) error {
	tx, err := r.conn.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	if err := f(tx); err != nil {
		return err
	}
	return tx.Commit()
}
