package migrations

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/db"
)

// Migration20260312103000AddCacheTokensToRuns adds prompt-cache token
// columns to the runs table.
func Migration20260312103000AddCacheTokensToRuns() db.Migration {
	return db.Migration{
		Version:     20260312103000,
		Description: "Add cache token columns to runs",
		Up: func(tx *sql.Tx) error {
			for _, column := range []string{"cache_creation_tokens", "cache_read_tokens"} {
				var count int
				err := tx.QueryRow(
					"SELECT COUNT(*) FROM pragma_table_info('runs') WHERE name = ?", column,
				).Scan(&count)
				if err != nil {
					return errors.Wrapf(err, "failed to check for %s column", column)
				}
				if count > 0 {
					continue
				}
				if _, err := tx.Exec(
					"ALTER TABLE runs ADD COLUMN " + column + " INTEGER NOT NULL DEFAULT 0",
				); err != nil {
					return errors.Wrapf(err, "failed to add %s column", column)
				}
			}
			return nil
		},
		Down: func(tx *sql.Tx) error {
			for _, column := range []string{"cache_creation_tokens", "cache_read_tokens"} {
				if _, err := tx.Exec("ALTER TABLE runs DROP COLUMN " + column); err != nil {
					return errors.Wrapf(err, "failed to drop %s column", column)
				}
			}
			return nil
		},
	}
}
