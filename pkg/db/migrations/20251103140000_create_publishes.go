package migrations

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/db"
)

// Migration20251103140000CreatePublishes creates the publishes table, the
// record of every skill upload with its content digest.
func Migration20251103140000CreatePublishes() db.Migration {
	return db.Migration{
		Version:     20251103140000,
		Description: "Create publishes table",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS publishes (
					id TEXT PRIMARY KEY,
					skill_name TEXT NOT NULL,
					skill_id TEXT NOT NULL,
					version TEXT NOT NULL,
					digest TEXT NOT NULL,
					directory TEXT NOT NULL,
					created_at DATETIME NOT NULL
				)
			`); err != nil {
				return errors.Wrap(err, "failed to create publishes table")
			}

			if _, err := tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_publishes_skill_name
				ON publishes(skill_name, created_at)
			`); err != nil {
				return errors.Wrap(err, "failed to create skill_name index")
			}

			return nil
		},
		Down: func(tx *sql.Tx) error {
			_, err := tx.Exec("DROP TABLE IF EXISTS publishes")
			return errors.Wrap(err, "failed to drop publishes table")
		},
	}
}
