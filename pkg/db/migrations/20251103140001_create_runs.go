package migrations

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/db"
)

// Migration20251103140001CreateRuns creates the runs table, one row per
// skill run with its token usage and artifact count.
func Migration20251103140001CreateRuns() db.Migration {
	return db.Migration{
		Version:     20251103140001,
		Description: "Create runs table",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS runs (
					id TEXT PRIMARY KEY,
					skill_id TEXT NOT NULL,
					version TEXT NOT NULL,
					model TEXT NOT NULL,
					prompt TEXT NOT NULL,
					message_id TEXT,
					stop_reason TEXT,
					input_tokens INTEGER NOT NULL DEFAULT 0,
					output_tokens INTEGER NOT NULL DEFAULT 0,
					artifacts INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL
				)
			`); err != nil {
				return errors.Wrap(err, "failed to create runs table")
			}

			if _, err := tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_runs_skill_id
				ON runs(skill_id, created_at)
			`); err != nil {
				return errors.Wrap(err, "failed to create skill_id index")
			}

			return nil
		},
		Down: func(tx *sql.Tx) error {
			_, err := tx.Exec("DROP TABLE IF EXISTS runs")
			return errors.Wrap(err, "failed to drop runs table")
		},
	}
}
