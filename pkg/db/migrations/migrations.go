// Package migrations contains all database migrations for skillet.
// Migrations use Rails-style timestamp versioning (YYYYMMDDHHmmss).
package migrations

import (
	"github.com/skillet-ai/skillet/pkg/db"
)

// All returns all registered migrations in the correct order.
// New migrations should be added to this list.
func All() []db.Migration {
	return []db.Migration{
		Migration20251103140000CreatePublishes(),
		Migration20251103140001CreateRuns(),
		Migration20260312103000AddCacheTokensToRuns(),
	}
}
