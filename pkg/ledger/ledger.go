// Package ledger keeps the local history of skill publishes and runs in
// SQLite. Publish records carry the package content digest so an unchanged
// skill is not uploaded twice.
package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/db"
	"github.com/skillet-ai/skillet/pkg/db/migrations"
)

// Publish is one upload of a skill package.
type Publish struct {
	ID        string    `db:"id" json:"id"`
	SkillName string    `db:"skill_name" json:"skill_name"`
	SkillID   string    `db:"skill_id" json:"skill_id"`
	Version   string    `db:"version" json:"version"`
	Digest    string    `db:"digest" json:"digest"`
	Directory string    `db:"directory" json:"directory"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Run is one completed skill run.
type Run struct {
	ID                  string    `db:"id" json:"id"`
	SkillID             string    `db:"skill_id" json:"skill_id"`
	Version             string    `db:"version" json:"version"`
	Model               string    `db:"model" json:"model"`
	Prompt              string    `db:"prompt" json:"prompt"`
	MessageID           string    `db:"message_id" json:"message_id"`
	StopReason          string    `db:"stop_reason" json:"stop_reason"`
	InputTokens         int64     `db:"input_tokens" json:"input_tokens"`
	OutputTokens        int64     `db:"output_tokens" json:"output_tokens"`
	CacheCreationTokens int64     `db:"cache_creation_tokens" json:"cache_creation_tokens,omitempty"`
	CacheReadTokens     int64     `db:"cache_read_tokens" json:"cache_read_tokens,omitempty"`
	Artifacts           int       `db:"artifacts" json:"artifacts"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// Store records publishes and runs.
type Store struct {
	db *sqlx.DB
}

// Open opens the ledger at dbPath, creating the database and applying any
// pending migrations.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	sqlDB, err := db.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	runner := db.NewMigrationRunner(sqlDB)
	if err := runner.Run(ctx, migrations.All()); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "failed to run ledger migrations")
	}

	return &Store{db: sqlDB}, nil
}

// OpenDefault opens the ledger at the default database path.
func OpenDefault(ctx context.Context) (*Store, error) {
	path, err := db.DefaultDBPath()
	if err != nil {
		return nil, err
	}
	return Open(ctx, path)
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordPublish saves one publish. A missing ID or timestamp is filled in.
func (s *Store) RecordPublish(ctx context.Context, p Publish) (Publish, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO publishes (id, skill_name, skill_id, version, digest, directory, created_at)
		VALUES (:id, :skill_name, :skill_id, :version, :digest, :directory, :created_at)
	`, p)
	if err != nil {
		return Publish{}, errors.Wrap(err, "failed to record publish")
	}
	return p, nil
}

// LatestPublish returns the most recent publish of a skill name, or nil when
// the skill was never published.
func (s *Store) LatestPublish(ctx context.Context, skillName string) (*Publish, error) {
	var p Publish
	err := s.db.GetContext(ctx, &p, `
		SELECT id, skill_name, skill_id, version, digest, directory, created_at
		FROM publishes
		WHERE skill_name = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, skillName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to load latest publish")
	}
	return &p, nil
}

// RecentPublishes returns up to limit publishes, newest first.
func (s *Store) RecentPublishes(ctx context.Context, limit int) ([]Publish, error) {
	if limit <= 0 {
		limit = 20
	}

	var publishes []Publish
	err := s.db.SelectContext(ctx, &publishes, `
		SELECT id, skill_name, skill_id, version, digest, directory, created_at
		FROM publishes
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list publishes")
	}
	return publishes, nil
}

// RecordRun saves one run. A missing ID or timestamp is filled in.
func (s *Store) RecordRun(ctx context.Context, r Run) (Run, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO runs (
			id, skill_id, version, model, prompt, message_id, stop_reason,
			input_tokens, output_tokens, cache_creation_tokens, cache_read_tokens,
			artifacts, created_at
		) VALUES (
			:id, :skill_id, :version, :model, :prompt, :message_id, :stop_reason,
			:input_tokens, :output_tokens, :cache_creation_tokens, :cache_read_tokens,
			:artifacts, :created_at
		)
	`, r)
	if err != nil {
		return Run{}, errors.Wrap(err, "failed to record run")
	}
	return r, nil
}

// RecentRuns returns up to limit runs, newest first. An empty skillID
// matches every skill.
func (s *Store) RecentRuns(ctx context.Context, skillID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, skill_id, version, model, prompt, message_id, stop_reason,
			input_tokens, output_tokens, cache_creation_tokens, cache_read_tokens,
			artifacts, created_at
		FROM runs
	`
	args := []interface{}{}
	if skillID != "" {
		query += " WHERE skill_id = ?"
		args = append(args, skillID)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	var runs []Run
	if err := s.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list runs")
	}
	return runs, nil
}
