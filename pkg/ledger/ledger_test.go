package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "skillet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenAppliesMigrations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "skillet.db")

	store, err := Open(context.Background(), dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not re-apply anything.
	store, err = Open(context.Background(), dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestRecordPublishAndLatest(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	first, err := store.RecordPublish(ctx, Publish{
		SkillName: "financial-ratios",
		SkillID:   "skill_abc",
		Version:   "1",
		Digest:    "digest-one",
		Directory: "/work/skills/financial-ratios",
		CreatedAt: base,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	second, err := store.RecordPublish(ctx, Publish{
		SkillName: "financial-ratios",
		SkillID:   "skill_abc",
		Version:   "2",
		Digest:    "digest-two",
		Directory: "/work/skills/financial-ratios",
		CreatedAt: base.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	latest, err := store.LatestPublish(ctx, "financial-ratios")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "2", latest.Version)
	assert.Equal(t, "digest-two", latest.Digest)
	assert.Equal(t, "skill_abc", latest.SkillID)
}

func TestLatestPublishUnknownSkill(t *testing.T) {
	store := openTestStore(t)

	latest, err := store.LatestPublish(context.Background(), "never-published")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestRecentPublishes(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	for i, name := range []string{"one", "two", "three"} {
		_, err := store.RecordPublish(ctx, Publish{
			SkillName: name,
			SkillID:   "skill_" + name,
			Version:   "1",
			Digest:    "digest-" + name,
			Directory: "/skills/" + name,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	publishes, err := store.RecentPublishes(ctx, 2)
	require.NoError(t, err)
	require.Len(t, publishes, 2)
	assert.Equal(t, "three", publishes[0].SkillName)
	assert.Equal(t, "two", publishes[1].SkillName)
}

func TestRecordRunAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	run, err := store.RecordRun(ctx, Run{
		SkillID:      "skill_abc",
		Version:      "latest",
		Model:        "claude-sonnet-4-5",
		Prompt:       "Build a budget spreadsheet",
		MessageID:    "msg_01",
		StopReason:   "end_turn",
		InputTokens:  2100,
		OutputTokens: 350,
		Artifacts:    2,
		CreatedAt:    base,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)

	_, err = store.RecordRun(ctx, Run{
		SkillID:      "skill_other",
		Version:      "latest",
		Model:        "claude-sonnet-4-5",
		Prompt:       "Make a deck",
		MessageID:    "msg_02",
		StopReason:   "end_turn",
		InputTokens:  900,
		OutputTokens: 120,
		CreatedAt:    base.Add(time.Minute),
	})
	require.NoError(t, err)

	all, err := store.RecentRuns(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "msg_02", all[0].MessageID)
	assert.Equal(t, "msg_01", all[1].MessageID)

	filtered, err := store.RecentRuns(ctx, "skill_abc", 10)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Build a budget spreadsheet", filtered[0].Prompt)
	assert.Equal(t, int64(2100), filtered[0].InputTokens)
	assert.Equal(t, int64(350), filtered[0].OutputTokens)
	assert.Equal(t, 2, filtered[0].Artifacts)
}

func TestRecentRunsLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := store.RecordRun(ctx, Run{
			SkillID:   "skill_abc",
			Version:   "latest",
			Model:     "claude-sonnet-4-5",
			Prompt:    "prompt",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	runs, err := store.RecentRuns(ctx, "", 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}
