package sqlite_test

import (
	"context"
	"testing"

	looptomd "github.com/reggroux/loop-to-markdown"
	"github.com/reggroux/loop-to-markdown/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlite.DB {
	t.Helper()

	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunService_BeginRun(t *testing.T) {
	t.Parallel()

	svc := sqlite.NewRunService(openTestDB(t))

	run, err := svc.BeginRun(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.False(t, run.StartedAt.IsZero())
	assert.Nil(t, run.FinishedAt)
}

func TestRunService_FinishRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := sqlite.NewRunService(openTestDB(t))

	run, err := svc.BeginRun(ctx)
	require.NoError(t, err)

	run.Exported = 5
	run.Skipped = 2
	run.Failed = 1
	require.NoError(t, svc.FinishRun(ctx, run))
	require.NotNil(t, run.FinishedAt)

	runs, err := svc.FindRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 5, runs[0].Exported)
	assert.Equal(t, 2, runs[0].Skipped)
	assert.Equal(t, 1, runs[0].Failed)
	assert.NotNil(t, runs[0].FinishedAt)
}

func TestRunService_FinishRun_NotFound(t *testing.T) {
	t.Parallel()

	svc := sqlite.NewRunService(openTestDB(t))

	err := svc.FinishRun(context.Background(), &looptomd.Run{ID: "missing"})
	require.Error(t, err)
	assert.Equal(t, looptomd.ENOTFOUND, looptomd.ErrorCode(err))
}

func TestRunService_RecordPage_Validation(t *testing.T) {
	t.Parallel()

	svc := sqlite.NewRunService(openTestDB(t))

	err := svc.RecordPage(context.Background(), &looptomd.RunPage{
		WorkspaceID: "ws",
		PageID:      "p",
	})
	require.Error(t, err)
	assert.Equal(t, looptomd.EINVALID, looptomd.ErrorCode(err))
}

func TestRunService_LastContentHash(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := sqlite.NewRunService(openTestDB(t))

	first, err := svc.BeginRun(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.RecordPage(ctx, &looptomd.RunPage{
		RunID:       first.ID,
		WorkspaceID: "team-alpha",
		PageID:      "welcome",
		ContentHash: "aaaa",
	}))

	second, err := svc.BeginRun(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.RecordPage(ctx, &looptomd.RunPage{
		RunID:       second.ID,
		WorkspaceID: "team-alpha",
		PageID:      "welcome",
		ContentHash: "bbbb",
	}))

	// The most recent recording wins
	hash, err := svc.LastContentHash(ctx, "team-alpha", "welcome")
	require.NoError(t, err)
	assert.Equal(t, "bbbb", hash)
}

func TestRunService_LastContentHash_NeverExported(t *testing.T) {
	t.Parallel()

	svc := sqlite.NewRunService(openTestDB(t))

	_, err := svc.LastContentHash(context.Background(), "team-alpha", "unknown")
	require.Error(t, err)
	assert.Equal(t, looptomd.ENOTFOUND, looptomd.ErrorCode(err))
}

func TestRunService_RecordPage_UpsertsWithinRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := sqlite.NewRunService(openTestDB(t))

	run, err := svc.BeginRun(ctx)
	require.NoError(t, err)

	rp := &looptomd.RunPage{
		RunID:       run.ID,
		WorkspaceID: "ws",
		PageID:      "p",
		ContentHash: "old",
	}
	require.NoError(t, svc.RecordPage(ctx, rp))

	rp.ContentHash = "new"
	require.NoError(t, svc.RecordPage(ctx, rp))

	hash, err := svc.LastContentHash(ctx, "ws", "p")
	require.NoError(t, err)
	assert.Equal(t, "new", hash)
}

func TestRunService_FindRuns_Limit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := sqlite.NewRunService(openTestDB(t))

	for range 3 {
		_, err := svc.BeginRun(ctx)
		require.NoError(t, err)
	}

	runs, err := svc.FindRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	all, err := svc.FindRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
