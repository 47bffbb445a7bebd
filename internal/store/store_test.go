package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bills-assistant/constants"
	"github.com/joseph-ayodele/bills-assistant/internal/batch"
	"github.com/joseph-ayodele/bills-assistant/internal/common"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(ctx))
	return s
}

func sampleReport() batch.Report {
	started := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	return batch.Report{
		RunID:      uuid.New(),
		Dir:        "/facturi",
		StartedAt:  started,
		FinishedAt: started.Add(4 * time.Second),
		Rows: []batch.Row{
			{DocumentID: "a.pdf", DocumentHash: "ab12", Method: constants.MethodLayout, TableCount: 2, ProcessingTime: 0.41, TokenUsage: 812, Status: constants.RowStatusOK},
			{DocumentID: "a.pdf", DocumentHash: "ab12", Method: constants.MethodEmbedded, ProcessingTime: 0.02, Error: "parse pdf: not a PDF file", Status: constants.RowStatusStrategyFailed},
		},
	}
}

func TestSaveReportAndListRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rep := sampleReport()

	require.NoError(t, s.SaveReport(ctx, rep))

	rows, err := s.ListRows(ctx, rep.RunID)
	require.NoError(t, err)
	assert.Equal(t, rep.Rows, rows)

	run, err := s.GetRun(ctx, rep.RunID)
	require.NoError(t, err)
	assert.Equal(t, rep.Dir, run.Dir)
	assert.True(t, rep.StartedAt.Equal(run.StartedAt))
	assert.True(t, rep.FinishedAt.Equal(run.FinishedAt))
}

func TestSyncReport_ReplacesRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rep := sampleReport()
	require.NoError(t, s.SaveReport(ctx, rep))

	rep.ReplaceDocument("b.pdf", []batch.Row{{DocumentID: "b.pdf", Method: constants.MethodLayout, TableCount: 1, Status: constants.RowStatusOK}})
	rep.ReplaceDocument("a.pdf", []batch.Row{
		{DocumentID: "a.pdf", DocumentHash: "cd34", Method: constants.MethodLayout, TableCount: 3, Status: constants.RowStatusOK},
		{DocumentID: "a.pdf", DocumentHash: "cd34", Method: constants.MethodEmbedded, TableCount: 1, Status: constants.RowStatusOK},
	})
	rep.FinishedAt = rep.FinishedAt.Add(time.Minute)
	require.NoError(t, s.SyncReport(ctx, rep))
	require.NoError(t, s.SyncReport(ctx, rep))

	rows, err := s.ListRows(ctx, rep.RunID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, rep.Rows, rows)
	assert.Equal(t, "cd34", rows[0].DocumentHash)
	assert.Equal(t, "b.pdf", rows[2].DocumentID)

	run, err := s.GetRun(ctx, rep.RunID)
	require.NoError(t, err)
	assert.True(t, rep.FinishedAt.Equal(run.FinishedAt))
}

func TestSyncReport_UnknownRun(t *testing.T) {
	s := openTestStore(t)
	err := s.SyncReport(context.Background(), sampleReport())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveReport_DuplicateRunRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rep := sampleReport()
	require.NoError(t, s.SaveReport(ctx, rep))

	assert.ErrorIs(t, s.SaveReport(ctx, rep), common.ErrDatabase)
	rows, err := s.ListRows(ctx, rep.RunID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	older := sampleReport()
	newer := sampleReport()
	newer.StartedAt = older.StartedAt.Add(time.Hour)
	newer.Rows = nil
	require.NoError(t, s.SaveReport(ctx, older))
	require.NoError(t, s.SaveReport(ctx, newer))

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.RunID, runs[0].ID)

	runs, err = s.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestGetRun_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListRows_UnknownRun(t *testing.T) {
	s := openTestStore(t)
	rows, err := s.ListRows(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPing(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Ping(context.Background(), time.Second))
}

func TestOpen_Selection(t *testing.T) {
	s, err := Open(context.Background(), Config{}, false, nil)
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = Open(context.Background(), Config{}, true, nil)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	assert.Equal(t, "sqlite3", s.Dialect())
}

func TestOpenPostgres_BadDSN(t *testing.T) {
	_, err := OpenPostgres(context.Background(), Config{DSN: "postgres://%zz"}, nil)
	assert.ErrorIs(t, err, common.ErrDatabase)
}
