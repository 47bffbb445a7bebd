package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/bills-assistant/constants"
	"github.com/joseph-ayodele/bills-assistant/internal/batch"
	"github.com/joseph-ayodele/bills-assistant/internal/common"
)

const (
	runsTable = "comparison_runs"
	rowsTable = "comparison_rows"
)

// Timestamps are stored as fixed-width UTC text, which sorts chronologically
// and reads back the same way from both dialects.
const timeLayout = "2006-01-02T15:04:05.000000Z"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS comparison_runs (
		id          TEXT PRIMARY KEY,
		dir         TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		finished_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS comparison_rows (
		run_id          TEXT NOT NULL REFERENCES comparison_runs(id),
		position        INTEGER NOT NULL,
		document_id     TEXT NOT NULL,
		document_hash   TEXT NOT NULL DEFAULT '',
		method          TEXT NOT NULL,
		table_count     INTEGER NOT NULL,
		processing_time DOUBLE PRECISION NOT NULL,
		error           TEXT NOT NULL DEFAULT '',
		token_usage     INTEGER NOT NULL,
		summary_error   TEXT NOT NULL DEFAULT '',
		status          TEXT NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS comparison_rows_document ON comparison_rows (document_id)`,
}

// Run is a stored batch run without its rows.
type Run struct {
	ID         uuid.UUID
	Dir        string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Migrate creates the tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if err := s.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			s.logger.Error("store.migrate.error", "error", err)
			return fmt.Errorf("%w: migrate: %w", common.ErrDatabase, err)
		}
	}
	s.logger.Info("store.migrate.ok", "dialect", s.dialect)
	return nil
}

// SaveReport stores the run and all of its rows in one transaction.
func (s *Store) SaveReport(ctx context.Context, rep batch.Report) (err error) {
	start := time.Now()
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			s.logger.Error("store.save_report.error", "run_id", rep.RunID.String(), "error", err)
		}
	}()

	q, args := entsql.Dialect(s.dialect).
		Insert(runsTable).
		Columns("id", "dir", "started_at", "finished_at").
		Values(rep.RunID.String(), rep.Dir, formatTime(rep.StartedAt), formatTime(rep.FinishedAt)).
		Query()
	if err = tx.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("%w: insert run: %w", common.ErrDatabase, err)
	}
	if len(rep.Rows) > 0 {
		q, args = s.insertRows(rep.RunID, 0, rep.Rows)
		if err = tx.Exec(ctx, q, args, nil); err != nil {
			return fmt.Errorf("%w: insert rows: %w", common.ErrDatabase, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", common.ErrDatabase, err)
	}

	s.logger.Info("store.save_report.ok",
		"run_id", rep.RunID.String(),
		"rows", len(rep.Rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// SyncReport brings a stored run in line with rep: the finish time is updated
// and the run's rows are replaced by rep.Rows in one transaction. Watch mode
// calls it after every document so a re-analyzed bill keeps one row per
// strategy.
func (s *Store) SyncReport(ctx context.Context, rep batch.Report) (err error) {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			s.logger.Error("store.sync_report.error", "run_id", rep.RunID.String(), "error", err)
		}
	}()

	b := entsql.Dialect(s.dialect)
	q, args := b.Update(runsTable).
		Set("finished_at", formatTime(rep.FinishedAt)).
		Where(entsql.EQ("id", rep.RunID.String())).
		Query()
	var res entsql.Result
	if err = tx.Exec(ctx, q, args, &res); err != nil {
		return fmt.Errorf("%w: update run: %w", common.ErrDatabase, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", rep.RunID, common.ErrNotFound)
	}

	q, args = b.Delete(rowsTable).Where(entsql.EQ("run_id", rep.RunID.String())).Query()
	if err = tx.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("%w: delete rows: %w", common.ErrDatabase, err)
	}
	if len(rep.Rows) > 0 {
		q, args = s.insertRows(rep.RunID, 0, rep.Rows)
		if err = tx.Exec(ctx, q, args, nil); err != nil {
			return fmt.Errorf("%w: insert rows: %w", common.ErrDatabase, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", common.ErrDatabase, err)
	}
	s.logger.Debug("store.sync_report.ok", "run_id", rep.RunID.String(), "rows", len(rep.Rows))
	return nil
}

func (s *Store) insertRows(runID uuid.UUID, offset int, rows []batch.Row) (string, []any) {
	ins := entsql.Dialect(s.dialect).
		Insert(rowsTable).
		Columns("run_id", "position", "document_id", "document_hash", "method", "table_count",
			"processing_time", "error", "token_usage", "summary_error", "status")
	for i, r := range rows {
		ins.Values(runID.String(), offset+i, r.DocumentID, r.DocumentHash, string(r.Method), r.TableCount,
			r.ProcessingTime, r.Error, r.TokenUsage, r.SummaryError, string(r.Status))
	}
	return ins.Query()
}

// ListRows returns the rows of one run in report order.
func (s *Store) ListRows(ctx context.Context, runID uuid.UUID) ([]batch.Row, error) {
	q, args := entsql.Dialect(s.dialect).
		Select("document_id", "document_hash", "method", "table_count", "processing_time",
			"error", "token_usage", "summary_error", "status").
		From(entsql.Table(rowsTable)).
		Where(entsql.EQ("run_id", runID.String())).
		OrderBy("position").
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: list rows: %w", common.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	out := []batch.Row{}
	for rows.Next() {
		var r batch.Row
		var method, status string
		if err := rows.Scan(&r.DocumentID, &r.DocumentHash, &method, &r.TableCount, &r.ProcessingTime,
			&r.Error, &r.TokenUsage, &r.SummaryError, &status); err != nil {
			return nil, fmt.Errorf("%w: scan row: %w", common.ErrDatabase, err)
		}
		r.Method = constants.Method(method)
		r.Status = constants.RowStatus(status)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	return out, nil
}

// GetRun loads a run header; common.ErrNotFound when absent.
func (s *Store) GetRun(ctx context.Context, runID uuid.UUID) (Run, error) {
	runs, err := s.queryRuns(ctx, entsql.Dialect(s.dialect).
		Select("id", "dir", "started_at", "finished_at").
		From(entsql.Table(runsTable)).
		Where(entsql.EQ("id", runID.String())))
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, fmt.Errorf("run %s: %w", runID, common.ErrNotFound)
	}
	return runs[0], nil
}

// ListRuns returns the most recent runs first; limit <= 0 means all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	sel := entsql.Dialect(s.dialect).
		Select("id", "dir", "started_at", "finished_at").
		From(entsql.Table(runsTable)).
		OrderExprFunc(func(b *entsql.Builder) { b.Ident("started_at").WriteString(" DESC") })
	if limit > 0 {
		sel.Limit(limit)
	}
	return s.queryRuns(ctx, sel)
}

func (s *Store) queryRuns(ctx context.Context, sel *entsql.Selector) ([]Run, error) {
	q, args := sel.Query()
	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: list runs: %w", common.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var id, dir, started, finished string
		if err := rows.Scan(&id, &dir, &started, &finished); err != nil {
			return nil, fmt.Errorf("%w: scan run: %w", common.ErrDatabase, err)
		}
		run := Run{Dir: dir}
		var err error
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: bad run id %q: %w", common.ErrDatabase, id, err)
		}
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished)
		out = append(out, run)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
