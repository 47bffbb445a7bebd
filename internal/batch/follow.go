package batch

import (
	"context"
	"time"
)

// Updater receives the report after each document handled in watch mode,
// together with that document's fresh rows.
type Updater func(ctx context.Context, rep Report, doc Document, rows []Row)

// Follow compares dir once and then keeps the report current as bills are
// added or rewritten, until ctx is done. The watcher is started before the
// initial listing, so a bill dropped in during the initial run is still
// compared. A document seen again replaces its rows, so the report keeps one
// row per (document, strategy).
//
// initial receives the first report before any update is applied; an error
// from it stops Follow. The final report is returned once the queue drains.
func (a *Analyzer) Follow(ctx context.Context, dir string, opts Options, debounce time.Duration, initial func(Report) error, update Updater) (Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	docs, errs, err := Watch(ctx, WatchConfig{ListOptions: opts.ListOptions, Dir: dir, Debounce: debounce}, a.logger)
	if err != nil {
		return Report{}, err
	}

	var rep Report
	var initErr error
	ready := make(chan struct{})
	docOpts := opts
	docOpts.Progress = nil

	// rep belongs to the single queue worker once ready is closed.
	queue := NewQueue(func(jobCtx context.Context, job Job) {
		<-ready
		if initErr != nil || ctx.Err() != nil {
			return
		}
		rows := a.AnalyzeDocument(jobCtx, job.Document, docOpts)
		replaced := rep.ReplaceDocument(job.Document.ID, rows)
		rep.FinishedAt = time.Now().UTC()
		a.logger.Info("batch.follow.document",
			"run_id", rep.RunID.String(),
			"document", job.Document.ID,
			"replaced", replaced,
			"rows", len(rep.Rows),
		)
		if update != nil {
			update(jobCtx, rep, job.Document, rows)
		}
	}, a.logger)

	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for {
			select {
			case doc, ok := <-docs:
				if !ok {
					return
				}
				if err := queue.Enqueue(ctx, doc); err != nil {
					return
				}
			case err, ok := <-errs:
				if !ok {
					return
				}
				a.logger.Warn("batch.follow.watch_error", "error", err)
			}
		}
	}()

	rep, initErr = a.AnalyzeDir(ctx, dir, opts)
	if initErr == nil && initial != nil {
		initErr = initial(rep)
	}
	close(ready)
	if initErr != nil {
		cancel()
	}

	<-forwarded
	_ = queue.Shutdown(context.Background())
	return rep, initErr
}
