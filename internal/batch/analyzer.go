package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/bills-assistant/constants"
	"github.com/joseph-ayodele/bills-assistant/internal/common"
	"github.com/joseph-ayodele/bills-assistant/internal/extract"
	"github.com/joseph-ayodele/bills-assistant/internal/llm"
)

// Comparer runs every enabled strategy on one document.
type Comparer interface {
	Compare(ctx context.Context, src extract.Source) []extract.Result
}

// Options for one batch run.
type Options struct {
	ListOptions

	// Summarizer supplies the token count for each result with text. Nil
	// records zero tokens for every row.
	Summarizer llm.Summarizer

	// Progress receives (i+1)/N after document i.
	Progress func(fraction float64)

	// Hash records each document's SHA-256 in its rows.
	Hash bool
}

// Analyzer compares extraction strategies over a directory of bills.
type Analyzer struct {
	comparer Comparer
	logger   *slog.Logger
}

func NewAnalyzer(comparer Comparer, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{comparer: comparer, logger: logger}
}

// AnalyzeDir runs the comparison over every document in dir. It fails only
// when dir cannot be listed; every per-document problem ends up in a row.
func (a *Analyzer) AnalyzeDir(ctx context.Context, dir string, opts Options) (Report, error) {
	report := Report{RunID: uuid.New(), Dir: dir, StartedAt: time.Now().UTC(), Rows: []Row{}}
	ctx = common.WithRunID(ctx, report.RunID.String())
	log := a.logger.With("run_id", report.RunID.String())

	docs, err := ListDocuments(dir, opts.ListOptions)
	if err != nil {
		log.Error("batch.enumerate.error", "dir", dir, "error", err)
		return report, common.NewAppError("ENUMERATION_FAILED", "cannot list "+dir, fmt.Errorf("%w: %w", common.ErrEnumeration, err))
	}
	log.Info("batch.start", "dir", dir, "documents", len(docs), "recursive", opts.Recursive)

	for i, doc := range docs {
		report.Rows = append(report.Rows, a.AnalyzeDocument(ctx, doc, opts)...)
		if opts.Progress != nil {
			opts.Progress(float64(i+1) / float64(len(docs)))
		}
	}

	report.FinishedAt = time.Now().UTC()
	log.Info("batch.done",
		"documents", len(docs),
		"rows", len(report.Rows),
		"tokens", report.TotalTokens(),
		"elapsed_ms", report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
	)
	return report, nil
}

// AnalyzeDocument compares the strategies on one document and returns its
// rows in strategy order.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, doc Document, opts Options) []Row {
	start := time.Now()
	ctx = common.WithDocumentID(ctx, doc.ID)
	log := common.LoggerFrom(ctx, a.logger)

	var hash string
	if opts.Hash {
		h, err := HashFile(doc.Path)
		if err != nil {
			log.Warn("batch.document.hash_error", "error", err)
		}
		hash = h
	}

	results := a.comparer.Compare(ctx, extract.FromPath(doc.Path))
	rows := make([]Row, 0, len(results))
	for _, res := range results {
		row := Row{
			DocumentID:     doc.ID,
			DocumentHash:   hash,
			Method:         res.Method,
			TableCount:     res.TableCount,
			ProcessingTime: res.ProcessingTime,
			Error:          res.ErrorMessage(),
			Status:         constants.RowStatusOK,
		}
		if res.Failed() {
			row.Status = constants.RowStatusStrategyFailed
		}
		if res.Text != "" && opts.Summarizer != nil {
			_, tokens, err := opts.Summarizer.Summarize(ctx, res.Text, "")
			if err != nil {
				log.Warn("llm.summary.error", "method", res.Method, "error", err)
				row.SummaryError = err.Error()
				row.Status = constants.RowStatusSummaryFailed
				tokens = 0
			}
			row.TokenUsage = tokens
		}
		rows = append(rows, row)
	}

	log.Info("batch.document.done",
		"strategies", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rows
}
