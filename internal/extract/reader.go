package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/bills-assistant/constants"
)

// DocumentReader opens documents with one underlying library or tool. Each
// extraction strategy is a DocumentReader.
type DocumentReader interface {
	Method() constants.Method
	Open(ctx context.Context, src Source) (Document, error)
}

// Document is an opened document. Page indexes are zero-based.
type Document interface {
	PageCount() int
	PageText(ctx context.Context, i int) (string, error)
	PageTables(ctx context.Context, i int) ([]Table, error)
	Close() error
}

// Extract applies r to src and normalizes the outcome. It never panics:
// every error, including a panic inside the reader, becomes the result's Failure.
func Extract(ctx context.Context, r DocumentReader, src Source) (res Result) {
	method := r.Method()
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res = failed(method, FailurePanic, fmt.Errorf("%v", p))
		}
		res.ProcessingTime = roundSeconds(time.Since(start))
	}()

	doc, err := r.Open(ctx, src)
	if err != nil {
		return failed(method, classify(err, FailureOpen), err)
	}
	defer func() { _ = doc.Close() }()

	var text strings.Builder
	tables := []Table{}
	for i := 0; i < doc.PageCount(); i++ {
		if err := ctx.Err(); err != nil {
			return failed(method, FailureBackend, err)
		}
		pageText, err := doc.PageText(ctx, i)
		if err != nil {
			return failed(method, classify(err, FailurePage), fmt.Errorf("page %d text: %w", i+1, err))
		}
		if strings.TrimSpace(pageText) != "" {
			text.WriteString(pageText)
			text.WriteString("\n")
		}
		pageTables, err := doc.PageTables(ctx, i)
		if err != nil {
			return failed(method, classify(err, FailurePage), fmt.Errorf("page %d tables: %w", i+1, err))
		}
		for _, t := range pageTables {
			if !t.Empty() {
				tables = append(tables, t)
			}
		}
	}
	return succeeded(method, text.String(), tables)
}

func classify(err error, fallback FailureKind) FailureKind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return FailureBackend
	}
	var fe *Failure
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return fallback
}
