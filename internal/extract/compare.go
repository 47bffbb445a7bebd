package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/bills-assistant/constants"
	"github.com/joseph-ayodele/bills-assistant/internal/ocr"
)

// Options selects the strategies a Comparator runs.
type Options struct {
	EnableOCR bool
}

// Comparator runs every enabled strategy against one document, in a fixed order.
// It holds no per-document state and can be reused.
type Comparator struct {
	readers []DocumentReader
	logger  *slog.Logger
}

// NewComparator wires the layout and embedded-text readers, plus OCR when enabled.
func NewComparator(engine *ocr.Engine, opts Options, logger *slog.Logger) *Comparator {
	readers := []DocumentReader{NewLayoutReader(engine), NewContentReader()}
	if opts.EnableOCR {
		readers = append(readers, NewOCRReader(engine))
	}
	return NewComparatorWithReaders(logger, readers...)
}

// NewComparatorWithReaders uses the given readers in the given order.
func NewComparatorWithReaders(logger *slog.Logger, readers ...DocumentReader) *Comparator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Comparator{readers: readers, logger: logger}
}

// Methods lists the strategies in run order.
func (c *Comparator) Methods() []constants.Method {
	out := make([]constants.Method, 0, len(c.readers))
	for _, r := range c.readers {
		out = append(out, r.Method())
	}
	return out
}

// Compare returns one result per strategy. A failing strategy never affects
// the others.
func (c *Comparator) Compare(ctx context.Context, src Source) []Result {
	results := make([]Result, 0, len(c.readers))
	for _, r := range c.readers {
		start := time.Now()
		res := Extract(ctx, r, src)
		if res.Failed() {
			c.logger.Warn("extract.strategy.failed",
				"document", src.ID(),
				"method", res.Method,
				"kind", res.Failure.Kind,
				"error", res.Failure.Message,
				"elapsed_ms", time.Since(start).Milliseconds())
		} else {
			c.logger.Info("extract.strategy.ok",
				"document", src.ID(),
				"method", res.Method,
				"chars", len(res.Text),
				"tables", res.TableCount,
				"elapsed_ms", time.Since(start).Milliseconds())
		}
		results = append(results, res)
	}
	return results
}

// Primary picks the text a reader of the bill should work with: the first
// successful strategy with text, else the first result. The full set of
// results is returned alongside.
func (c *Comparator) Primary(ctx context.Context, src Source) (string, []Result) {
	results := c.Compare(ctx, src)
	for _, r := range results {
		if !r.Failed() && r.Text != "" {
			return r.Text, results
		}
	}
	if len(results) > 0 {
		return results[0].Text, results
	}
	return "", results
}
