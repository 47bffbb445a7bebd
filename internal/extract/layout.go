package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/bills-assistant/constants"
	"github.com/joseph-ayodele/bills-assistant/internal/ocr"
)

var columnGap = regexp.MustCompile(`\s{2,}`)

// LayoutReader extracts text with `pdftotext -layout`, which keeps the visual
// column alignment of the page. Tables are recovered from that alignment.
type LayoutReader struct {
	engine *ocr.Engine
}

func NewLayoutReader(engine *ocr.Engine) *LayoutReader {
	return &LayoutReader{engine: engine}
}

func (r *LayoutReader) Method() constants.Method { return constants.MethodLayout }

func (r *LayoutReader) Open(ctx context.Context, src Source) (Document, error) {
	path, cleanup, err := src.Materialize("")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	pages, err := r.engine.PdfToText(ctx, path)
	if err != nil {
		return nil, &Failure{Kind: FailureBackend, Message: err.Error()}
	}
	return &layoutDocument{pages: pages}, nil
}

type layoutDocument struct {
	pages []string
}

func (d *layoutDocument) PageCount() int { return len(d.pages) }

func (d *layoutDocument) PageText(_ context.Context, i int) (string, error) {
	return d.pages[i], nil
}

func (d *layoutDocument) PageTables(_ context.Context, i int) ([]Table, error) {
	return tablesFromRows(splitColumns(d.pages[i])), nil
}

func (d *layoutDocument) Close() error { return nil }

// splitColumns turns each line into cells separated by two or more spaces.
func splitColumns(page string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(page, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			rows = append(rows, nil)
			continue
		}
		rows = append(rows, columnGap.Split(line, -1))
	}
	return rows
}
