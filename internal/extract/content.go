package extract

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/bills-assistant/constants"
)

// ContentReader reads the embedded text layer straight from the page content
// streams. Scanned documents yield no text with this reader.
type ContentReader struct{}

func NewContentReader() *ContentReader { return &ContentReader{} }

func (r *ContentReader) Method() constants.Method { return constants.MethodEmbedded }

func (r *ContentReader) Open(_ context.Context, src Source) (doc Document, err error) {
	ra, size, closer, err := src.ReaderAt()
	if err != nil {
		return nil, err
	}
	// the parser reports malformed input by panicking
	defer func() {
		if p := recover(); p != nil {
			_ = closer.Close()
			doc, err = nil, fmt.Errorf("parse pdf: %v", p)
		}
	}()
	rd, err := pdf.NewReader(ra, size)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("parse pdf: %w", err)
	}
	return &contentDocument{reader: rd, closer: closer, pages: rd.NumPage()}, nil
}

type contentDocument struct {
	reader *pdf.Reader
	closer io.Closer
	pages  int
}

func (d *contentDocument) PageCount() int { return d.pages }

func (d *contentDocument) page(i int) (pdf.Page, error) {
	p := d.reader.Page(i + 1)
	if p.V.IsNull() {
		return p, fmt.Errorf("page %d not found", i+1)
	}
	return p, nil
}

func (d *contentDocument) PageText(_ context.Context, i int) (string, error) {
	p, err := d.page(i)
	if err != nil {
		return "", err
	}
	return p.GetPlainText(nil)
}

// PageTables groups positioned text runs into rows by baseline. Each run is a
// cell, so tables appear where consecutive rows have several runs.
func (d *contentDocument) PageTables(_ context.Context, i int) ([]Table, error) {
	p, err := d.page(i)
	if err != nil {
		return nil, err
	}
	rows, err := p.GetTextByRow()
	if err != nil {
		return nil, err
	}
	grid := make([][]string, 0, len(rows))
	for _, row := range rows {
		var cells []string
		for _, t := range row.Content {
			if s := strings.TrimSpace(t.S); s != "" {
				cells = append(cells, s)
			}
		}
		grid = append(grid, cells)
	}
	return tablesFromRows(grid), nil
}

func (d *contentDocument) Close() error { return d.closer.Close() }
