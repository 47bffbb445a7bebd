package extract

import (
	"context"
	"os"

	"github.com/joseph-ayodele/bills-assistant/constants"
	"github.com/joseph-ayodele/bills-assistant/internal/ocr"
)

// OCRReader rasterizes every page and runs tesseract over the images. It is
// the only reader that works on scanned bills, and the slowest.
type OCRReader struct {
	engine *ocr.Engine
}

func NewOCRReader(engine *ocr.Engine) *OCRReader {
	return &OCRReader{engine: engine}
}

func (r *OCRReader) Method() constants.Method { return constants.MethodOCR }

func (r *OCRReader) Open(ctx context.Context, src Source) (Document, error) {
	path, cleanup, err := src.Materialize("")
	if err != nil {
		return nil, err
	}
	dir, err := os.MkdirTemp("", "bill-ocr-*")
	if err != nil {
		cleanup()
		return nil, err
	}
	doc := &ocrDocument{engine: r.engine, dir: dir, cleanup: cleanup}
	images, err := r.engine.RenderPages(ctx, path, dir)
	if err != nil {
		_ = doc.Close()
		return nil, &Failure{Kind: FailureBackend, Message: err.Error()}
	}
	doc.images = images
	return doc, nil
}

type ocrDocument struct {
	engine  *ocr.Engine
	dir     string
	images  []string
	cleanup func()
}

func (d *ocrDocument) PageCount() int { return len(d.images) }

func (d *ocrDocument) PageText(ctx context.Context, i int) (string, error) {
	return d.engine.Text(ctx, d.images[i])
}

// PageTables lays the recognized words out in line bands. A single band is
// not a table.
func (d *ocrDocument) PageTables(ctx context.Context, i int) ([]Table, error) {
	words, err := d.engine.Words(ctx, d.images[i])
	if err != nil {
		return nil, err
	}
	lines := ocr.GroupLines(words)
	if len(lines) <= 1 {
		return nil, nil
	}
	return []Table{NewTable(lines)}, nil
}

func (d *ocrDocument) Close() error {
	d.cleanup()
	return os.RemoveAll(d.dir)
}
