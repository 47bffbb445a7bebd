package ocr

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// PdfToText runs `pdftotext -layout` and returns one string per page.
// pdftotext separates pages with a form feed and ends the last page with one.
func (e *Engine) PdfToText(ctx context.Context, path string) ([]string, error) {
	out, err := e.run(ctx, "pdftotext", e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, err
	}
	pages := strings.Split(string(out), "\f")
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return pages, nil
}

// RenderPages rasterizes every page of path into PNG files under dir and
// returns them in page order.
func (e *Engine) RenderPages(ctx context.Context, path, dir string) ([]string, error) {
	prefix := filepath.Join(dir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	if _, err := e.run(ctx, "pdftoppm", e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix); err != nil {
		return nil, err
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...); the number is
	// zero-padded only for documents with 10+ pages, so sort numerically
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Slice(matches, func(i, j int) bool {
		return pageNumber(matches[i]) < pageNumber(matches[j])
	})
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images")
	}
	e.logger.Debug("ocr.render.ok", "path", path, "pages", len(matches), "dpi", e.cfg.DPI)
	return matches, nil
}

func pageNumber(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), ".png")
	i := strings.LastIndex(base, "-")
	n := 0
	for _, r := range base[i+1:] {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
