package main

import (
	"log/slog"

	"github.com/joseph-ayodele/bills-assistant/constants"
	"github.com/joseph-ayodele/bills-assistant/internal/extract"
	"github.com/joseph-ayodele/bills-assistant/internal/ocr"
)

func single(engine *ocr.Engine, m constants.Method, logger *slog.Logger) *extract.Comparator {
	var r extract.DocumentReader
	switch m {
	case constants.MethodLayout:
		r = extract.NewLayoutReader(engine)
	case constants.MethodOCR:
		r = extract.NewOCRReader(engine)
	default:
		r = extract.NewContentReader()
	}
	return extract.NewComparatorWithReaders(logger, r)
}
