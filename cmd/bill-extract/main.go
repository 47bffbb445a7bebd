package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joseph-ayodele/bills-assistant/constants"
	"github.com/joseph-ayodele/bills-assistant/internal/app"
	"github.com/joseph-ayodele/bills-assistant/internal/common"
	"github.com/joseph-ayodele/bills-assistant/internal/extract"
)

func main() {
	var (
		useOCR = flag.Bool("ocr", false, "also run the tesseract OCR strategy")
		tables = flag.Bool("tables", true, "include detected tables in the output")
		method = flag.String("method", "", "run a single strategy: layout, content or ocr")
	)
	flag.Parse()

	cfg := common.LoadConfig()
	logger := app.NewLogger(os.Stderr, slog.LevelInfo)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "bill-extract [-ocr] [-tables=false] [-method name] <bill.pdf>")
		os.Exit(2)
	}
	path := flag.Arg(0)
	if !constants.IsSupportedExt(filepath.Ext(path)) {
		logger.Error("unsupported file type", "path", path)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	comparator := app.Comparator(cfg.OCR, cfg.OCR.Enabled || *useOCR, logger)
	if *method != "" {
		m, ok := constants.ParseMethod(*method)
		if !ok {
			logger.Error("unknown method", "method", *method)
			os.Exit(2)
		}
		comparator = single(app.Engine(cfg.OCR, logger), m, logger)
	}

	results := comparator.Compare(ctx, extract.FromPath(path))
	if !*tables {
		for i := range results {
			results[i].Tables = nil
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		logger.Error("encode results", "error", err)
		os.Exit(1)
	}

	for _, r := range results {
		if r.Failed() {
			os.Exit(1)
		}
	}
}
