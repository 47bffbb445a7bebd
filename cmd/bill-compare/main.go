package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joseph-ayodele/bills-assistant/constants"
	"github.com/joseph-ayodele/bills-assistant/internal/app"
	"github.com/joseph-ayodele/bills-assistant/internal/batch"
	"github.com/joseph-ayodele/bills-assistant/internal/common"
	"github.com/joseph-ayodele/bills-assistant/internal/report"
	"github.com/joseph-ayodele/bills-assistant/internal/store"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir        = flag.String("dir", "", "directory of PDF bills to compare (required)")
		out        = flag.String("out", "", "output XLSX file path (optional, defaults to <dir>/extraction_comparison.xlsx)")
		useOCR     = flag.Bool("ocr", false, "also run the tesseract OCR strategy")
		configPath = flag.String("config", "", "YAML or JSON run config; explicit flags win")
		summarize  = flag.Bool("summarize", false, "summarize every extracted text with the LLM to record token usage")
		inmem      = flag.Bool("inmem", false, "store the run in an in-memory SQLite database")
		recursive  = flag.Bool("recursive", false, "descend into subdirectories")
		hash       = flag.Bool("hash", false, "record each document's SHA-256")
		watch      = flag.Bool("watch", false, "after the initial run, keep comparing new bills until interrupted")
	)
	flag.Parse()

	cfg := common.LoadConfig()
	logger := app.NewLogger(os.Stdout, slog.LevelInfo)

	settings := batch.Settings{
		Exclude: cfg.Batch.Exclude,
		OCR:     cfg.OCR.Enabled,
	}
	if *configPath != "" {
		fc, err := batch.LoadFileConfig(*configPath)
		if err != nil {
			printError("Error: reading --config: %v\n", err)
			os.Exit(1)
		}
		fc.Apply(&settings)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dir":
			settings.Dir = *dir
		case "out":
			settings.Output = *out
		case "ocr":
			settings.OCR = *useOCR
		case "summarize":
			settings.Summarize = *summarize
		case "recursive":
			settings.Recursive = *recursive
		case "hash":
			settings.Hash = *hash
		}
	})

	if settings.Dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if settings.Output == "" {
		settings.Output = filepath.Join(settings.Dir, "extraction_comparison.xlsx")
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st, err := app.Store(ctx, cfg.Database, *inmem, logger)
	if err != nil {
		logger.Error("failed to open report store", "error", err)
		os.Exit(1)
	}
	if st != nil {
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logger.Error("close store", "error", cerr)
			}
		}()
	}

	opts := batch.Options{
		ListOptions: batch.ListOptions{Exclude: settings.Exclude, Recursive: settings.Recursive},
		Hash:        settings.Hash,
		Progress: func(f float64) {
			fmt.Printf("\rProgress: %3.0f%%", f*100)
			if f >= 1 {
				fmt.Println()
			}
		},
	}
	if settings.Summarize {
		if client := app.LLM(cfg.LLM, logger); client != nil {
			opts.Summarizer = client
		}
	}

	analyzer := batch.NewAnalyzer(app.Comparator(cfg.OCR, settings.OCR, logger), logger)

	if !*watch {
		rep, err := analyzer.AnalyzeDir(ctx, settings.Dir, opts)
		if err != nil {
			logger.Error("failed to analyze directory", "error", err)
			os.Exit(1)
		}
		if err := persist(ctx, st, rep, settings.Output, logger); err != nil {
			os.Exit(1)
		}
		printSummary(rep, settings.Output)
		return
	}

	initial := func(rep batch.Report) error {
		if err := persist(ctx, st, rep, settings.Output, logger); err != nil {
			return err
		}
		printSummary(rep, settings.Output)
		fmt.Printf("Watching %s (Ctrl+C to stop)\n", settings.Dir)
		return nil
	}
	update := func(jobCtx context.Context, rep batch.Report, doc batch.Document, rows []batch.Row) {
		if st != nil {
			if err := st.SyncReport(jobCtx, rep); err != nil {
				logger.Error("failed to sync run", "document", doc.ID, "error", err)
			}
		}
		if err := writeXLSX(rep, settings.Output, logger); err == nil {
			fmt.Printf("+ %s (%d strategies)\n", doc.ID, len(rows))
		}
	}
	if _, err := analyzer.Follow(ctx, settings.Dir, opts, 500*time.Millisecond, initial, update); err != nil {
		logger.Error("watch stopped", "error", err)
		os.Exit(1)
	}
}

func persist(ctx context.Context, st *store.Store, rep batch.Report, out string, logger *slog.Logger) error {
	if st != nil {
		if err := st.SaveReport(ctx, rep); err != nil {
			logger.Error("failed to save run", "run_id", rep.RunID, "error", err)
			return err
		}
	}
	return writeXLSX(rep, out, logger)
}

func writeXLSX(rep batch.Report, out string, logger *slog.Logger) error {
	xlsxBytes, err := report.ExportXLSX(rep, logger)
	if err != nil {
		logger.Error("failed to export report", "error", err)
		return err
	}
	if err := os.WriteFile(out, xlsxBytes, 0o644); err != nil {
		logger.Error("failed to write output file", "output", out, "error", err)
		return err
	}
	return nil
}

func printSummary(rep batch.Report, out string) {
	fmt.Printf("Comparison complete!\n")
	fmt.Printf("- Documents: %d\n", len(rep.Documents()))
	for _, m := range report.Summarize(rep.Rows) {
		fmt.Printf("- %-18s documents=%d failures=%d tables=%d mean=%.2fs\n",
			m.Method, m.Documents, m.Failures, m.TotalTables, m.MeanTime)
	}
	if tokens := rep.TotalTokens(); tokens > 0 {
		fmt.Printf("- Tokens: %d\n", tokens)
	}
	var failed []string
	for status, n := range rep.Counts() {
		if n > 0 && status != constants.RowStatusOK {
			failed = append(failed, fmt.Sprintf("%s=%d", status, n))
		}
	}
	sort.Strings(failed)
	if len(failed) > 0 {
		fmt.Printf("- Problems: %s\n", strings.Join(failed, ", "))
	}
	fmt.Printf("- Output: %s\n", out)
}
