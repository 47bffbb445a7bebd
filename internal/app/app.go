// Package app wires configuration into the components the commands share.
package app

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/bills-assistant/internal/common"
	"github.com/joseph-ayodele/bills-assistant/internal/extract"
	"github.com/joseph-ayodele/bills-assistant/internal/llm"
	"github.com/joseph-ayodele/bills-assistant/internal/llm/openai"
	"github.com/joseph-ayodele/bills-assistant/internal/ocr"
	"github.com/joseph-ayodele/bills-assistant/internal/store"
)

// NewLogger installs a JSON slog logger as the default and returns it.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// Engine builds the poppler/tesseract engine from cfg.
func Engine(cfg common.OCRConfig, logger *slog.Logger) *ocr.Engine {
	return ocr.NewEngine(ocr.Config{
		Pdftotext:     cfg.Pdftotext,
		Pdftoppm:      cfg.Pdftoppm,
		Tesseract:     cfg.Tesseract,
		TesseractLang: cfg.TesseractLang,
		TessdataDir:   cfg.TessdataDir,
		DPI:           cfg.DPI,
		MaxPages:      cfg.MaxPages,
	}, logger)
}

// Comparator builds the strategy comparator; ocrEnabled overrides cfg.Enabled.
func Comparator(cfg common.OCRConfig, ocrEnabled bool, logger *slog.Logger) *extract.Comparator {
	return extract.NewComparator(Engine(cfg, logger), extract.Options{EnableOCR: ocrEnabled}, logger)
}

// LLM returns the OpenAI-backed assistant, or nil when no API key is set.
func LLM(cfg common.LLMConfig, logger *slog.Logger) llm.Assistant {
	if cfg.APIKey == "" {
		logger.Warn("llm.disabled", "reason", "OPENAI_API_KEY not set")
		return nil
	}
	logger.Info("llm.enabled", "model", cfg.Model)
	return openai.NewClient(openai.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	}, logger)
}

// Store opens and migrates the report store. It returns nil, nil when
// neither inmem nor a DSN is configured.
func Store(ctx context.Context, cfg common.DatabaseConfig, inmem bool, logger *slog.Logger) (*store.Store, error) {
	st, err := store.Open(ctx, store.ConfigFrom(cfg), inmem, logger)
	if err != nil || st == nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}
