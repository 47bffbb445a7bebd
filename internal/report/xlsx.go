package report

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bills-assistant/internal/batch"
	"github.com/joseph-ayodele/bills-assistant/internal/llm"
)

const (
	ComparisonSheet = "Comparison"
	SummarySheet    = "Summary"
	ItemsSheet      = "Items"
)

// ComparisonHeaders are the columns of the comparison sheet, one row per
// (document, strategy).
var ComparisonHeaders = []string{
	"Document",
	"Method",
	"Tables",
	"Processing Time (s)",
	"Error",
	"Token Usage",
	"Summary Error",
}

var summaryHeaders = []string{
	"Method",
	"Documents",
	"Failures",
	"Mean Time (s)",
	"Tables",
	"Token Usage",
	"Summary Errors",
}

// ExportXLSX renders a batch report as a workbook with a comparison sheet
// and a per-method summary sheet.
func ExportXLSX(rep batch.Report, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := useSheet(f, ComparisonSheet); err != nil {
		return nil, err
	}
	writeRow(f, ComparisonSheet, 1, toAny(ComparisonHeaders))
	for i, r := range rep.Rows {
		writeRow(f, ComparisonSheet, i+2, []any{
			r.DocumentID,
			string(r.Method),
			r.TableCount,
			r.ProcessingTime,
			r.Error,
			r.TokenUsage,
			r.SummaryError,
		})
	}
	_ = f.SetColWidth(ComparisonSheet, "A", "A", 36) // document
	_ = f.SetColWidth(ComparisonSheet, "B", "B", 18) // method
	_ = f.SetColWidth(ComparisonSheet, "C", "D", 14)
	_ = f.SetColWidth(ComparisonSheet, "E", "E", 48) // error
	_ = f.SetColWidth(ComparisonSheet, "F", "F", 12)
	_ = f.SetColWidth(ComparisonSheet, "G", "G", 48)

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return nil, err
	}
	writeRow(f, SummarySheet, 1, toAny(summaryHeaders))
	for i, s := range Summarize(rep.Rows) {
		writeRow(f, SummarySheet, i+2, []any{
			string(s.Method), s.Documents, s.Failures, s.MeanTime, s.TotalTables, s.TotalTokens, s.SummaryErrors,
		})
	}
	_ = f.SetColWidth(SummarySheet, "A", "A", 18)
	_ = f.SetColWidth(SummarySheet, "B", "G", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	logger.Info("export.xlsx.ok",
		"run_id", rep.RunID.String(),
		"rows", len(rep.Rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ItemsXLSX renders extracted bill items as a single sheet.
func ItemsXLSX(items []llm.BillItem) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := useSheet(f, ItemsSheet); err != nil {
		return nil, err
	}
	writeRow(f, ItemsSheet, 1, []any{"Label", "Quantity", "Unit Price", "Total"})
	for i, it := range items {
		writeRow(f, ItemsSheet, i+2, []any{it.Label, it.Quantity, it.UnitPrice, it.Total})
	}
	_ = f.SetColWidth(ItemsSheet, "A", "A", 40)
	_ = f.SetColWidth(ItemsSheet, "B", "D", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// useSheet renames the default sheet to name and makes it active.
func useSheet(f *excelize.File, name string) error {
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return err
	}
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
