package report

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bills-assistant/constants"
	"github.com/joseph-ayodele/bills-assistant/internal/batch"
	"github.com/joseph-ayodele/bills-assistant/internal/llm"
)

func sampleRows() []batch.Row {
	return []batch.Row{
		{DocumentID: "a.pdf", Method: constants.MethodLayout, TableCount: 2, ProcessingTime: 0.4, TokenUsage: 900},
		{DocumentID: "a.pdf", Method: constants.MethodEmbedded, TableCount: 1, ProcessingTime: 0.1, TokenUsage: 850},
		{DocumentID: "b.pdf", Method: constants.MethodLayout, TableCount: 1, ProcessingTime: 0.2, SummaryError: "timeout"},
		{DocumentID: "b.pdf", Method: constants.MethodEmbedded, ProcessingTime: 0.05, Error: "page 1 text: bad stream"},
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize(sampleRows())
	require.Len(t, got, 2)
	assert.Equal(t, MethodSummary{
		Method: constants.MethodLayout, Documents: 2, MeanTime: 0.3, TotalTables: 3, TotalTokens: 900, SummaryErrors: 1,
	}, got[0])
	assert.Equal(t, MethodSummary{
		Method: constants.MethodEmbedded, Documents: 2, Failures: 1, MeanTime: 0.1, TotalTables: 1, TotalTokens: 850,
	}, got[1])
}

func TestSummarize_Empty(t *testing.T) {
	assert.Empty(t, Summarize(nil))
}

func TestExportXLSX(t *testing.T) {
	rep := batch.Report{RunID: uuid.New(), Rows: sampleRows()}
	b, err := ExportXLSX(rep, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{ComparisonSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(ComparisonSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, ComparisonHeaders, rows[0])
	assert.Equal(t, []string{"a.pdf", "pdftotext-layout", "2", "0.4", "", "900"}, rows[1])
	assert.Equal(t, "page 1 text: bad stream", rows[4][4])

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, "pdf-content", summary[2][0])
}

func TestItemsXLSX(t *testing.T) {
	b, err := ItemsXLSX([]llm.BillItem{{Label: "Energie activa", Quantity: "250 kWh", UnitPrice: "0.45", Total: "112.50"}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(ItemsSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Label", "Quantity", "Unit Price", "Total"},
		{"Energie activa", "250 kWh", "0.45", "112.50"},
	}, rows)
}
