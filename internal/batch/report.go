package batch

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/bills-assistant/constants"
)

// Row is the outcome of one strategy on one document.
type Row struct {
	DocumentID     string              `json:"document"`
	DocumentHash   string              `json:"document_hash,omitempty"`
	Method         constants.Method    `json:"method"`
	TableCount     int                 `json:"tables"`
	ProcessingTime float64             `json:"processing_time"`
	Error          string              `json:"error,omitempty"`
	TokenUsage     int                 `json:"token_usage"`
	SummaryError   string              `json:"summary_error,omitempty"`
	Status         constants.RowStatus `json:"status"`
}

// Report is the accumulated result of one batch run, rows in document then
// strategy order.
type Report struct {
	RunID      uuid.UUID `json:"run_id"`
	Dir        string    `json:"dir"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Rows       []Row     `json:"rows"`
}

// Documents lists the distinct document IDs in report order.
func (r Report) Documents() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range r.Rows {
		if _, ok := seen[row.DocumentID]; ok {
			continue
		}
		seen[row.DocumentID] = struct{}{}
		out = append(out, row.DocumentID)
	}
	return out
}

// Counts tallies rows per status.
func (r Report) Counts() map[constants.RowStatus]int {
	out := make(map[constants.RowStatus]int, 3)
	for _, row := range r.Rows {
		out[row.Status]++
	}
	return out
}

// TotalTokens sums the summarizer token usage.
func (r Report) TotalTokens() int {
	n := 0
	for _, row := range r.Rows {
		n += row.TokenUsage
	}
	return n
}

// ReplaceDocument swaps the rows of document id for rows, keeping the
// document's place in the report. An unseen document is appended. It reports
// whether the document was already present.
func (r *Report) ReplaceDocument(id string, rows []Row) bool {
	out := make([]Row, 0, len(r.Rows)+len(rows))
	found := false
	for _, row := range r.Rows {
		if row.DocumentID != id {
			out = append(out, row)
			continue
		}
		if !found {
			out = append(out, rows...)
			found = true
		}
	}
	if !found {
		out = append(out, rows...)
	}
	r.Rows = out
	return found
}
