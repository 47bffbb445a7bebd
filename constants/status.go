package constants

// RowStatus is the canonical status stored with each batch report row.
type RowStatus string

// Stable values (store these exact strings in DB).
const (
	RowStatusOK             RowStatus = "OK"              // strategy produced a result
	RowStatusStrategyFailed RowStatus = "STRATEGY_FAILED" // strategy returned a failure
	RowStatusSummaryFailed  RowStatus = "SUMMARY_FAILED"  // extraction ok, downstream summary failed
)
