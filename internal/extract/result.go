package extract

import (
	"encoding/json"
	"math"
	"time"

	"github.com/joseph-ayodele/bills-assistant/constants"
)

// FailureKind classifies why a strategy produced no result.
type FailureKind string

const (
	FailureOpen    FailureKind = "open"    // document could not be opened or decoded
	FailurePage    FailureKind = "page"    // a page could not be read
	FailureBackend FailureKind = "backend" // external tool missing or cancelled
	FailurePanic   FailureKind = "panic"   // the underlying library panicked
)

// Failure is the structured reason a strategy failed.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

func (f *Failure) Error() string {
	return string(f.Kind) + ": " + f.Message
}

// Result is the uniform output of one strategy applied to one document.
// A failed result carries no text and no tables.
type Result struct {
	Method         constants.Method `json:"method"`
	Text           string           `json:"text"`
	Tables         []Table          `json:"tables"`
	TableCount     int              `json:"table_count"`
	ProcessingTime float64          `json:"processing_time"`
	Failure        *Failure         `json:"-"`
}

// Failed reports whether the strategy failed.
func (r Result) Failed() bool { return r.Failure != nil }

// ErrorMessage is the failure description, or "" for a successful result.
func (r Result) ErrorMessage() string {
	if r.Failure == nil {
		return ""
	}
	return r.Failure.Message
}

// MarshalJSON writes the failure as a plain "error" description plus an
// "error_kind", both omitted for a successful result.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	out := struct {
		plain
		Error     string      `json:"error,omitempty"`
		ErrorKind FailureKind `json:"error_kind,omitempty"`
	}{plain: plain(r)}
	if r.Failure != nil {
		out.Error = r.Failure.Message
		out.ErrorKind = r.Failure.Kind
	}
	return json.Marshal(out)
}

func succeeded(method constants.Method, text string, tables []Table) Result {
	return Result{
		Method:     method,
		Text:       text,
		Tables:     tables,
		TableCount: len(tables),
	}
}

func failed(method constants.Method, kind FailureKind, err error) Result {
	msg := "unknown error"
	if fe, ok := err.(*Failure); ok {
		msg = fe.Message
	} else if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Result{
		Method:  method,
		Tables:  []Table{},
		Failure: &Failure{Kind: kind, Message: msg},
	}
}

// roundSeconds converts d to seconds with two decimals.
func roundSeconds(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return math.Round(d.Seconds()*100) / 100
}
