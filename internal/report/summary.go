package report

import (
	"math"

	"github.com/joseph-ayodele/bills-assistant/constants"
	"github.com/joseph-ayodele/bills-assistant/internal/batch"
)

// MethodSummary aggregates the rows of one strategy.
type MethodSummary struct {
	Method        constants.Method
	Documents     int
	Failures      int
	MeanTime      float64 // seconds, successful rows only
	TotalTables   int
	TotalTokens   int
	SummaryErrors int
}

// Summarize aggregates rows per method, in constants.AllMethods order
// followed by any other method in first-seen order.
func Summarize(rows []batch.Row) []MethodSummary {
	byMethod := map[constants.Method]*MethodSummary{}
	order := append([]constants.Method{}, constants.AllMethods...)
	times := map[constants.Method]float64{}

	for _, r := range rows {
		s, ok := byMethod[r.Method]
		if !ok {
			s = &MethodSummary{Method: r.Method}
			byMethod[r.Method] = s
			if !isKnown(r.Method) {
				order = append(order, r.Method)
			}
		}
		s.Documents++
		s.TotalTables += r.TableCount
		s.TotalTokens += r.TokenUsage
		if r.Error != "" {
			s.Failures++
		} else {
			times[r.Method] += r.ProcessingTime
		}
		if r.SummaryError != "" {
			s.SummaryErrors++
		}
	}

	out := make([]MethodSummary, 0, len(byMethod))
	for _, m := range order {
		s, ok := byMethod[m]
		if !ok {
			continue
		}
		if n := s.Documents - s.Failures; n > 0 {
			s.MeanTime = math.Round(times[m]/float64(n)*100) / 100
		}
		out = append(out, *s)
	}
	return out
}

func isKnown(m constants.Method) bool {
	for _, k := range constants.AllMethods {
		if k == m {
			return true
		}
	}
	return false
}
