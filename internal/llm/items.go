package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// ParseItems validates the function-call arguments against the items schema
// and decodes them. Arguments that fail validation get one lenient pass
// through SanitizeItems before giving up.
func ParseItems(args []byte, logger *slog.Logger) ([]BillItem, error) {
	if logger == nil {
		logger = slog.Default()
	}
	doc := args
	if err := ValidateItemsJSON(doc); err != nil {
		cleaned, changes, sErr := SanitizeItems(doc, logger)
		if sErr != nil {
			return nil, fmt.Errorf("schema validation failed: %w", err)
		}
		if vErr := ValidateItemsJSON(cleaned); vErr != nil {
			return nil, fmt.Errorf("schema validation failed: %w", vErr)
		}
		logger.Warn("llm.items.lenient_sanitize_applied", "changes", changes)
		doc = cleaned
	}

	var out struct {
		Items []BillItem `json:"items"`
	}
	if err := json.Unmarshal(doc, &out); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	for i := range out.Items {
		it := &out.Items[i]
		it.Label = strings.TrimSpace(it.Label)
		it.Quantity = strings.TrimSpace(it.Quantity)
		it.UnitPrice = strings.TrimSpace(it.UnitPrice)
		it.Total = strings.TrimSpace(it.Total)
	}
	if out.Items == nil {
		out.Items = []BillItem{}
	}
	return out.Items, nil
}

// ErrorItems is the single placeholder row shown in place of the items table
// when extraction failed.
func ErrorItems(err error) []BillItem {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return []BillItem{{Label: "Error", Total: msg}}
}
