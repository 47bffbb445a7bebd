package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

var itemFields = []string{"label", "quantity", "unit_price", "total"}

// SanitizeItems makes near-miss function arguments fit the items schema:
// numbers become strings, null optionals become "", unknown keys are removed
// and items without a label or total are dropped. It returns the cleaned
// document and a list of what was changed.
func SanitizeItems(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var changes []string
	list, ok := doc["items"].([]any)
	if !ok {
		return nil, nil, fmt.Errorf("sanitize: items is not an array")
	}
	kept := make([]any, 0, len(list))
	for i, v := range list {
		m, ok := v.(map[string]any)
		if !ok {
			changes = append(changes, fmt.Sprintf("items[%d](not an object)", i))
			continue
		}
		out := make(map[string]any, len(itemFields))
		for _, k := range itemFields {
			s, note := coerceString(m[k])
			if note != "" {
				changes = append(changes, fmt.Sprintf("items[%d].%s(%s)", i, k, note))
			}
			out[k] = s
		}
		for k := range m {
			if !isItemField(k) {
				changes = append(changes, fmt.Sprintf("items[%d].%s(unknown)", i, k))
			}
		}
		if out["label"] == "" || out["total"] == "" {
			changes = append(changes, fmt.Sprintf("items[%d](missing label or total)", i))
			continue
		}
		kept = append(kept, out)
	}

	b, err := json.Marshal(map[string]any{"items": kept})
	if err != nil {
		return nil, nil, err
	}
	if len(changes) > 0 {
		logger.Debug("llm.sanitize.items", "changes", changes, "kept", len(kept), "received", len(list))
	}
	return b, changes, nil
}

func coerceString(v any) (string, string) {
	switch t := v.(type) {
	case nil:
		return "", ""
	case string:
		s := strings.TrimSpace(t)
		if strings.EqualFold(s, "null") {
			return "", "null"
		}
		return s, ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), "number"
	case bool:
		return strconv.FormatBool(t), "bool"
	default:
		b, _ := json.Marshal(t)
		return string(b), "coerced"
	}
}

func isItemField(k string) bool {
	for _, f := range itemFields {
		if f == k {
			return true
		}
	}
	return false
}
