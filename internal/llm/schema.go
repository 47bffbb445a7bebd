package llm

// ItemsFunctionName is the function the model is forced to call for item extraction.
const ItemsFunctionName = "extract_bill_items"

const ItemsFunctionDescription = "Extract itemized billing components from a Romanian energy bill"

// BuildBillItemsSchema returns the function parameters as a JSON Schema map.
// It is sent to the provider and reused locally to validate the arguments.
func BuildBillItemsSchema() map[string]any {
	item := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"label":      map[string]any{"type": "string"},
			"quantity":   map[string]any{"type": "string"},
			"unit_price": map[string]any{"type": "string"},
			"total":      map[string]any{"type": "string"},
		},
		"required": []string{"label", "total"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"items": map[string]any{
				"type":  "array",
				"items": item,
			},
		},
		"required": []string{"items"},
	}
}
