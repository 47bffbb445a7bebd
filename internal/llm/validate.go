package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const itemsSchemaURL = "bill_items.json"

var itemsSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return compileSchema(itemsSchemaURL, BuildBillItemsSchema())
})

func compileSchema(url string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return c.Compile(url)
}

// ValidateItemsJSON checks function-call arguments against the bill items
// schema. The error names the first failing JSON pointer.
func ValidateItemsJSON(data []byte) error {
	schema, err := itemsSchema()
	if err != nil {
		return fmt.Errorf("compile items schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal arguments: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			leaf := ve
			for len(leaf.Causes) > 0 {
				leaf = leaf.Causes[0]
			}
			return fmt.Errorf("arguments do not match schema at %q: %s", leaf.InstanceLocation, leaf.Message)
		}
		return fmt.Errorf("arguments do not match schema: %w", err)
	}
	return nil
}
