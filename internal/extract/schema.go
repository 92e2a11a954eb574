package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// blockSchema accepts a flat JSON object whose values are scalars. Key
// recognition happens after validation so label spelling stays lenient.
var blockSchema = map[string]any{
	"type":          "object",
	"minProperties": 1,
	"additionalProperties": map[string]any{
		"type": []string{"string", "number", "null"},
	},
}

var compiledBlockSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	b, err := json.Marshal(blockSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("block.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("block.json")
})

// decodeBlock parses one candidate block and checks it against blockSchema.
func decodeBlock(raw string) (map[string]any, error) {
	schema, err := compiledBlockSchema()
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("unmarshal block: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("block does not match schema: %w", err)
	}
	obj, _ := v.(map[string]any)
	return obj, nil
}
