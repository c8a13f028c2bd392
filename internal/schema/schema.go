// Package schema holds the JSON Schemas for model replies and policy files
// and validates raw JSON against them.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"bestcard/internal/domain"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Compiled is a schema compiled once, on first use.
type Compiled struct {
	compile func() (*jsonschema.Schema, error)
}

func newCompiled(build func() map[string]any) *Compiled {
	return &Compiled{compile: sync.OnceValues(func() (*jsonschema.Schema, error) {
		return Compile(build())
	})}
}

var (
	ScenarioReply = newCompiled(Scenario)
	CardFile      = newCompiled(CardList)
	CardDraft     = newCompiled(DraftCardPolicy)
)

// Validate checks data against the cached schema.
func (c *Compiled) Validate(data []byte) error {
	compiled, err := c.compile()
	if err != nil {
		return err
	}
	return validate(compiled, data)
}

// Compile builds a jsonschema.Schema from its map form.
func Compile(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

// Validate compiles schemaMap and checks data against it. Hot paths use the
// package-level Compiled schemas instead.
func Validate(schemaMap map[string]any, data []byte) error {
	compiled, err := Compile(schemaMap)
	if err != nil {
		return err
	}
	return validate(compiled, data)
}

func validate(compiled *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := compiled.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

func nullable(t string) []any { return []any{t, "null"} }

// Scenario is the shape the model extractor asks for. Category is not an
// enum here: unknown labels degrade to "other" later instead of failing.
func Scenario() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"amount":                       map[string]any{"type": nullable("number")},
			"category":                     map[string]any{"type": nullable("string")},
			"is_foreign":                   map[string]any{"type": nullable("boolean")},
			"currency":                     map[string]any{"type": nullable("string")},
			"include_annual_fee_proration": map[string]any{"type": nullable("boolean")},
			"monthly_spend_estimate":       map[string]any{"type": nullable("number")},
		},
	}
}

func rate() map[string]any {
	return map[string]any{"type": "number", "minimum": 0, "maximum": 1}
}

// CardPolicy validates one stored card. Rates must already be fractions.
func CardPolicy() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"card_id":              map[string]any{"type": "string", "minLength": 1},
			"card_name":            map[string]any{"type": "string", "minLength": 1},
			"annual_fee":           map[string]any{"type": "number", "minimum": 0},
			"foreign_txn_fee_rate": rate(),
			"base_cashback_rate":   rate(),
			"reward_rules": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"category":      map[string]any{"type": "string", "minLength": 1},
						"cashback_rate": rate(),
						"cap_amount":    map[string]any{"type": nullable("number")},
						"cap_period":    map[string]any{"type": nullable("string")},
					},
					"required": []string{"category", "cashback_rate"},
				},
			},
			"notes": map[string]any{"type": nullable("string")},
		},
		"required": []string{"card_id", "card_name"},
	}
}

// CardList validates a policy file: a JSON array of cards.
func CardList() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": CardPolicy(),
	}
}

// DraftCardPolicy is what the card importer asks the model for. Rates may
// come back as percentages and are normalized before storage.
func DraftCardPolicy() map[string]any {
	s := CardPolicy()
	props := s["properties"].(map[string]any)
	loose := map[string]any{"type": []any{"number", "string"}}
	props["foreign_txn_fee_rate"] = loose
	props["base_cashback_rate"] = loose
	props["annual_fee"] = loose
	rules := props["reward_rules"].(map[string]any)["items"].(map[string]any)["properties"].(map[string]any)
	rules["cashback_rate"] = loose
	rules["category"] = map[string]any{"type": "string", "enum": domain.AllowedCategories}
	return s
}
