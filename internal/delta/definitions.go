package delta

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Definitions resolves $ref pointers against the model, internal and
// external definition tables.
type Definitions struct {
	model    definitionTable
	internal definitionTable
	external definitionTable
}

type definitionTable struct {
	Properties  *Properties `json:"properties"`
	Definitions *Properties `json:"definitions"`
}

func (t definitionTable) lookup(name string) (json.RawMessage, bool) {
	if raw, ok := t.Properties.Raw(name); ok {
		return raw, true
	}
	return t.Definitions.Raw(name)
}

// NewDefinitions parses the three tables; absent tables are empty.
func NewDefinitions(model, internal, external json.RawMessage) (*Definitions, error) {
	d := &Definitions{}
	for _, src := range []struct {
		name  string
		raw   json.RawMessage
		table *definitionTable
	}{
		{"modelDefinitions", model, &d.model},
		{"internalDefinitions", internal, &d.internal},
		{"externalDefinitions", external, &d.external},
	} {
		if !isPresent(src.raw) {
			continue
		}
		if err := json.Unmarshal(src.raw, src.table); err != nil {
			return nil, fmt.Errorf("parse %s: %w", src.name, err)
		}
	}
	return d, nil
}

// Resolve returns the definition a $ref points to.
func (d *Definitions) Resolve(ref string) (*ColumnSchema, bool) {
	raw, ok := d.ResolveRaw(ref)
	if !ok {
		return nil, false
	}
	var def ColumnSchema
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, false
	}
	return &def, true
}

// ResolveRaw returns the undecoded definition a $ref points to. "#model/..."
// refs use the model table, "#/..." the internal one and anything else the
// external one.
func (d *Definitions) ResolveRaw(ref string) (json.RawMessage, bool) {
	if d == nil || ref == "" {
		return nil, false
	}
	name := RefName(ref)
	var tables []definitionTable
	switch {
	case strings.HasPrefix(ref, "#model/"):
		tables = []definitionTable{d.model}
	case strings.HasPrefix(ref, "#/"):
		tables = []definitionTable{d.internal}
	case strings.HasPrefix(ref, "#external/"):
		tables = []definitionTable{d.external}
	default:
		tables = []definitionTable{d.external, d.model, d.internal}
	}
	for _, t := range tables {
		if raw, ok := t.lookup(name); ok {
			return raw, true
		}
	}
	return nil, false
}

// InlineDefinition lays a column over the plain definition it references; the
// column's own keys win and its $ref is dropped.
func InlineDefinition(column, definition json.RawMessage) (ColumnSchema, error) {
	var out ColumnSchema
	merged, err := mergeObjects(definition, column, "$ref")
	if err != nil {
		return out, fmt.Errorf("inline definition: %w", err)
	}
	if err := json.Unmarshal(merged, &out); err != nil {
		return out, fmt.Errorf("inline definition: %w", err)
	}
	return out, nil
}

// RefName returns the last path segment of a $ref.
func RefName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// IsComposite reports whether a definition describes a structured type that
// is referenced as a UDT rather than inlined into the column.
func (c *ColumnSchema) IsComposite() bool {
	switch strings.ToLower(c.Type) {
	case "object", "array", "object_udt", "array_udt", "varray", "table":
		return true
	}
	return c.Properties.Len() > 0
}
