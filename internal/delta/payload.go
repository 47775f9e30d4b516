package delta

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrComparisonModelNotFound is returned when the payload carries no delta tree.
var ErrComparisonModelNotFound = errors.New(`"comparisonModelCollection" is not found. Alter script can be generated only from Delta model`)

// ErrViewLevelUnsupported is returned for view level generation requests.
var ErrViewLevelUnsupported = errors.New("Forward-Engineering of delta model on view level is not supported")

// Level of a generation request.
type Level string

const (
	LevelEntity    Level = "entity"
	LevelContainer Level = "container"
	LevelView      Level = "view"
)

// Embedded is a JSON document the modeler may send either inline or
// serialized into a string.
type Embedded json.RawMessage

// UnmarshalJSON implements json.Unmarshaler.
func (e *Embedded) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*e = Embedded(strings.TrimSpace(s))
		return nil
	}
	*e = append((*e)[:0], trimmed...)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (e Embedded) MarshalJSON() ([]byte, error) {
	if len(e) == 0 {
		return []byte("null"), nil
	}
	return []byte(e), nil
}

// Present reports whether the document holds anything but null.
func (e Embedded) Present() bool {
	return isPresent(json.RawMessage(e))
}

// ModelData carries model level settings.
type ModelData struct {
	DBVersion string `json:"dbVersion"`
}

// AdditionalOption is a generic id/value switch of the generation dialog.
type AdditionalOption struct {
	ID    string          `json:"id"`
	Value json.RawMessage `json:"value"`
}

// Options of a generation request.
type Options struct {
	TargetScriptOptions struct {
		Keyword string `json:"keyword"`
	} `json:"targetScriptOptions"`
	AdditionalOptions []AdditionalOption `json:"additionalOptions"`
}

// ContainerData is the model level container description used for synonyms.
type ContainerData struct {
	Name     string    `json:"name"`
	Code     string    `json:"code"`
	Synonyms []Synonym `json:"synonyms"`
}

// Payload is a forward engineering request.
type Payload struct {
	JSONSchema          Embedded        `json:"jsonSchema"`
	ModelDefinitions    Embedded        `json:"modelDefinitions"`
	InternalDefinitions Embedded        `json:"internalDefinitions"`
	ExternalDefinitions Embedded        `json:"externalDefinitions"`
	ModelData           []ModelData     `json:"modelData"`
	Options             Options         `json:"options"`
	Collections         []Embedded      `json:"collections"`
	ContainerData       []ContainerData `json:"containerData"`
	Level               Level           `json:"level"`
	RelatedSchemas      Embedded        `json:"relatedSchemas"`
}

// DecodePayload parses a request body.
func DecodePayload(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &p, nil
}

// DBVersion returns the model DB version token, e.g. "21ai".
func (p *Payload) DBVersion() string {
	if len(p.ModelData) == 0 {
		return ""
	}
	return p.ModelData[0].DBVersion
}

// ScriptFormat returns the identifier format keyword.
func (p *Payload) ScriptFormat() string {
	return p.Options.TargetScriptOptions.Keyword
}

// ApplyDropStatements reports whether DROP fragments are emitted uncommented.
func (p *Payload) ApplyDropStatements() bool {
	for _, opt := range p.Options.AdditionalOptions {
		if opt.ID != "applyDropStatements" {
			continue
		}
		var b bool
		if err := json.Unmarshal(opt.Value, &b); err == nil {
			return b
		}
		var s string
		if err := json.Unmarshal(opt.Value, &s); err == nil {
			return strings.EqualFold(s, "true")
		}
	}
	return false
}

// SetApplyDropStatements overrides the applyDropStatements switch.
func (p *Payload) SetApplyDropStatements(v bool) {
	raw := json.RawMessage("false")
	if v {
		raw = json.RawMessage("true")
	}
	for i := range p.Options.AdditionalOptions {
		if p.Options.AdditionalOptions[i].ID == "applyDropStatements" {
			p.Options.AdditionalOptions[i].Value = raw
			return
		}
	}
	p.Options.AdditionalOptions = append(p.Options.AdditionalOptions, AdditionalOption{ID: "applyDropStatements", Value: raw})
}

// Synonyms returns the synonyms declared on the first container.
func (p *Payload) Synonyms() []Synonym {
	if len(p.ContainerData) == 0 {
		return nil
	}
	return p.ContainerData[0].Synonyms
}

// ComparisonModel returns the delta tree for the requested level: the first
// collection for container level requests when present, jsonSchema otherwise.
func (p *Payload) ComparisonModel(level Level) (json.RawMessage, error) {
	if level == LevelView {
		return nil, ErrViewLevelUnsupported
	}
	doc := p.JSONSchema
	if level == LevelContainer && len(p.Collections) > 0 && p.Collections[0].Present() {
		doc = p.Collections[0]
	}
	if !doc.Present() {
		return nil, ErrComparisonModelNotFound
	}
	return json.RawMessage(doc), nil
}

// Definitions parses the three $ref lookup tables.
func (p *Payload) Definitions() (*Definitions, error) {
	return NewDefinitions(json.RawMessage(p.ModelDefinitions), json.RawMessage(p.InternalDefinitions), json.RawMessage(p.ExternalDefinitions))
}
