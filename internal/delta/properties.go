package delta

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Properties is a JSON object that remembers member order. Column order in
// generated DDL follows the order in which the modeler serialized them.
type Properties struct {
	keys   []string
	values map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("properties: expected JSON object, got %v", tok)
	}

	p.keys = p.keys[:0]
	p.values = make(map[string]json.RawMessage)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("properties: unexpected key token %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("properties: member %q: %w", key, err)
		}
		if _, dup := p.values[key]; !dup {
			p.keys = append(p.keys, key)
		}
		p.values[key] = raw
	}
	_, err = dec.Token() // closing brace
	return err
}

// MarshalJSON keeps the original member order.
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(p.values[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Keys returns member names in document order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	return p.keys
}

// Len reports the number of members.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Raw returns the undecoded member value.
func (p *Properties) Raw(key string) (json.RawMessage, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[key]
	return v, ok
}

// First returns the first member, used for delta items that wrap a single
// named object.
func (p *Properties) First() (string, json.RawMessage, bool) {
	if p.Len() == 0 {
		return "", nil, false
	}
	k := p.keys[0]
	return k, p.values[k], true
}

// Merge returns a copy of p with the members of other appended or overriding.
func (p *Properties) Merge(other *Properties) *Properties {
	out := &Properties{values: make(map[string]json.RawMessage)}
	for _, src := range []*Properties{p, other} {
		for _, k := range src.Keys() {
			if _, exists := out.values[k]; !exists {
				out.keys = append(out.keys, k)
			}
			out.values[k] = src.values[k]
		}
	}
	return out
}

// Named is a decoded member together with its key.
type Named[T any] struct {
	Name  string
	Value T
}

// DecodeProperties decodes every member of p into T, preserving order.
func DecodeProperties[T any](p *Properties) ([]Named[T], error) {
	out := make([]Named[T], 0, p.Len())
	for _, k := range p.Keys() {
		var v T
		if err := json.Unmarshal(p.values[k], &v); err != nil {
			return nil, fmt.Errorf("decode property %q: %w", k, err)
		}
		out = append(out, Named[T]{Name: k, Value: v})
	}
	return out, nil
}

// mergeObjects overlays overlay's members on base (lodash spread semantics),
// skipping omitted keys of overlay. Either side may be empty or null.
func mergeObjects(base, overlay json.RawMessage, omit ...string) (json.RawMessage, error) {
	merged := map[string]json.RawMessage{}
	if isPresent(base) {
		if err := json.Unmarshal(base, &merged); err != nil {
			return nil, err
		}
		if merged == nil {
			merged = map[string]json.RawMessage{}
		}
	}
	if isPresent(overlay) {
		var top map[string]json.RawMessage
		if err := json.Unmarshal(overlay, &top); err != nil {
			return nil, err
		}
	next:
		for k, v := range top {
			for _, o := range omit {
				if k == o {
					continue next
				}
			}
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

func isPresent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
