package delta

import (
	"bytes"
	"encoding/json"
)

// item wraps exactly one named node: {"properties": {"<name>": {...}}}.
type item struct {
	Properties *Properties `json:"properties"`
}

// itemList accepts both an array of items and a single item object.
type itemList []item

// UnmarshalJSON implements json.Unmarshaler.
func (l *itemList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		*l = nil
		return nil
	case trimmed[0] == '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		out := make(itemList, 0, len(raw))
		for _, r := range raw {
			if !isPresent(r) {
				continue
			}
			var it item
			if err := json.Unmarshal(r, &it); err != nil {
				return err
			}
			out = append(out, it)
		}
		*l = out
		return nil
	default:
		var it item
		if err := json.Unmarshal(trimmed, &it); err != nil {
			return err
		}
		*l = itemList{it}
		return nil
	}
}

type bucket struct {
	Items itemList `json:"items"`
}

// changeSet is one sub-tree of the comparison model split by change kind.
type changeSet struct {
	Properties struct {
		Added    *bucket `json:"added"`
		Deleted  *bucket `json:"deleted"`
		Modified *bucket `json:"modified"`
	} `json:"properties"`
}

type namedNode struct {
	kind ChangeKind
	name string
	raw  json.RawMessage
}

// nodes yields the first member of every item in bucket order added,
// deleted, modified.
func (c *changeSet) nodes() []namedNode {
	if c == nil {
		return nil
	}
	var out []namedNode
	for _, b := range []struct {
		kind ChangeKind
		b    *bucket
	}{
		{Added, c.Properties.Added},
		{Deleted, c.Properties.Deleted},
		{Modified, c.Properties.Modified},
	} {
		if b.b == nil {
			continue
		}
		for _, it := range b.b.Items {
			name, raw, ok := it.Properties.First()
			if !ok || !isPresent(raw) {
				continue
			}
			out = append(out, namedNode{kind: b.kind, name: name, raw: raw})
		}
	}
	return out
}
