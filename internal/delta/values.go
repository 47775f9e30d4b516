package delta

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// OptInt is an optional integer attribute. Modeler payloads carry numbers,
// numeric strings or empty strings for the same field; anything that is not a
// finite integer leaves the value unset.
type OptInt struct {
	Value int
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptInt) UnmarshalJSON(data []byte) error {
	*o = OptInt{}
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*o = OptInt{Value: n, Set: true}
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		*o = OptInt{Value: int(f), Set: true}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (o OptInt) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(o.Value)), nil
}

// Ptr returns a pointer to the value or nil when unset.
func (o OptInt) Ptr() *int {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}

// IntOf builds a set OptInt.
func IntOf(v int) OptInt { return OptInt{Value: v, Set: true} }

// Number is an arbitrary precision decimal. Sequence bounds in Oracle go up
// to 28 digits which float64 cannot hold.
type Number struct {
	dec   apd.Decimal
	valid bool
}

// NumberOf parses s into a Number; invalid input yields an unset Number.
func NumberOf(s string) Number {
	var n Number
	n.parse(s)
	return n
}

func (n *Number) parse(s string) {
	*n = Number{}
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	d, _, err := apd.NewFromString(s)
	if err != nil || d.Form != apd.Finite {
		return
	}
	n.dec.Set(d)
	n.valid = true
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*n = Number{}
		return nil
	}
	n.parse(strings.Trim(string(trimmed), `"`))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return []byte(n.String()), nil
}

// IsSet reports whether the number holds a finite value.
func (n Number) IsSet() bool { return n.valid }

// String renders the number in plain (non exponent) notation.
func (n Number) String() string {
	if !n.valid {
		return ""
	}
	return n.dec.Text('f')
}

// Cmp compares two set numbers like apd.Decimal.Cmp.
func (n Number) Cmp(other Number) int {
	return n.dec.Cmp(&other.dec)
}

// Equal treats two unset numbers as equal.
func (n Number) Equal(other Number) bool {
	if n.valid != other.valid {
		return false
	}
	return !n.valid || n.Cmp(other) == 0
}

// Greater reports n > other; unset operands never compare greater.
func (n Number) Greater(other Number) bool {
	return n.valid && other.valid && n.Cmp(other) > 0
}

// Min returns the smaller of two set numbers, or whichever is set.
func Min(a, b Number) Number {
	switch {
	case !a.valid:
		return b
	case !b.valid:
		return a
	case a.Cmp(b) <= 0:
		return a
	default:
		return b
	}
}

// Text is a scalar rendered as SQL text: strings verbatim, numbers and
// booleans in their JSON spelling. Used for column defaults.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		*t = ""
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Text(s)
	case trimmed[0] == '{' || trimmed[0] == '[':
		*t = ""
	default:
		*t = Text(trimmed)
	}
	return nil
}

// Flag is a switch the modeler stores either as a boolean or as a keyword
// string such as "force" or "editionable".
type Flag struct {
	On   bool
	Word string
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	*f = Flag{}
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("true")):
		f.On = true
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		f.Word = strings.TrimSpace(s)
		f.On = f.Word != ""
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f Flag) MarshalJSON() ([]byte, error) {
	if f.Word != "" {
		return json.Marshal(f.Word)
	}
	return json.Marshal(f.On)
}

// Keyword returns the upper-cased keyword, falling back to def for boolean
// flags. Unset flags render empty.
func (f Flag) Keyword(def string) string {
	if !f.On {
		return ""
	}
	if f.Word != "" {
		return strings.ToUpper(f.Word)
	}
	return def
}

// StringList decodes an array of strings; any other JSON value yields an
// empty list.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	*l = nil
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	for _, r := range raw {
		var s string
		if json.Unmarshal(r, &s) == nil {
			*l = append(*l, s)
		}
	}
	return nil
}
