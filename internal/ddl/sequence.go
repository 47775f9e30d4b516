// internal/ddl/sequence.go
package ddl

import (
	"fmt"
	"strings"

	"github.com/arwahdevops/oradelta/internal/delta"
)

type numberOption struct {
	clause string
	value  func(s delta.Sequence) delta.Number
}

type literalOption struct {
	value    func(s delta.Sequence) string
	extended func(s delta.Sequence) string
}

var sequenceNumberOptions = []numberOption{
	{"INCREMENT BY", func(s delta.Sequence) delta.Number { return s.Increment }},
	{"START WITH", func(s delta.Sequence) delta.Number { return s.Start }},
	{"RESTART WITH", func(s delta.Sequence) delta.Number { return s.Restart }},
	{"MINVALUE", func(s delta.Sequence) delta.Number { return s.MinValue }},
	{"MAXVALUE", func(s delta.Sequence) delta.Number { return s.MaxValue }},
}

var sequenceLiteralOptions = []literalOption{
	{func(s delta.Sequence) string { return s.Cache }, func(s delta.Sequence) string { return s.CacheValue.String() }},
	{func(s delta.Sequence) string { return s.Cycle }, nil},
	{func(s delta.Sequence) string { return s.Order }, nil},
	{func(s delta.Sequence) string { return s.Keep }, nil},
	{func(s delta.Sequence) string { return s.Scale }, func(s delta.Sequence) string { return s.ScaleExtend }},
	{func(s delta.Sequence) string { return s.Shard }, func(s delta.Sequence) string { return s.ShardExtend }},
	{func(s delta.Sequence) string { return s.Type }, nil},
}

// SequenceOptions renders the option block, one tab-indented option per line.
func SequenceOptions(s delta.Sequence) string {
	var options []string
	for _, o := range sequenceNumberOptions {
		if v := o.value(s); v.IsSet() {
			options = append(options, o.clause+" "+v.String())
		}
	}
	for _, o := range sequenceLiteralOptions {
		value := strings.ToUpper(o.value(s))
		if value == "" {
			continue
		}
		// NOCACHE, NOCYCLE dst. tidak punya nilai tambahan
		if !strings.HasPrefix(value, "NO") && o.extended != nil {
			if ext := strings.ToUpper(o.extended(s)); ext != "" {
				value += " " + ext
			}
		}
		options = append(options, value)
	}
	if len(options) == 0 {
		return ""
	}
	return "\n\t" + strings.Join(options, "\n\t")
}

// sequenceSchema: session sequences are never schema qualified.
func sequenceSchema(schemaName string, s delta.Sequence) string {
	if strings.EqualFold(s.Type, "session") {
		return ""
	}
	return schemaName
}

// CreateSequence renders CREATE SEQUENCE.
func CreateSequence(schemaName string, s delta.Sequence, t Target) string {
	sharing := ""
	if s.Sharing != "" {
		sharing = " SHARING=" + strings.ToUpper(s.Sharing)
	}
	stmt := fmt.Sprintf("CREATE SEQUENCE%s %s%s%s",
		t.IfNotExistsClause(s.IfNotExist), t.Name(s.SequenceName, sequenceSchema(schemaName, s)), sharing, SequenceOptions(s))
	return t.Terminate(stmt, s.IfNotExist, ErrCodeNameAlreadyUsed)
}

// DropSequence renders DROP SEQUENCE.
func DropSequence(schemaName string, s delta.Sequence, t Target) string {
	return fmt.Sprintf("DROP SEQUENCE%s %s;", t.IfExistsClause(), t.Name(s.SequenceName, sequenceSchema(schemaName, s)))
}

// SequenceChanges keeps only the attributes of next that differ from prev.
// Raising MINVALUE restarts the sequence at the new start value.
// SHARING is not compared: it cannot be altered in place.
func SequenceChanges(next, prev delta.Sequence) delta.Sequence {
	num := func(a, b delta.Number) delta.Number {
		if a.Equal(b) {
			return delta.Number{}
		}
		return a
	}
	str := func(a, b string) string {
		if a == b {
			return ""
		}
		return a
	}

	changes := delta.Sequence{
		ID:          next.ID,
		Increment:   num(next.Increment, prev.Increment),
		Start:       num(next.Start, prev.Start),
		Restart:     num(next.Restart, prev.Restart),
		MinValue:    num(next.MinValue, prev.MinValue),
		MaxValue:    num(next.MaxValue, prev.MaxValue),
		Cache:       str(next.Cache, prev.Cache),
		CacheValue:  num(next.CacheValue, prev.CacheValue),
		Cycle:       str(next.Cycle, prev.Cycle),
		Order:       str(next.Order, prev.Order),
		Keep:        str(next.Keep, prev.Keep),
		Scale:       str(next.Scale, prev.Scale),
		ScaleExtend: str(next.ScaleExtend, prev.ScaleExtend),
		Shard:       str(next.Shard, prev.Shard),
		ShardExtend: str(next.ShardExtend, prev.ShardExtend),
		Type:        str(next.Type, prev.Type),
	}
	if next.SequenceName != prev.SequenceName {
		changes.SequenceName = next.SequenceName
	}

	// nilai tambahan tanpa keyword-nya tidak bisa dirender
	if changes.Cache == "" && changes.CacheValue.IsSet() {
		changes.Cache = next.Cache
	}
	if changes.Cache != "" && !changes.CacheValue.IsSet() {
		changes.CacheValue = next.CacheValue
	}
	if changes.Scale == "" && changes.ScaleExtend != "" {
		changes.Scale = next.Scale
	}
	if changes.Shard == "" && changes.ShardExtend != "" {
		changes.Shard = next.Shard
	}

	if next.MinValue.Greater(prev.MinValue) {
		changes.Restart = next.Start
		if !changes.Restart.IsSet() {
			changes.Restart = next.MinValue
		}
	}
	return changes
}

// AlterSequence renders the in-place statements turning prev into next.
// A SHARING change has no ALTER form; the caller recreates the sequence.
func AlterSequence(schemaName string, next, prev delta.Sequence, t Target) string {
	changes := SequenceChanges(next, prev)

	name := prev.SequenceName
	if name == "" {
		name = next.SequenceName
	}
	ifExists := t.IfExistsClause()

	var parts []string
	if options := SequenceOptions(changes); options != "" {
		parts = append(parts, fmt.Sprintf("ALTER SEQUENCE%s %s%s;",
			ifExists, t.Name(name, sequenceSchema(schemaName, next)), options))
	}
	if changes.SequenceName != "" {
		parts = append(parts, fmt.Sprintf("RENAME %s TO %s;", t.Quote(name), t.Quote(changes.SequenceName)))
	}
	return strings.Join(parts, "\n")
}
