package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteIdentifier(t *testing.T) {
	testCases := []struct {
		name      string
		inputName string
		format    string
		expected  string
	}{
		{"Quoted Basic", "EMPLOYEES", ScriptFormatQuoted, `"EMPLOYEES"`},
		{"Quoted Mixed Case", "MyTable", ScriptFormatQuoted, `"MyTable"`},
		{"Quoted With Quote", `My"Table`, ScriptFormatQuoted, `"My""Table"`},
		{"Nonquoted Basic", "employees", ScriptFormatNonQuoted, "employees"},
		{"Nonquoted Case Insensitive Format", "employees", "NONQUOTEDIDENTIFIER", "employees"},
		{"Unknown Format Fallback", "fallback_id", "", `"fallback_id"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := QuoteIdentifier(tc.inputName, tc.format)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestNameWithSchema(t *testing.T) {
	testCases := []struct {
		name     string
		table    string
		schema   string
		format   string
		expected string
	}{
		{"With Schema Quoted", "T", "HR", ScriptFormatQuoted, `"HR"."T"`},
		{"Without Schema", "T", "", ScriptFormatQuoted, `"T"`},
		{"With Schema Nonquoted", "t", "hr", ScriptFormatNonQuoted, "hr.t"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NameWithSchema(tc.table, tc.schema, tc.format), "Test Case: %s", tc.name)
		})
	}
}

func TestUnquoteIdentifier(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{`"EMP"`, "EMP"},
		{`"My""Table"`, `My"Table`},
		{"plain", "plain"},
		{`"`, `"`},
		{"  \"X\"  ", "X"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, UnquoteIdentifier(tc.input))
		})
	}
}

func TestTextHelpers(t *testing.T) {
	assert.Equal(t, "\ta\n\tb", Tab("a\nb"))
	assert.Equal(t, "\t\tx", Tab(Tab("x")))
	assert.Equal(t, "it''s", EscapeSingleQuote("it's"))
	assert.Equal(t, "'O''Neil'", WrapComment("O'Neil"))
	assert.Equal(t, "b", FirstNonEmpty("", "  ", "b", "c"))
	assert.Equal(t, "", FirstNonEmpty())
}
