package parser

import (
	"regexp"
	"strings"

	"bibnorm/internal/models"
)

// FieldExtractor turns an entry body into a FieldTable.
type FieldExtractor struct {
	assignPattern *regexp.Regexp
	nextAssign    *regexp.Regexp
}

// NewFieldExtractor creates a new extractor instance.
func NewFieldExtractor() *FieldExtractor {
	return &FieldExtractor{
		// name = value, value may span lines
		assignPattern: regexp.MustCompile(`(?s)^\s*(\w[\w.-]*)\s*=\s*(.*?)\s*$`),
		// a line that opens a new assignment
		nextAssign:    regexp.MustCompile(`^[ \t\r]*\w[\w.-]*[ \t]*=`),
	}
}

// Extract splits body into assignments and collects every `name = value` pair.
// Segments without an assignment (the entry id) are ignored and a repeated field
// keeps its last value.
func (e *FieldExtractor) Extract(body string) models.FieldTable {
	table := models.FieldTable{}

	for _, segment := range e.split(body) {
		m := e.assignPattern.FindStringSubmatch(segment)
		if m == nil {
			continue
		}

		table[strings.ToLower(m[1])] = unwrapValue(m[2])
	}

	return table
}

// split cuts body at commas outside braces and double quotes, and at top-level
// line breaks followed by another assignment, so the trailing comma is optional.
func (e *FieldExtractor) split(body string) []string {
	var parts []string

	depth := 0
	inQuote := false
	start := 0

	for i := 0; i < len(body); i++ {
		switch c := body[i]; {
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
		case c == '"' && depth == 0 && (i == 0 || body[i-1] != '\\'):
			inQuote = !inQuote
		case c == ',' && depth == 0 && !inQuote:
			parts = append(parts, body[start:i])
			start = i + 1
		case c == '\n' && depth == 0 && !inQuote && e.nextAssign.MatchString(body[i+1:]):
			parts = append(parts, body[start:i])
			start = i + 1
		}
	}

	return append(parts, body[start:])
}

// unwrapValue strips one layer of braces, or two when the value is `{{...}}`,
// or the surrounding double quotes.
func unwrapValue(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}

	if !isWrapped(v) {
		return v
	}

	inner := v[1 : len(v)-1]
	if strings.HasPrefix(inner, "{") && isWrapped(inner) {
		return inner[1 : len(inner)-1]
	}

	return inner
}

// isWrapped reports whether v's first brace closes at its last byte.
func isWrapped(v string) bool {
	if len(v) < 2 || v[0] != '{' || v[len(v)-1] != '}' {
		return false
	}

	depth := 0

	for i := 0; i < len(v); i++ {
		switch v[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i == len(v)-1
			}
		}
	}

	return false
}
