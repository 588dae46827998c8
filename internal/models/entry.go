// Package models defines data structures shared by the scanner, validator and formatter.
package models

// EntryType is the lowercase tag that follows '@' in the input.
type EntryType string

// Recognized entry types.
const (
	TypeArticle       EntryType = "article"
	TypeBook          EntryType = "book"
	TypeInCollection  EntryType = "incollection"
	TypeInProceedings EntryType = "inproceedings"
	TypeMisc          EntryType = "misc"
)

// RawEntry is one `@type{ body }` span located by the scanner.
type RawEntry struct {
	Err    error
	Type   string
	Body   string
	ID     string
	Offset int
}

// FieldTable maps a field name to its raw value with the wrapping braces stripped.
// An empty value means the field was present but empty.
type FieldTable map[string]string

// Lookup returns the value and whether the field was present at all.
func (t FieldTable) Lookup(name string) (string, bool) {
	v, ok := t[name]

	return v, ok
}

// Value returns the value for name, or "" when absent.
func (t FieldTable) Value(name string) string {
	return t[name]
}
