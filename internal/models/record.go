package models

import "strconv"

// Sentinel stored in integer fields that were absent or unparseable.
const Sentinel = -1

// ValueKind tells the formatter how to render a Field.
type ValueKind int

// Field value kinds.
const (
	KindText ValueKind = iota
	KindInt
)

// Field is a single normalized field of a Record.
type Field struct {
	Name    string
	Text    string
	Int     int
	Kind    ValueKind
	Protect bool
}

// String renders the field value, with the integer sentinel rendered empty.
func (f Field) String() string {
	if f.Kind == KindInt {
		if f.Int == Sentinel {
			return ""
		}

		return strconv.Itoa(f.Int)
	}

	return f.Text
}

// Record is a validated entry. It is built once by the validator and never mutated.
type Record struct {
	Type      EntryType
	OutputTag string
	fields    []Field
}

// NewRecord creates a record holding a copy of fields in output order.
func NewRecord(entryType EntryType, outputTag string, fields []Field) *Record {
	cp := make([]Field, len(fields))
	copy(cp, fields)

	return &Record{
		Type:      entryType,
		OutputTag: outputTag,
		fields:    cp,
	}
}

// Fields returns the fields in output order.
func (r *Record) Fields() []Field {
	cp := make([]Field, len(r.fields))
	copy(cp, r.fields)

	return cp
}

// Get returns the named field.
func (r *Record) Get(name string) (Field, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f, true
		}
	}

	return Field{}, false
}

// Author returns the author field text.
func (r *Record) Author() string {
	f, _ := r.Get("author")

	return f.Text
}

// Year returns the parsed year.
func (r *Record) Year() int {
	f, _ := r.Get("year")

	return f.Int
}
