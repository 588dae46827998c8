package normalizer

import (
	"regexp"

	"bibnorm/internal/models"
)

// FieldKind selects how a field value is coerced and checked.
type FieldKind int

// Field kinds.
const (
	FieldText FieldKind = iota
	FieldMonth
	FieldPages
	FieldYear
	FieldInteger
)

// MismatchPolicy decides what a failed pattern check does.
type MismatchPolicy int

// Mismatch policies.
const (
	MismatchError MismatchPolicy = iota
	MismatchWarnAndClear
)

// FieldSpec describes one field of an entry type.
type FieldSpec struct {
	Pattern *regexp.Regexp
	Name    string
	// Label names the field in error messages when it differs from Name.
	Label string
	Kind  FieldKind
	// OnMismatch applies to FieldText specs with a Pattern.
	OnMismatch MismatchPolicy
	Required   bool
	// MustBePresent rejects the entry when the field is absent, even though an
	// empty value is accepted.
	MustBePresent bool
	// Protect doubles the braces on output.
	Protect bool
}

func (f FieldSpec) label() string {
	if f.Label != "" {
		return f.Label
	}

	return f.Name
}

// Schema is the static definition of one entry type.
type Schema struct {
	Type      models.EntryType
	OutputTag string
	// Fields in presence-check and output order.
	Fields []FieldSpec
	// CheckOrder lists field names in the order their values are checked.
	CheckOrder []string
}

// Field returns the spec for name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return FieldSpec{}, false
}

// Registry maps entry types to their schema.
type Registry map[models.EntryType]*Schema

// Lookup returns the schema for an entry type tag.
func (r Registry) Lookup(tag string) (*Schema, bool) {
	s, ok := r[models.EntryType(tag)]

	return s, ok
}

// NewRegistry builds the schemas for every supported entry type over p.
func NewRegistry(p *Patterns) Registry {
	author := FieldSpec{Name: "author", Label: "authors", Required: true, Pattern: p.Author}
	title := FieldSpec{Name: "title", Required: true, Pattern: p.Title, Protect: true}
	year := FieldSpec{Name: "year", Required: true, Kind: FieldYear}
	month := FieldSpec{Name: "month", Required: true, Kind: FieldMonth, Pattern: p.Month}
	pages := FieldSpec{Name: "pages", Kind: FieldPages, Pattern: p.Pages}
	isbn := FieldSpec{Name: "isbn", Label: "ISBN", Required: true, Pattern: p.ISBN}
	softDOI := FieldSpec{Name: "doi", Label: "DOI", Pattern: p.DOI, OnMismatch: MismatchWarnAndClear}

	text := func(name string, protect bool) FieldSpec {
		return FieldSpec{Name: name, Required: true, Pattern: p.Title, Protect: protect}
	}

	article := &Schema{
		Type:      models.TypeArticle,
		OutputTag: "article",
		Fields: []FieldSpec{
			author,
			title,
			text("journal", true),
			{Name: "volume", Kind: FieldInteger},
			{Name: "number", Kind: FieldInteger},
			month,
			year,
			pages,
			softDOI,
		},
		CheckOrder: []string{"author", "title", "journal", "month", "pages", "year", "volume", "number", "doi"},
	}

	book := &Schema{
		Type:      models.TypeBook,
		OutputTag: "book",
		Fields: []FieldSpec{
			author,
			title,
			text("publisher", false),
			month,
			year,
			isbn,
		},
		CheckOrder: []string{"author", "title", "publisher", "month", "isbn", "year"},
	}

	hardDOI := softDOI
	hardDOI.Required = true
	hardDOI.OnMismatch = MismatchError

	inCollection := &Schema{
		Type: models.TypeInCollection,
		// incollection entries are emitted with the inproceedings tag.
		OutputTag: "inproceedings",
		Fields: []FieldSpec{
			author,
			title,
			text("booktitle", true),
			text("editor", false),
			text("publisher", false),
			year,
			pages,
			isbn,
			hardDOI,
		},
		CheckOrder: []string{"author", "title", "booktitle", "editor", "publisher", "pages", "isbn", "doi", "year"},
	}

	presentDOI := softDOI
	presentDOI.MustBePresent = true

	inProceedings := &Schema{
		Type:      models.TypeInProceedings,
		OutputTag: "inproceedings",
		Fields: []FieldSpec{
			author,
			title,
			text("booktitle", true),
			{Name: "address", Required: true, Pattern: p.Address},
			year,
			month,
			pages,
			presentDOI,
		},
		CheckOrder: []string{"author", "title", "booktitle", "address", "month", "pages", "year", "doi"},
	}

	return Registry{
		models.TypeArticle:       article,
		models.TypeBook:          book,
		models.TypeInCollection:  inCollection,
		models.TypeInProceedings: inProceedings,
	}
}
