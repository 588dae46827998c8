// Package formatter renders validated records in the canonical BibTeX layout.
package formatter

import (
	"io"
	"strings"

	"bibnorm/internal/models"

	"github.com/mattn/go-runewidth"
)

// Layout constants.
const (
	fieldIndent     = "    "
	nameColumnWidth = 15
)

// BibFormatter renders records as BibTeX entries.
type BibFormatter struct {
	indent    string
	nameWidth int
}

// NewBibFormatter creates a formatter with the canonical layout.
func NewBibFormatter() *BibFormatter {
	return &BibFormatter{
		indent:    fieldIndent,
		nameWidth: nameColumnWidth,
	}
}

// FormatRecord renders rec, for example:
//
//	@article{doe2020,
//	    author         = {Doe, Jane},
//	    title          = {{A Study}},
//	    ...
//	    doi            = {}
//	}
func (f *BibFormatter) FormatRecord(rec *models.Record) string {
	var sb strings.Builder

	sb.WriteString("@")
	sb.WriteString(rec.OutputTag)
	sb.WriteString("{")
	sb.WriteString(CitationKey(rec.Author(), rec.Year()))
	sb.WriteString(",\n")

	fields := rec.Fields()

	for i, field := range fields {
		sb.WriteString(f.indent)
		// Pad with spaces based on display width
		sb.WriteString(runewidth.FillRight(field.Name, f.nameWidth))
		sb.WriteString("= ")

		if field.Protect {
			sb.WriteString("{{" + field.String() + "}}")
		} else {
			sb.WriteString("{" + field.String() + "}")
		}

		if i < len(fields)-1 {
			sb.WriteString(",")
		}

		sb.WriteString("\n")
	}

	sb.WriteString("}\n")

	return sb.String()
}

// WriteRecord renders rec to w.
func (f *BibFormatter) WriteRecord(w io.Writer, rec *models.Record) error {
	_, err := io.WriteString(w, f.FormatRecord(rec))

	return err
}
