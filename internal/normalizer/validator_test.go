package normalizer

import (
	"errors"
	"strings"
	"testing"

	"bibnorm/internal/config"
	"bibnorm/internal/models"

	"github.com/google/go-cmp/cmp"
)

func validArticle() models.FieldTable {
	return models.FieldTable{
		"author":  "Doe, Jane",
		"title":   "A Study",
		"journal": "J. Things",
		"month":   "jan",
		"year":    "2020",
		"pages":   "1-10",
	}
}

func validBook() models.FieldTable {
	return models.FieldTable{
		"author":    "Knuth, Donald",
		"title":     "The TeXbook",
		"publisher": "Addison-Wesley",
		"month":     "feb",
		"year":      "1984",
		"isbn":      "0-201-13447-0",
	}
}

func validInCollection() models.FieldTable {
	return models.FieldTable{
		"author":    "Doe, Jane",
		"title":     "A Chapter",
		"booktitle": "Collected Works",
		"editor":    "Smith",
		"publisher": "Press",
		"year":      "2001",
		"pages":     "5-9",
		"isbn":      "123-456",
		"doi":       "10.1000/xyz",
	}
}

func validInProceedings() models.FieldTable {
	return models.FieldTable{
		"author":    "Doe, Jane",
		"title":     "A Talk",
		"booktitle": "Proc. of Things",
		"address":   "Lisbon (Portugal)",
		"year":      "2019",
		"month":     "may",
		"pages":     "1-2",
	}
}

func validatorFor(t *testing.T, entryType models.EntryType) *Validator {
	t.Helper()

	schema, ok := NewRegistry(DefaultPatterns()).Lookup(string(entryType))
	if !ok {
		t.Fatalf("No schema for %s", entryType)
	}

	return NewValidator(schema)
}

func with(fields models.FieldTable, name, value string) models.FieldTable {
	fields[name] = value

	return fields
}

func without(fields models.FieldTable, name string) models.FieldTable {
	delete(fields, name)

	return fields
}

func fieldText(t *testing.T, rec *models.Record, name string) string {
	t.Helper()

	f, ok := rec.Get(name)
	if !ok {
		t.Fatalf("Record has no %s field", name)
	}

	return f.String()
}

func TestValidate_ArticleRecord(t *testing.T) {
	rec, warnings, err := validatorFor(t, models.TypeArticle).Validate(validArticle())
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}

	want := []models.Field{
		{Name: "author", Text: "Doe, Jane"},
		{Name: "title", Text: "A Study", Protect: true},
		{Name: "journal", Text: "J. Things", Protect: true},
		{Name: "volume", Kind: models.KindInt, Int: models.Sentinel},
		{Name: "number", Kind: models.KindInt, Int: models.Sentinel},
		{Name: "month", Text: "jan"},
		{Name: "year", Kind: models.KindInt, Int: 2020},
		{Name: "pages", Text: "1-10"},
		{Name: "doi"},
	}

	if diff := cmp.Diff(want, rec.Fields()); diff != "" {
		t.Errorf("Record fields mismatch (-want +got):\n%s", diff)
	}

	if rec.OutputTag != "article" || rec.Type != models.TypeArticle {
		t.Errorf("Unexpected tag %q / type %q", rec.OutputTag, rec.Type)
	}
}

func TestValidate_Pages(t *testing.T) {
	tests := []struct {
		name      string
		pages     string
		wantErr   error
		wantWarn  bool
		wantPages string
	}{
		{"valid range", "10-20", nil, false, "10-20"},
		{"equal pages", "7-7", nil, false, "7-7"},
		{"reversed range", "20-10", ErrBadPagesRange, false, ""},
		{"empty", "", nil, true, ""},
		{"no dash", "10", ErrBadFormat, false, ""},
		{"letters", "x-y", ErrBadFormat, false, ""},
		{"huge reversed range", "99999999999999999999-1", ErrBadPagesRange, false, ""},
		{"huge ordered range", "1-99999999999999999999", nil, false, "1-99999999999999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, warnings, err := validatorFor(t, models.TypeArticle).Validate(with(validArticle(), "pages", tt.pages))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if got := len(warnings) == 1; got != tt.wantWarn {
				t.Errorf("Warnings = %v, wantWarn %v", warnings, tt.wantWarn)
			}

			if got := fieldText(t, rec, "pages"); got != tt.wantPages {
				t.Errorf("pages = %q, want %q", got, tt.wantPages)
			}
		})
	}
}

func TestValidate_PagesMessages(t *testing.T) {
	v := validatorFor(t, models.TypeArticle)

	_, _, err := v.Validate(with(validArticle(), "pages", "10"))
	if err == nil || err.Error() != "Invalid pages format: |10|" {
		t.Errorf("Unexpected error %v", err)
	}

	_, _, err = v.Validate(with(validArticle(), "pages", "20-10"))
	if err == nil || err.Error() != "Invalid pages second page is lower than first" {
		t.Errorf("Unexpected error %v", err)
	}

	_, warnings, _ := v.Validate(without(validArticle(), "pages"))
	if len(warnings) != 1 || warnings[0].Message != "Non present page number in entry with title: A Study" {
		t.Errorf("Unexpected warnings %v", warnings)
	}
}

func TestValidate_Month(t *testing.T) {
	tests := []struct {
		month   string
		want    string
		wantErr bool
	}{
		{"jan", "jan", false},
		{"Jan", "jan", false},
		{"January", "jan", false},
		{"DECEMBER", "dec", false},
		{"Foo", "", true},
		{"ja", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			rec, _, err := validatorFor(t, models.TypeArticle).Validate(with(validArticle(), "month", tt.month))

			if tt.wantErr {
				if !errors.Is(err, ErrBadFormat) {
					t.Fatalf("Expected ErrBadFormat, got %v", err)
				}

				if err.Error() != "Invalid month format" {
					t.Errorf("Unexpected message %q", err.Error())
				}

				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if got := fieldText(t, rec, "month"); got != tt.want {
				t.Errorf("month = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate_CaseSensitiveMonthOverride(t *testing.T) {
	patterns, err := CompilePatterns(config.PatternsConfig{Month: `^(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)$`})
	if err != nil {
		t.Fatalf("CompilePatterns failed: %v", err)
	}

	schema, _ := NewRegistry(patterns).Lookup("article")

	_, _, err = NewValidator(schema).Validate(with(validArticle(), "month", "January"))
	if !errors.Is(err, ErrBadFormat) {
		t.Errorf("Expected January to be rejected by the strict grammar, got %v", err)
	}
}

func TestValidate_ArticleSoftFields(t *testing.T) {
	fields := validArticle()
	fields["doi"] = "not a doi"
	fields["volume"] = "12"
	fields["number"] = "x"

	rec, warnings, err := validatorFor(t, models.TypeArticle).Validate(fields)
	if err != nil {
		t.Fatalf("Expected soft failures only, got %v", err)
	}

	if got := fieldText(t, rec, "doi"); got != "" {
		t.Errorf("Expected cleared DOI, got %q", got)
	}

	if f, _ := rec.Get("volume"); f.Int != 12 {
		t.Errorf("Expected volume 12, got %d", f.Int)
	}

	if f, _ := rec.Get("number"); f.Int != models.Sentinel {
		t.Errorf("Expected number sentinel, got %d", f.Int)
	}

	wantMessages := []string{
		"Invalid number format in entry with title: A Study",
		"Invalid DOI format in entry with title: A Study",
	}

	var got []string
	for _, w := range warnings {
		got = append(got, w.Message)
	}

	if diff := cmp.Diff(wantMessages, got); diff != "" {
		t.Errorf("Warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_ArticleInvalidDOIOnlyWarning(t *testing.T) {
	rec, warnings, err := validatorFor(t, models.TypeArticle).Validate(with(validArticle(), "doi", "doi:bad"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(warnings) != 1 || warnings[0].Field != "doi" {
		t.Errorf("Expected exactly one DOI warning, got %v", warnings)
	}

	if fieldText(t, rec, "doi") != "" {
		t.Error("Expected DOI cleared")
	}
}

func TestValidate_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		typ    models.EntryType
		fields models.FieldTable
		want   string
	}{
		{"book without isbn", models.TypeBook, without(validBook(), "isbn"), "Missing or empty isbn field"},
		{"book with empty isbn", models.TypeBook, with(validBook(), "isbn", ""), "Missing or empty isbn field"},
		{"article without author", models.TypeArticle, without(validArticle(), "author"), "Missing or empty author field"},
		{"article without year", models.TypeArticle, without(validArticle(), "year"), "Missing or empty year field"},
		{"incollection without doi", models.TypeInCollection, without(validInCollection(), "doi"), "Missing or empty doi field"},
		{"inproceedings without doi", models.TypeInProceedings, validInProceedings(), "Missing doi field"},
		{"inproceedings without address", models.TypeInProceedings, without(with(validInProceedings(), "doi", ""), "address"), "Missing or empty address field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := validatorFor(t, tt.typ).Validate(tt.fields)
			if !errors.Is(err, ErrMissingField) {
				t.Fatalf("Expected ErrMissingField, got %v", err)
			}

			if err.Error() != tt.want {
				t.Errorf("Message = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestValidate_InProceedingsDOI(t *testing.T) {
	v := validatorFor(t, models.TypeInProceedings)

	rec, warnings, err := v.Validate(with(validInProceedings(), "doi", ""))
	if err != nil {
		t.Fatalf("Empty DOI should be accepted, got %v", err)
	}

	if len(warnings) != 0 || fieldText(t, rec, "doi") != "" {
		t.Errorf("Expected silent empty DOI, got %v", warnings)
	}

	rec, warnings, err = v.Validate(with(validInProceedings(), "doi", "garbage"))
	if err != nil {
		t.Fatalf("Invalid DOI should be a warning, got %v", err)
	}

	if len(warnings) != 1 || fieldText(t, rec, "doi") != "" {
		t.Errorf("Expected cleared DOI and one warning, got %v", warnings)
	}

	if rec.OutputTag != "inproceedings" {
		t.Errorf("OutputTag = %q", rec.OutputTag)
	}
}

func TestValidate_InCollection(t *testing.T) {
	v := validatorFor(t, models.TypeInCollection)

	rec, _, err := v.Validate(validInCollection())
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if rec.OutputTag != "inproceedings" || rec.Type != models.TypeInCollection {
		t.Errorf("Expected incollection emitted as inproceedings, got %q/%q", rec.Type, rec.OutputTag)
	}

	_, _, err = v.Validate(with(validInCollection(), "doi", "nope"))
	if !errors.Is(err, ErrBadFormat) || err.Error() != "Invalid DOI format" {
		t.Errorf("Expected hard DOI failure, got %v", err)
	}

	_, _, err = v.Validate(with(validInCollection(), "isbn", "ISBN 12"))
	if err == nil || err.Error() != "Invalid ISBN format" {
		t.Errorf("Expected ISBN failure, got %v", err)
	}
}

func TestValidate_YearAndAuthor(t *testing.T) {
	v := validatorFor(t, models.TypeBook)

	_, _, err := v.Validate(with(validBook(), "year", "198x"))
	if !errors.Is(err, ErrBadYear) || err.Error() != "Invalid year format" {
		t.Errorf("Expected bad year, got %v", err)
	}

	_, _, err = v.Validate(with(validBook(), "author", "Knuth"))
	if !errors.Is(err, ErrBadFormat) || err.Error() != "Invalid authors format" {
		t.Errorf("Expected bad authors, got %v", err)
	}
}

func TestValidate_FailFastOrder(t *testing.T) {
	tests := []struct {
		name   string
		typ    models.EntryType
		fields models.FieldTable
		want   string
	}{
		{
			"article month before pages and year",
			models.TypeArticle,
			with(with(with(validArticle(), "month", "xyz"), "pages", "9"), "year", "later"),
			"Invalid month format",
		},
		{
			"article pages before year",
			models.TypeArticle,
			with(with(validArticle(), "pages", "9"), "year", "later"),
			"Invalid pages format: |9|",
		},
		{
			"book isbn before year",
			models.TypeBook,
			with(with(validBook(), "isbn", "abc"), "year", "later"),
			"Invalid ISBN format",
		},
		{
			"incollection doi before year",
			models.TypeInCollection,
			with(with(validInCollection(), "doi", "bad"), "year", "later"),
			"Invalid DOI format",
		},
		{
			"inproceedings month before pages",
			models.TypeInProceedings,
			with(with(with(validInProceedings(), "doi", ""), "month", "abc"), "pages", "1"),
			"Invalid month format",
		},
		{
			"title before everything",
			models.TypeBook,
			with(with(validBook(), "title", "Bad {title}"), "month", "xyz"),
			"Invalid title format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := validatorFor(t, tt.typ).Validate(tt.fields)
			if err == nil {
				t.Fatal("Expected error")
			}

			if err.Error() != tt.want {
				t.Errorf("First error = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestValidate_WarningsKeptOnFailure(t *testing.T) {
	fields := with(with(validArticle(), "pages", ""), "year", "soon")

	_, warnings, err := validatorFor(t, models.TypeArticle).Validate(fields)
	if !errors.Is(err, ErrBadYear) {
		t.Fatalf("Expected bad year, got %v", err)
	}

	if len(warnings) != 1 || !strings.HasPrefix(warnings[0].Message, "Non present page number") {
		t.Errorf("Expected pages warning before failure, got %v", warnings)
	}
}

func TestFieldError(t *testing.T) {
	err := error(&FieldError{Kind: ErrBadYear, Field: "year", Message: "Invalid year format"})

	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "year" {
		t.Errorf("errors.As failed for %v", err)
	}

	if Classify(err) != CodeBadYear {
		t.Errorf("Classify = %s", Classify(err))
	}
}
