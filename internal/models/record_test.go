package models

import "testing"

func TestField_String(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		want  string
	}{
		{"text", Field{Text: "Doe, Jane"}, "Doe, Jane"},
		{"int", Field{Kind: KindInt, Int: 2020}, "2020"},
		{"sentinel", Field{Kind: KindInt, Int: Sentinel}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.field.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecord_Immutable(t *testing.T) {
	fields := []Field{
		{Name: "author", Text: "Doe, Jane"},
		{Name: "year", Kind: KindInt, Int: 2020},
	}

	rec := NewRecord(TypeArticle, "article", fields)
	fields[0].Text = "changed"

	got := rec.Fields()
	got[1].Int = 1999

	if rec.Author() != "Doe, Jane" {
		t.Errorf("Record changed through constructor slice: %q", rec.Author())
	}

	if rec.Year() != 2020 {
		t.Errorf("Record changed through Fields() slice: %d", rec.Year())
	}
}

func TestRecord_Get(t *testing.T) {
	rec := NewRecord(TypeBook, "book", []Field{{Name: "title", Text: "T"}})

	if f, ok := rec.Get("title"); !ok || f.Text != "T" {
		t.Errorf("Get(title) = %+v, %v", f, ok)
	}

	if _, ok := rec.Get("isbn"); ok {
		t.Error("Expected isbn to be absent")
	}

	if rec.Author() != "" {
		t.Errorf("Author() = %q, want empty", rec.Author())
	}
}

func TestFieldTable_Lookup(t *testing.T) {
	table := FieldTable{"pages": ""}

	if v, ok := table.Lookup("pages"); !ok || v != "" {
		t.Errorf("Lookup(pages) = %q, %v; want present and empty", v, ok)
	}

	if _, ok := table.Lookup("doi"); ok {
		t.Error("Expected doi to be absent")
	}

	if table.Value("doi") != "" {
		t.Error("Value of absent field should be empty")
	}
}
