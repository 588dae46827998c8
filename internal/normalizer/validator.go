package normalizer

import (
	"errors"
	"fmt"

	"bibnorm/internal/models"
)

// Validation error classes. Every error returned by Validate wraps one of them.
var (
	ErrMissingField  = errors.New("missing field")
	ErrBadFormat     = errors.New("bad format")
	ErrBadPagesRange = errors.New("bad pages range")
	ErrBadYear       = errors.New("bad year")
)

// FieldError describes why an entry was rejected.
type FieldError struct {
	Kind    error
	Field   string
	Value   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

// Warning is a soft defect: the entry is kept with a default value.
type Warning struct {
	Field   string
	Message string
}

// Validator checks a FieldTable against one Schema.
type Validator struct {
	schema      *Schema
	transformer *Transformer
}

// NewValidator creates a validator for schema.
func NewValidator(schema *Schema) *Validator {
	return &Validator{
		schema:      schema,
		transformer: NewTransformer(),
	}
}

// Validate builds a Record from fields. It stops at the first failing check;
// warnings collected before a failure are returned alongside the error.
func (v *Validator) Validate(fields models.FieldTable) (*models.Record, []Warning, error) {
	for _, spec := range v.schema.Fields {
		raw, present := fields.Lookup(spec.Name)

		if spec.MustBePresent && !present {
			return nil, nil, &FieldError{
				Kind:    ErrMissingField,
				Field:   spec.Name,
				Message: fmt.Sprintf("Missing %s field", spec.Name),
			}
		}

		if spec.Required && raw == "" {
			return nil, nil, &FieldError{
				Kind:    ErrMissingField,
				Field:   spec.Name,
				Message: fmt.Sprintf("Missing or empty %s field", spec.Name),
			}
		}
	}

	title := fields.Value("title")
	checked := make(map[string]models.Field, len(v.schema.Fields))

	var warnings []Warning

	check := func(spec FieldSpec) error {
		field, warn, err := v.check(spec, fields.Value(spec.Name), title)
		if warn != nil {
			warnings = append(warnings, *warn)
		}

		if err != nil {
			return err
		}

		checked[spec.Name] = field

		return nil
	}

	for _, name := range v.schema.CheckOrder {
		spec, ok := v.schema.Field(name)
		if !ok {
			continue
		}

		if err := check(spec); err != nil {
			return nil, warnings, err
		}
	}

	out := make([]models.Field, 0, len(v.schema.Fields))

	for _, spec := range v.schema.Fields {
		if _, ok := checked[spec.Name]; !ok {
			if err := check(spec); err != nil {
				return nil, warnings, err
			}
		}

		out = append(out, checked[spec.Name])
	}

	return models.NewRecord(v.schema.Type, v.schema.OutputTag, out), warnings, nil
}

func (v *Validator) check(spec FieldSpec, raw, title string) (models.Field, *Warning, error) {
	field := models.Field{Name: spec.Name, Protect: spec.Protect}

	switch spec.Kind {
	case FieldMonth:
		month := v.transformer.TruncateMonth(raw)
		if spec.Pattern != nil && !spec.Pattern.MatchString(month) {
			return field, nil, badFormat(spec, month)
		}

		field.Text = v.transformer.NormalizeMonth(month)

	case FieldPages:
		if raw == "" {
			return field, &Warning{
				Field:   spec.Name,
				Message: "Non present page number in entry with title: " + title,
			}, nil
		}

		start, end, err := v.transformer.PageRange(raw)
		if err != nil || (spec.Pattern != nil && !spec.Pattern.MatchString(raw)) {
			return field, nil, &FieldError{
				Kind:    ErrBadFormat,
				Field:   spec.Name,
				Value:   raw,
				Message: fmt.Sprintf("Invalid pages format: |%s|", raw),
			}
		}

		if v.transformer.ComparePages(start, end) > 0 {
			return field, nil, &FieldError{
				Kind:    ErrBadPagesRange,
				Field:   spec.Name,
				Value:   raw,
				Message: "Invalid pages second page is lower than first",
			}
		}

		field.Text = raw

	case FieldYear:
		year, ok := v.transformer.Integer(raw)
		if !ok {
			return field, nil, &FieldError{
				Kind:    ErrBadYear,
				Field:   spec.Name,
				Value:   raw,
				Message: "Invalid year format",
			}
		}

		field.Kind = models.KindInt
		field.Int = year

	case FieldInteger:
		field.Kind = models.KindInt
		field.Int = models.Sentinel

		if raw == "" {
			return field, nil, nil
		}

		n, ok := v.transformer.Integer(raw)
		if !ok {
			return field, &Warning{
				Field:   spec.Name,
				Message: fmt.Sprintf("Invalid %s format in entry with title: %s", spec.label(), title),
			}, nil
		}

		field.Int = n

	default:
		field.Text = raw

		if raw == "" || spec.Pattern == nil || spec.Pattern.MatchString(raw) {
			return field, nil, nil
		}

		if spec.OnMismatch == MismatchWarnAndClear {
			field.Text = ""

			return field, &Warning{
				Field:   spec.Name,
				Message: fmt.Sprintf("Invalid %s format in entry with title: %s", spec.label(), title),
			}, nil
		}

		return field, nil, badFormat(spec, raw)
	}

	return field, nil, nil
}

func badFormat(spec FieldSpec, value string) error {
	return &FieldError{
		Kind:    ErrBadFormat,
		Field:   spec.Name,
		Value:   value,
		Message: fmt.Sprintf("Invalid %s format", spec.label()),
	}
}
