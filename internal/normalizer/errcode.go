package normalizer

import (
	"errors"

	"bibnorm/internal/parser"
)

// Code is a short rejection class used in run statistics.
type Code string

// Rejection codes.
const (
	CodeUnknown       Code = "unknown"
	CodeScan          Code = "scan"
	CodeMissingField  Code = "missing_field"
	CodeBadFormat     Code = "bad_format"
	CodeBadPagesRange Code = "bad_pages_range"
	CodeBadYear       Code = "bad_year"
)

// Classify maps a rejection error to its code.
func Classify(err error) Code {
	switch {
	case err == nil:
		return CodeUnknown
	case errors.Is(err, parser.ErrUnterminatedEntry), errors.Is(err, parser.ErrEntryTooLarge):
		return CodeScan
	case errors.Is(err, ErrMissingField):
		return CodeMissingField
	case errors.Is(err, ErrBadFormat):
		return CodeBadFormat
	case errors.Is(err, ErrBadPagesRange):
		return CodeBadPagesRange
	case errors.Is(err, ErrBadYear):
		return CodeBadYear
	}

	return CodeUnknown
}
