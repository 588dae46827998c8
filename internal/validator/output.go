// Package validator checks normalized bibliography files after they are written.
package validator

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"bibnorm/internal/config"
	"bibnorm/internal/formatter"
	"bibnorm/internal/models"
	"bibnorm/internal/parser"
	"bibnorm/pkg/metadata"
)

// Validation errors.
var (
	ErrUnexpectedTag  = errors.New("unexpected output tag")
	ErrKeyMismatch    = errors.New("citation key does not match author and year")
	ErrMissingKeyPart = errors.New("missing field needed for the citation key")
	ErrScan           = errors.New("entry could not be scanned")
)

// outputTags are the only tags a normalized file may contain.
var outputTags = map[string]bool{
	string(models.TypeArticle):       true,
	string(models.TypeBook):          true,
	string(models.TypeInProceedings): true,
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Err     error
	Entry   string
	Field   string
	Value   string
	Message string
	Offset  int
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Metadata *metadata.Metadata
	Errors   []ValidationError
	Warnings []string
	Stats    ValidationStats
	IsValid  bool
}

// ValidationStats contains validation statistics.
type ValidationStats struct {
	TotalEntries   int
	ValidEntries   int
	InvalidEntries int
	Signed         bool
}

// OutputValidator re-reads an emitted bibliography file.
type OutputValidator struct {
	extractor     *parser.FieldExtractor
	maxEntryBytes int
	requireSigned bool
}

// NewOutputValidator creates a validator. A signature block is required when
// cfg.Output.Sign is set.
func NewOutputValidator(cfg *config.Config) *OutputValidator {
	return &OutputValidator{
		extractor:     parser.NewFieldExtractor(),
		maxEntryBytes: cfg.Scanner.MaxEntryBytes,
		requireSigned: cfg.Output.Sign,
	}
}

// Validate checks every entry in content and the signature block if present.
func (v *OutputValidator) Validate(content string) *ValidationResult {
	result := &ValidationResult{
		IsValid:  true,
		Errors:   []ValidationError{},
		Warnings: []string{},
	}

	meta, records := metadata.Extract(content)

	for _, entry := range parser.ScanAll(records, v.maxEntryBytes) {
		result.Stats.TotalEntries++

		if err := v.validateEntry(entry); err != nil {
			result.IsValid = false
			result.Stats.InvalidEntries++
			result.Errors = append(result.Errors, *err)

			continue
		}

		result.Stats.ValidEntries++
	}

	if result.Stats.TotalEntries == 0 {
		result.Warnings = append(result.Warnings, "no entries found")
	}

	v.validateIntegrity(content, meta, result)

	return result
}

// validateEntry returns the first defect of entry, or nil.
func (v *OutputValidator) validateEntry(entry models.RawEntry) *ValidationError {
	if entry.Err != nil {
		return &ValidationError{
			Err:     ErrScan,
			Entry:   entry.ID,
			Offset:  entry.Offset,
			Message: fmt.Sprintf("%v: %v", ErrScan, entry.Err),
		}
	}

	if !outputTags[entry.Type] {
		return &ValidationError{
			Err:     ErrUnexpectedTag,
			Entry:   entry.ID,
			Value:   entry.Type,
			Offset:  entry.Offset,
			Message: fmt.Sprintf("%v: @%s", ErrUnexpectedTag, entry.Type),
		}
	}

	fields := v.extractor.Extract(entry.Body)

	for _, name := range []string{"author", "year"} {
		if fields.Value(name) == "" {
			return &ValidationError{
				Err:     ErrMissingKeyPart,
				Entry:   entry.ID,
				Field:   name,
				Offset:  entry.Offset,
				Message: fmt.Sprintf("%v: %s", ErrMissingKeyPart, name),
			}
		}
	}

	year, err := strconv.Atoi(fields.Value("year"))
	if err != nil {
		return &ValidationError{
			Err:     ErrMissingKeyPart,
			Entry:   entry.ID,
			Field:   "year",
			Value:   fields.Value("year"),
			Offset:  entry.Offset,
			Message: fmt.Sprintf("%v: year is not a number", ErrMissingKeyPart),
		}
	}

	if want := formatter.CitationKey(fields.Value("author"), year); want != entry.ID {
		return &ValidationError{
			Err:     ErrKeyMismatch,
			Entry:   entry.ID,
			Value:   want,
			Offset:  entry.Offset,
			Message: fmt.Sprintf("%v: expected %s", ErrKeyMismatch, want),
		}
	}

	return nil
}

// validateIntegrity checks the signature block against the records before it.
func (v *OutputValidator) validateIntegrity(content string, meta *metadata.Metadata, result *ValidationResult) {
	if meta == nil {
		if v.requireSigned {
			result.IsValid = false
			result.Errors = append(result.Errors, ValidationError{
				Err:     metadata.ErrNoMetadataBlock,
				Message: fmt.Sprintf("integrity check failed: %v", metadata.ErrNoMetadataBlock),
			})
		} else {
			result.Warnings = append(result.Warnings, "file is not signed")
		}

		return
	}

	result.Metadata = meta
	result.Stats.Signed = true

	if _, err := metadata.Verify(content); err != nil {
		result.IsValid = false
		result.Errors = append(result.Errors, ValidationError{
			Err:     err,
			Message: fmt.Sprintf("integrity check failed: %v", err),
		})

		return
	}

	if meta.Accepted != result.Stats.TotalEntries {
		result.IsValid = false
		result.Errors = append(result.Errors, ValidationError{
			Err: metadata.ErrCountMismatch,
			Message: fmt.Sprintf("integrity check failed: %v: block says %d, file has %d",
				metadata.ErrCountMismatch, meta.Accepted, result.Stats.TotalEntries),
		})
	}
}

// String returns string representation of validation result.
func (r *ValidationResult) String() string {
	status := "VALID"
	if !r.IsValid {
		status = "INVALID"
	}

	return fmt.Sprintf(
		"%s | Total: %d | Valid: %d | Invalid: %d | Signed: %t | Warnings: %d",
		status,
		r.Stats.TotalEntries,
		r.Stats.ValidEntries,
		r.Stats.InvalidEntries,
		r.Stats.Signed,
		len(r.Warnings),
	)
}

// PrintErrors writes validation errors in readable format.
func (r *ValidationResult) PrintErrors(w io.Writer) {
	if len(r.Errors) == 0 {
		return
	}

	fmt.Fprintln(w, "Validation Errors:")

	for _, err := range r.Errors {
		if err.Entry == "" {
			fmt.Fprintf(w, "  %s\n", err.Message)

			continue
		}

		fmt.Fprintf(w, "  Entry %s (offset %d)", err.Entry, err.Offset)

		if err.Field != "" {
			fmt.Fprintf(w, " [%s]", err.Field)
		}

		fmt.Fprintf(w, ": %s\n", err.Message)
	}
}

// PrintWarnings writes validation warnings.
func (r *ValidationResult) PrintWarnings(w io.Writer) {
	if len(r.Warnings) == 0 {
		return
	}

	fmt.Fprintln(w, "Validation Warnings:")

	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "  %s\n", warn)
	}
}
