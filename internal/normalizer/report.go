package normalizer

import (
	"fmt"

	"bibnorm/internal/models"
)

// Report summarizes one run.
type Report struct {
	Errors []EntryError
	Stats  Stats
}

// Stats counts entries by outcome.
type Stats struct {
	Rejections map[Code]int
	Entries    int
	Accepted   int
	Rejected   int
	Skipped    int
	Unknown    int
	Warnings   int
}

// EntryError records a rejected entry.
type EntryError struct {
	Err  error
	Type string
	ID   string
	Code Code
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{
		Stats: Stats{Rejections: map[Code]int{}},
	}
}

func (r *Report) reject(entry models.RawEntry, err error) {
	code := Classify(err)

	r.Stats.Rejected++
	r.Stats.Rejections[code]++
	r.Errors = append(r.Errors, EntryError{
		Err:  err,
		Type: entry.Type,
		ID:   entry.ID,
		Code: code,
	})
}

// String returns a one-line summary.
func (r *Report) String() string {
	return fmt.Sprintf(
		"Entries: %d | Accepted: %d | Rejected: %d | Skipped: %d | Unknown: %d | Warnings: %d",
		r.Stats.Entries,
		r.Stats.Accepted,
		r.Stats.Rejected,
		r.Stats.Skipped,
		r.Stats.Unknown,
		r.Stats.Warnings,
	)
}
