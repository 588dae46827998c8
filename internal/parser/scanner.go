// Package parser locates bibliography entries in raw text and extracts their fields.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"bibnorm/internal/models"
)

// DefaultMaxEntryBytes caps the body of a single entry.
const DefaultMaxEntryBytes = 1 << 20

// Scanner errors.
var (
	ErrUnterminatedEntry = errors.New("unterminated entry: braces never balance before end of input")
	ErrEntryTooLarge     = errors.New("entry body exceeds maximum size")
)

// Scanner walks the input once and yields one RawEntry per `@type{ body }` span.
// Usage mirrors bufio.Scanner:
//
//	s := parser.NewScanner(input, 0)
//	for s.Scan() {
//		entry := s.Entry()
//	}
type Scanner struct {
	input    string
	pos      int
	maxBody  int
	entry    models.RawEntry
	tagStart int
}

// NewScanner creates a scanner over input. A maxEntryBytes of zero or less selects
// DefaultMaxEntryBytes.
func NewScanner(input string, maxEntryBytes int) *Scanner {
	if maxEntryBytes <= 0 {
		maxEntryBytes = DefaultMaxEntryBytes
	}

	return &Scanner{
		input:   input,
		maxBody: maxEntryBytes,
	}
}

// Scan advances to the next entry. It returns false at end of input.
func (s *Scanner) Scan() bool {
	for s.pos < len(s.input) {
		c := s.input[s.pos]
		s.pos++

		if c != '@' {
			continue
		}

		s.tagStart = s.pos - 1

		tag, ok := s.scanTag()
		if !ok {
			continue
		}

		s.entry = s.scanBody(tag)

		return true
	}

	return false
}

// Entry returns the entry found by the last successful Scan.
func (s *Scanner) Entry() models.RawEntry {
	return s.entry
}

// scanTag accumulates the type tag up to and including the opening brace.
// A byte that cannot belong to a tag means the '@' was free text.
func (s *Scanner) scanTag() (string, bool) {
	begin := s.pos

	for s.pos < len(s.input) {
		c := s.input[s.pos]

		if c == '{' {
			tag := s.input[begin:s.pos]
			s.pos++

			return strings.ToLower(strings.TrimSpace(tag)), true
		}

		if !isTagByte(c) {
			return "", false
		}

		s.pos++
	}

	return "", false
}

// scanBody consumes the body after the opening brace until depth returns to zero.
func (s *Scanner) scanBody(tag string) models.RawEntry {
	entry := models.RawEntry{Type: tag, Offset: s.tagStart}
	begin := s.pos
	depth := 1

	for s.pos < len(s.input) {
		c := s.input[s.pos]
		s.pos++

		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				entry.Body = s.input[begin : s.pos-1]
				entry.ID = EntryID(entry.Body)

				return entry
			}
		}

		// Bail out and resume the outer scan from here.
		if s.pos-begin > s.maxBody {
			entry.Body = s.input[begin:s.pos]
			entry.ID = EntryID(entry.Body)
			entry.Err = fmt.Errorf("%w: more than %d bytes", ErrEntryTooLarge, s.maxBody)

			return entry
		}
	}

	entry.Body = s.input[begin:]
	entry.ID = EntryID(entry.Body)
	entry.Err = fmt.Errorf("%w (depth %d)", ErrUnterminatedEntry, depth)

	return entry
}

// ScanAll returns every entry in input.
func ScanAll(input string, maxEntryBytes int) []models.RawEntry {
	var entries []models.RawEntry

	s := NewScanner(input, maxEntryBytes)
	for s.Scan() {
		entries = append(entries, s.Entry())
	}

	return entries
}

// EntryID returns the body prefix up to the first top-level comma.
func EntryID(body string) string {
	depth := 0

	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				return strings.TrimSpace(body[:i])
			}
		}
	}

	return strings.TrimSpace(body)
}

func isTagByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == '-', c == ' ', c == '\t', c == '\r', c == '\n':
		return true
	}

	return false
}
