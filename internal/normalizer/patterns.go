package normalizer

import (
	"fmt"
	"regexp"

	"bibnorm/internal/config"
)

// Default grammar for field values.
const (
	PatternAuthor  = `(?:[A-Za-z\.'-]+(?: [A-Za-z\.'-]+)?, ?[A-Za-z\.'-]+(?: [A-Za-z\.'-]+)?) (?:and [A-Za-z\.'-]+(?: [A-Za-z\.'-]+)?, ?[A-Za-z\.'-]+(?: [A-Za-z\.'-]+)?)*(?: and [A-Za-z\.'-]+(?: [A-Za-z\.'-]+)?, ?[A-Za-z\.'-]+(?: [A-Za-z\.'-]+)?)?|(?:[A-Za-z\.'-]+(?: [A-Za-z\.'-]+)?, ?[A-Za-z\.'-]+(?: [A-Za-z\.'-]+)?)`
	PatternTitle   = `^[a-zA-Z0-9\s,;?!.:()-_]+$`
	PatternAddress = `^[A-Za-z\s]+ \([A-Za-z\s]+(?:, [A-Za-z\s]+)?\)$`
	PatternPages   = `^\d+-\d+$`
	PatternDOI     = `^10\.\d+\/[-._;()\/:A-Za-z0-9\.]+$`
	PatternMonth   = `(?i)^(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)$`
	PatternISBN    = `^[\d-]+$`
)

// Patterns is the compiled grammar. It is built once and only read afterwards.
type Patterns struct {
	Author  *regexp.Regexp
	Title   *regexp.Regexp
	Address *regexp.Regexp
	Pages   *regexp.Regexp
	DOI     *regexp.Regexp
	Month   *regexp.Regexp
	ISBN    *regexp.Regexp
}

var defaultPatterns = &Patterns{
	Author:  regexp.MustCompile(PatternAuthor),
	Title:   regexp.MustCompile(PatternTitle),
	Address: regexp.MustCompile(PatternAddress),
	Pages:   regexp.MustCompile(PatternPages),
	DOI:     regexp.MustCompile(PatternDOI),
	Month:   regexp.MustCompile(PatternMonth),
	ISBN:    regexp.MustCompile(PatternISBN),
}

// DefaultPatterns returns the built-in grammar.
func DefaultPatterns() *Patterns {
	return defaultPatterns
}

// CompilePatterns builds the grammar, replacing any default that cfg overrides.
func CompilePatterns(cfg config.PatternsConfig) (*Patterns, error) {
	p := *defaultPatterns

	overrides := []struct {
		name   string
		source string
		target **regexp.Regexp
	}{
		{"author", cfg.Author, &p.Author},
		{"title", cfg.Title, &p.Title},
		{"address", cfg.Address, &p.Address},
		{"pages", cfg.Pages, &p.Pages},
		{"doi", cfg.DOI, &p.DOI},
		{"month", cfg.Month, &p.Month},
		{"isbn", cfg.ISBN, &p.ISBN},
	}

	for _, o := range overrides {
		if o.source == "" {
			continue
		}

		re, err := regexp.Compile(o.source)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern: %w", o.name, err)
		}

		*o.target = re
	}

	return &p, nil
}
