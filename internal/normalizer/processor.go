// Package normalizer validates bibliography entries against per-type schemas and
// drives a whole input through scanning, validation and serialization.
package normalizer

import (
	"fmt"
	"io"

	"bibnorm/internal/config"
	"bibnorm/internal/formatter"
	"bibnorm/internal/logger"
	"bibnorm/internal/models"
	"bibnorm/internal/parser"
	"bibnorm/pkg/utils"
)

// Diagnostics shorten entry ids longer than this many display columns.
const maxIDWidth = 40

// Processor dispatches scanned entries to their validator and writes accepted records.
type Processor struct {
	registry      Registry
	validators    map[models.EntryType]*Validator
	extractor     *parser.FieldExtractor
	formatter     *formatter.BibFormatter
	log           *logger.Logger
	maxEntryBytes int
}

// NewProcessor creates a processor with the default grammar.
func NewProcessor(log *logger.Logger) *Processor {
	return newProcessor(NewRegistry(DefaultPatterns()), log, parser.DefaultMaxEntryBytes)
}

// NewProcessorWithConfig creates a processor using the pattern overrides and scanner
// limits from cfg.
func NewProcessorWithConfig(cfg *config.Config, log *logger.Logger) (*Processor, error) {
	patterns, err := CompilePatterns(cfg.Validation.Patterns)
	if err != nil {
		return nil, err
	}

	return newProcessor(NewRegistry(patterns), log, cfg.Scanner.MaxEntryBytes), nil
}

func newProcessor(registry Registry, log *logger.Logger, maxEntryBytes int) *Processor {
	validators := make(map[models.EntryType]*Validator, len(registry))
	for t, schema := range registry {
		validators[t] = NewValidator(schema)
	}

	return &Processor{
		registry:      registry,
		validators:    validators,
		extractor:     parser.NewFieldExtractor(),
		formatter:     formatter.NewBibFormatter(),
		log:           log,
		maxEntryBytes: maxEntryBytes,
	}
}

// Process scans input and writes every accepted record to w in input order.
// Rejected entries are reported through the logger and the returned Report; the
// only error returned is a failure to write to w.
func (p *Processor) Process(input string, w io.Writer) (*Report, error) {
	report := NewReport()

	s := parser.NewScanner(input, p.maxEntryBytes)
	for s.Scan() {
		if err := p.processEntry(s.Entry(), w, report); err != nil {
			return report, err
		}
	}

	return report, nil
}

func (p *Processor) processEntry(entry models.RawEntry, w io.Writer, report *Report) error {
	report.Stats.Entries++

	id := utils.TruncateDisplay(entry.ID, maxIDWidth)

	if entry.Err != nil {
		p.log.Error(fmt.Sprintf("Error scanning %s entry %s: %v", entry.Type, id, entry.Err))
		report.reject(entry, entry.Err)

		return nil
	}

	if entry.Type == string(models.TypeMisc) {
		report.Stats.Skipped++

		return nil
	}

	schema, ok := p.registry.Lookup(entry.Type)
	if !ok {
		p.log.Info(fmt.Sprintf("Unknown entry type: %s", entry.Type))

		report.Stats.Unknown++

		return nil
	}

	fields := p.extractor.Extract(entry.Body)

	record, warnings, err := p.validators[schema.Type].Validate(fields)
	for _, warn := range warnings {
		p.log.Warn(fmt.Sprintf("Warning in %s entry %s: %s", entry.Type, id, warn.Message))

		report.Stats.Warnings++
	}

	if err != nil {
		p.log.Error(fmt.Sprintf("Error processing %s entry %s: %v", entry.Type, id, err))
		report.reject(entry, err)

		return nil
	}

	if err := p.formatter.WriteRecord(w, record); err != nil {
		return fmt.Errorf("failed to write %s entry %s: %w", entry.Type, id, err)
	}

	report.Stats.Accepted++

	return nil
}
