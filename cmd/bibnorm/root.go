package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bibnorm/internal/config"
	"bibnorm/internal/logger"
	"bibnorm/internal/normalizer"
	"bibnorm/internal/source"
	"bibnorm/pkg/metadata"
)

// options holds the flag values shared by every command.
type options struct {
	configPath string
	output     string
	logLevel   string
	logFormat  string
	sign       bool
	headers    map[string]string

	stdout io.Writer
	stderr io.Writer
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "bibnorm <file>",
		Short: "Normalize a BibTeX database",
		Long: `bibnorm scans a BibTeX-like database, validates article, book, incollection and
inproceedings entries against per-type grammars, and writes every accepted entry in a
canonical layout. Rejected entries are reported on stderr.`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errUsage
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(cmd, opts, args[0])
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", logger.FormatTagged, "Log format: tagged, text, json")
	cmd.PersistentFlags().BoolVar(&opts.sign, "sign", false, "Append (normalize) or require (verify) a signature block")
	cmd.PersistentFlags().StringToStringVarP(&opts.headers, "header", "H", nil, "Extra request header for remote input, as name=value")
	cmd.Flags().StringVarP(&opts.output, "output", "o", config.DefaultOutputPath, "Output file")

	cmd.AddCommand(
		newVerifyCmd(opts),
		newSignCmd(opts),
		newConfigCmd(opts),
	)

	return cmd
}

// loadConfig reads the config file if one was given and applies explicitly set flags.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg := config.Default()

	if opts.configPath != "" {
		loaded, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	flags := cmd.Flags()

	if flags.Changed("output") {
		cfg.Output.Path = opts.output
	}

	if flags.Changed("sign") {
		cfg.Output.Sign = opts.sign
	}

	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}

	if flags.Changed("log-format") {
		cfg.Logging.Format = opts.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// newReader builds the input reader for cfg with any headers given on the command line.
func newReader(cfg *config.Config, opts *options) *source.Reader {
	return source.NewReaderWithConfig(cfg.Input).WithHeaders(opts.headers)
}

func runNormalize(cmd *cobra.Command, opts *options, input string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log := logger.New(opts.stderr, cfg.Logging.Level, cfg.Logging.Format)

	res, err := newReader(cfg, opts).ReadWithMetrics(cmd.Context(), input)
	if err != nil {
		return err
	}

	log.Debug("Input loaded",
		"location", res.Location,
		"bytes", res.Size,
		"attempts", res.Attempts,
		"duration", res.Duration,
	)

	proc, err := normalizer.NewProcessorWithConfig(cfg, log)
	if err != nil {
		return err
	}

	report, written, err := writeOutput(cfg, proc, res.Content, runID)
	if err != nil {
		return err
	}

	log.Info(report.String(), "run", runID, "output", cfg.Output.Path, "bytes", written)

	return nil
}

// writeOutput truncates the output file, streams accepted records into it and
// appends the signature block when signing is enabled. It returns the number of
// record bytes written, excluding the block.
func writeOutput(cfg *config.Config, proc *normalizer.Processor, content, runID string) (report *normalizer.Report, written int64, err error) {
	if dir := filepath.Dir(cfg.Output.Path); dir != "." {
		if mkErr := os.MkdirAll(dir, 0755); mkErr != nil {
			return nil, 0, fmt.Errorf("failed to create output directory: %w", mkErr)
		}
	}

	f, err := os.Create(cfg.Output.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create output file: %w", err)
	}

	defer func() {
		err = errors.Join(err, f.Close())
	}()

	bw := bufio.NewWriter(f)
	signer := metadata.NewSigner()

	report, err = proc.Process(content, io.MultiWriter(bw, signer))
	if err != nil {
		return report, signer.Written(), err
	}

	if cfg.Output.Sign {
		block := signer.Metadata(runID, report.Stats.Accepted, time.Now()).Render()
		if _, err = bw.WriteString(block); err != nil {
			return report, signer.Written(), fmt.Errorf("failed to write signature: %w", err)
		}
	}

	if err = bw.Flush(); err != nil {
		return report, signer.Written(), fmt.Errorf("failed to flush output: %w", err)
	}

	return report, signer.Written(), nil
}
