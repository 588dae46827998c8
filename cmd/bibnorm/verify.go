package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bibnorm/internal/validator"
)

var errInvalidOutput = errors.New("output file failed verification")

func newVerifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Check a normalized file: output tags, citation keys and signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			content, err := newReader(cfg, opts).Read(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			result := validator.NewOutputValidator(cfg).Validate(content)

			fmt.Fprintln(opts.stdout, result.String())
			result.PrintWarnings(opts.stderr)
			result.PrintErrors(opts.stderr)

			if !result.IsValid {
				return fmt.Errorf("%w: %s", errInvalidOutput, args[0])
			}

			return nil
		},
	}
}
