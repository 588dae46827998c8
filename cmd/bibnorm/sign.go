package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bibnorm/internal/validator"
	"bibnorm/pkg/metadata"
	"bibnorm/pkg/utils"
)

var errRemoteSign = errors.New("only local files can be signed")

func newSignCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sign <file>",
		Short: "Check a normalized file and replace its signature block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if utils.IsRemote(path) {
				return fmt.Errorf("%w: %s", errRemoteSign, path)
			}

			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			content, err := newReader(cfg, opts).Read(cmd.Context(), path)
			if err != nil {
				return err
			}

			// The old block is replaced, so only the records are checked.
			_, records := metadata.Extract(content)

			unsigned := *cfg
			unsigned.Output.Sign = false

			result := validator.NewOutputValidator(&unsigned).Validate(records)
			if !result.IsValid {
				result.PrintErrors(opts.stderr)

				return fmt.Errorf("%w: %s", errInvalidOutput, path)
			}

			signed := metadata.Sign(records, uuid.NewString(), result.Stats.TotalEntries)
			if err := os.WriteFile(path, []byte(signed), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			fmt.Fprintf(opts.stdout, "Signed %d entries in %s\n", result.Stats.TotalEntries, path)

			return nil
		},
	}
}
