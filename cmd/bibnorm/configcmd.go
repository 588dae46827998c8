package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config [path]",
		Short: "Print the effective configuration, or save it to path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				if err := cfg.SaveConfig(args[0]); err != nil {
					return err
				}

				fmt.Fprintf(opts.stdout, "Saved to: %s\n", args[0])

				return nil
			}

			data, err := cfg.Marshal()
			if err != nil {
				return err
			}

			_, err = opts.stdout.Write(data)

			return err
		},
	}
}
