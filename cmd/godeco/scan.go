package main

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/a-peyrard/godeco/metadata"
)

func newScanCommand(fs afero.Fs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <type>...",
		Short: "Print the descriptor table of the given types, scanned from their packages",
		Long: `Print the descriptor table of the given package qualified types. The table
holds the interfaces the types implement, and can be edited then given to generate
with --table.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), settings.Verbose)
			scanner := metadata.NewPackageScanner(metadata.WithDir(settings.Dir), metadata.WithLogger(logger))

			table := metadata.NewTable()
			for _, name := range args {
				typ, err := scanner.Lookup(cmd.Context(), name)
				if err != nil {
					return err
				}
				table.Add(typ)
			}

			var out io.Writer = cmd.OutOrStdout()
			if settings.Output != "" {
				file, err := fs.Create(settings.Output)
				if err != nil {
					return fmt.Errorf("failed to create %s:\n\t%w", settings.Output, err)
				}
				defer file.Close()
				out = file
			}
			if err := table.Encode(out); err != nil {
				return err
			}
			logger.Debug().Strs("types", table.Names()).Msg("Scanned types")
			return nil
		},
	}
	cmd.Flags().String("dir", ".", "Directory the packages are loaded from")
	cmd.Flags().StringP("output", "o", "", "File the table is written to, the standard output by default")
	return cmd
}
