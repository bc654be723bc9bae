// Command godeco generates proxy types forwarding to a subject the methods their
// decorator does not implement.
//
// It can be run explicitly, with decorator,subject,argument triples:
//
//	godeco generate --package-path github.com/acme/proxies --output-dir proxies \
//	    github.com/acme/commands.Logging,github.com/acme/commands.Shell,command
//
// or from a go:generate directive, in which case the @forward annotations of the
// types of the package are used:
//
//	//go:generate godeco generate
//
//	// Logging logs the commands it runs.
//	//
//	// @forward subject="Shell" argument="command"
//	type Logging struct { ... }
package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/a-peyrard/godeco/config"
)

const envPrefix = "GODECO"

func main() {
	if err := newRootCommand(afero.NewOsFs()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(fs afero.Fs) *cobra.Command {
	root := &cobra.Command{
		Use:          "godeco",
		Short:        "Proxy generator for decorators",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "Log every step")

	root.AddCommand(
		newNameCommand(),
		newDecodeCommand(),
		newGenerateCommand(fs),
		newScanCommand(fs),
	)
	return root
}

func loadSettings(cmd *cobra.Command) (*Settings, error) {
	return config.Load[Settings](config.WithEnvPrefix(envPrefix), config.WithFlags(cmd.Flags()))
}

func newLogger(w io.Writer, verbose bool) *zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}).
		Level(level).
		With().
		Timestamp().
		Logger()
	return &logger
}
