package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/a-peyrard/godeco/descriptor"
	"github.com/a-peyrard/godeco/errdefs"
	"github.com/a-peyrard/godeco/identity"
	"github.com/a-peyrard/godeco/loader"
	"github.com/a-peyrard/godeco/metadata"
	"github.com/a-peyrard/godeco/option"
	"github.com/a-peyrard/godeco/synth"
)

func newGenerateCommand(fs afero.Fs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [decorator,subject,argument]...",
		Short: "Generate the source of proxies",
		Long: `Generate the source of the proxies of the given decorator,subject,argument
triples. Without triples, the command must be run by go generate: the proxies are
the ones declared by the @forward annotations of the types of the package, and they
are generated in the package itself.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			g := &generation{
				settings: settings,
				logger:   newLogger(cmd.ErrOrStderr(), settings.Verbose),
				fs:       fs,
				out:      cmd.OutOrStdout(),
			}
			return g.run(cmd.Context(), args)
		},
	}

	flags := cmd.Flags()
	flags.String("dir", ".", "Directory the packages are loaded from")
	flags.StringP("output-dir", "o", "", "Directory the proxies are written to, --dir by default")
	flags.String("package", "", "Name of the package of the proxies")
	flags.String("package-path", "", "Import path of the package of the proxies")
	flags.StringSlice("table", nil, "YAML descriptor tables, looked up before the packages")
	flags.Bool("register", false, "Register the constructors of the proxies in the godeco registry")
	flags.Bool("overwrite", false, "Regenerate the proxies generated by a previous run")
	flags.Bool("clean", false, "Remove the proxies of a previous run not generated anymore")
	flags.Bool("dry-run", false, "Print the sources instead of writing them")
	flags.Int("concurrency", 0, "Number of proxies generated concurrently, the number of CPUs by default")
	return cmd
}

type generation struct {
	settings *Settings
	logger   *zerolog.Logger
	fs       afero.Fs
	out      io.Writer
}

func (g *generation) run(ctx context.Context, args []string) error {
	start := time.Now()
	scanner := metadata.NewPackageScanner(metadata.WithDir(g.settings.Dir), metadata.WithLogger(g.logger))

	source, err := g.source(scanner)
	if err != nil {
		return err
	}
	proxies, err := g.proxies(ctx, scanner, args)
	if err != nil {
		return err
	}
	if len(proxies) == 0 {
		g.logger.Warn().Msg("No proxy to generate")
		return nil
	}

	names := make([]string, len(proxies))
	for i, proxy := range proxies {
		name, err := identity.Encode(proxy.Decorator, proxy.Subject, proxy.Argument)
		if err != nil {
			return fmt.Errorf("invalid proxy %s:\n\t%w", proxy, err)
		}
		names[i] = descriptor.Qualify(g.settings.PackagePath, name)
	}

	var (
		memory  *loader.MemoryDefiner
		files   *loader.FileDefiner
		definer loader.Definer
	)
	if g.settings.DryRun {
		memory = loader.NewMemoryDefiner()
		definer = memory
	} else {
		files = loader.NewFileDefiner(g.fs, g.settings.OutputDir, option.If(g.settings.Overwrite, loader.WithOverwrite()))
		definer = files
	}

	l, err := loader.New(
		source,
		definer,
		loader.WithLogger(g.logger),
		loader.WithSynthOptions(g.synthOptions()...),
		loader.WithConcurrency(g.settings.Concurrency),
	)
	if err != nil {
		return err
	}
	types, err := l.ResolveAll(ctx, names...)
	if err != nil {
		return err
	}

	if memory != nil {
		return g.print(memory, types)
	}
	for _, typ := range types {
		g.logger.Info().Str("file", typ.Path).Msgf("✨ Proxy of %s", typ.Identity)
	}
	if g.settings.Clean {
		removed, err := files.Clean()
		if err != nil {
			return err
		}
		for _, path := range removed {
			g.logger.Info().Str("file", path).Msg("🧹 Removed stale proxy")
		}
	}
	g.logger.Info().Msgf("Generated %d proxies in %s", len(files.Files()), time.Since(start))
	return nil
}

func (g *generation) source(scanner *metadata.PackageScanner) (metadata.Source, error) {
	var chain metadata.Chain
	for _, path := range g.settings.Table {
		table, err := g.loadTable(path)
		if err != nil {
			return nil, err
		}
		chain = append(chain, table)
	}

	cached, err := metadata.NewCached(scanner, metadata.DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	return append(chain, cached), nil
}

func (g *generation) loadTable(path string) (*metadata.Table, error) {
	file, err := g.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table %s:\n\t%w", path, err)
	}
	defer file.Close()

	table, err := metadata.LoadTable(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load table %s:\n\t%w", path, err)
	}
	g.logger.Debug().Str("table", path).Int("types", len(table.Names())).Msg("Loaded table")
	return table, nil
}

// proxies parses the triples, or reads the annotations of the package when run by
// go generate.
func (g *generation) proxies(ctx context.Context, scanner *metadata.PackageScanner, args []string) ([]metadata.Annotation, error) {
	if len(args) > 0 {
		proxies := make([]metadata.Annotation, len(args))
		for i, arg := range args {
			parts := strings.Split(arg, ",")
			if len(parts) != 3 {
				return nil, fmt.Errorf("%w: %s is not a decorator,subject,argument triple", errdefs.ErrInvalidIdentity, arg)
			}
			proxies[i] = metadata.Annotation{Decorator: parts[0], Subject: parts[1], Argument: parts[2]}
		}
		return proxies, nil
	}

	targetFile := os.Getenv("GOFILE")
	if targetFile == "" {
		return nil, fmt.Errorf("no proxy given, and not run by go generate")
	}
	logger := g.logger.With().Str("file", targetFile).Logger()

	pkgs, err := scanner.Load(ctx, ".")
	if err != nil {
		return nil, err
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("%w: no package in %s", errdefs.ErrUnknownType, g.settings.Dir)
	}
	pkg := pkgs[0]
	if g.settings.PackagePath == "" {
		g.settings.PackagePath = pkg.PkgPath
	}
	if g.settings.Package == "" {
		g.settings.Package = os.Getenv("GOPACKAGE")
	}
	if g.settings.Package == "" {
		g.settings.Package = pkg.Name
	}

	logger.Debug().Str("package", pkg.PkgPath).Msg("Scanning annotations")
	return scanner.Annotations(ctx, ".")
}

func (g *generation) synthOptions() []option.Option[synth.Options] {
	return []option.Option[synth.Options]{
		option.If(g.settings.Package != "", synth.WithPackage(g.settings.Package, g.settings.PackagePath)),
		option.If(g.settings.Register, synth.WithRegistration()),
	}
}

func (g *generation) print(definer *loader.MemoryDefiner, types []loader.Type) error {
	printed := make(map[string]bool)
	for _, typ := range types {
		if printed[typ.Name] {
			continue
		}
		printed[typ.Name] = true

		source, _ := definer.Source(typ.Name)
		if _, err := fmt.Fprintf(g.out, "// %s\n%s\n", source.FileName(), source.Text); err != nil {
			return err
		}
	}
	return nil
}
