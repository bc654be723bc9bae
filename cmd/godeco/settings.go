package main

import "runtime"

// Settings gathers the flags of every command. Each one can also be set with an
// environment variable, GODECO_OUTPUT_DIR for --output-dir.
type Settings struct {
	Verbose bool

	Dir         string
	OutputDir   string `mapstructure:"output_dir"`
	Package     string
	PackagePath string `mapstructure:"package_path"`
	Table       []string
	Register    bool
	Overwrite   bool
	Clean       bool
	DryRun      bool `mapstructure:"dry_run"`
	Concurrency int

	Output string
}

func (s *Settings) ApplyDefault() {
	if s.Dir == "" {
		s.Dir = "."
	}
	if s.OutputDir == "" {
		s.OutputDir = s.Dir
	}
	if s.Concurrency <= 0 {
		s.Concurrency = runtime.NumCPU()
	}
}
