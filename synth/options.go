package synth

import "github.com/a-peyrard/godeco/option"

const (
	// DefaultPackage names the package of proxies whose name carries no namespace.
	DefaultPackage = "proxies"

	// DefaultHeader marks the files as generated, see https://go.dev/s/generatedcode.
	DefaultHeader = "// Code generated by godeco. DO NOT EDIT."

	registryPath = "github.com/a-peyrard/godeco/registry"
)

// Options of the synthesis.
type Options struct {
	packageName string
	packagePath string
	register    bool
	header      string
}

// WithPackage sets the package the proxy is generated in, overriding the namespace
// carried by the proxy name.
func WithPackage(name, path string) option.Option[Options] {
	return func(opts *Options) {
		opts.packageName = name
		opts.packagePath = path
	}
}

// WithRegistration adds an init function registering the proxy constructor into the
// run-time registry.
func WithRegistration() option.Option[Options] {
	return func(opts *Options) {
		opts.register = true
	}
}

// WithHeader replaces the comment heading the file. An empty text removes it.
func WithHeader(text string) option.Option[Options] {
	return func(opts *Options) {
		opts.header = text
	}
}
