// Package option implements the variadic options pattern.
package option

// Option modifies the options of type T.
type Option[T any] func(opts *T)

// Build applies the options in order on the defaults, and returns them. Nil options
// are skipped.
func Build[T any](defaults *T, opts ...Option[T]) *T {
	for _, opt := range opts {
		if opt != nil {
			opt(defaults)
		}
	}
	return defaults
}

// If returns opt when cond holds, and a nil option otherwise.
func If[T any](cond bool, opt Option[T]) Option[T] {
	if cond {
		return opt
	}
	return nil
}
