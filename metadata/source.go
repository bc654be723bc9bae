// Package metadata finds the descriptors of the types taking part in a proxy.
//
// Descriptors come either from Go packages scanned at build time or from descriptor
// tables, which can express what Go source cannot (static methods, default values).
package metadata

import (
	"context"
	"errors"
	"fmt"

	"github.com/a-peyrard/godeco/descriptor"
	"github.com/a-peyrard/godeco/errdefs"
)

type (
	// Source finds the descriptor of a type from its qualified name.
	Source interface {
		// Lookup fails with errdefs.ErrUnknownType when the name is unknown.
		Lookup(ctx context.Context, name string) (*descriptor.TypeDescriptor, error)
	}

	// Chain asks its sources in order, the first one knowing the name wins.
	Chain []Source
)

func (c Chain) Lookup(ctx context.Context, name string) (*descriptor.TypeDescriptor, error) {
	for _, source := range c {
		typ, err := source.Lookup(ctx, name)
		if err == nil {
			return typ, nil
		}
		if !errors.Is(err, errdefs.ErrUnknownType) {
			return nil, err
		}
	}
	return nil, unknown(name)
}

func unknown(name string) error {
	return fmt.Errorf("%w: %s", errdefs.ErrUnknownType, name)
}
