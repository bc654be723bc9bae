// Package errdefs defines the error kinds surfaced by godeco.
//
// Every kind is a sentinel usable with errors.Is. Each one also wraps the closest
// containerd error category, so errdefs.IsNotFound and friends classify them too.
package errdefs

import (
	"fmt"

	cerrdefs "github.com/containerd/errdefs"
)

var (
	// ErrInvalidIdentity reports an empty identity component or a malformed proxy name.
	ErrInvalidIdentity = fmt.Errorf("invalid identity: %w", cerrdefs.ErrInvalidArgument)

	// ErrPreconditionViolated reports a decorator or subject of the wrong shape.
	ErrPreconditionViolated = fmt.Errorf("precondition violated: %w", cerrdefs.ErrFailedPrecondition)

	// ErrMissingArgument reports a constructor argument absent from the decorator.
	ErrMissingArgument = fmt.Errorf("missing argument: %w", cerrdefs.ErrInvalidArgument)

	// ErrUnsupportedStatic reports a static method among the methods to forward.
	ErrUnsupportedStatic = fmt.Errorf("unsupported static method: %w", cerrdefs.ErrNotImplemented)

	// ErrUnknownType reports a type name without resolvable metadata.
	ErrUnknownType = fmt.Errorf("unknown type: %w", cerrdefs.ErrNotFound)

	// ErrAlreadyDefined reports a proxy defined twice.
	ErrAlreadyDefined = fmt.Errorf("already defined: %w", cerrdefs.ErrAlreadyExists)
)
