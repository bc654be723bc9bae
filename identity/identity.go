// Package identity maps a (decorator, subject, argument) triple to the name of the
// proxy type synthesized for it, and back.
//
// The name is self-describing: the three components are hex encoded from their raw
// bytes and joined with underscores, which the hex alphabet never contains. The
// result is a valid Go identifier whatever the components hold.
package identity

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/a-peyrard/godeco/descriptor"
	"github.com/a-peyrard/godeco/errdefs"
)

const (
	// Prefix is reserved for proxy names.
	Prefix = "GeneratedProxy"

	separator = "_"
	segments  = 4
)

// Identity uniquely determines a synthesized proxy type.
type Identity struct {
	Decorator string
	Subject   string
	Argument  string
}

// New validates the components and returns the identity.
func New(decorator, subject, argument string) (Identity, error) {
	for _, field := range []struct {
		value, label string
	}{
		{decorator, "decorator name"},
		{subject, "subject name"},
		{argument, "argument name"},
	} {
		if field.value == "" {
			return Identity{}, fmt.Errorf("%w: %s can not be empty", errdefs.ErrInvalidIdentity, field.label)
		}
	}

	return Identity{Decorator: decorator, Subject: subject, Argument: argument}, nil
}

// Encode returns the proxy name for the given triple.
func Encode(decorator, subject, argument string) (string, error) {
	id, err := New(decorator, subject, argument)
	if err != nil {
		return "", err
	}
	return id.Name(), nil
}

// Name returns the encoded proxy name.
func (id Identity) Name() string {
	return strings.Join(
		[]string{
			Prefix,
			hex.EncodeToString([]byte(id.Decorator)),
			hex.EncodeToString([]byte(id.Subject)),
			hex.EncodeToString([]byte(id.Argument)),
		},
		separator,
	)
}

func (id Identity) String() string {
	return fmt.Sprintf("(%s, %s, %s)", id.Decorator, id.Subject, id.Argument)
}

// IsProxyName tells if the name carries the reserved prefix.
//
// The name may be qualified with the package of the proxy.
func IsProxyName(name string) bool {
	_, simple := descriptor.SplitQualified(name)
	return strings.HasPrefix(simple, Prefix+separator)
}

// Decode returns the identity encoded in name.
//
// A name without the reserved prefix is not an error: found is false so callers can
// let another resolver handle it. A name with the prefix but a malformed body fails
// with errdefs.ErrInvalidIdentity.
func Decode(name string) (id Identity, found bool, err error) {
	if !IsProxyName(name) {
		return id, false, nil
	}

	_, simple := descriptor.SplitQualified(name)
	parts := strings.Split(simple, separator)
	if len(parts) != segments {
		return id, true, fmt.Errorf("%w: %s does not appear to be a valid proxy name", errdefs.ErrInvalidIdentity, name)
	}

	decoded := make([]string, 0, segments-1)
	for _, part := range parts[1:] {
		raw, err := hex.DecodeString(part)
		if err != nil {
			return id, true, fmt.Errorf("%w: %s does not appear to be a valid proxy name:\n\t%v", errdefs.ErrInvalidIdentity, name, err)
		}
		decoded = append(decoded, string(raw))
	}

	id, err = New(decoded[0], decoded[1], decoded[2])
	if err != nil {
		return id, true, fmt.Errorf("%w: %s does not appear to be a valid proxy name", errdefs.ErrInvalidIdentity, name)
	}
	return id, true, nil
}
