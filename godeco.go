// Package godeco synthesizes proxy types combining a decorator with a subject: the
// proxy embeds the decorator and forwards to the held subject every interface method
// of the subject the decorator does not implement itself.
//
// The proxy name encodes the (decorator, subject, argument) triple, so that asking
// for a type by name is enough to generate it:
//
//	name, _ := godeco.EncodeIdentity(
//	    "github.com/acme/commands.Logging",
//	    "github.com/acme/commands.Shell",
//	    "command",
//	)
//	typ, handled, err := loader.Resolve(ctx, "github.com/acme/proxies."+name)
package godeco

import (
	"github.com/a-peyrard/godeco/descriptor"
	"github.com/a-peyrard/godeco/identity"
	"github.com/a-peyrard/godeco/loader"
	"github.com/a-peyrard/godeco/metadata"
	"github.com/a-peyrard/godeco/option"
	"github.com/a-peyrard/godeco/synth"
)

// EncodeIdentity returns the proxy name of the triple.
func EncodeIdentity(decorator, subject, argument string) (string, error) {
	return identity.Encode(decorator, subject, argument)
}

// DecodeIdentity recovers the triple of a proxy name, bare or package qualified. It
// reports false when the name is not a proxy name.
func DecodeIdentity(name string) (identity.Identity, bool, error) {
	return identity.Decode(name)
}

// SynthesizeSource returns the Go source of the proxy named typeName.
func SynthesizeSource(
	typeName string,
	decorator, subject *descriptor.TypeDescriptor,
	opts ...option.Option[synth.Options],
) (string, error) {
	return synth.SynthesizeSource(typeName, decorator, subject, opts...)
}

// NewLoader returns a loader defining the proxies with definer, from the types known
// by source.
func NewLoader(source metadata.Source, definer loader.Definer, opts ...option.Option[loader.Options]) (*loader.Loader, error) {
	return loader.New(source, definer, opts...)
}
