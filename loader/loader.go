// Package loader defines proxies on demand, from their name.
//
// A name is resolved once: the first resolution synthesizes the proxy and hands it to
// a Definer, later ones return the defined type. Resolutions of the same proxy are
// serialized, unrelated proxies resolve concurrently.
package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/a-peyrard/godeco/errdefs"
	"github.com/a-peyrard/godeco/identity"
	"github.com/a-peyrard/godeco/metadata"
	"github.com/a-peyrard/godeco/option"
	"github.com/a-peyrard/godeco/synth"
)

type (
	// Resolver defines the type of a name. A resolver not knowing the name reports it
	// as not handled, so the next resolver can try.
	Resolver interface {
		Resolve(ctx context.Context, name string) (typ Type, handled bool, err error)
	}

	// Chain asks its resolvers in order, until one handles the name.
	Chain []Resolver

	// Options of a Loader.
	Options struct {
		logger       *zerolog.Logger
		registerer   prometheus.Registerer
		synthOptions []option.Option[synth.Options]
		concurrency  int
	}

	// Loader resolves proxy names: it looks up the metadata of the decorator and the
	// subject, synthesizes the proxy and defines it.
	Loader struct {
		source  metadata.Source
		definer Definer
		options *Options
		locks   *lockManager
		metrics *metrics
	}
)

func (c Chain) Resolve(ctx context.Context, name string) (Type, bool, error) {
	for _, resolver := range c {
		typ, handled, err := resolver.Resolve(ctx, name)
		if handled || err != nil {
			return typ, handled, err
		}
	}
	return Type{}, false, nil
}

// WithLogger sets the logger of the loader.
func WithLogger(logger *zerolog.Logger) option.Option[Options] {
	return func(opts *Options) {
		opts.logger = logger
	}
}

// WithRegisterer records the metrics of the loader into the registerer.
func WithRegisterer(registerer prometheus.Registerer) option.Option[Options] {
	return func(opts *Options) {
		opts.registerer = registerer
	}
}

// WithSynthOptions passes options to every synthesis.
func WithSynthOptions(opts ...option.Option[synth.Options]) option.Option[Options] {
	return func(o *Options) {
		o.synthOptions = append(o.synthOptions, opts...)
	}
}

// WithConcurrency limits the number of names ResolveAll resolves at once.
func WithConcurrency(limit int) option.Option[Options] {
	return func(opts *Options) {
		opts.concurrency = limit
	}
}

// New creates a loader describing types with source and defining proxies with definer.
func New(source metadata.Source, definer Definer, opts ...option.Option[Options]) (*Loader, error) {
	nop := zerolog.Nop()
	options := option.Build(&Options{logger: &nop}, opts...)

	l := &Loader{
		source:  source,
		definer: definer,
		options: options,
		locks:   newLockManager(),
	}
	if options.registerer != nil {
		m, err := newMetrics(options.registerer)
		if err != nil {
			return nil, fmt.Errorf("failed to register loader metrics:\n\t%w", err)
		}
		l.metrics = m
	}
	return l, nil
}

// Resolve defines the proxy named name, unless it is already defined.
//
// A name without the proxy prefix is not handled. On failure nothing is defined and
// a later call tries again.
func (l *Loader) Resolve(ctx context.Context, name string) (Type, bool, error) {
	id, found, err := identity.Decode(name)
	if err != nil {
		l.metrics.resolved(outcomeInvalid)
		return Type{}, true, err
	}
	if !found {
		l.metrics.resolved(outcomeNotHandled)
		return Type{}, false, nil
	}

	simple := id.Name()
	logger := l.options.logger.With().
		Str("identity", simple).
		Str("decorator", id.Decorator).
		Str("subject", id.Subject).
		Str("argument", id.Argument).
		Logger()

	if typ, defined := l.definer.Defined(simple); defined {
		logger.Debug().Msg("Proxy already defined")
		l.metrics.resolved(outcomeAlreadyDefined)
		return typ, true, nil
	}

	release := l.locks.lock(simple)
	defer release()

	// defined while waiting for the lock
	if typ, defined := l.definer.Defined(simple); defined {
		logger.Debug().Msg("Proxy defined concurrently")
		l.metrics.resolved(outcomeAlreadyDefined)
		return typ, true, nil
	}

	typ, err := l.define(ctx, &logger, name, id)
	if err != nil {
		logger.Debug().Err(err).Msg("Failed to define proxy")
		l.metrics.resolved(outcomeFailed)
		return Type{}, true, fmt.Errorf("failed to resolve %s %s:\n\t%w", name, id, err)
	}
	l.metrics.resolved(outcomeDefined)
	return typ, true, nil
}

func (l *Loader) define(ctx context.Context, logger *zerolog.Logger, name string, id identity.Identity) (Type, error) {
	logger.Debug().Msg("Looking up decorator and subject")
	decorator, err := l.source.Lookup(ctx, id.Decorator)
	if err != nil {
		return Type{}, err
	}
	subject, err := l.source.Lookup(ctx, id.Subject)
	if err != nil {
		return Type{}, err
	}

	logger.Debug().Msg("Synthesizing proxy")
	start := time.Now()
	source, err := synth.Synthesize(name, decorator, subject, l.options.synthOptions...)
	l.metrics.synthesized(time.Since(start).Seconds())
	if err != nil {
		return Type{}, err
	}

	logger.Debug().Str("package", source.PackagePath).Msg("Defining proxy")
	return l.definer.Define(ctx, source)
}

// ResolveAll resolves the names concurrently, and returns the types in the same
// order. A name not handled is an error.
func (l *Loader) ResolveAll(ctx context.Context, names ...string) ([]Type, error) {
	types := make([]Type, len(names))

	group, ctx := errgroup.WithContext(ctx)
	if l.options.concurrency > 0 {
		group.SetLimit(l.options.concurrency)
	}
	for i, name := range names {
		group.Go(func() error {
			typ, handled, err := l.Resolve(ctx, name)
			if err != nil {
				return err
			}
			if !handled {
				return fmt.Errorf("%w: %s is not a proxy name", errdefs.ErrInvalidIdentity, name)
			}
			types[i] = typ
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return types, nil
}
