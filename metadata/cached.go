package metadata

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/a-peyrard/godeco/descriptor"
)

// DefaultCacheSize is the number of descriptors kept by a cache.
const DefaultCacheSize = 256

// Cached keeps the most recently used descriptors of a source.
//
// Only found descriptors are cached, an unknown type is asked again the next time.
type Cached struct {
	source Source
	cache  *lru.Cache[string, *descriptor.TypeDescriptor]
}

// NewCached caches up to size descriptors of the source.
func NewCached(source Source, size int) (*Cached, error) {
	cache, err := lru.New[string, *descriptor.TypeDescriptor](size)
	if err != nil {
		return nil, err
	}
	return &Cached{source: source, cache: cache}, nil
}

func (c *Cached) Lookup(ctx context.Context, name string) (*descriptor.TypeDescriptor, error) {
	if typ, found := c.cache.Get(name); found {
		return typ, nil
	}
	typ, err := c.source.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	c.cache.Add(name, typ)
	return typ, nil
}

// Purge forgets every cached descriptor.
func (c *Cached) Purge() {
	c.cache.Purge()
}
