package load

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"weak"

	"golang.org/x/sync/singleflight"

	"github.com/rs/zerolog"

	"github.com/colterrand/layercache/code"
	"github.com/colterrand/layercache/compiler"
	"github.com/colterrand/layercache/source"
)

// cacheEntry is one TopCodeCache slot: the source's modification stamp at
// compile time, and a weak pointer to the resulting Code. A nil Value()
// means the Code has been collected and the entry is equivalent to absent.
type cacheEntry struct {
	stamp int64
	ptr   weak.Pointer[code.Code]
}

// parentBox lets TopCodeCache store a code.ParentResolver in an
// atomic.Value, which requires every Store to use the same concrete type.
type parentBox struct {
	resolver code.ParentResolver
}

// TopCodeCache is a concurrent, fingerprint-keyed, weak-valued cache of
// on-demand compilations for sources that are not part of any static layer.
// Concurrent requests for the same source id share a single in-flight
// compile. Entries are "weak" in the sense that they may be purged once
// their Code is no longer strongly referenced elsewhere — the cache remains
// correct whether or not the runtime actually does so.
type TopCodeCache struct {
	mu              sync.RWMutex
	entries         map[string]*cacheEntry
	group           singleflight.Group
	parent          atomic.Value // *parentBox
	compilerFactory compiler.Factory
	log             zerolog.Logger
}

// GetUpToDate returns a Code whose compile-time modification stamp matches
// source.ModificationStamp(). A fresh compile is performed, under a
// per-source-id guard, if no entry exists or the cached one is stale or has
// been collected.
func (c *TopCodeCache) GetUpToDate(ctx context.Context, src source.Source) (*code.Code, error) {
	stamp := src.ModificationStamp()

	if cached := c.lookup(src.ID(), stamp); cached != nil {
		return cached, nil
	}

	v, err, _ := c.group.Do(src.ID(), func() (any, error) {
		if cached := c.lookup(src.ID(), stamp); cached != nil {
			return cached, nil
		}

		bundle := source.Bundle{Name: src.ID(), Sources: []source.Source{src}}
		comp := c.compilerFactory.NewCompiler()
		c.log.Debug().Str("source", src.ID()).Int64("stamp", stamp).Msg("top cache compiling")
		result, err := comp.Compile(ctx, c.getParent(), bundle)
		if err != nil {
			c.log.Debug().Str("source", src.ID()).Err(err).Msg("top cache compile failed")
			return nil, err
		}

		entry := &cacheEntry{stamp: stamp, ptr: weak.Make(result)}
		c.mu.Lock()
		c.entries[src.ID()] = entry
		c.mu.Unlock()
		runtime.AddCleanup(result, c.forgetIfCollected, src.ID())

		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*code.Code), nil
}

func (c *TopCodeCache) lookup(sourceID string, stamp int64) *code.Code {
	c.mu.RLock()
	entry, ok := c.entries[sourceID]
	c.mu.RUnlock()
	if !ok || entry.stamp != stamp {
		return nil
	}
	return entry.ptr.Value()
}

// forgetIfCollected is registered as a GC cleanup for every compiled Code
// this cache stores, and opportunistically evicts entries whose value has
// actually been collected. It is the weak-value analogue of
// java.util.WeakHashMap's automatic sweeping.
func (c *TopCodeCache) forgetIfCollected(sourceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[sourceID]; ok && entry.ptr.Value() == nil {
		delete(c.entries, sourceID)
	}
}

// SetParent atomically swaps the parent resolver used by compilations that
// need to see layered classes. Compiles already in flight may observe the
// old parent; that is acceptable because layer updates are externally
// sequenced by the engine's write lock (see spec §9).
func (c *TopCodeCache) SetParent(parent code.ParentResolver) {
	c.parent.Store(&parentBox{resolver: parent})
}

func (c *TopCodeCache) getParent() code.ParentResolver {
	v, _ := c.parent.Load().(*parentBox)
	if v == nil {
		return nil
	}
	return v.resolver
}

// Clone produces a new, independent cache with no entries, configured with
// the same compiler factory and parent resolver reference.
func (c *TopCodeCache) Clone() *TopCodeCache {
	clone := &TopCodeCache{
		entries:         make(map[string]*cacheEntry),
		compilerFactory: c.compilerFactory,
		log:             c.log,
	}
	clone.parent.Store(c.parent.Load())
	return clone
}
