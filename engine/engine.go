// Package engine orchestrates Loader lifecycles (attached vs. detached),
// atomic layer-stack replacement under readers, and capability-checked
// resolver swaps, on top of the load package's LayeredClassResolver and
// TopCodeCache.
package engine

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/colterrand/layercache/code"
	"github.com/colterrand/layercache/compiler"
	"github.com/colterrand/layercache/errs"
	"github.com/colterrand/layercache/load"
	"github.com/colterrand/layercache/source"
)

// LayeredEngine owns a default loader (number 0, always attached), a
// weakly-held set of every attached loader still referenced by someone,
// and the configuration used to build fresh resolvers whenever the layer
// stack changes. All reads and writes are coordinated by one
// readers-writer lock per engine, per the concurrency model in use
// throughout this module.
type LayeredEngine struct {
	id *EngineID

	mu               sync.RWMutex
	defaultLoader    *Loader
	attachedLoaders  map[weak.Pointer[Loader]]struct{}
	nextLoaderNumber atomic.Int64

	parent                          code.ParentResolver
	layerMode                       load.Mode
	topMode                         load.Mode
	withTopCache                    bool
	allowSameNamesAcrossLayers      bool
	allowSameNamesInParentAndLayers bool
	compilerFactory                 compiler.Factory
	topCache                        *load.TopCodeCache

	log zerolog.Logger
}

// GetDefaultLoader returns the engine's default loader. Its identity never
// changes over the engine's life, though its resolver is replaced on
// every successful SetCodeLayers / SetCodeLayersBySource call.
func (e *LayeredEngine) GetDefaultLoader() *Loader {
	return e.defaultLoader
}

// NewAttachedLoader allocates a new loader number, clones the default
// loader's current resolver (sharing its top code cache), registers the
// result weakly, and returns it. The new loader receives every future
// SetCodeLayers update.
func (e *LayeredEngine) NewAttachedLoader() *Loader {
	e.mu.Lock()
	defer e.mu.Unlock()

	number := e.nextLoaderNumber.Add(1)
	resolver := e.defaultLoader.currentResolver().Clone()
	l := newLoader(e.id, number, true, resolver)
	e.registerAttachedLocked(l)
	return l
}

// NewDetachedLoader allocates a new loader number and clones the default
// loader's current resolver with a separated top code cache. The result is
// not registered: future SetCodeLayers updates will never touch it, and
// its top cache is independent of the engine's.
func (e *LayeredEngine) NewDetachedLoader() *Loader {
	e.mu.Lock()
	defer e.mu.Unlock()

	number := e.nextLoaderNumber.Add(1)
	resolver := e.defaultLoader.currentResolver().CloneWithSeparateTopCache()
	return newLoader(e.id, number, false, resolver)
}

// Layers returns the default loader's current layer stack, bottom layer
// first, for inspection by callers such as the demo CLI.
func (e *LayeredEngine) Layers() []*code.Code {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.defaultLoader.currentResolver().Layers()
}

// LoadClass delegates to loader's current resolver under the engine's read
// lock, after checking loader was issued by this engine.
func (e *LayeredEngine) LoadClass(loader *Loader, name string) (code.ClassHandle, error) {
	resolver, err := e.snapshotResolver(loader)
	if err != nil {
		return nil, err
	}
	return resolver.LoadClass(name)
}

// LoadMainClass delegates to loader's current resolver under the engine's
// read lock, after checking loader was issued by this engine.
func (e *LayeredEngine) LoadMainClass(ctx context.Context, loader *Loader, src source.Source) (code.ClassHandle, error) {
	resolver, err := e.snapshotResolver(loader)
	if err != nil {
		return nil, err
	}
	return resolver.LoadMainClass(ctx, src)
}

// LoadSourceClass delegates to loader's current resolver under the
// engine's read lock, after checking loader was issued by this engine.
func (e *LayeredEngine) LoadSourceClass(ctx context.Context, loader *Loader, src source.Source, name string) (code.ClassHandle, error) {
	resolver, err := e.snapshotResolver(loader)
	if err != nil {
		return nil, err
	}
	return resolver.LoadSourceClass(ctx, src, name)
}

func (e *LayeredEngine) snapshotResolver(loader *Loader) (*load.LayeredClassResolver, error) {
	if loader == nil || loader.engineID != e.id {
		return nil, errs.NewInvalidState("loader not from this engine")
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return loader.currentResolver(), nil
}

// SetCodeLayers replaces the engine's layer stack. It pre-checks for
// forbidden class name conflicts (per allowSameNamesAcrossLayers and
// allowSameNamesInParentAndLayers) before touching any loader; on failure
// the engine is left exactly as it was. On success, every attached loader
// — including the default loader — atomically observes the new layers
// from this call's return onward, and if a top cache is enabled its
// parent resolver is repointed at the default loader's new resolver.
func (e *LayeredEngine) SetCodeLayers(layers []*code.Code) error {
	for _, l := range layers {
		if l == nil {
			return errs.NewInvalidArgument("layer is nil")
		}
	}

	if !e.allowSameNamesAcrossLayers {
		if conflicts := code.SameNamesAcrossLayers(layers); len(conflicts) > 0 {
			return code.ToConflictError(layers, conflicts, nil)
		}
	}
	if !e.allowSameNamesInParentAndLayers && e.parent != nil {
		if conflicts := code.SameNamesInParentAndLayers(e.parent, layers); len(conflicts) > 0 {
			return code.ToConflictError(layers, nil, conflicts)
		}
	}

	resolver := load.NewResolver(e.parent, layers, e.topCache, e.layerMode, e.topMode)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.forEachAttachedLocked(func(l *Loader) {
		_ = l.swap(e.id, resolver)
	})
	if e.topCache != nil {
		e.topCache.SetParent(resolver)
	}
	e.log.Debug().Int("layers", len(layers)).Msg("engine layer stack replaced")
	return nil
}

// SetCodeLayersBySource compiles each bundle independently (in parallel,
// via the engine's compiler factory) into a Code layer, then calls
// SetCodeLayers with the results in bundle order. Any compilation failure
// is returned as an aggregated error and leaves the engine unchanged.
func (e *LayeredEngine) SetCodeLayersBySource(ctx context.Context, bundles []source.Bundle) error {
	comp := e.compilerFactory.NewCompiler()
	layers := make([]*code.Code, len(bundles))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var compileErr error

	for i, bundle := range bundles {
		wg.Add(1)
		go func(i int, bundle source.Bundle) {
			defer wg.Done()
			c, err := comp.Compile(ctx, e.parent, bundle)
			if err != nil {
				mu.Lock()
				compileErr = multierror.Append(compileErr, err)
				mu.Unlock()
				return
			}
			layers[i] = c
		}(i, bundle)
	}
	wg.Wait()

	if compileErr != nil {
		return compileErr
	}
	return e.SetCodeLayers(layers)
}

// registerAttachedLocked adds l to the weakly-held attached-loader set and
// arranges for it to be swept once l itself becomes unreachable. Must be
// called with mu held for writing.
func (e *LayeredEngine) registerAttachedLocked(l *Loader) {
	wp := weak.Make(l)
	e.attachedLoaders[wp] = struct{}{}
	runtime.AddCleanup(l, e.forgetAttached, wp)
}

func (e *LayeredEngine) forgetAttached(wp weak.Pointer[Loader]) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.attachedLoaders, wp)
}

// forEachAttachedLocked invokes fn for every attached loader still
// reachable by someone (the default loader included), skipping and
// opportunistically forgetting entries whose loader has already been
// collected. Must be called with mu held for writing.
func (e *LayeredEngine) forEachAttachedLocked(fn func(*Loader)) {
	for wp := range e.attachedLoaders {
		l := wp.Value()
		if l == nil {
			delete(e.attachedLoaders, wp)
			continue
		}
		fn(l)
	}
}
