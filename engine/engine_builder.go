package engine

import (
	"weak"

	"github.com/rs/zerolog"

	"github.com/colterrand/layercache/code"
	"github.com/colterrand/layercache/compiler"
	"github.com/colterrand/layercache/errs"
	"github.com/colterrand/layercache/load"
)

// EngineBuilder assembles a LayeredEngine's immutable configuration,
// following the one-shot commit protocol shared by every builder in this
// module: once Build has been called, further setters fail with
// *errs.InvalidStateError, and Build itself is idempotent.
//
// The engine it builds starts with an empty layer stack; call
// SetCodeLayers or SetCodeLayersBySource on the result to populate it.
type EngineBuilder struct {
	committed bool
	err       error

	parent                          code.ParentResolver
	layerMode                       load.Mode
	topMode                         load.Mode
	withTopCache                    bool
	allowSameNamesAcrossLayers      bool
	allowSameNamesInParentAndLayers bool
	compilerFactory                 compiler.Factory
	topCacheFactory                 load.TopCodeCacheFactory
	logger                          zerolog.Logger
}

// NewEngineBuilder returns a builder pre-loaded with this module's
// defaults: no parent, layerMode = CurrentFirst, topMode = ParentFirst,
// withTopCache = true, both conflict modes forbidden.
func NewEngineBuilder() *EngineBuilder {
	return &EngineBuilder{
		layerMode:    load.CurrentFirst,
		topMode:      load.ParentFirst,
		withTopCache: true,
	}
}

func (b *EngineBuilder) guard(set func()) *EngineBuilder {
	if b.committed {
		b.err = errs.NewInvalidState("builder already used")
		return b
	}
	set()
	return b
}

// SetParent sets the external parent resolver consulted above (or below,
// per layerMode/topMode) this engine's layers. Default: none.
func (b *EngineBuilder) SetParent(parent code.ParentResolver) *EngineBuilder {
	return b.guard(func() { b.parent = parent })
}

// SetLayerMode sets the order between the parent and the layer stack for
// name-only lookups. Default: CurrentFirst.
func (b *EngineBuilder) SetLayerMode(m load.Mode) *EngineBuilder {
	return b.guard(func() { b.layerMode = m })
}

// SetTopMode sets the order between the combined parent+layers view and
// the top code cache for source-scoped lookups. Default: ParentFirst.
func (b *EngineBuilder) SetTopMode(m load.Mode) *EngineBuilder {
	return b.guard(func() { b.topMode = m })
}

// SetWithTopCodeCache enables or disables the engine's top code cache.
// Default: true.
func (b *EngineBuilder) SetWithTopCodeCache(enabled bool) *EngineBuilder {
	return b.guard(func() { b.withTopCache = enabled })
}

// SetAllowSameNamesAcrossLayers controls whether SetCodeLayers tolerates a
// class name defined by two or more layers. Default: false (forbidden).
func (b *EngineBuilder) SetAllowSameNamesAcrossLayers(allow bool) *EngineBuilder {
	return b.guard(func() { b.allowSameNamesAcrossLayers = allow })
}

// SetAllowSameNamesInParentAndLayers controls whether SetCodeLayers
// tolerates a class name defined by both the parent resolver and a layer.
// Default: false (forbidden).
func (b *EngineBuilder) SetAllowSameNamesInParentAndLayers(allow bool) *EngineBuilder {
	return b.guard(func() { b.allowSameNamesInParentAndLayers = allow })
}

// SetCompilerFactory sets the compiler factory used by
// SetCodeLayersBySource and, absent a SetTopCodeCacheFactory call, by the
// engine's top code cache. Default: compiler.DefaultFactory().
func (b *EngineBuilder) SetCompilerFactory(f compiler.Factory) *EngineBuilder {
	return b.guard(func() { b.compilerFactory = f })
}

// SetTopCodeCacheFactory sets the factory used to build the engine's top
// code cache. Default: a factory using this builder's compiler factory.
func (b *EngineBuilder) SetTopCodeCacheFactory(f load.TopCodeCacheFactory) *EngineBuilder {
	return b.guard(func() { b.topCacheFactory = f })
}

// SetLogger sets the structured logger the engine uses for lifecycle
// diagnostics. Default: zerolog.Nop().
func (b *EngineBuilder) SetLogger(l zerolog.Logger) *EngineBuilder {
	return b.guard(func() { b.logger = l })
}

// Err returns the error recorded by the first setter call made after
// Build, or any validation error raised by Build itself.
func (b *EngineBuilder) Err() error {
	return b.err
}

// Build commits the builder, filling in defaults on first call, and
// returns the assembled engine. Calling Build again returns an equivalent
// (but distinct) engine without re-deriving the defaults.
func (b *EngineBuilder) Build() (*LayeredEngine, error) {
	if b.err != nil {
		return nil, b.err
	}

	if !b.committed {
		if b.compilerFactory == nil {
			b.compilerFactory = compiler.DefaultFactory()
		}
		b.committed = true
		if b.topCacheFactory == nil {
			factory, err := load.NewTopCodeCacheBuilder().
				SetCompilerFactory(b.compilerFactory).
				SetLogger(b.logger).
				Build()
			if err != nil {
				b.err = err
				return nil, err
			}
			b.topCacheFactory = factory
		}
	}

	id := newEngineID()

	var topCache *load.TopCodeCache
	if b.withTopCache {
		topCache = b.topCacheFactory.NewTopCodeCache(b.parent)
	}

	resolver := load.NewResolver(b.parent, nil, topCache, b.layerMode, b.topMode)
	defaultLoader := newLoader(id, 0, true, resolver)

	e := &LayeredEngine{
		id:                              id,
		defaultLoader:                   defaultLoader,
		attachedLoaders:                 make(map[weak.Pointer[Loader]]struct{}),
		parent:                          b.parent,
		layerMode:                       b.layerMode,
		topMode:                         b.topMode,
		withTopCache:                    b.withTopCache,
		allowSameNamesAcrossLayers:      b.allowSameNamesAcrossLayers,
		allowSameNamesInParentAndLayers: b.allowSameNamesInParentAndLayers,
		compilerFactory:                 b.compilerFactory,
		topCache:                        topCache,
		log:                             b.logger,
	}
	e.registerAttachedLocked(defaultLoader)
	return e, nil
}
