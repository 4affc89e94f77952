package load

import (
	"context"

	"github.com/colterrand/layercache/code"
	"github.com/colterrand/layercache/compiler"
	"github.com/colterrand/layercache/errs"
	"github.com/colterrand/layercache/source"
)

// LayeredClassResolverBuilder assembles a LayeredClassResolver, following
// the same one-shot commit protocol as TopCodeCacheBuilder: setters after
// the first Build call fail, whether that Build succeeded or not, and Build
// is idempotent.
//
// Exactly one of SetCodeLayers or SetSourcesLayers must be called before
// Build; SetSourcesLayers bundles are compiled into Code layers with the
// factory from SetCompilerFactory, or compiler.DefaultFactory() if none
// was set.
type LayeredClassResolverBuilder struct {
	committed bool
	err       error

	parent          code.ParentResolver
	layerMode       Mode
	topMode         Mode
	withTopCache    bool
	topCache        *TopCodeCache
	compilerFactory compiler.Factory

	codeLayers    []*code.Code
	sourceBundles []source.Bundle
	usedCode      bool
	usedSources   bool
}

func NewLayeredClassResolverBuilder() *LayeredClassResolverBuilder {
	return &LayeredClassResolverBuilder{withTopCache: true}
}

func (b *LayeredClassResolverBuilder) guard(set func()) *LayeredClassResolverBuilder {
	if b.committed {
		b.err = errs.NewInvalidState("builder already used")
		return b
	}
	set()
	return b
}

// SetParent sets the external parent resolver. Default: none.
func (b *LayeredClassResolverBuilder) SetParent(parent code.ParentResolver) *LayeredClassResolverBuilder {
	return b.guard(func() { b.parent = parent })
}

// SetLayerMode sets the order in which the parent and the layer stack are
// consulted for name-only lookups (LoadClass). Default: ParentFirst.
func (b *LayeredClassResolverBuilder) SetLayerMode(m Mode) *LayeredClassResolverBuilder {
	return b.guard(func() { b.layerMode = m })
}

// SetTopMode sets the order in which the layer stack and the top code
// cache are consulted when a source exists in both. Default: ParentFirst,
// which in this context means "prefer the layers". Has no effect unless a
// top code cache is enabled.
func (b *LayeredClassResolverBuilder) SetTopMode(m Mode) *LayeredClassResolverBuilder {
	return b.guard(func() { b.topMode = m })
}

// SetWithTopCodeCache enables or disables the built-in top code cache for
// ad-hoc sources. Default: true.
func (b *LayeredClassResolverBuilder) SetWithTopCodeCache(enabled bool) *LayeredClassResolverBuilder {
	return b.guard(func() { b.withTopCache = enabled })
}

// SetTopCodeCache installs a caller-provided TopCodeCache instead of having
// Build construct one. Implies SetWithTopCodeCache(true).
func (b *LayeredClassResolverBuilder) SetTopCodeCache(c *TopCodeCache) *LayeredClassResolverBuilder {
	return b.guard(func() { b.topCache = c; b.withTopCache = true })
}

// SetCompilerFactory sets the compiler factory used both for a
// builder-constructed top code cache and for SetSourcesLayers compiles.
// Default: compiler.DefaultFactory().
func (b *LayeredClassResolverBuilder) SetCompilerFactory(f compiler.Factory) *LayeredClassResolverBuilder {
	return b.guard(func() { b.compilerFactory = f })
}

// SetCodeLayers sets the layer stack directly from already-compiled Code,
// bottom layer first. Mutually exclusive with SetSourcesLayers.
func (b *LayeredClassResolverBuilder) SetCodeLayers(layers ...*code.Code) *LayeredClassResolverBuilder {
	return b.guard(func() {
		if b.usedSources {
			b.err = errs.NewInvalidState("SetCodeLayers and SetSourcesLayers are mutually exclusive")
			return
		}
		b.usedCode = true
		b.codeLayers = append([]*code.Code(nil), layers...)
	})
}

// SetSourcesLayers sets the layer stack from source bundles, bottom layer
// first; each bundle is compiled independently via the configured compiler
// factory when Build runs. Mutually exclusive with SetCodeLayers.
func (b *LayeredClassResolverBuilder) SetSourcesLayers(bundles ...source.Bundle) *LayeredClassResolverBuilder {
	return b.guard(func() {
		if b.usedCode {
			b.err = errs.NewInvalidState("SetCodeLayers and SetSourcesLayers are mutually exclusive")
			return
		}
		b.usedSources = true
		b.sourceBundles = append([]source.Bundle(nil), bundles...)
	})
}

// Err returns the error recorded by the first setter call made after
// Build, or any validation error raised by Build itself.
func (b *LayeredClassResolverBuilder) Err() error {
	return b.err
}

// Build compiles any source-layer bundles, checks the resulting layer
// stack for forbidden class name conflicts (spec §4.3), and returns the
// assembled resolver. It is idempotent: once committed, it returns an
// equivalent resolver on every subsequent call without recompiling.
func (b *LayeredClassResolverBuilder) Build(ctx context.Context) (*LayeredClassResolver, error) {
	if b.err != nil {
		return nil, b.err
	}

	if !b.committed {
		b.committed = true

		layers, err := b.resolveLayers(ctx)
		if err != nil {
			b.err = err
			return nil, err
		}
		if conflicts := code.SameNamesAcrossLayers(layers); len(conflicts) > 0 {
			b.err = code.ToConflictError(layers, conflicts, nil)
			return nil, b.err
		}
		if b.parent != nil {
			if conflicts := code.SameNamesInParentAndLayers(b.parent, layers); len(conflicts) > 0 {
				b.err = code.ToConflictError(layers, nil, conflicts)
				return nil, b.err
			}
		}

		var topCache *TopCodeCache
		if b.withTopCache {
			topCache = b.topCache
			if topCache == nil {
				factory, err := NewTopCodeCacheBuilder().SetCompilerFactory(b.effectiveCompilerFactory()).Build()
				if err != nil {
					b.err = err
					return nil, err
				}
				topCache = factory.NewTopCodeCache(b.parent)
			}
		}

		b.codeLayers = layers
		b.topCache = topCache
	}

	return NewResolver(b.parent, b.codeLayers, b.topCache, b.layerMode, b.topMode), nil
}

func (b *LayeredClassResolverBuilder) effectiveCompilerFactory() compiler.Factory {
	if b.compilerFactory != nil {
		return b.compilerFactory
	}
	return compiler.DefaultFactory()
}

func (b *LayeredClassResolverBuilder) resolveLayers(ctx context.Context) ([]*code.Code, error) {
	if b.usedCode {
		return b.codeLayers, nil
	}
	if !b.usedSources {
		return nil, errs.NewInvalidState("neither SetCodeLayers nor SetSourcesLayers was called")
	}
	comp := b.effectiveCompilerFactory().NewCompiler()
	layers := make([]*code.Code, 0, len(b.sourceBundles))
	for _, bundle := range b.sourceBundles {
		c, err := comp.Compile(ctx, b.parent, bundle)
		if err != nil {
			return nil, err
		}
		layers = append(layers, c)
	}
	return layers, nil
}

