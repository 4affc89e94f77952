package load

import (
	"context"

	"github.com/colterrand/layercache/code"
	"github.com/colterrand/layercache/errs"
	"github.com/colterrand/layercache/source"
)

// LayeredClassResolver resolves class names across a parent resolver, an
// ordered stack of Code layers (bottom-to-top, index 0..n-1), and an
// optional top code cache for ad-hoc sources. It is immutable once built:
// Clone and CloneWithSeparateTopCache are the only ways to get a resolver
// with a different top cache, and SetCodeLayers-style updates always
// produce a brand new resolver rather than mutating this one in place.
type LayeredClassResolver struct {
	parent    code.ParentResolver
	layers    []*code.Code // shared by reference; never mutated
	topCache  *TopCodeCache
	layerMode Mode
	topMode   Mode
}

// NewResolver assembles a resolver from already-validated parts, with no
// conflict checking of its own: LayeredClassResolverBuilder and the engine
// package each run whatever pre-checks their own configuration calls for
// before reaching here.
func NewResolver(parent code.ParentResolver, layers []*code.Code, topCache *TopCodeCache, layerMode, topMode Mode) *LayeredClassResolver {
	return &LayeredClassResolver{
		parent:    parent,
		layers:    layers,
		topCache:  topCache,
		layerMode: layerMode,
		topMode:   topMode,
	}
}

// Resolve lets a LayeredClassResolver itself serve as another resolver's
// parent — the basis for engines chaining off of one another's default
// loader. A lookup failure of any kind is reported as plain absence, per
// the ParentResolver contract.
func (r *LayeredClassResolver) Resolve(name string) (code.ClassHandle, bool) {
	h, err := r.LoadClass(name)
	if err != nil {
		return nil, false
	}
	return h, true
}

// LoadClass resolves a class by name only, without reference to any
// Source. The top cache is never consulted by this form (spec §4.4.1).
func (r *LayeredClassResolver) LoadClass(name string) (code.ClassHandle, error) {
	if name == "" {
		return nil, errs.NewInvalidArgument("class name is empty")
	}
	switch r.layerMode {
	case ParentFirst:
		if h, ok := code.ProbeParent(r.parent, name); ok {
			return h, nil
		}
		if bc, ok := r.resolveInLayers(name); ok {
			return bc, nil
		}
	default: // CurrentFirst
		if bc, ok := r.resolveInLayers(name); ok {
			return bc, nil
		}
		if h, ok := code.ProbeParent(r.parent, name); ok {
			return h, nil
		}
	}
	return nil, errs.NewLoadError(name, "class not found in parent or any layer")
}

func (r *LayeredClassResolver) resolveInLayers(name string) (*code.Bytecode, bool) {
	for i := len(r.layers) - 1; i >= 0; i-- {
		if bc, ok := r.layers[i].BytecodeFor(name); ok {
			return bc, true
		}
	}
	return nil, false
}

// LoadMainClass resolves the entry-point class for src (spec §4.4.2).
func (r *LayeredClassResolver) LoadMainClass(ctx context.Context, src source.Source) (code.ClassHandle, error) {
	return r.loadFromSource(ctx, src, "")
}

// LoadSourceClass resolves the named class within src, failing with
// "class not in source" if src does not declare that class name.
func (r *LayeredClassResolver) LoadSourceClass(ctx context.Context, src source.Source, name string) (code.ClassHandle, error) {
	if name == "" {
		return nil, errs.NewInvalidArgument("class name is empty")
	}
	return r.loadFromSource(ctx, src, name)
}

// attempt is the result of trying one of the two views (layers or top
// cache) for a source-scoped load: found the Bytecode, didn't have the
// source at all, or failed outright (a compile error, or a declared-but-
// absent class name).
type attempt struct {
	handle code.ClassHandle
	found  bool
	err    error
}

func (r *LayeredClassResolver) loadFromSource(ctx context.Context, src source.Source, name string) (code.ClassHandle, error) {
	if src == nil {
		return nil, errs.NewInvalidArgument("source is nil")
	}

	layerInfo, layerCode, inLayers := r.findInLayers(src.ID())
	hasTop := r.topCache != nil

	tryLayers := func() attempt {
		target, err := targetClassName(layerInfo, name)
		if err != nil {
			return attempt{err: err}
		}
		bc, ok := layerCode.BytecodeFor(target)
		if !ok {
			return attempt{} // declared main class always has bytecode by Code's invariant; this is defensive
		}
		return attempt{handle: bc, found: true}
	}

	tryTop := func() attempt {
		c, err := r.topCache.GetUpToDate(ctx, src)
		if err != nil {
			return attempt{err: err}
		}
		info, _ := c.SourceInfo(src.ID())
		target, err := targetClassName(info, name)
		if err != nil {
			return attempt{err: err}
		}
		bc, ok := c.BytecodeFor(target)
		if !ok {
			return attempt{}
		}
		return attempt{handle: bc, found: true}
	}

	switch {
	case inLayers && hasTop && r.topMode == CurrentFirst:
		// Open question resolved per spec §9: in this configuration, bias
		// toward the top cache when a source exists in both places.
		if a := tryTop(); a.err != nil {
			return nil, a.err
		} else if a.found {
			return a.handle, nil
		}
		if a := tryLayers(); a.err != nil {
			return nil, a.err
		} else if a.found {
			return a.handle, nil
		}
	case inLayers:
		if a := tryLayers(); a.err != nil {
			return nil, a.err
		} else if a.found {
			return a.handle, nil
		}
		if hasTop {
			if a := tryTop(); a.err != nil {
				return nil, a.err
			} else if a.found {
				return a.handle, nil
			}
		}
	case hasTop:
		if a := tryTop(); a.err != nil {
			return nil, a.err
		} else if a.found {
			return a.handle, nil
		}
	default:
		return nil, errs.NewLoadError(name, "source not found in any layer and no top cache configured")
	}

	if name == "" {
		return nil, errs.NewLoadError("", "main class not found for source "+src.ID())
	}
	return nil, errs.NewLoadError(name, "class not found")
}

// targetClassName resolves the class name to look up given an optional
// explicit name: the source's main class when name is empty, otherwise
// name itself provided the source actually declares it.
func targetClassName(info *code.CompiledSourceInfo, name string) (string, error) {
	if info == nil {
		return "", errs.NewLoadError(name, "source has no compiled info")
	}
	if name == "" {
		return info.MainClassName(), nil
	}
	if !info.HasClassName(name) {
		return "", errs.NewLoadError(name, "class not in source")
	}
	return name, nil
}

// findInLayers returns the topmost layer (and its CompiledSourceInfo) that
// contains sourceID, if any.
func (r *LayeredClassResolver) findInLayers(sourceID string) (*code.CompiledSourceInfo, *code.Code, bool) {
	for i := len(r.layers) - 1; i >= 0; i-- {
		if info, ok := r.layers[i].SourceInfo(sourceID); ok {
			return info, r.layers[i], true
		}
	}
	return nil, nil, false
}

// Clone returns a new resolver sharing this resolver's layer stack and top
// cache instance — the "attached loader" style of cloning.
func (r *LayeredClassResolver) Clone() *LayeredClassResolver {
	return &LayeredClassResolver{
		parent:    r.parent,
		layers:    r.layers,
		topCache:  r.topCache,
		layerMode: r.layerMode,
		topMode:   r.topMode,
	}
}

// CloneWithSeparateTopCache returns a new resolver sharing this resolver's
// layer stack but with a freshly cloned, independent top cache — the
// "detached loader" style of cloning.
func (r *LayeredClassResolver) CloneWithSeparateTopCache() *LayeredClassResolver {
	var topCache *TopCodeCache
	if r.topCache != nil {
		topCache = r.topCache.Clone()
	}
	return &LayeredClassResolver{
		parent:    r.parent,
		layers:    r.layers,
		topCache:  topCache,
		layerMode: r.layerMode,
		topMode:   r.topMode,
	}
}

// Layers returns the layer stack this resolver was built from, bottom to
// top. Callers must not mutate the returned slice's backing Code values
// (they are immutable anyway); the slice itself is a copy.
func (r *LayeredClassResolver) Layers() []*code.Code {
	out := make([]*code.Code, len(r.layers))
	copy(out, r.layers)
	return out
}
