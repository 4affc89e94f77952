package load

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/colterrand/layercache/code"
	"github.com/colterrand/layercache/source"
)

func oneClassLayer(t *testing.T, sourceID, className, body string, stamp int64) *code.Code {
	t.Helper()
	src, err := source.NewText(sourceID, body, stamp)
	require.NoError(t, err)
	info, err := code.NewCompiledSourceInfo(src, className, []string{className}, stamp)
	require.NoError(t, err)
	bc, err := code.NewBytecode(className, []byte(body))
	require.NoError(t, err)
	c, err := code.NewCode([]*code.CompiledSourceInfo{info}, []*code.Bytecode{bc})
	require.NoError(t, err)
	return c
}

func TestLoadClassCurrentFirstLayeredOverride(t *testing.T) {
	v1 := oneClassLayer(t, "s1", "A", "v1", 1)
	v2 := oneClassLayer(t, "s2", "A", "v2", 1)

	r := NewResolver(nil, []*code.Code{v1, v2}, nil, CurrentFirst, ParentFirst)
	h, err := r.LoadClass("A")
	require.NoError(t, err)
	require.Equal(t, "v2", string(h.(*code.Bytecode).Bytes()))

	reordered := NewResolver(nil, []*code.Code{v2, v1}, nil, CurrentFirst, ParentFirst)
	h, err = reordered.LoadClass("A")
	require.NoError(t, err)
	require.Equal(t, "v1", string(h.(*code.Bytecode).Bytes()))
}

type mapParent map[string]code.ClassHandle

func (p mapParent) Resolve(name string) (code.ClassHandle, bool) {
	h, ok := p[name]
	return h, ok
}

func TestLoadClassParentFirst(t *testing.T) {
	layer := oneClassLayer(t, "s1", "A", "layer-body", 1)
	parent := mapParent{"A": "parent-value"}

	r := NewResolver(parent, []*code.Code{layer}, nil, ParentFirst, ParentFirst)
	h, err := r.LoadClass("A")
	require.NoError(t, err)
	require.Equal(t, "parent-value", h)
}

func TestLoadClassNotFound(t *testing.T) {
	r := NewResolver(nil, nil, nil, ParentFirst, ParentFirst)
	_, err := r.LoadClass("Missing")
	require.Error(t, err)

	_, err = r.LoadClass("")
	require.Error(t, err)
}

func TestLoadMainClassFromLayer(t *testing.T) {
	layer := oneClassLayer(t, "s1", "A", "body", 1)
	r := NewResolver(nil, []*code.Code{layer}, nil, ParentFirst, ParentFirst)

	src, err := source.NewText("s1", "body", 1)
	require.NoError(t, err)
	h, err := r.LoadMainClass(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, "A", h.(*code.Bytecode).ClassName())
}

func TestLoadSourceClassRejectsUnknownName(t *testing.T) {
	layer := oneClassLayer(t, "s1", "A", "body", 1)
	r := NewResolver(nil, []*code.Code{layer}, nil, ParentFirst, ParentFirst)

	src, _ := source.NewText("s1", "body", 1)
	_, err := r.LoadSourceClass(context.Background(), src, "NotDeclared")
	require.Error(t, err)
}

func TestLoadMainClassFallsBackToTopCache(t *testing.T) {
	r := buildResolverWithEchoTopCache(t, nil)

	src, err := source.NewText("ad-hoc", "ad-hoc-body", 1)
	require.NoError(t, err)
	h, err := r.LoadMainClass(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, "ad-hoc", h.(*code.Bytecode).ClassName())
}

func TestLoadMainClassFailsWithoutTopCacheForUnregisteredSource(t *testing.T) {
	r := NewResolver(nil, nil, nil, ParentFirst, ParentFirst)
	src, _ := source.NewText("ad-hoc", "body", 1)
	_, err := r.LoadMainClass(context.Background(), src)
	require.Error(t, err)
}

func buildResolverWithEchoTopCache(t *testing.T, layers []*code.Code) *LayeredClassResolver {
	t.Helper()
	factory, err := NewTopCodeCacheBuilder().Build()
	require.NoError(t, err)
	cache := factory.NewTopCodeCache(nil)
	return NewResolver(nil, layers, cache, ParentFirst, ParentFirst)
}

func TestTopModeCurrentFirstPrefersTopCacheOnOverlap(t *testing.T) {
	layer := oneClassLayer(t, "dup", "dup", "layer-version", 1)
	r := buildResolverWithEchoTopCache(t, []*code.Code{layer})
	r = NewResolver(r.parent, r.layers, r.topCache, ParentFirst, CurrentFirst)

	src, err := source.NewText("dup", "top-version", 1)
	require.NoError(t, err)
	h, err := r.LoadMainClass(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, "top-version", string(h.(*code.Bytecode).Bytes()), "CurrentFirst topMode biases toward the top cache on overlap")
}

func TestCloneSharesTopCache(t *testing.T) {
	r := buildResolverWithEchoTopCache(t, nil)
	clone := r.Clone()
	require.Same(t, r.topCache, clone.topCache)
}

func TestCloneWithSeparateTopCacheIsIndependent(t *testing.T) {
	r := buildResolverWithEchoTopCache(t, nil)
	clone := r.CloneWithSeparateTopCache()
	require.NotSame(t, r.topCache, clone.topCache)

	src, err := source.NewText("s", "body", 1)
	require.NoError(t, err)
	_, err = clone.LoadMainClass(context.Background(), src)
	require.NoError(t, err)

	require.Nil(t, r.topCache.lookup("s", 1), "the original resolver's top cache must not see the clone's compile")
}
