package load

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/colterrand/layercache/code"
	"github.com/colterrand/layercache/compiler"
	"github.com/colterrand/layercache/source"
)

func countingFactory(calls *atomic.Int64) compiler.Factory {
	return compiler.FactoryFunc(func() compiler.Compiler {
		return compiler.Func(func(_ context.Context, _ code.ParentResolver, bundle source.Bundle) (*code.Code, error) {
			calls.Add(1)
			src := bundle.Sources[0]
			info, err := code.NewCompiledSourceInfo(src, src.ID(), []string{src.ID()}, src.ModificationStamp())
			if err != nil {
				return nil, err
			}
			bc, err := code.NewBytecode(src.ID(), []byte(src.ID()))
			if err != nil {
				return nil, err
			}
			return code.NewCode([]*code.CompiledSourceInfo{info}, []*code.Bytecode{bc})
		})
	})
}

type compileFailure struct{}

func (*compileFailure) Error() string { return "compile failed" }

func TestTopCodeCacheCompileOnce(t *testing.T) {
	var calls atomic.Int64
	factory, err := NewTopCodeCacheBuilder().SetCompilerFactory(countingFactory(&calls)).Build()
	require.NoError(t, err)
	cache := factory.NewTopCodeCache(nil)

	src, err := source.NewText("S", "body", 7)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*code.Code, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := cache.GetUpToDate(context.Background(), src)
			require.NoError(t, err)
			results[i] = c
		}(i)
	}
	wg.Wait()

	require.EqualValues(t, 1, calls.Load())
	for _, r := range results {
		require.Same(t, results[0], r)
	}
}

func TestTopCodeCacheRefreshesOnStampChange(t *testing.T) {
	var calls atomic.Int64
	factory, err := NewTopCodeCacheBuilder().SetCompilerFactory(countingFactory(&calls)).Build()
	require.NoError(t, err)
	cache := factory.NewTopCodeCache(nil)

	src, err := source.NewText("S", "v1", 1)
	require.NoError(t, err)
	c1, err := cache.GetUpToDate(context.Background(), src)
	require.NoError(t, err)
	require.EqualValues(t, 1, calls.Load())

	edited := src.WithText("v2", 2)
	c2, err := cache.GetUpToDate(context.Background(), edited)
	require.NoError(t, err)
	require.EqualValues(t, 2, calls.Load())
	require.NotSame(t, c1, c2)
}

func TestTopCodeCacheDoesNotCacheCompileFailures(t *testing.T) {
	var calls atomic.Int64
	failing := compiler.FactoryFunc(func() compiler.Compiler {
		return compiler.Func(func(_ context.Context, _ code.ParentResolver, _ source.Bundle) (*code.Code, error) {
			calls.Add(1)
			return nil, &compileFailure{}
		})
	})
	factory, err := NewTopCodeCacheBuilder().SetCompilerFactory(failing).Build()
	require.NoError(t, err)
	cache := factory.NewTopCodeCache(nil)

	src, _ := source.NewText("S", "body", 1)
	_, err = cache.GetUpToDate(context.Background(), src)
	require.Error(t, err)
	_, err = cache.GetUpToDate(context.Background(), src)
	require.Error(t, err)
	require.EqualValues(t, 2, calls.Load(), "a failed compile must not be cached; the next call retries")
}

func TestTopCodeCacheClone(t *testing.T) {
	var calls atomic.Int64
	factory, err := NewTopCodeCacheBuilder().SetCompilerFactory(countingFactory(&calls)).Build()
	require.NoError(t, err)
	cache := factory.NewTopCodeCache(nil)

	src, _ := source.NewText("S", "body", 1)
	_, err = cache.GetUpToDate(context.Background(), src)
	require.NoError(t, err)

	clone := cache.Clone()
	_, err = clone.GetUpToDate(context.Background(), src)
	require.NoError(t, err)
	require.EqualValues(t, 2, calls.Load(), "a clone starts with no entries of its own")
}

func TestTopCodeCacheBuilderOneShotCommit(t *testing.T) {
	b := NewTopCodeCacheBuilder()
	_, err := b.Build()
	require.NoError(t, err)

	b.SetLogger(b.logger)
	require.Error(t, b.Err())

	_, err = b.Build()
	require.Error(t, err, "Build must surface the sticky error recorded by a post-commit setter")
}
