package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/colterrand/layercache/code"
	"github.com/colterrand/layercache/source"
)

func TestEchoCompilesTextSource(t *testing.T) {
	src, err := source.NewText("greeting", "hello world", 1)
	require.NoError(t, err)

	c, err := Echo().Compile(context.Background(), nil, source.Bundle{Name: "b", Sources: []source.Source{src}})
	require.NoError(t, err)

	main, ok := c.MainClassNameFor("greeting")
	require.True(t, ok)
	require.Equal(t, "greeting", main)

	bc, ok := c.BytecodeFor("greeting")
	require.True(t, ok)
	require.Equal(t, []byte("hello world"), bc.Bytes())
}

func TestEchoCompilesMultipleSources(t *testing.T) {
	a, _ := source.NewText("a", "A-body", 1)
	b, _ := source.NewText("b", "B-body", 1)

	c, err := Echo().Compile(context.Background(), nil, source.Bundle{Name: "bundle", Sources: []source.Source{a, b}})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, c.ClassNames())
}

func TestEchoRejectsEmptyBundle(t *testing.T) {
	_, err := Echo().Compile(context.Background(), nil, source.Bundle{Name: "empty"})
	require.Error(t, err)
}

func TestEchoRejectsUnreadableSource(t *testing.T) {
	file, _ := source.NewFile("/definitely/does/not/exist")
	_, err := Echo().Compile(context.Background(), nil, source.Bundle{Name: "b", Sources: []source.Source{file}})
	require.Error(t, err)
}

func TestDefaultFactoryProducesEcho(t *testing.T) {
	comp := DefaultFactory().NewCompiler()
	src, _ := source.NewText("x", "body", 1)
	c, err := comp.Compile(context.Background(), nil, source.Bundle{Name: "b", Sources: []source.Source{src}})
	require.NoError(t, err)
	require.True(t, c.HasSource("x"))
}

func TestFuncAdapter(t *testing.T) {
	called := false
	f := Func(func(_ context.Context, _ code.ParentResolver, bundle source.Bundle) (*code.Code, error) {
		called = true
		return nil, nil
	})
	_, err := f.Compile(context.Background(), nil, source.Bundle{})
	require.NoError(t, err)
	require.True(t, called)
}
