package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTextSource(t *testing.T) {
	s, err := NewText("a", "hello", 1)
	require.NoError(t, err)
	require.Equal(t, "a", s.ID())
	require.Equal(t, int64(1), s.ModificationStamp())
	require.Equal(t, "hello", s.Text())

	edited := s.WithText("world", 2)
	require.Equal(t, "world", edited.Text())
	require.Equal(t, int64(2), edited.ModificationStamp())
	require.Equal(t, "hello", s.Text(), "WithText must not mutate the receiver")
}

func TestNewTextRequiresID(t *testing.T) {
	_, err := NewText("", "hello", 1)
	require.Error(t, err)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.src")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))

	f, err := NewFile(path)
	require.NoError(t, err)
	require.Equal(t, path, f.ID())

	stamp1 := f.ModificationStamp()
	text, err := f.Text()
	require.NoError(t, err)
	require.Equal(t, "one", text)

	require.NoError(t, os.WriteFile(path, []byte("two"), 0o644))
	stamp2 := f.ModificationStamp()
	require.NotEqual(t, stamp1, stamp2)

	text, err = f.Text()
	require.NoError(t, err)
	require.Equal(t, "two", text)
}

func TestFileSourceMissing(t *testing.T) {
	f, err := NewFile("/does/not/exist")
	require.NoError(t, err)
	require.Equal(t, int64(-1), f.ModificationStamp())

	_, err = f.Text()
	require.Error(t, err)
}

func TestEqual(t *testing.T) {
	a, _ := NewText("x", "1", 1)
	b, _ := NewText("x", "2", 9)
	c, _ := NewText("y", "1", 1)

	require.True(t, Equal(a, b), "Sources with the same id are equal regardless of content")
	require.False(t, Equal(a, c))
	require.False(t, Equal(nil, a))
	require.False(t, Equal(a, nil))
}

func TestFactory(t *testing.T) {
	var f Factory
	text, err := f.NewText("a", "hi", 1)
	require.NoError(t, err)
	require.Equal(t, "a", text.ID())

	file, err := f.NewFile("/tmp/whatever")
	require.NoError(t, err)
	require.Equal(t, "/tmp/whatever", file.ID())
}

func TestBundleString(t *testing.T) {
	b := Bundle{Name: "app", Sources: []Source{}}
	require.Contains(t, b.String(), "app")
}
