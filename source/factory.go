package source

import (
	"fmt"
	"os"
)

// Text is an in-memory Source with an explicit, caller-controlled
// modification stamp. It is the Source kind used by tests, REPL snippets,
// and the demo CLI — the equivalent of ch.grengine.source.DefaultTextSource.
type Text struct {
	id    string
	text  string
	stamp int64
}

// NewText constructs a Text source. id must be non-empty.
func NewText(id, text string, stamp int64) (*Text, error) {
	if id == "" {
		return nil, fmt.Errorf("source id is empty")
	}
	return &Text{id: id, text: text, stamp: stamp}, nil
}

func (t *Text) ID() string               { return t.id }
func (t *Text) ModificationStamp() int64 { return t.stamp }
func (t *Text) Text() string             { return t.text }
func (t *Text) String() string {
	return fmt.Sprintf("Text[id=%s, stamp=%d]", t.id, t.stamp)
}

// WithText returns a copy of t with new text and the given modification
// stamp, leaving t itself untouched. This is how tests simulate an edit.
func (t *Text) WithText(text string, stamp int64) *Text {
	return &Text{id: t.id, text: text, stamp: stamp}
}

// File is a Source backed by a file on disk. Its modification stamp is
// derived from the file's mtime, mirroring ch.grengine.source.FileSource.
type File struct {
	path string
}

// NewFile constructs a File source over path. The file's existence is not
// checked: while it is missing, ModificationStamp returns -1 and Text fails.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("file path is empty")
	}
	return &File{path: path}, nil
}

func (f *File) ID() string { return f.path }

func (f *File) ModificationStamp() int64 {
	info, err := os.Stat(f.path)
	if err != nil {
		return -1
	}
	return info.ModTime().UnixNano()
}

// Text reads and returns the file's current contents.
func (f *File) Text() (string, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (f *File) String() string {
	return fmt.Sprintf("File[path=%s]", f.path)
}

// Factory constructs Sources consistently, mirroring
// ch.grengine.source.DefaultSourceFactory.
type Factory struct{}

func (Factory) NewText(id, text string, stamp int64) (*Text, error) {
	return NewText(id, text, stamp)
}

func (Factory) NewFile(path string) (*File, error) {
	return NewFile(path)
}
