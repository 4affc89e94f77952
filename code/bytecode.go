// Package code holds the immutable compiled-artifact types: Bytecode, the
// per-source compile metadata, the Code artifact that bundles both, and the
// pure conflict-detection functions that walk layer stacks of Code. These
// types are produced by a compiler (an external collaborator, see the
// compiler package) and consumed by the load and engine packages; nothing in
// this package mutates anything after construction.
package code

import (
	"bytes"
	"fmt"

	"github.com/colterrand/layercache/errs"
)

// Bytecode is a single compiled class: its name, plus the raw bytes a VM or
// class loader would load. Both fields are required and immutable after
// construction.
type Bytecode struct {
	className string
	data      []byte
}

// NewBytecode constructs a Bytecode. className must be non-empty and data
// must be non-nil, though it may be empty.
func NewBytecode(className string, data []byte) (*Bytecode, error) {
	if className == "" {
		return nil, errs.NewInvalidArgument("class name is empty")
	}
	if data == nil {
		return nil, errs.NewInvalidArgument("bytes are nil")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return &Bytecode{className: className, data: cp}, nil
}

// ClassName returns the name of the compiled class.
func (b *Bytecode) ClassName() string {
	return b.className
}

// Bytes returns a copy of the compiled bytes. A copy is returned so callers
// cannot mutate the Bytecode's immutable state through the returned slice.
func (b *Bytecode) Bytes() []byte {
	cp := make([]byte, len(b.data))
	copy(cp, b.data)
	return cp
}

func (b *Bytecode) String() string {
	return fmt.Sprintf("Bytecode[className=%s, bytes=%d]", b.className, len(b.data))
}

// Equal reports whether two Bytecode values have the same class name and
// identical bytes.
func (b *Bytecode) Equal(other *Bytecode) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.className == other.className && bytes.Equal(b.data, other.data)
}
