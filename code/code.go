package code

import (
	"fmt"
	"sort"

	"github.com/colterrand/layercache/errs"
)

// Code is the immutable output of compiling one or more sources together:
// a set of Bytecode blobs plus per-source compile metadata, indexed for O(1)
// lookup by source id and by class name. Nothing in this package mutates a
// Code after NewCode returns it.
type Code struct {
	infosBySource map[string]*CompiledSourceInfo
	bytecodeByClassName map[string]*Bytecode
	sourceIDs     []string // stable, sorted order for SourceIDs()
}

// NewCode validates and builds a Code from compiled source infos and their
// bytecode. Every class name that appears in any CompiledSourceInfo must
// have a corresponding Bytecode entry, and class names must be unique
// across the whole artifact.
func NewCode(infos []*CompiledSourceInfo, bytecodes []*Bytecode) (*Code, error) {
	if infos == nil {
		return nil, errs.NewInvalidArgument("compiled source infos are nil")
	}
	if bytecodes == nil {
		return nil, errs.NewInvalidArgument("bytecodes are nil")
	}
	if len(infos) == 0 {
		return nil, errs.NewInvalidArgument("no compiled source infos given")
	}

	byClass := make(map[string]*Bytecode, len(bytecodes))
	for _, bc := range bytecodes {
		if bc == nil {
			return nil, errs.NewInvalidArgument("bytecode entry is nil")
		}
		if _, dup := byClass[bc.ClassName()]; dup {
			return nil, errs.NewInvalidArgument(fmt.Sprintf("duplicate class name %q in code", bc.ClassName()))
		}
		byClass[bc.ClassName()] = bc
	}

	bySource := make(map[string]*CompiledSourceInfo, len(infos))
	for _, info := range infos {
		if info == nil {
			return nil, errs.NewInvalidArgument("compiled source info entry is nil")
		}
		id := info.Source().ID()
		if _, dup := bySource[id]; dup {
			return nil, errs.NewInvalidArgument(fmt.Sprintf("duplicate source id %q in code", id))
		}
		for name := range info.classNames {
			if _, ok := byClass[name]; !ok {
				return nil, errs.NewInvalidArgument(fmt.Sprintf("class %q declared by source %q has no bytecode", name, id))
			}
		}
		bySource[id] = info
	}

	ids := make([]string, 0, len(bySource))
	for id := range bySource {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return &Code{
		infosBySource:        bySource,
		bytecodeByClassName:  byClass,
		sourceIDs:            ids,
	}, nil
}

// SourceIDs returns the (sorted) set of source ids included in this Code.
func (c *Code) SourceIDs() []string {
	ids := make([]string, len(c.sourceIDs))
	copy(ids, c.sourceIDs)
	return ids
}

// HasSource reports whether sourceID is part of this Code.
func (c *Code) HasSource(sourceID string) bool {
	_, ok := c.infosBySource[sourceID]
	return ok
}

// SourceInfo returns the CompiledSourceInfo for sourceID, if present.
func (c *Code) SourceInfo(sourceID string) (*CompiledSourceInfo, bool) {
	info, ok := c.infosBySource[sourceID]
	return info, ok
}

// MainClassNameFor returns the entry-point class name for sourceID.
func (c *Code) MainClassNameFor(sourceID string) (string, bool) {
	info, ok := c.infosBySource[sourceID]
	if !ok {
		return "", false
	}
	return info.MainClassName(), true
}

// ClassNamesFor returns every class name produced from sourceID.
func (c *Code) ClassNamesFor(sourceID string) ([]string, bool) {
	info, ok := c.infosBySource[sourceID]
	if !ok {
		return nil, false
	}
	return info.ClassNames(), true
}

// BytecodeFor returns the Bytecode for className, if this Code defines it.
func (c *Code) BytecodeFor(className string) (*Bytecode, bool) {
	bc, ok := c.bytecodeByClassName[className]
	return bc, ok
}

// LastModifiedAtCompileTimeFor returns the compile-time modification stamp
// captured for sourceID.
func (c *Code) LastModifiedAtCompileTimeFor(sourceID string) (int64, bool) {
	info, ok := c.infosBySource[sourceID]
	if !ok {
		return 0, false
	}
	return info.LastModifiedAtCompileTime(), true
}

// ClassNames returns every class name this Code defines, across all
// sources, sorted. Used by the conflict analyzer and by engine pre-checks.
func (c *Code) ClassNames() []string {
	names := make([]string, 0, len(c.bytecodeByClassName))
	for n := range c.bytecodeByClassName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (c *Code) String() string {
	return fmt.Sprintf("Code[sources=%d, classes=%d]", len(c.infosBySource), len(c.bytecodeByClassName))
}

// ClassHandle is the result type of resolving a class through a
// ParentResolver: an opaque handle, since the parent lives outside this
// module's type universe. Layers in this module always hand back a
// *Bytecode, but an external parent resolver may hand back anything.
type ClassHandle any

// ParentResolver is the contract for the external class lookup that sits
// above (or below, depending on load mode) every layer stack. Resolve must
// never panic into its caller; ProbeParent below enforces that regardless.
type ParentResolver interface {
	Resolve(className string) (ClassHandle, bool)
}

// ProbeParent calls parent.Resolve, treating both an explicit "not found"
// and a panic from a misbehaving resolver as absence, per the contract in
// spec §4.2 and §6 ("no exception thrown by the parent propagates").
func ProbeParent(parent ParentResolver, className string) (handle ClassHandle, ok bool) {
	if parent == nil {
		return nil, false
	}
	defer func() {
		if recover() != nil {
			handle, ok = nil, false
		}
	}()
	return parent.Resolve(className)
}
