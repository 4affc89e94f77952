// Package source defines the Source contract: an addressable unit of script
// text identified by a stable id, plus a modification stamp that callers may
// only compare for inequality. This package intentionally has no opinion
// about where source text comes from or what language it is in — those are
// external collaborators per the engine's design.
package source

import "fmt"

// Source is implemented by callers to describe one compilable unit. Two
// Sources are considered equal if and only if their IDs are equal; this
// package does not enforce that itself since Go has no operator-overloading
// equivalent of Java's equals()/hashCode() — callers comparing Sources
// should compare ID() directly, which is what every package in this module
// does.
type Source interface {
	// ID returns the stable identifier of this source.
	ID() string

	// ModificationStamp returns an opaque integer that changes whenever the
	// source's content changes. Consumers must only test inequality, never
	// ordering.
	ModificationStamp() int64

	// String returns a string suitable for logging.
	String() string
}

// Equal reports whether a and b identify the same source, per the id-only
// equality contract above. A nil Source is never equal to anything.
func Equal(a, b Source) bool {
	if a == nil || b == nil {
		return false
	}
	return a.ID() == b.ID()
}

// Bundle is a named, ordered group of Sources that compile together into one
// Code layer. It corresponds to ch.grengine.sources.Sources in the original
// implementation.
type Bundle struct {
	Name    string
	Sources []Source
}

func (b Bundle) String() string {
	return fmt.Sprintf("Bundle[name=%s, sources=%d]", b.Name, len(b.Sources))
}
