// Package load implements the two pieces that actually resolve class names:
// the weak-valued TopCodeCache for ad-hoc, never-registered sources, and the
// LayeredClassResolver that walks a parent resolver, a stack of Code layers,
// and an optional TopCodeCache in one of two configurable orders.
package load

// Mode selects the resolution order between two views of the world: the
// external parent resolver and "everything this module knows about"
// (either the layer stack, for LayerMode, or the combined parent+layers
// view versus the top cache, for TopMode).
type Mode int

const (
	// ParentFirst asks the parent (or the combined view) first, falling
	// back to the layers (or the top cache) only on absence.
	ParentFirst Mode = iota
	// CurrentFirst walks the layers (or the top cache) first, falling back
	// to the parent (or the combined view) only on absence.
	CurrentFirst
)

func (m Mode) String() string {
	switch m {
	case ParentFirst:
		return "ParentFirst"
	case CurrentFirst:
		return "CurrentFirst"
	default:
		return "Mode(?)"
	}
}
