package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/colterrand/layercache/errs"
	"github.com/colterrand/layercache/load"
)

// Loader is an opaque, identity-tagged handle onto a LayeredClassResolver.
// It carries the id of the engine that created it, a monotonically
// assigned loader number, and whether it is attached (its resolver is
// refreshed on layer updates) or detached (its resolver is frozen at
// creation). Two Loaders are equal iff they share both fields; compare
// with Equal, never with ==, since callers only ever see a *Loader.
type Loader struct {
	engineID     *EngineID
	loaderNumber int64
	isAttached   bool
	resolver     atomic.Pointer[load.LayeredClassResolver]
}

func newLoader(id *EngineID, number int64, attached bool, resolver *load.LayeredClassResolver) *Loader {
	l := &Loader{engineID: id, loaderNumber: number, isAttached: attached}
	l.resolver.Store(resolver)
	return l
}

// EngineID returns the capability token of the engine that created this
// loader.
func (l *Loader) EngineID() *EngineID { return l.engineID }

// LoaderNumber returns this loader's assigned number; 0 is always the
// default loader of whichever engine created it.
func (l *Loader) LoaderNumber() int64 { return l.loaderNumber }

// IsAttached reports whether this loader's resolver is refreshed when its
// engine's layer stack changes.
func (l *Loader) IsAttached() bool { return l.isAttached }

func (l *Loader) currentResolver() *load.LayeredClassResolver {
	return l.resolver.Load()
}

// swap replaces this loader's resolver, authenticated by presenting the
// same EngineID this loader was issued with. A mismatched id fails with
// *errs.InvalidStateError rather than silently doing nothing.
func (l *Loader) swap(id *EngineID, resolver *load.LayeredClassResolver) error {
	if id != l.engineID {
		return errs.NewInvalidState("loader not from this engine")
	}
	l.resolver.Store(resolver)
	return nil
}

// Equal reports whether l and other were issued by the same engine and
// carry the same loader number.
func (l *Loader) Equal(other *Loader) bool {
	if l == nil || other == nil {
		return false
	}
	return l.engineID == other.engineID && l.loaderNumber == other.loaderNumber
}

func (l *Loader) String() string {
	kind := "detached"
	if l.isAttached {
		kind = "attached"
	}
	return fmt.Sprintf("Loader[engine=%s, number=%d, %s]", l.engineID, l.loaderNumber, kind)
}
