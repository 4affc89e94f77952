package load

import (
	"github.com/rs/zerolog"

	"github.com/colterrand/layercache/code"
	"github.com/colterrand/layercache/compiler"
	"github.com/colterrand/layercache/errs"
)

// TopCodeCacheFactory builds TopCodeCache instances against a fixed parent
// resolver, mirroring ch.grengine.load.TopCodeCacheFactory.
type TopCodeCacheFactory interface {
	NewTopCodeCache(parent code.ParentResolver) *TopCodeCache
}

type defaultTopCodeCacheFactory struct {
	compilerFactory compiler.Factory
	logger          zerolog.Logger
}

func (f *defaultTopCodeCacheFactory) NewTopCodeCache(parent code.ParentResolver) *TopCodeCache {
	c := &TopCodeCache{
		entries:         make(map[string]*cacheEntry),
		compilerFactory: f.compilerFactory,
		log:             f.logger,
	}
	c.parent.Store(&parentBox{resolver: parent})
	return c
}

// TopCodeCacheBuilder follows the one-shot commit protocol shared by every
// builder in this module: once Build has been called, further setters fail
// with an *errs.InvalidStateError recorded on the builder (and surfaced by
// Build). Build itself is idempotent.
type TopCodeCacheBuilder struct {
	committed       bool
	err             error
	compilerFactory compiler.Factory
	logger          zerolog.Logger
}

func NewTopCodeCacheBuilder() *TopCodeCacheBuilder {
	return &TopCodeCacheBuilder{}
}

func (b *TopCodeCacheBuilder) guard(set func()) *TopCodeCacheBuilder {
	if b.committed {
		b.err = errs.NewInvalidState("builder already used")
		return b
	}
	set()
	return b
}

// SetCompilerFactory sets the compiler factory used for ad-hoc compiles.
// Default: compiler.DefaultFactory().
func (b *TopCodeCacheBuilder) SetCompilerFactory(f compiler.Factory) *TopCodeCacheBuilder {
	return b.guard(func() { b.compilerFactory = f })
}

// SetLogger sets the structured logger used for cache diagnostics.
// Default: zerolog.Nop().
func (b *TopCodeCacheBuilder) SetLogger(l zerolog.Logger) *TopCodeCacheBuilder {
	return b.guard(func() { b.logger = l })
}

// Err returns the error recorded by the first setter call made after Build.
func (b *TopCodeCacheBuilder) Err() error {
	return b.err
}

// Build commits the builder, filling in defaults on first call, and
// returns a factory. Calling Build again returns an equivalent factory.
func (b *TopCodeCacheBuilder) Build() (TopCodeCacheFactory, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !b.committed {
		if b.compilerFactory == nil {
			b.compilerFactory = compiler.DefaultFactory()
		}
		b.committed = true
	}
	return &defaultTopCodeCacheFactory{compilerFactory: b.compilerFactory, logger: b.logger}, nil
}
