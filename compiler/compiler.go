// Package compiler defines the external compiler contract the engine and
// the top code cache depend on: something that turns a set of Sources into
// a Code artifact. This module never implements a real scripting-language
// front end — that is explicitly out of scope (spec §1) — but the Echo
// compiler below exists so the engine, the top cache, and their tests have
// something deterministic to compile against.
package compiler

import (
	"context"
	"fmt"

	"github.com/colterrand/layercache/code"
	"github.com/colterrand/layercache/errs"
	"github.com/colterrand/layercache/source"
)

// Compiler turns one or more Sources, compiled together, into a Code
// artifact. It must be deterministic with respect to source ids for the
// purposes of CompiledSourceInfo, and may fail with a *errs.CompileError
// carrying the offending source id and a diagnostic.
type Compiler interface {
	Compile(ctx context.Context, parent code.ParentResolver, bundle source.Bundle) (*code.Code, error)
}

// Func adapts a plain function to the Compiler interface, the same pattern
// as http.HandlerFunc.
type Func func(ctx context.Context, parent code.ParentResolver, bundle source.Bundle) (*code.Code, error)

func (f Func) Compile(ctx context.Context, parent code.ParentResolver, bundle source.Bundle) (*code.Code, error) {
	return f(ctx, parent, bundle)
}

// Factory produces Compiler instances, mirroring
// ch.grengine.code.CompilerFactory. Top code caches and engines are
// configured with a Factory rather than a bare Compiler so that each
// compile (or each layer build) can get its own, independently stateful
// Compiler if the implementation needs one.
type Factory interface {
	NewCompiler() Compiler
}

// FactoryFunc adapts a plain function to the Factory interface.
type FactoryFunc func() Compiler

func (f FactoryFunc) NewCompiler() Compiler {
	return f()
}

// DefaultFactory returns the package-level default: a Factory that always
// hands back the Echo compiler. Engines and top caches fall back to this
// when no compiler factory is configured, matching
// DefaultTopCodeCacheFactory's default of DefaultGroovyCompilerFactory.
func DefaultFactory() Factory {
	return FactoryFunc(func() Compiler { return Echo() })
}

// Echo returns a reference Compiler whose "compiled" class name is the
// source id itself and whose bytecode is the verbatim source text, for
// sources that expose it (source.Text and source.File). It is deterministic
// and side-effect free, suitable as the default for tests and the demo CLI.
func Echo() Compiler {
	return Func(echoCompile)
}

func echoCompile(_ context.Context, _ code.ParentResolver, bundle source.Bundle) (*code.Code, error) {
	if len(bundle.Sources) == 0 {
		return nil, errs.NewInvalidArgument("bundle has no sources")
	}

	infos := make([]*code.CompiledSourceInfo, 0, len(bundle.Sources))
	bytecodes := make([]*code.Bytecode, 0, len(bundle.Sources))

	for _, src := range bundle.Sources {
		text, err := readText(src)
		if err != nil {
			return nil, errs.NewCompileError(src.ID(), "could not read source text", err)
		}
		className := src.ID()
		bc, err := code.NewBytecode(className, []byte(text))
		if err != nil {
			return nil, errs.NewCompileError(src.ID(), err.Error(), err)
		}
		info, err := code.NewCompiledSourceInfo(src, className, []string{className}, src.ModificationStamp())
		if err != nil {
			return nil, errs.NewCompileError(src.ID(), err.Error(), err)
		}
		infos = append(infos, info)
		bytecodes = append(bytecodes, bc)
	}

	c, err := code.NewCode(infos, bytecodes)
	if err != nil {
		return nil, errs.NewCompileError(bundle.Name, err.Error(), err)
	}
	return c, nil
}

// textSource is satisfied by source.Text.
type textSource interface {
	Text() string
}

// fallibleTextSource is satisfied by source.File.
type fallibleTextSource interface {
	Text() (string, error)
}

func readText(src source.Source) (string, error) {
	switch s := src.(type) {
	case textSource:
		return s.Text(), nil
	case fallibleTextSource:
		return s.Text()
	default:
		return "", fmt.Errorf("source %q of type %T has no readable text; supply a custom Compiler", src.ID(), src)
	}
}
