package code

import (
	"fmt"
	"sort"

	"github.com/colterrand/layercache/errs"
	"github.com/colterrand/layercache/source"
)

// CompiledSourceInfo records what a single Source produced when compiled:
// its main (entry point) class name, every class name it produced, and the
// modification stamp the source carried at compile time.
type CompiledSourceInfo struct {
	src           source.Source
	mainClassName string
	classNames    map[string]struct{}
	lastModified  int64
}

// NewCompiledSourceInfo constructs a CompiledSourceInfo. src, mainClassName
// and classNames are required; classNames must include mainClassName.
func NewCompiledSourceInfo(src source.Source, mainClassName string, classNames []string, lastModifiedAtCompileTime int64) (*CompiledSourceInfo, error) {
	if src == nil {
		return nil, errs.NewInvalidArgument("source is nil")
	}
	if mainClassName == "" {
		return nil, errs.NewInvalidArgument("main class name is empty")
	}
	if classNames == nil {
		return nil, errs.NewInvalidArgument("class names are nil")
	}
	set := make(map[string]struct{}, len(classNames))
	for _, n := range classNames {
		set[n] = struct{}{}
	}
	if _, ok := set[mainClassName]; !ok {
		return nil, errs.NewInvalidArgument("main class name is not among class names")
	}
	return &CompiledSourceInfo{
		src:           src,
		mainClassName: mainClassName,
		classNames:    set,
		lastModified:  lastModifiedAtCompileTime,
	}, nil
}

func (i *CompiledSourceInfo) Source() source.Source    { return i.src }
func (i *CompiledSourceInfo) MainClassName() string    { return i.mainClassName }
func (i *CompiledSourceInfo) LastModifiedAtCompileTime() int64 { return i.lastModified }

// ClassNames returns a sorted copy of all class names this source produced.
func (i *CompiledSourceInfo) ClassNames() []string {
	names := make([]string, 0, len(i.classNames))
	for n := range i.classNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// HasClassName reports whether name was declared by this source.
func (i *CompiledSourceInfo) HasClassName(name string) bool {
	_, ok := i.classNames[name]
	return ok
}

func (i *CompiledSourceInfo) String() string {
	return fmt.Sprintf("CompiledSourceInfo[source=%s, mainClassName=%s, classNames=%d, lastModifiedAtCompileTime=%d]",
		i.src, i.mainClassName, len(i.classNames), i.lastModified)
}
