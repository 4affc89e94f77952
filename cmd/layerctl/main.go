// Command layerctl is a demo and operator CLI over the layercache engine:
// it builds an in-process LayeredEngine from one or more files, each
// treated as its own layer, and resolves class names against it. It
// exists to exercise engine.LayeredEngine end to end, not as a real
// scripting-language front end — there is none in scope here.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}
