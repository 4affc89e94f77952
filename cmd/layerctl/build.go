package main

import (
	"context"
	"fmt"

	"github.com/colterrand/layercache/config"
	"github.com/colterrand/layercache/engine"
	"github.com/colterrand/layercache/source"
)

// buildEngine constructs a LayeredEngine from the resolved config, with
// one layer per path in layerPaths (in the order given, bottom layer
// first) — each path compiled by itself into its own bundle. When the
// config allows the same class names across layers, later paths shadow
// earlier ones for any overlapping class name, per engine.SetCodeLayers'
// ordering rule; otherwise an overlap fails with a class name conflict.
func buildEngine(ctx context.Context, layerPaths []string) (*engine.LayeredEngine, error) {
	e, err := engine.LoadFromConfig(config.FromViper(v), nil)
	if err != nil {
		return nil, fmt.Errorf("building engine: %w", err)
	}
	if len(layerPaths) == 0 {
		return e, nil
	}

	var factory source.Factory
	bundles := make([]source.Bundle, 0, len(layerPaths))
	for _, path := range layerPaths {
		f, err := factory.NewFile(path)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", path, err)
		}
		bundles = append(bundles, source.Bundle{Name: path, Sources: []source.Source{f}})
	}

	if err := e.SetCodeLayersBySource(ctx, bundles); err != nil {
		return nil, fmt.Errorf("compiling layers: %w", err)
	}
	return e, nil
}
