package engine

import (
	"fmt"

	"github.com/colterrand/layercache/code"
	"github.com/colterrand/layercache/config"
)

// LoadFromConfig builds a LayeredEngine from a config.Config value instead
// of call-site builder calls, for the common case of configuring a
// long-lived engine from a TOML file or bound CLI flags/env vars at
// process start. The returned engine still starts with an empty layer
// stack; callers call SetCodeLayers / SetCodeLayersBySource afterward.
func LoadFromConfig(cfg config.Config, parent code.ParentResolver) (*LayeredEngine, error) {
	layerMode, err := config.ParseMode(cfg.LayerMode)
	if err != nil {
		return nil, fmt.Errorf("layer_mode: %w", err)
	}
	topMode, err := config.ParseMode(cfg.TopMode)
	if err != nil {
		return nil, fmt.Errorf("top_mode: %w", err)
	}

	return NewEngineBuilder().
		SetParent(parent).
		SetLayerMode(layerMode).
		SetTopMode(topMode).
		SetWithTopCodeCache(cfg.WithTopCache).
		SetAllowSameNamesAcrossLayers(cfg.AllowSameNamesAcrossLayers).
		SetAllowSameNamesInParentAndLayers(cfg.AllowSameNamesInParentAndLayers).
		Build()
}
