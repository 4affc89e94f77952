package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/colterrand/layercache/config"
)

func TestLoadFromConfigAppliesSettings(t *testing.T) {
	cfg := config.Defaults()
	cfg.WithTopCache = false

	e, err := LoadFromConfig(cfg, nil)
	require.NoError(t, err)
	require.False(t, e.withTopCache)
	require.Equal(t, 0, len(e.Layers()))
}

func TestLoadFromConfigRejectsBadMode(t *testing.T) {
	cfg := config.Defaults()
	cfg.LayerMode = "sideways"

	_, err := LoadFromConfig(cfg, nil)
	require.Error(t, err)
}
