package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/colterrand/layercache/load"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.Equal(t, "current_first", cfg.LayerMode)
	require.Equal(t, "parent_first", cfg.TopMode)
	require.True(t, cfg.WithTopCache)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)
}

func TestLoadParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layerctl.toml")
	contents := `
layer_mode = "parent_first"
with_top_cache = false
allow_same_names_across_layers = true
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "parent_first", cfg.LayerMode)
	require.False(t, cfg.WithTopCache)
	require.True(t, cfg.AllowSameNamesAcrossLayers)
	require.Equal(t, "parent_first", cfg.TopMode, "fields absent from the file keep their seeded default")
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("current_first")
	require.NoError(t, err)
	require.Equal(t, load.CurrentFirst, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	require.Equal(t, load.ParentFirst, m)

	m, err = ParseMode("PARENT_FIRST")
	require.NoError(t, err)
	require.Equal(t, load.ParentFirst, m)

	_, err = ParseMode("sideways")
	require.Error(t, err)
}

func TestBindFlagsAndFromViper(t *testing.T) {
	v := viper.New()
	BindFlags(v, Defaults())

	cfg := FromViper(v)
	require.Equal(t, Defaults(), cfg)
}
