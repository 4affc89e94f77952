// Package config loads the ambient defaults used to build a
// engine.LayeredEngine at process start: load mode, top-cache policy, and
// conflict tolerance. It favors a TOML file on disk, overridable by CLI
// flags and environment variables bound through viper, matching how the
// teacher's command-line tooling layers viper over cobra flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config is the ambient configuration for a LayeredEngine, loaded from a
// TOML file, environment variables (LAYERCTL_*), or CLI flags, in
// increasing order of precedence.
type Config struct {
	LayerMode                       string `toml:"layer_mode" mapstructure:"layer_mode"`
	TopMode                         string `toml:"top_mode" mapstructure:"top_mode"`
	WithTopCache                    bool   `toml:"with_top_cache" mapstructure:"with_top_cache"`
	AllowSameNamesAcrossLayers      bool   `toml:"allow_same_names_across_layers" mapstructure:"allow_same_names_across_layers"`
	AllowSameNamesInParentAndLayers bool   `toml:"allow_same_names_in_parent_and_layers" mapstructure:"allow_same_names_in_parent_and_layers"`
}

// Defaults mirrors engine.NewEngineBuilder's own defaults, so running with
// no config file at all builds the same engine as the builder's defaults.
// A zero Config differs: its empty modes parse as parent_first and its top
// cache is off.
func Defaults() Config {
	return Config{
		LayerMode:    "current_first",
		TopMode:      "parent_first",
		WithTopCache: true,
	}
}

// DefaultPath returns "~/.layerctl.toml", the default config file location
// the demo CLI checks if no --config flag is given.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".layerctl.toml"), nil
}

// Load reads path as TOML into a Config seeded with Defaults. A missing
// file is not an error: the caller gets the defaults back unchanged.
func Load(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// BindFlags registers this package's keys with viper at the given
// defaults, so that CLI flags and LAYERCTL_-prefixed environment variables
// can override whatever a config file set. Callers still call Load first
// and pass its result as defaults, then read the final values back out of
// viper (viper.GetString("layer_mode"), etc.) once flags are parsed.
func BindFlags(v *viper.Viper, defaults Config) {
	v.SetEnvPrefix("layerctl")
	v.AutomaticEnv()
	v.SetDefault("layer_mode", defaults.LayerMode)
	v.SetDefault("top_mode", defaults.TopMode)
	v.SetDefault("with_top_cache", defaults.WithTopCache)
	v.SetDefault("allow_same_names_across_layers", defaults.AllowSameNamesAcrossLayers)
	v.SetDefault("allow_same_names_in_parent_and_layers", defaults.AllowSameNamesInParentAndLayers)
}

// FromViper reads this package's keys back out of v, after BindFlags and
// any cobra flag binding have run.
func FromViper(v *viper.Viper) Config {
	return Config{
		LayerMode:                       v.GetString("layer_mode"),
		TopMode:                         v.GetString("top_mode"),
		WithTopCache:                    v.GetBool("with_top_cache"),
		AllowSameNamesAcrossLayers:      v.GetBool("allow_same_names_across_layers"),
		AllowSameNamesInParentAndLayers: v.GetBool("allow_same_names_in_parent_and_layers"),
	}
}
