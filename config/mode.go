package config

import (
	"fmt"
	"strings"

	"github.com/colterrand/layercache/load"
)

// ParseMode converts a config string ("parent_first" / "current_first",
// case-insensitive) into a load.Mode. An empty string is treated as
// "parent_first", load.Mode's own zero value.
func ParseMode(s string) (load.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "parent_first":
		return load.ParentFirst, nil
	case "current_first":
		return load.CurrentFirst, nil
	default:
		return 0, fmt.Errorf("unknown mode %q: want %q or %q", s, "parent_first", "current_first")
	}
}
