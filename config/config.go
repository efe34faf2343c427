// Package config holds the engine's static configuration: the mapping
// list, debounce interval, and skip-predicate policy selection. CLI
// argument parsing is out of scope (spec.md §1); cmd/dsync binds pflag
// flags into a Config, the way rclone's cmd package binds pflag flags
// into its fs.ConfigInfo before constructing a backend.
package config

import (
	"fmt"
	"time"

	dfs "github.com/rclone/dsync/fs"
)

// SkipPolicy names one of the standard skip predicates spec.md §6 defines.
type SkipPolicy string

const (
	SkipPolicyNone      SkipPolicy = "none"
	SkipPolicyDotGit    SkipPolicy = "dotgit"
	SkipPolicyGitignore SkipPolicy = "gitignore"
)

// Config is the engine's static configuration for one run.
type Config struct {
	Mappings   []dfs.Mapping
	DebounceMs time.Duration
	SkipPolicy SkipPolicy
	BlockSize  int
}

// Default returns a Config with spec.md's documented defaults:
// debounceMs=100, skip=none, B=4 MiB.
func Default() Config {
	return Config{
		DebounceMs: 100 * time.Millisecond,
		SkipPolicy: SkipPolicyNone,
		BlockSize:  dfs.B,
	}
}

// Validate reports an error if the configuration is unusable: no mappings,
// an unknown skip policy, or a non-positive debounce/block size.
func (c Config) Validate() error {
	if len(c.Mappings) == 0 {
		return fmt.Errorf("config: at least one mapping is required")
	}
	switch c.SkipPolicy {
	case SkipPolicyNone, SkipPolicyDotGit, SkipPolicyGitignore:
	default:
		return fmt.Errorf("config: unknown skip policy %q", c.SkipPolicy)
	}
	if c.DebounceMs <= 0 {
		return fmt.Errorf("config: debounceMs must be positive")
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("config: block size must be positive")
	}
	seen := make(map[string]string)
	for _, m := range c.Mappings {
		if m.LocalRoot == "" {
			return fmt.Errorf("config: mapping %q has an empty local root", m.Name)
		}
		if other, dup := seen[m.LocalRoot]; dup {
			return fmt.Errorf("config: mapping %q and %q share local root %q", m.Name, other, m.LocalRoot)
		}
		seen[m.LocalRoot] = m.Name
	}
	return nil
}
