// Package hgconfig holds the tunables the engine exposes as
// implementation choices rather than algorithmic semantics: cache
// sizing and optional snapshot persistence. Modeled on the teacher's
// YAML-tagged Config/Default/Validate shape.
package hgconfig

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// EngineConfig configures one Graph instance.
type EngineConfig struct {
	// AtomCacheSize bounds the LRU fronting the atom/string side index
	// (spec §4.1 "implementers may maintain a side index"). 0 disables
	// the cache; lookups then always hit the underlying map.
	AtomCacheSize int `yaml:"atom_cache_size"`

	// SnapshotPath, if non-empty, is the SQLite file the graph can be
	// saved to and reloaded from (spec §6, optional persistence).
	SnapshotPath string `yaml:"snapshot_path"`

	// LockTimeout bounds how long Snapshot()/LoadSnapshot() wait to
	// acquire the exclusive file lock before giving up.
	LockTimeout time.Duration `yaml:"lock_timeout"`
}

// Default returns the configuration used when the caller does not
// supply one: a modestly sized atom cache and no persistence.
func Default() EngineConfig {
	return EngineConfig{
		AtomCacheSize: 4096,
		SnapshotPath:  "",
		LockTimeout:   5 * time.Second,
	}
}

// Validate rejects configurations that cannot be acted on.
func (c EngineConfig) Validate() error {
	if c.AtomCacheSize < 0 {
		return fmt.Errorf("atom_cache_size must be >= 0, got %d", c.AtomCacheSize)
	}
	if c.LockTimeout < 0 {
		return fmt.Errorf("lock_timeout must be >= 0, got %s", c.LockTimeout)
	}
	return nil
}

// Load parses a YAML document into an EngineConfig, starting from
// Default() so unset fields keep their defaults.
func Load(data []byte) (EngineConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}
