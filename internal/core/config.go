package core

import "time"

// EngineConfig holds runtime configuration for the headless web engine.
type EngineConfig struct {
	MemoryLimitMB int           // per-document script heap limit, 0 for engine default
	ScriptTimeout time.Duration // wall clock budget for page scripts and timers
	MinifyScripts bool          // minify inline page scripts before loading
	// Scripts maps external script URLs to their source. URLs without an
	// entry that are not a known typesetting library are skipped.
	Scripts map[string]string
}

// DefaultEngineConfig returns the configuration used when none is given.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		ScriptTimeout: 5 * time.Second,
	}
}
