package config

import (
	"fmt"
	"slices"
)

// Validate checks the configuration for values that cannot be defaulted away.
func (c *Config) Validate() error {
	if NormalizeRetryBackoff(c.Stream.Backoff) == "" {
		return fmt.Errorf("stream.backoff: unknown mode %q", c.Stream.Backoff)
	}
	if NormalizeRetryBackoff(c.Readiness.Backoff) == "" {
		return fmt.Errorf("readiness.backoff: unknown mode %q", c.Readiness.Backoff)
	}
	if c.Readiness.MaxAttempts < 1 {
		return fmt.Errorf("readiness.max_attempts must be at least 1")
	}
	if c.Stream.InitialDelayMS < 0 || c.Stream.MaxDelayMS < 0 {
		return fmt.Errorf("stream delays cannot be negative")
	}
	for _, m := range c.Modules.Enabled {
		if !slices.Contains(knownModules, m) {
			return fmt.Errorf("modules.enabled: unknown module %q", m)
		}
	}
	if c.Archive.Enabled && c.Archive.Path == "" {
		return fmt.Errorf("archive.path required when archive is enabled")
	}
	return nil
}
