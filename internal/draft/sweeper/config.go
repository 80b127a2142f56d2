package sweeper

import "time"

// Config controls the idle-draft sweep loop.
type Config struct {
	MaxIdle       time.Duration
	SweepInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxIdle:       30 * time.Minute,
		SweepInterval: time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.MaxIdle <= 0 {
		c.MaxIdle = defaults.MaxIdle
	}

	if c.SweepInterval <= 0 {
		c.SweepInterval = defaults.SweepInterval
	}
	return c
}
