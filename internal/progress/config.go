package progress

import "time"

// Config holds tracker settings.
type Config struct {
	Retry RetryConfig
}

// RetryConfig bounds how hard Save tries before giving up.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns sensible defaults. Waits stay short because saves
// happen on the interactive path.
func DefaultConfig() Config {
	return Config{
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 20 * time.Millisecond,
			MaxWait:     200 * time.Millisecond,
			Multiplier:  2.0,
		},
	}
}
