package gpu

import "time"

// Config controls renderer resource sizing and submission behavior.
// The zero value means DefaultConfig.
type Config struct {
	// InitialRectCapacity sizes the first instance buffer allocation, in
	// rect records. The buffer still grows past it on demand and never
	// shrinks.
	InitialRectCapacity int

	// SubmitTimeout bounds the fence wait after a readback submission.
	SubmitTimeout time.Duration
}

// DefaultConfig returns the capacities used when none are configured.
func DefaultConfig() Config {
	return Config{
		InitialRectCapacity: 256,
		SubmitTimeout:       5 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.InitialRectCapacity <= 0 {
		c.InitialRectCapacity = def.InitialRectCapacity
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = def.SubmitTimeout
	}
	return c
}
