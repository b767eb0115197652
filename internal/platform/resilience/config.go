package resilience

import (
	"fmt"
	"time"
)

// CircuitBreakerConfig tunes the breaker around one upstream: anubis, the
// roster API or QStash. Zero numeric fields take the package defaults.
type CircuitBreakerConfig struct {
	Enabled bool
	// FailureThreshold is the run of consecutive upstream failures that
	// opens the breaker.
	FailureThreshold int
	// OpenTimeout is how long calls are refused before trial calls resume.
	OpenTimeout time.Duration
	// HalfOpenMaxReq trial calls must all succeed to close the breaker.
	HalfOpenMaxReq int
}

const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 15 * time.Second
	defaultHalfOpenMaxReq   = 2
)

// Validate rejects an enabled breaker that could never open or never
// recover. Environment loading runs it before the zero-value defaults
// apply, so a literal 0 from the operator is an error rather than silently
// becoming the default.
func (c CircuitBreakerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch {
	case c.FailureThreshold < 1:
		return fmt.Errorf("failure threshold must be >= 1, got %d", c.FailureThreshold)
	case c.OpenTimeout <= 0:
		return fmt.Errorf("open timeout must be positive, got %s", c.OpenTimeout)
	case c.HalfOpenMaxReq < 1:
		return fmt.Errorf("half-open trial count must be >= 1, got %d", c.HalfOpenMaxReq)
	}
	return nil
}

func (c CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = defaultFailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaultOpenTimeout
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = defaultHalfOpenMaxReq
	}
	return c
}
