package config

import (
	"fmt"
	"strings"
	"time"
)

// CircuitBreakerConfig controls the breaker in front of the remote store.
// The breaker opens after more than ConsecutiveFailures failed calls in a row.
type CircuitBreakerConfig struct {
	Enabled             bool          `koanf:"enabled"`
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

// String returns a string representation of the CircuitBreakerConfig.
func (c *CircuitBreakerConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Circuit Breaker ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  consecutivefailures: %d\n", c.ConsecutiveFailures))
	b.WriteString(fmt.Sprintf("  opentimeout: %v\n", c.OpenTimeout))
	return b.String()
}

func (c *CircuitBreakerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ConsecutiveFailures == 0 {
		return fmt.Errorf("circuitbreaker.consecutivefailures must be greater than 0")
	}
	if c.OpenTimeout <= 0 {
		return fmt.Errorf("circuitbreaker.opentimeout must be greater than 0")
	}
	return nil
}
