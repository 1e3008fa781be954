package config

import (
	"fmt"
	"strings"
)

// ControllerConfig tunes the interaction controller.
// ClearConcurrency caps parallel requests of a bulk clear; 0 means no cap.
type ControllerConfig struct {
	ClearConcurrency int `koanf:"clearconcurrency"`
}

// String returns a string representation of the controller configuration.
func (c *ControllerConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Controller ---\n")
	b.WriteString(fmt.Sprintf("  clearconcurrency: %d\n", c.ClearConcurrency))
	return b.String()
}

func (c *ControllerConfig) Validate() error {
	if c.ClearConcurrency < 0 {
		return fmt.Errorf("controller.clearconcurrency must not be negative")
	}
	return nil
}
