package config

import (
	"fmt"
	"log"
	"strings"
)

const defaultPProfAddr = "localhost:6060"

// PProfConfig enables the net/http/pprof endpoints on a separate listener.
type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// String returns a string representation of the pprof configuration.
func (c *PProfConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- PProf ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  address: %s\n", c.Addr))
	return b.String()
}

func (c *PProfConfig) Validate() error {
	if c.Enabled && c.Addr == "" {
		log.Println("Using default value for pprof.addr")
		c.Addr = defaultPProfAddr
	}
	return nil
}
