package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// RemoteStoreConfig points the client at the product collection resource.
type RemoteStoreConfig struct {
	URL            string               `koanf:"url"`
	Timeout        time.Duration        `koanf:"timeout"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

// String returns a string representation of the remote store configuration.
func (c *RemoteStoreConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Remote Store ---\n")
	b.WriteString(fmt.Sprintf("  url: %s\n", c.URL))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	b.WriteString(c.CircuitBreaker.String())
	return b.String()
}

func (c *RemoteStoreConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("remote store URL is not configured")
	}
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("remote store URL must be an absolute http(s) URL: %s", c.URL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("remote store timeout must be greater than 0")
	}
	return c.CircuitBreaker.Validate()
}
