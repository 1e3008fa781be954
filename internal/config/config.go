package config

import (
	"strings"

	"github.com/abgdnv/checklist/pkg/config"
	"github.com/abgdnv/checklist/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig        `koanf:"server"`
	Remote     config.RemoteStoreConfig `koanf:"remote"`
	Controller config.ControllerConfig  `koanf:"controller"`
	Log        config.LogConfig         `koanf:"log"`
	PProf      config.PProfConfig       `koanf:"pprof"`
	Shutdown   config.ShutdownConfig    `koanf:"shutdown"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Remote.String())
	b.WriteString(c.Controller.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.HTTPServer,
		&c.Remote,
		&c.Controller,
		&c.Log,
		&c.PProf,
		&c.Shutdown,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
