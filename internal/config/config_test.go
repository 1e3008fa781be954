package config

import (
	"testing"
	"time"

	"github.com/abgdnv/checklist/pkg/config/configloader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Config_LoadShippedFile(t *testing.T) {
	// given
	src := configloader.Sources{ConfigFile: "../../config.yaml", EnvPrefix: "CHECKLIST_"}
	t.Setenv("CHECKLIST_LOG_LEVEL", "debug")
	// when
	cfg, err := configloader.LoadFrom[*Config](src)
	// then
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPServer.Port)
	assert.Equal(t, "https://684c817bed2578be881efc50.mockapi.io/api/products", cfg.Remote.URL)
	assert.Equal(t, 15*time.Second, cfg.Remote.Timeout)
	assert.True(t, cfg.Remote.CircuitBreaker.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10*time.Second, cfg.Shutdown.Timeout)
	assert.Contains(t, cfg.String(), "--- Remote Store ---")
}

func Test_Config_Validate(t *testing.T) {
	// given
	cfg := &Config{}
	cfg.HTTPServer.Port = 8080
	cfg.HTTPServer.Timeout.Read = time.Second
	cfg.HTTPServer.Timeout.Write = time.Second
	cfg.HTTPServer.Timeout.Idle = time.Second
	cfg.HTTPServer.Timeout.ReadHeader = time.Second
	cfg.Remote.URL = "not a url"
	// when
	err := cfg.Validate()
	// then
	assert.Error(t, err)
}
