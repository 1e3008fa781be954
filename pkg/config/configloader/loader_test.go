package configloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Remote struct {
		URL     string        `koanf:"url"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"remote"`
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

var errInvalid = errors.New("invalid")

func (c *testConfig) Validate() error {
	if c.Remote.URL == "" {
		return errInvalid
	}
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_LoadFrom_Precedence(t *testing.T) {
	// given
	dir := t.TempDir()
	yamlPath := writeFile(t, dir, "config.yaml", "remote:\n  url: http://from-yaml\n  timeout: 5s\nlog:\n  level: info\n")
	envPath := writeFile(t, dir, ".env", "CLTEST_LOG_LEVEL=warn\nCLTEST_REMOTE_URL=http://from-dotenv\nOTHER_KEY=x\n")
	t.Setenv("CLTEST_REMOTE_URL", "http://from-env")

	// when
	cfg, err := LoadFrom[*testConfig](Sources{ConfigFile: yamlPath, EnvFile: envPath, EnvPrefix: "CLTEST_"})

	// then
	require.NoError(t, err)
	assert.Equal(t, "http://from-env", cfg.Remote.URL, "process env wins")
	assert.Equal(t, "warn", cfg.Log.Level, ".env overrides yaml")
	assert.Equal(t, 5*time.Second, cfg.Remote.Timeout, "yaml value kept when not overridden")
}

func Test_LoadFrom_MissingFilesAndValidation(t *testing.T) {
	// given
	dir := t.TempDir()

	// when
	_, err := LoadFrom[*testConfig](Sources{
		ConfigFile: filepath.Join(dir, "missing.yaml"),
		EnvFile:    filepath.Join(dir, "missing.env"),
		EnvPrefix:  "CLTEST_NONE_",
	})

	// then
	require.Error(t, err)
	assert.ErrorIs(t, err, errInvalid)
}

func Test_DefaultSources(t *testing.T) {
	t.Setenv("CHECKLIST_CONFIG_FILE", "/etc/checklist.yaml")

	src := DefaultSources("checklist")

	assert.Equal(t, "/etc/checklist.yaml", src.ConfigFile)
	assert.Equal(t, ".env", src.EnvFile)
	assert.Equal(t, "CHECKLIST_", src.EnvPrefix)
}
