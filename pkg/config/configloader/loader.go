// Package configloader merges a yaml file, a .env file and process environment into a config struct.
package configloader

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Validator interface {
	Validate() error
}

// Sources lists where configuration is read from. Later sources override earlier ones:
// ConfigFile, then EnvFile, then variables starting with EnvPrefix.
type Sources struct {
	ConfigFile string
	EnvFile    string
	EnvPrefix  string
}

// DefaultSources follows the convention config.yaml + .env + <APP>_ prefixed variables.
// <APP>_CONFIG_FILE overrides the yaml location.
func DefaultSources(appName string) Sources {
	prefix := fmt.Sprintf("%s_", strings.ToUpper(appName))
	configFile := "config.yaml"
	if v := os.Getenv(prefix + "CONFIG_FILE"); v != "" {
		configFile = v
	}
	return Sources{
		ConfigFile: configFile,
		EnvFile:    ".env",
		EnvPrefix:  prefix,
	}
}

// Load reads configuration for appName from the default sources.
func Load[T Validator](appName string) (T, error) {
	return LoadFrom[T](DefaultSources(appName))
}

// LoadFrom reads configuration from src, unmarshals it into T and validates it.
// T is usually a pointer to a struct with koanf tags.
func LoadFrom[T Validator](src Sources) (T, error) {
	var cfg T
	k := koanf.New(".")

	// 1. yaml file
	if src.ConfigFile != "" {
		if err := k.Load(file.Provider(src.ConfigFile), yaml.Parser()); err != nil {
			if !os.IsNotExist(err) {
				log.Printf("WARN: error loading YAML config file '%s': %v", src.ConfigFile, err)
			}
		}
	}

	envTransformer := func(key string) string {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, strings.ToLower(src.EnvPrefix))
		return strings.ReplaceAll(key, "_", ".")
	}

	// 2. .env file; only keys with the prefix are taken, same as for the process environment
	if src.EnvFile != "" {
		if envFileMap, err := godotenv.Read(src.EnvFile); err == nil {
			envMap := make(map[string]any)
			for key, value := range envFileMap {
				if !strings.HasPrefix(strings.ToLower(key), strings.ToLower(src.EnvPrefix)) {
					continue
				}
				envMap[envTransformer(key)] = value
			}
			if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
				log.Printf("WARN: error loading .env config: %v", err)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("WARN: error reading .env file: %v", err)
		}
	}

	// 3. process environment, the highest priority
	if err := k.Load(env.Provider(src.EnvPrefix, ".", envTransformer), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}
