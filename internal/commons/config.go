package commons

import (
	"os"

	"posterminal/internal/config"
)

const (
	DefaultConfigPath = "internal/config/config.yaml"
	ConfigPathEnv     = "POSTERMINAL_CONFIG"
)

// LoadConfig loads the configuration from POSTERMINAL_CONFIG, falling back
// to fallbackPath when the variable is unset.
func LoadConfig(fallbackPath string) (*config.Config, error) {
	path := fallbackPath
	if p := os.Getenv(ConfigPathEnv); p != "" {
		path = p
	}
	return config.Load(path)
}
