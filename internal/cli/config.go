package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds CLI configuration. Flags override the CAEGAME_* environment.
type Config struct {
	ServerURL    string `env:"CAEGAME_SERVER" envDefault:"http://localhost:8080"`
	Token        string `env:"CAEGAME_TOKEN"`
	TokenFile    string `env:"CAEGAME_TOKEN_FILE"`
	EntropyURL   string `env:"CAEGAME_ENTROPY_URL"` // defaults to the server's /entropy mount
	EntropyChain string `env:"CAEGAME_ENTROPY_CHAIN" envDefault:"local"`
	Output       string `env:"CAEGAME_OUTPUT" envDefault:"text"`
	Verbose      bool   `env:"CAEGAME_VERBOSE"`
}

// LoadConfig reads the CLI configuration from the environment
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = defaultTokenFile()
	}
	return cfg, nil
}

// ProviderURL returns the entropy provider base URL
func (c *Config) ProviderURL() string {
	if c.EntropyURL != "" {
		return c.EntropyURL
	}
	return strings.TrimSuffix(c.ServerURL, "/") + "/entropy"
}

// LoadToken loads the token from file if not already set
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No token file is fine
		}
		return err
	}

	c.Token = strings.TrimSpace(string(data))
	return nil
}

// SaveToken saves the token to the token file
func (c *Config) SaveToken(token string) error {
	c.Token = token

	dir := filepath.Dir(c.TokenFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.TokenFile, []byte(token), 0600)
}

// ClearToken forgets the saved token
func (c *Config) ClearToken() error {
	c.Token = ""
	if err := os.Remove(c.TokenFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".caegame/token"
	}
	return filepath.Join(home, ".caegame", "token")
}
