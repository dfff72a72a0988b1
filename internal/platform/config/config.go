package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"local"`
	HTTPPort int    `env:"HTTP_PORT" envDefault:"8080"`

	HiBobConfig
	SheetsConfig
	LLMConfig
	BlurbConfig
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	cfg.ExpectedSheets = trimList(cfg.ExpectedSheets)

	return cfg, nil
}

// ServiceAccountCredentials returns the raw service account JSON. The inline
// value may be plain JSON or base64 encoded JSON; otherwise the file at
// ServiceAccountPath is read.
func (c *Config) ServiceAccountCredentials() ([]byte, error) {
	if inline := strings.TrimSpace(c.ServiceAccountJSON); inline != "" {
		return decodeCredentials(inline), nil
	}

	if c.ServiceAccountPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(c.ServiceAccountPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading service account file: %w", err)
	}

	return data, nil
}

// HasLoginCredentials reports whether both platform credentials are set.
func (c *Config) HasLoginCredentials() bool {
	return c.HiBobEmail != "" && c.HiBobPassword != ""
}

func decodeCredentials(value string) []byte {
	if strings.HasPrefix(value, "{") {
		return []byte(value)
	}

	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return []byte(value)
	}

	return decoded
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))

	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}
