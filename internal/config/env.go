package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Credentials for the authorized registry API. These never live in the YAML
// file; they come from the environment (a local .env is honored).
type Credentials struct {
	RegistryAPIKey   string `env:"REGISTRY_API_KEY"`
	RegistryEndpoint string `env:"REGISTRY_API_ENDPOINT"`
	RegistryUserID   string `env:"REGISTRY_USER_ID"`
}

func LoadCredentials() (Credentials, error) {
	_ = godotenv.Load()

	var creds Credentials
	if err := env.Parse(&creds); err != nil {
		return Credentials{}, fmt.Errorf("env.Parse: %w", err)
	}
	return creds, nil
}

// Complete reports whether every field needed for live registry access is set.
func (c Credentials) Complete() bool {
	return c.RegistryAPIKey != "" && c.RegistryEndpoint != "" && c.RegistryUserID != ""
}
