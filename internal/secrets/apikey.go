package secrets

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups this app's secrets in the OS keychain.
const KeyringService = "buyerfinder"

const registryAccount = "buyerfinder:registry:api-key"

// GetRegistryAPIKey reads the registry API key from the OS keychain. The
// environment takes precedence; this is the fallback for workstations that
// keep credentials out of .env files.
func GetRegistryAPIKey() (string, error) {
	pw, err := keyring.Get(KeyringService, registryAccount)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(pw) == "" {
		return "", errors.New("registry API key not found in keychain")
	}
	return pw, nil
}

func SetRegistryAPIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, registryAccount, key)
}

func DeleteRegistryAPIKey() error {
	return keyring.Delete(KeyringService, registryAccount)
}
