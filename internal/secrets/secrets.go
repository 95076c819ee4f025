package secrets

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-secretsmanager-caching-go/v2/secretcache"
)

type secretGetter interface {
	GetSecretString(secretID string) (string, error)
}

// Manager wraps the Secrets Manager cache client.
type Manager struct {
	cache secretGetter
}

// NewManager creates a new Secrets Manager cache.
func NewManager() (*Manager, error) {
	cache, err := secretcache.New()
	if err != nil {
		return nil, err
	}
	return &Manager{cache: cache}, nil
}

// GetSecretString retrieves a secret value from Secrets Manager.
func (m *Manager) GetSecretString(secretName string) (string, error) {
	if secretName == "" {
		return "", fmt.Errorf("secret name is required")
	}
	return m.cache.GetSecretString(secretName)
}

// Token returns inline when set, otherwise the named secret. A secret stored
// as a JSON object is reduced to its field key.
func (m *Manager) Token(inline, secretName, key string) (string, error) {
	if inline != "" {
		return inline, nil
	}
	if secretName == "" {
		return "", fmt.Errorf("no value or secret configured for %s", key)
	}
	raw, err := m.GetSecretString(secretName)
	if err != nil {
		return "", fmt.Errorf("reading secret %s: %w", secretName, err)
	}
	return ExtractField(raw, key)
}

// ExtractField returns the string field key of a JSON object secret, or the
// trimmed raw value when the secret is not a JSON object.
func ExtractField(raw, key string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return trimmed, nil
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return "", fmt.Errorf("decoding JSON secret: %w", err)
	}
	// Service account keys are whole JSON documents, not key/value secrets.
	if _, ok := fields["private_key"]; ok {
		return trimmed, nil
	}
	value, ok := fields[key].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("secret has no string field %q", key)
	}
	return value, nil
}

// LoadSecretFromFile reads a secret value from a local file.
func LoadSecretFromFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ResolveSecretValue loads a secret from Secrets Manager or falls back to local file.
func ResolveSecretValue(secretName string, filePath string) (string, error) {
	if secretName != "" {
		manager, err := NewManager()
		if err != nil {
			return "", err
		}
		return manager.GetSecretString(secretName)
	}
	return LoadSecretFromFile(filePath)
}
