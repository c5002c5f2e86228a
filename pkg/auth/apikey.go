package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// APIKeyStore verifies machine-client API keys against configured
// bcrypt hashes. The plaintext keys are never stored.
type APIKeyStore struct {
	hashes [][]byte
}

// NewAPIKeyStore loads the configured bcrypt hashes.
func NewAPIKeyStore(hashes []string) *APIKeyStore {
	store := &APIKeyStore{hashes: make([][]byte, 0, len(hashes))}
	for _, h := range hashes {
		store.hashes = append(store.hashes, []byte(h))
	}
	return store
}

// Verify reports whether the presented key matches any configured hash.
func (s *APIKeyStore) Verify(key string) bool {
	if key == "" {
		return false
	}
	for _, hash := range s.hashes {
		if bcrypt.CompareHashAndPassword(hash, []byte(key)) == nil {
			return true
		}
	}
	return false
}

// HashAPIKey produces a bcrypt hash suitable for the configuration file.
func HashAPIKey(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("api key cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing api key: %w", err)
	}
	return string(hash), nil
}
