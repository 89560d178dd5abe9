package auth

import (
	"os"
	"time"
)

// EnvVars are checked in order by EnvironmentStore
var EnvVars = []string{"FREDCAT_API_KEY", "FRED_API_KEY"}

// EnvironmentStore is a read-only store backed by environment variables.
// It answers for any profile.
type EnvironmentStore struct{}

func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Name() string { return "environment" }

func (e *EnvironmentStore) Store(key *APIKey) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Retrieve(profile string) (*APIKey, error) {
	for _, name := range EnvVars {
		if v := os.Getenv(name); v != "" {
			return &APIKey{Profile: profile, Key: v, LastModified: time.Now()}, nil
		}
	}
	return nil, ErrKeyNotFound
}

func (e *EnvironmentStore) Delete(profile string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Exists(profile string) bool {
	_, err := e.Retrieve(profile)
	return err == nil
}
