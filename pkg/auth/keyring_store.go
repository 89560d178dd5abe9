package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "fredcat"

// KeyringStore keeps keys in the system keychain
type KeyringStore struct{}

// NewKeyringStore fails when no keychain service is reachable
func NewKeyringStore() (*KeyringStore, error) {
	const check = "availability_check"
	if err := keyring.Set(keyringService, check, "ok"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, check)

	return &KeyringStore{}, nil
}

func (k *KeyringStore) Name() string { return "keyring" }

func (k *KeyringStore) Store(key *APIKey) error {
	if key == nil || key.Profile == "" {
		return ErrInvalidKey
	}

	data, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("failed to marshal key: %w", err)
	}
	if err := keyring.Set(keyringService, key.Profile, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}
	return nil
}

func (k *KeyringStore) Retrieve(profile string) (*APIKey, error) {
	data, err := keyring.Get(keyringService, profile)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var key APIKey
	if err := json.Unmarshal([]byte(data), &key); err != nil {
		return nil, fmt.Errorf("failed to unmarshal key: %w", err)
	}
	return &key, nil
}

func (k *KeyringStore) Delete(profile string) error {
	err := keyring.Delete(keyringService, profile)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}

func (k *KeyringStore) Exists(profile string) bool {
	_, err := keyring.Get(keyringService, profile)
	return err == nil
}
