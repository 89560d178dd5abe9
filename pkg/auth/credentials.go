package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// DefaultProfile is the name keys are stored under when none is given
const DefaultProfile = "default"

// APIKey is a stored FRED API key
type APIKey struct {
	Profile      string    `json:"profile"`
	Key          string    `json:"key"`
	LastModified time.Time `json:"last_modified"`
}

// KeyStore is a backend that can hold API keys
type KeyStore interface {
	// Name identifies the backend in CLI output
	Name() string

	Store(key *APIKey) error
	Retrieve(profile string) (*APIKey, error)
	Delete(profile string) error
	Exists(profile string) bool
}

// Manager tries its stores in order: the first store that accepts a key
// keeps it, and lookups return the first match.
type Manager struct {
	stores []KeyStore
}

// NewManager builds the default chain: system keychain when available, the
// encrypted file under the config directory, then the environment.
func NewManager() (*Manager, error) {
	var stores []KeyStore

	if ks, err := NewKeyringStore(); err == nil {
		stores = append(stores, ks)
	}

	configDir, err := ConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	fileStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, fileStore, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores uses exactly the given stores, in order.
func NewManagerWithStores(stores ...KeyStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves the key in the first store that accepts it and returns that
// store's name.
func (m *Manager) Store(key *APIKey) (string, error) {
	if key == nil || strings.TrimSpace(key.Key) == "" {
		return "", ErrInvalidKey
	}
	if key.Profile == "" {
		key.Profile = DefaultProfile
	}
	key.Key = strings.TrimSpace(key.Key)
	key.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(key)
		if err == nil {
			return store.Name(), nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return "", fmt.Errorf("failed to store API key: %w", lastErr)
	}
	return "", ErrStoreUnavailable
}

// Retrieve returns the key for profile and the name of the store holding it.
func (m *Manager) Retrieve(profile string) (*APIKey, string, error) {
	if profile == "" {
		profile = DefaultProfile
	}
	for _, store := range m.stores {
		if key, err := store.Retrieve(profile); err == nil && key != nil {
			return key, store.Name(), nil
		}
	}
	return nil, "", fmt.Errorf("%w: profile %q", ErrKeyNotFound, profile)
}

// Delete removes the key for profile from every writable store.
func (m *Manager) Delete(profile string) error {
	if profile == "" {
		profile = DefaultProfile
	}

	var deleted bool
	var lastErr error
	for _, store := range m.stores {
		err := store.Delete(profile)
		switch {
		case err == nil:
			deleted = true
		case errors.Is(err, ErrKeyNotFound), errors.Is(err, ErrStoreUnavailable):
		default:
			lastErr = err
		}
	}

	if deleted {
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("failed to delete API key: %w", lastErr)
	}
	return fmt.Errorf("%w: profile %q", ErrKeyNotFound, profile)
}

// ConfigDir returns the per-user fredcat directory, creating it if needed.
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "fredcat")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "fredcat")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			configDir = filepath.Join(xdg, "fredcat")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "fredcat")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// MaskKey keeps the first and last four characters
func MaskKey(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

var (
	ErrKeyNotFound      = errors.New("API key not found")
	ErrInvalidKey       = errors.New("invalid API key")
	ErrStoreUnavailable = errors.New("key store unavailable")
)
