package auth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestManagerStoreRetrieveDelete(t *testing.T) {
	manager, mockStore := NewMockManager()

	where, err := manager.Store(&APIKey{Key: "  abcd1234efgh5678  "})
	if err != nil {
		t.Fatalf("Failed to store key: %v", err)
	}
	if where != "mock" {
		t.Errorf("store name: got %q, want mock", where)
	}

	key, from, err := manager.Retrieve("")
	if err != nil {
		t.Fatalf("Failed to retrieve key: %v", err)
	}
	if key.Key != "abcd1234efgh5678" {
		t.Errorf("key should be trimmed, got %q", key.Key)
	}
	if key.Profile != DefaultProfile {
		t.Errorf("profile: got %q, want %q", key.Profile, DefaultProfile)
	}
	if from != "mock" {
		t.Errorf("source: got %q, want mock", from)
	}
	if key.LastModified.IsZero() {
		t.Error("LastModified should be set")
	}

	if err := manager.Delete(DefaultProfile); err != nil {
		t.Fatalf("Failed to delete key: %v", err)
	}
	if mockStore.Count() != 0 {
		t.Errorf("Expected 0 keys after deletion, got %d", mockStore.Count())
	}

	_, _, err = manager.Retrieve(DefaultProfile)
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Expected ErrKeyNotFound, got %v", err)
	}
	if err := manager.Delete(DefaultProfile); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Deleting twice should report ErrKeyNotFound, got %v", err)
	}
}

func TestManagerRejectsEmptyKey(t *testing.T) {
	manager, _ := NewMockManager()
	if _, err := manager.Store(&APIKey{Key: "   "}); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey, got %v", err)
	}
	if _, err := manager.Store(nil); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey for nil, got %v", err)
	}
}

func TestManagerFallsThroughStores(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("keychain locked")
	broken.RetrieveError = errors.New("keychain locked")
	working := NewMockStore()

	manager := NewManagerWithStores(broken, working)
	if _, err := manager.Store(&APIKey{Profile: "work", Key: "k-123456789"}); err != nil {
		t.Fatalf("Store should fall through to the second store: %v", err)
	}
	if !working.Exists("work") {
		t.Error("key should be in the second store")
	}

	key, _, err := manager.Retrieve("work")
	if err != nil || key.Key != "k-123456789" {
		t.Errorf("Retrieve should skip the failing store, got %v, %v", key, err)
	}

	all := NewManagerWithStores(broken)
	if _, err := all.Store(&APIKey{Key: "x"}); err == nil {
		t.Error("Expected error when every store fails")
	}
}

func TestEncryptedFileStore(t *testing.T) {
	t.Setenv(PassphraseEnv, "test_passphrase_123")
	path := filepath.Join(t.TempDir(), "credentials.enc")

	store, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}
	if store.Exists(DefaultProfile) {
		t.Error("new store should be empty")
	}

	if err := store.Store(&APIKey{Profile: DefaultProfile, Key: "plaintext_api_key_value"}); err != nil {
		t.Fatalf("Failed to store: %v", err)
	}
	if err := store.Store(&APIKey{Profile: "other", Key: "second_key_value"}); err != nil {
		t.Fatalf("Failed to store second key: %v", err)
	}

	got, err := store.Retrieve(DefaultProfile)
	if err != nil {
		t.Fatalf("Failed to retrieve: %v", err)
	}
	if got.Key != "plaintext_api_key_value" {
		t.Errorf("key mismatch after decryption: %q", got.Key)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(content, []byte("plaintext_api_key_value")) {
		t.Error("file contains the plaintext key")
	}

	// a different passphrase cannot read the file
	t.Setenv(PassphraseEnv, "wrong")
	other, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.Retrieve(DefaultProfile); err == nil || errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Expected a decryption error, got %v", err)
	}

	if err := store.Delete("other"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if err := store.Delete(DefaultProfile); err != nil {
		t.Fatalf("Failed to delete last key: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should be removed with its last key")
	}
}

func TestEncryptedFileStoreGeneratesPassphrase(t *testing.T) {
	t.Setenv(PassphraseEnv, "")
	dir := t.TempDir()

	first, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Store(&APIKey{Profile: DefaultProfile, Key: "generated_pass_key"}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".passphrase")); err != nil {
		t.Fatalf("passphrase file not written: %v", err)
	}

	second, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := second.Retrieve(DefaultProfile)
	if err != nil || got.Key != "generated_pass_key" {
		t.Errorf("second store should reuse the passphrase, got %v, %v", got, err)
	}
}

func TestEnvironmentStore(t *testing.T) {
	t.Setenv("FREDCAT_API_KEY", "")
	t.Setenv("FRED_API_KEY", "")
	store := NewEnvironmentStore()

	if store.Exists(DefaultProfile) {
		t.Error("no key expected without env vars")
	}

	t.Setenv("FRED_API_KEY", "fred_env_key")
	key, err := store.Retrieve(DefaultProfile)
	if err != nil {
		t.Fatalf("Failed to retrieve from environment: %v", err)
	}
	if key.Key != "fred_env_key" {
		t.Errorf("got %q, want fred_env_key", key.Key)
	}

	t.Setenv("FREDCAT_API_KEY", "fredcat_env_key")
	key, _ = store.Retrieve(DefaultProfile)
	if key.Key != "fredcat_env_key" {
		t.Errorf("FREDCAT_API_KEY should win, got %q", key.Key)
	}

	if err := store.Store(&APIKey{Profile: "x", Key: "y"}); !errors.Is(err, ErrStoreUnavailable) {
		t.Error("Expected ErrStoreUnavailable for environment store")
	}
}

func TestMaskKey(t *testing.T) {
	tests := map[string]string{
		"":                                 "********",
		"short":                            "********",
		"abcdef0123456789abcdef0123456789": "abcd...6789",
	}
	for in, want := range tests {
		if got := MaskKey(in); got != want {
			t.Errorf("MaskKey(%q) = %q, want %q", in, got, want)
		}
	}
}
