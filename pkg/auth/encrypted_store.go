package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 32
	keySize    = 32
	iterations = 100000

	// PassphraseEnv overrides the generated passphrase file
	PassphraseEnv = "FREDCAT_PASSPHRASE"
)

// EncryptedFileStore keeps keys in an AES-GCM encrypted JSON file. The
// encryption key is derived with PBKDF2 from a passphrase taken from
// PassphraseEnv or from a generated .passphrase file beside the store.
type EncryptedFileStore struct {
	path       string
	passphrase string
	mu         sync.RWMutex
}

type envelope struct {
	Version   int       `json:"version"`
	Salt      string    `json:"salt"`
	Encrypted string    `json:"encrypted"`
	Modified  time.Time `json:"modified"`
}

// NewEncryptedFileStore prepares a store at path. The file itself is only
// created on the first Store.
func NewEncryptedFileStore(path string) (*EncryptedFileStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	passphrase, err := loadPassphrase(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get passphrase: %w", err)
	}
	return &EncryptedFileStore{path: path, passphrase: passphrase}, nil
}

func (e *EncryptedFileStore) Name() string { return "encrypted file" }

// Path is the location of the encrypted file
func (e *EncryptedFileStore) Path() string { return e.path }

func (e *EncryptedFileStore) Store(key *APIKey) error {
	if key == nil || key.Profile == "" {
		return ErrInvalidKey
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	keys, salt, err := e.load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load existing keys: %w", err)
	}
	if keys == nil {
		keys = make(map[string]APIKey)
	}
	keys[key.Profile] = *key
	return e.save(keys, salt)
}

func (e *EncryptedFileStore) Retrieve(profile string) (*APIKey, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	keys, _, err := e.load()
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}

	key, ok := keys[profile]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return &key, nil
}

func (e *EncryptedFileStore) Delete(profile string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	keys, salt, err := e.load()
	if errors.Is(err, os.ErrNotExist) {
		return ErrKeyNotFound
	}
	if err != nil {
		return err
	}
	if _, ok := keys[profile]; !ok {
		return ErrKeyNotFound
	}

	delete(keys, profile)
	if len(keys) == 0 {
		return os.Remove(e.path)
	}
	return e.save(keys, salt)
}

func (e *EncryptedFileStore) Exists(profile string) bool {
	key, err := e.Retrieve(profile)
	return err == nil && key != nil
}

// load returns the decrypted keys and the file's salt
func (e *EncryptedFileStore) load() (map[string]APIKey, []byte, error) {
	content, err := os.ReadFile(e.path)
	if err != nil {
		return nil, nil, err
	}

	var env envelope
	if err := json.Unmarshal(content, &env); err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", e.path, err)
	}
	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	sealed, err := base64.StdEncoding.DecodeString(env.Encrypted)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	plain, err := decrypt(sealed, e.deriveKey(salt))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decrypt %s: %w", e.path, err)
	}

	var keys map[string]APIKey
	if err := json.Unmarshal(plain, &keys); err != nil {
		return nil, nil, fmt.Errorf("failed to parse keys: %w", err)
	}
	return keys, salt, nil
}

// save reuses salt when given, otherwise generates one
func (e *EncryptedFileStore) save(keys map[string]APIKey, salt []byte) error {
	if len(salt) == 0 {
		salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}
	}

	plain, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("failed to marshal keys: %w", err)
	}
	sealed, err := encrypt(plain, e.deriveKey(salt))
	if err != nil {
		return fmt.Errorf("failed to encrypt keys: %w", err)
	}

	content, err := json.MarshalIndent(envelope{
		Version:   1,
		Salt:      base64.StdEncoding.EncodeToString(salt),
		Encrypted: base64.StdEncoding.EncodeToString(sealed),
		Modified:  time.Now(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	tmp := e.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	return os.Rename(tmp, e.path)
}

func (e *EncryptedFileStore) deriveKey(salt []byte) []byte {
	return pbkdf2.Key([]byte(e.passphrase), salt, iterations, keySize, sha256.New)
}

func loadPassphrase(dir string) (string, error) {
	if pass := os.Getenv(PassphraseEnv); pass != "" {
		return pass, nil
	}

	file := filepath.Join(dir, ".passphrase")
	if content, err := os.ReadFile(file); err == nil && len(content) > 0 {
		return string(content), nil
	}

	b := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("failed to generate passphrase: %w", err)
	}
	passphrase := base64.URLEncoding.EncodeToString(b)
	if err := os.WriteFile(file, []byte(passphrase), 0600); err != nil {
		return "", fmt.Errorf("failed to save passphrase: %w", err)
	}
	return passphrase, nil
}

func encrypt(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(ciphertext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
