// Package secstore is a scoped on-device secret store. Values are kept in a
// single file, AEAD-encrypted at rest with a key derived from a caller
// passphrase, so a leaked backup of the config directory does not leak tokens.
package secstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/vmtran/tourbook/internal/errs"
)

// Well-known keys used by the session manager.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
)

// Store is a scoped key-value secret store.
type Store interface {
	Save(key, value string) error
	// Get returns errs.ErrNotFound for an absent key.
	Get(key string) (string, error)
	Delete(key string) error
}

const (
	keyLen  = 32
	saltLen = 16

	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 1
)

// FileStore keeps all secrets in one sealed file under dir.
type FileStore struct {
	mu   sync.Mutex
	path string
	salt []byte
	key  []byte
}

var _ Store = (*FileStore)(nil)

// Open prepares a FileStore under dir, creating the directory and the
// key-derivation salt on first use.
func Open(dir string, passphrase []byte) (*FileStore, error) {
	if len(passphrase) == 0 {
		return nil, errors.New("empty passphrase")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("secstore: mkdir: %w", err)
	}
	saltPath := filepath.Join(dir, "salt.bin")
	salt, err := os.ReadFile(saltPath)
	if errors.Is(err, os.ErrNotExist) {
		salt, err = randBytes(saltLen)
		if err == nil {
			err = os.WriteFile(saltPath, salt, 0o600)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("secstore: salt: %w", err)
	}
	return &FileStore{
		path: filepath.Join(dir, "secrets.bin"),
		salt: salt,
		key:  argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, keyLen),
	}, nil
}

// Save seals the whole map back to disk with the new value in place.
func (s *FileStore) Save(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.load()
	if err != nil {
		return err
	}
	m[key] = value
	return s.flush(m)
}

func (s *FileStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.load()
	if err != nil {
		return "", err
	}
	v, ok := m[key]
	if !ok {
		return "", errs.ErrNotFound
	}
	return v, nil
}

// Delete removes a key; deleting an absent key is a no-op.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	return s.flush(m)
}

func (s *FileStore) load() (map[string]string, error) {
	blob, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("secstore: read: %w", err)
	}
	plain, err := open(s.key, blob)
	if err != nil {
		return nil, fmt.Errorf("secstore: unseal: %w", err)
	}
	var m map[string]string
	if err := json.Unmarshal(plain, &m); err != nil {
		return nil, fmt.Errorf("secstore: decode: %w", err)
	}
	return m, nil
}

func (s *FileStore) flush(m map[string]string) error {
	plain, err := json.Marshal(m)
	if err != nil {
		return err
	}
	blob, err := seal(s.key, plain)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, blob, 0o600)
}

// seal encrypts with XChaCha20-Poly1305 and a random nonce prefix.
func seal(key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce, err := randBytes(chacha20poly1305.NonceSizeX)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	out = append(out, aead.Seal(nil, nonce, plaintext, nil)...)
	return out, nil
}

func open(key, blob []byte) ([]byte, error) {
	if len(blob) < chacha20poly1305.NonceSizeX {
		return nil, errors.New("sealed blob too short")
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := blob[:chacha20poly1305.NonceSizeX]
	ct := blob[chacha20poly1305.NonceSizeX:]
	return aead.Open(nil, nonce, ct, nil)
}
