package secstore

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LoadOrCreatePassphrase returns the device passphrase under dir, generating
// a random one on first use. The passphrase gates the sealed secret file;
// losing it just means logging in again.
func LoadOrCreatePassphrase(dir string) ([]byte, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("secstore: mkdir: %w", err)
	}
	path := filepath.Join(dir, "device_key")
	b, err := os.ReadFile(path)
	if err == nil && len(b) > 0 {
		return b, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("secstore: read passphrase: %w", err)
	}
	raw, err := randBytes(32)
	if err != nil {
		return nil, err
	}
	b = []byte(hex.EncodeToString(raw))
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return nil, fmt.Errorf("secstore: write passphrase: %w", err)
	}
	return b, nil
}
