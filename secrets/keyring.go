package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const serviceName = "etrade"

// Keyring stores secrets in the operating system keychain (macOS Keychain,
// Windows Credential Manager, or the freedesktop Secret Service).
type Keyring struct{}

// NewKeyring creates a keychain-backed store.
func NewKeyring() *Keyring {
	return &Keyring{}
}

// entry returns the keyring account name for a namespace/key pair.
func entry(namespace, key string) string {
	return fmt.Sprintf("%s@%s", key, namespace)
}

// Put stores value in the keychain.
func (k *Keyring) Put(namespace, key, value string) error {
	return keyring.Set(serviceName, entry(namespace, key), value)
}

// Get retrieves a secret from the keychain.
func (k *Keyring) Get(namespace, key string) (string, bool, error) {
	v, err := keyring.Get(serviceName, entry(namespace, key))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Del removes a secret from the keychain.
func (k *Keyring) Del(namespace, key string) error {
	err := keyring.Delete(serviceName, entry(namespace, key))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// Open returns the best available store: the system keychain when it works,
// otherwise a locked plaintext file under dir. Set ETRADE_NO_KEYRING to skip
// the keychain probe (useful in tests and headless environments).
func Open(dir string) Store {
	if os.Getenv("ETRADE_NO_KEYRING") != "" {
		return NewFile(dir)
	}

	probe := entry("probe", "probe")
	if err := keyring.Set(serviceName, probe, "probe"); err == nil {
		_ = keyring.Delete(serviceName, probe) // Best-effort cleanup
		return NewKeyring()
	}

	fmt.Fprintf(os.Stderr, "warning: system keyring unavailable, secrets stored in plaintext at %s\n",
		filepath.Join(dir, "secrets.json"))
	return NewFile(dir)
}
