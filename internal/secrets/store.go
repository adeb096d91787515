// Package secrets keeps the OpenRouter API key encrypted at rest so it
// never sits in plain-text config. The sealing key is derived from the
// local user identity, which deters casual file reads, not an attacker
// running as the same account.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const keyFile = "openrouter.key"

// ErrNoKey means no API key has been stored yet.
var ErrNoKey = errors.New("secrets: no stored key")

// StoreAPIKey seals the key and writes it to the config dir (0600).
func StoreAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("secrets: empty key")
	}
	path, err := keyPath()
	if err != nil {
		return err
	}
	sealed, err := seal([]byte(key))
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// FetchAPIKey reads and unseals the stored key. ErrNoKey when absent.
func FetchAPIKey() (string, error) {
	path, err := keyPath()
	if err != nil {
		return "", err
	}
	sealed, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoKey
		}
		return "", err
	}
	plain, err := open(sealed)
	if err != nil {
		return "", fmt.Errorf("secrets: unseal key: %w", err)
	}
	return string(plain), nil
}

// DeleteAPIKey removes the stored key. Deleting an absent key is not an
// error.
func DeleteAPIKey() error {
	path, err := keyPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func keyPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "palpal")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, keyFile), nil
}

func sealingKey() []byte {
	host, _ := os.Hostname()
	base := strings.Join([]string{"palpal", runtime.GOOS, os.Getenv("USER"), host}, ":")
	sum := sha256.Sum256([]byte(base))
	return sum[:]
}

func seal(plain []byte) ([]byte, error) {
	block, err := aes.NewCipher(sealingKey())
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func open(sealed []byte) ([]byte, error) {
	block, err := aes.NewCipher(sealingKey())
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("sealed key too short")
	}
	nonce, body := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
