package storage

import (
	"errors"

	"github.com/99designs/keyring"
	pkgerrors "github.com/friendsofgo/errors"
)

// KeyringConfig holds the keyring storage configuration.
type KeyringConfig struct {
	ServiceName string
	FileDir     string
	FilePass    string
}

type keyringStorage struct {
	ring keyring.Keyring
}

// NewKeyring opens the system keyring and returns a Storage backed by it.
// Falls back to an encrypted file backend when no system keyring is
// available (headless hosts).
func NewKeyring(cfg KeyringConfig) (Storage, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: cfg.ServiceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  cfg.FileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt(cfg.FilePass),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to open keyring")
	}
	return &keyringStorage{ring: ring}, nil
}

func (s *keyringStorage) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", pkgerrors.Wrapf(err, "failed to get key %q", key)
	}
	return string(item.Data), nil
}

func (s *keyringStorage) Set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to set key %q", key)
	}
	return nil
}

func (s *keyringStorage) Remove(key string) error {
	err := s.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return pkgerrors.Wrapf(err, "failed to remove key %q", key)
	}
	return nil
}
