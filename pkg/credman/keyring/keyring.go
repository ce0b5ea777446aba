// Package keyring stores the daemon's RPC token in the operating system's
// keyring, falling back to a private file when no keyring is available.
package keyring

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// tokenBytes is the entropy of a generated token.
const tokenBytes = 32

// ErrNotFound is returned when no token has been stored yet.
var ErrNotFound = errors.New("token not found")

// TokenStore persists a single secret token.
type TokenStore interface {
	GetToken() (string, error)
	SetToken() (string, error)
	DeleteToken() error
}

type Keyring struct {
	AppName  string
	KeyField string
}

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
	randRead      = rand.Read
)

func NewKeyring() *Keyring {
	return &Keyring{
		AppName:  "todostudio",
		KeyField: "rpc-token",
	}
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := randRead(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// SetToken generates a fresh token and stores it, replacing any previous one.
func (k *Keyring) SetToken() (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	if err := keyringSet(k.AppName, k.KeyField, token); err != nil {
		return "", fmt.Errorf("keyring set: %w", err)
	}
	return token, nil
}

func (k *Keyring) GetToken() (string, error) {
	token, err := keyringGet(k.AppName, k.KeyField)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("keyring get: %w", err)
	}
	return token, nil
}

func (k *Keyring) DeleteToken() error {
	err := keyringDelete(k.AppName, k.KeyField)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
