package keyring

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	tokenFileName = "rpc-token"
	tokenFileMode = 0600
)

// FileTokenStore keeps the token in a 0600 file when the system keyring is
// unavailable.
type FileTokenStore struct {
	fs        afero.Fs
	configDir string
}

// NewFileTokenStore creates a store writing into configDir on fs.
func NewFileTokenStore(fs afero.Fs, configDir string) *FileTokenStore {
	return &FileTokenStore{fs: fs, configDir: configDir}
}

// Path returns the token file location.
func (f *FileTokenStore) Path() string {
	return filepath.Join(f.configDir, tokenFileName)
}

// SetToken generates a token and writes it atomically through a temporary
// file and rename.
func (f *FileTokenStore) SetToken() (string, error) {
	if err := f.fs.MkdirAll(f.configDir, 0755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	token, err := newToken()
	if err != nil {
		return "", err
	}

	tmp, err := afero.TempFile(f.fs, f.configDir, ".rpc-token.tmp.*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(token); err != nil {
		tmp.Close()
		f.fs.Remove(tmpPath)
		return "", fmt.Errorf("write token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		f.fs.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := f.fs.Chmod(tmpPath, tokenFileMode); err != nil {
		f.fs.Remove(tmpPath)
		return "", fmt.Errorf("set permissions: %w", err)
	}
	if err := f.fs.Rename(tmpPath, f.Path()); err != nil {
		f.fs.Remove(tmpPath)
		return "", fmt.Errorf("rename token file: %w", err)
	}
	return token, nil
}

func (f *FileTokenStore) GetToken() (string, error) {
	data, err := afero.ReadFile(f.fs, f.Path())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

func (f *FileTokenStore) DeleteToken() error {
	err := f.fs.Remove(f.Path())
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}
