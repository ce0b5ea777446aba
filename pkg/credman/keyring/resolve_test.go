package keyring

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

type brokenStore struct{}

func (brokenStore) GetToken() (string, error) { return "", errors.New("keyring locked") }
func (brokenStore) SetToken() (string, error) { return "", errors.New("keyring locked") }
func (brokenStore) DeleteToken() error        { return errors.New("keyring locked") }

func TestResolve_PrefersExistingToken(t *testing.T) {
	file := NewFileTokenStore(afero.NewMemMapFs(), "/cfg")
	want, _ := file.SetToken()

	got, err := Resolve(true, brokenStore{}, file)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != want {
		t.Errorf("Resolve = %q; want %q", got, want)
	}
}

func TestResolve_CreatesInFirstWorkingStore(t *testing.T) {
	file := NewFileTokenStore(afero.NewMemMapFs(), "/cfg")
	got, err := Resolve(true, brokenStore{}, file)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	stored, err := file.GetToken()
	if err != nil || stored != got {
		t.Errorf("expected token in the fallback store, got %q, %v", stored, err)
	}
}

func TestResolve_NoCreate(t *testing.T) {
	file := NewFileTokenStore(afero.NewMemMapFs(), "/cfg")
	if _, err := Resolve(false, file); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	_, err := Resolve(false, brokenStore{}, file)
	if err == nil || !strings.Contains(err.Error(), "keyring locked") {
		t.Errorf("expected the store error, got %v", err)
	}
}

func TestResolve_AllStoresFail(t *testing.T) {
	_, err := Resolve(true, brokenStore{}, NewFileTokenStore(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/cfg"))
	if err == nil {
		t.Fatal("expected an error when no store accepts a token")
	}
}
