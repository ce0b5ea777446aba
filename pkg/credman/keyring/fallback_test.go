package keyring

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func TestFileTokenStore_SetGetDelete(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewFileTokenStore(fs, "/cfg/todostudio")

	if _, err := store.GetToken(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	token, err := store.SetToken()
	if err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	info, err := fs.Stat(store.Path())
	if err != nil {
		t.Fatalf("token file not created: %v", err)
	}
	if info.Mode().Perm() != tokenFileMode {
		t.Fatalf("expected permissions %o, got %o", tokenFileMode, info.Mode().Perm())
	}

	got, err := store.GetToken()
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if got != token {
		t.Fatalf("roundtrip failed: set %q, got %q", token, got)
	}

	if err := store.DeleteToken(); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if err := store.DeleteToken(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileTokenStore_TrimsAndRejectsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewFileTokenStore(fs, "/cfg")
	if err := afero.WriteFile(fs, store.Path(), []byte("  abc\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if got, err := store.GetToken(); err != nil || got != "abc" {
		t.Fatalf("GetToken = %q, %v", got, err)
	}
	if err := afero.WriteFile(fs, store.Path(), []byte("\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetToken(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty file, got %v", err)
	}
}

func TestFileTokenStore_ReadOnlyFs(t *testing.T) {
	store := NewFileTokenStore(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/cfg")
	if _, err := store.SetToken(); err == nil {
		t.Fatal("expected error on read-only filesystem")
	}
}

func TestFileTokenStore_OverwritesExisting(t *testing.T) {
	store := NewFileTokenStore(afero.NewMemMapFs(), "/cfg")
	first, err := store.SetToken()
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.SetToken()
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("second SetToken should generate a different token")
	}
	if got, _ := store.GetToken(); got != second {
		t.Fatal("GetToken should return the second token")
	}
}
