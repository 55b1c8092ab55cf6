package credstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileMedium_WriteReadDelete(t *testing.T) {
	ctx := context.Background()
	m := NewFileMedium(t.TempDir())

	if err := m.Write(ctx, "ns.password.A", []byte("secret")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := m.Read(ctx, "ns.password.A")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "secret" {
		t.Errorf("Read: got %q", data)
	}
	if err := m.Delete(ctx, "ns.password.A"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := m.Read(ctx, "ns.password.A"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Read after delete: got %v, want ErrKeyNotFound", err)
	}
}

func TestFileMedium_MissingKey(t *testing.T) {
	ctx := context.Background()
	m := NewFileMedium(t.TempDir())

	if _, err := m.Read(ctx, "ghost"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Read: got %v, want ErrKeyNotFound", err)
	}
	if err := m.Delete(ctx, "ghost"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Delete: got %v, want ErrKeyNotFound", err)
	}
}

func TestFileMedium_KeyWithPathSeparator(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := NewFileMedium(dir)

	key := "ns.password.prod/../replica"
	if err := m.Write(ctx, key, []byte("v")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := m.Read(ctx, key)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "v" {
		t.Errorf("Read: got %q", data)
	}

	// The escaped key must stay a single path element inside dir.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("ReadDir: got %d entries", len(entries))
	}
	if entries[0].IsDir() {
		t.Error("key escaped into a subdirectory")
	}
}

func TestFileMedium_SecretFilePermissions(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := NewFileMedium(dir)

	if err := m.Write(ctx, "ns.password.A", []byte("secret")); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("secret file mode: got %o, want 0600", info.Mode().Perm())
	}
}
