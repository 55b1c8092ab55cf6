package credstore

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
)

// ErrKeyNotFound is returned by a Medium when a key has no value.
var ErrKeyNotFound = errors.New("key not found")

// Medium is the durable key-value medium that profiles and secrets
// persist to. Registry data and secret data use distinct key namespaces
// and may live on distinct mediums.
type Medium interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// FileMedium stores one file per key under a directory. Secret files are
// written with owner-only permissions.
type FileMedium struct {
	dir string
}

// NewFileMedium creates a file-backed medium rooted at dir. The
// directory is created lazily on first write.
func NewFileMedium(dir string) *FileMedium {
	return &FileMedium{dir: dir}
}

// path maps a key to a file name. Keys may embed profile names, which
// are user input, so the key is escaped to keep it a single path element.
func (m *FileMedium) path(key string) string {
	return filepath.Join(m.dir, url.PathEscape(key))
}

func (m *FileMedium) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(m.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return data, nil
}

func (m *FileMedium) Write(ctx context.Context, key string, value []byte) error {
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(m.path(key), value, 0600)
}

func (m *FileMedium) Delete(ctx context.Context, key string) error {
	err := os.Remove(m.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrKeyNotFound
		}
		return err
	}
	return nil
}
