// Package storage keeps uploaded image files, keyed by image name.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"shop-catalog/internal/domain"

	"github.com/spf13/afero"
)

// ErrInvalidName is returned for names that are empty or contain a path
var ErrInvalidName = errors.New("invalid file name")

// FileStore is the Image File Store consulted before an image row is written
type FileStore interface {
	Exists(name string) (bool, error)
	Save(name string, content io.Reader) (int64, error)
}

// AferoFileStore stores files flat inside a single directory of an afero filesystem
type AferoFileStore struct {
	fs afero.Fs
}

// NewLocalFileStore creates a store rooted at dir on the OS filesystem, creating dir if needed
func NewLocalFileStore(dir string) (*AferoFileStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return NewFileStore(afero.NewBasePathFs(osFs, dir)), nil
}

// NewFileStore wraps an existing filesystem; tests pass afero.NewMemMapFs()
func NewFileStore(fs afero.Fs) *AferoFileStore {
	return &AferoFileStore{fs: fs}
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Exists reports whether a regular file with the given name is stored
func (s *AferoFileStore) Exists(name string) (bool, error) {
	if err := checkName(name); err != nil {
		return false, err
	}

	info, err := s.fs.Stat(name)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	return !info.IsDir(), nil
}

// Save writes content under name. An existing file is never overwritten:
// domain.ErrFileExists is returned instead.
func (s *AferoFileStore) Save(name string, content io.Reader) (int64, error) {
	if err := checkName(name); err != nil {
		return 0, err
	}

	f, err := s.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return 0, domain.ErrFileExists
		}
		return 0, fmt.Errorf("failed to create %s: %w", name, err)
	}

	written, err := io.Copy(f, content)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(name)
		return 0, fmt.Errorf("failed to write %s: %w", name, err)
	}

	return written, nil
}
