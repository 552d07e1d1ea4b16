package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"eventbooking/internal/domain"
)

// allowedExtensions and allowedMimeTypes form the image allow-list. Both the
// filename extension and the declared MIME type must pass.
var allowedExtensions = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".gif":  {},
}

var allowedMimeTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/gif":  {},
}

type fsStore struct {
	dir string
}

// NewFSStore returns an AssetStore that keeps assets as files under dir,
// creating the directory if needed. Refs are uuid-based filenames, so
// concurrent uploads cannot collide.
func NewFSStore(dir string) (domain.AssetStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &fsStore{dir: dir}, nil
}

func (s *fsStore) Store(data []byte, filename, mimeType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", domain.ErrInvalidAssetType
	}
	if _, ok := allowedMimeTypes[strings.ToLower(mimeType)]; !ok {
		return "", domain.ErrInvalidAssetType
	}

	ref := uuid.NewString() + ext

	// Write to a temp file and rename so a ref never points at a partial write.
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp asset: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write asset: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("sync asset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close asset: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, ref)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("store asset: %w", err)
	}
	return ref, nil
}

func (s *fsStore) Replace(oldRef string, data []byte, filename, mimeType string) (string, error) {
	ref, err := s.Store(data, filename, mimeType)
	if err != nil {
		return "", err
	}
	// The new asset is durable; losing the old file now is tolerable, a
	// dangling record is not.
	if oldRef != "" {
		if err := s.Delete(oldRef); err != nil {
			return ref, fmt.Errorf("delete replaced asset: %w", err)
		}
	}
	return ref, nil
}

func (s *fsStore) Delete(ref string) error {
	path, err := s.path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}

func (s *fsStore) Open(ref string) (io.ReadCloser, error) {
	path, err := s.path(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("open asset: %w", err)
	}
	return f, nil
}

// path resolves a ref inside the store dir, rejecting anything that could
// escape it.
func (s *fsStore) path(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) || strings.HasPrefix(ref, ".") {
		return "", fmt.Errorf("%w: invalid asset ref %q", domain.ErrNotFound, ref)
	}
	return filepath.Join(s.dir, ref), nil
}
