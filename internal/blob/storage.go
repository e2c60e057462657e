package blob

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrNotFound    = errors.New("blob not found")
	ErrInvalidName = errors.New("invalid blob name")
)

// Storage stores binary media keyed by name. Payloads cross the boundary
// base64-encoded; raw bytes never leave this package.
type Storage interface {
	SaveBase64(ctx context.Context, name, payload string) error
	FindBase64(ctx context.Context, name string) (string, error)
	UpdateBase64(ctx context.Context, name, payload string) error
	Delete(ctx context.Context, name string) error
}

// FileStorage keeps blobs as flat files under a root directory.
type FileStorage struct {
	dir string
}

var _ Storage = (*FileStorage)(nil)

func NewFileStorage(dir string) (*FileStorage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("blob storage: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blob storage: create dir: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (s *FileStorage) SaveBase64(ctx context.Context, name, payload string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(name)
	if err != nil {
		return err
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("decode blob %s: %w", name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write blob %s: %w", name, err)
	}
	return nil
}

func (s *FileStorage) FindBase64(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.path(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("blob %s: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("read blob %s: %w", name, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (s *FileStorage) UpdateBase64(ctx context.Context, name, payload string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("blob %s: %w", name, ErrNotFound)
		}
		return fmt.Errorf("stat blob %s: %w", name, err)
	}
	return s.SaveBase64(ctx, name, payload)
}

func (s *FileStorage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("blob %s: %w", name, ErrNotFound)
		}
		return fmt.Errorf("delete blob %s: %w", name, err)
	}
	return nil
}

// path rejects names that would escape the storage root.
func (s *FileStorage) path(name string) (string, error) {
	cleaned := strings.TrimSpace(name)
	if cleaned == "" || strings.Contains(cleaned, "/") || strings.Contains(cleaned, "\\") || strings.Contains(cleaned, "..") {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, cleaned), nil
}
