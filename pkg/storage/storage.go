package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStorage defines the contract for image storage providers.
type ImageStorage interface {
	// UploadImage stores the image from r and returns its public URL.
	// folder is a logical folder in storage (e.g. "avatars").
	UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// DeleteImage removes a previously stored image by its URL.
	DeleteImage(ctx context.Context, fileURL string) error
}

type localStorage struct {
	baseDir   string
	urlPrefix string
}

// NewLocalStorage serves uploads from a directory on disk, addressed under
// urlPrefix (e.g. /static/avatars). The directory is created on first use.
func NewLocalStorage(baseDir, urlPrefix string) (ImageStorage, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("invalid storage dir %q: %w", baseDir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %q: %w", abs, err)
	}
	return &localStorage{baseDir: abs, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

func (s *localStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	dir := s.baseDir
	if folder != "" {
		dir = filepath.Join(s.baseDir, folder)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create folder %q: %w", folder, err)
		}
	}

	// Collision-resistant stored name; the client filename is untrusted.
	ext := strings.ToLower(filepath.Ext(fileName))
	stored := uuid.New().String() + ext

	dst, err := os.Create(filepath.Join(dir, stored))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	url := s.urlPrefix
	if folder != "" {
		url += "/" + folder
	}
	return url + "/" + stored, nil
}

func (s *localStorage) DeleteImage(ctx context.Context, fileURL string) error {
	rel := strings.TrimPrefix(fileURL, s.urlPrefix)
	rel = strings.TrimLeft(rel, "/")
	if rel == "" || strings.Contains(rel, "..") {
		return fmt.Errorf("refusing to delete invalid path %q", fileURL)
	}
	err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(rel)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
