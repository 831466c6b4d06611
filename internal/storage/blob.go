// Package storage provides blob storage for uploaded media. References are
// opaque identifiers; resolving a reference yields a serving URL.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"ripple/internal/config"
	"ripple/internal/models"
)

// BlobStore stores opaque blobs and resolves references to URLs.
type BlobStore interface {
	Store(ctx context.Context, content []byte, filename string) (ref string, err error)
	Resolve(ref string) (url string, err error)
	// Dir returns the directory blobs are served from.
	Dir() string
}

const defaultMaxSizeMB = 10

var allowedMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// LocalStore is a filesystem-backed BlobStore. Files are content-addressed by
// sha256 so duplicate uploads dedupe to one stored file.
type LocalStore struct {
	dir          string
	baseURL      string
	maxSizeBytes int64
}

// NewLocalStore creates a LocalStore from the application configuration.
func NewLocalStore(cfg *config.Config) (*LocalStore, error) {
	dir := "/tmp/ripple/blobs"
	baseURL := "/media"
	maxSizeMB := defaultMaxSizeMB

	if cfg != nil {
		if cfg.BlobDir != "" {
			dir = cfg.BlobDir
		}
		if cfg.BlobBaseURL != "" {
			baseURL = cfg.BlobBaseURL
		}
		if cfg.BlobMaxSizeMB > 0 {
			maxSizeMB = cfg.BlobMaxSizeMB
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob dir: %w", err)
	}

	return &LocalStore{
		dir:          dir,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		maxSizeBytes: int64(maxSizeMB) * 1024 * 1024,
	}, nil
}

// Store validates and persists the blob, returning its opaque reference.
func (s *LocalStore) Store(_ context.Context, content []byte, filename string) (string, error) {
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(content)
	if !allowedMIMEs[detectedType] {
		return "", models.NewValidationError("Invalid image type")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		if exts, err := mime.ExtensionsByType(detectedType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}

	sum := sha256.Sum256(content)
	ref := hex.EncodeToString(sum[:]) + ext

	path := filepath.Join(s.dir, ref)
	if _, err := os.Stat(path); err == nil {
		// Same content already stored; reuse.
		return ref, nil
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", models.NewInternalError(err)
	}
	return ref, nil
}

// Resolve maps a reference to its serving URL.
func (s *LocalStore) Resolve(ref string) (string, error) {
	if ref == "" {
		return "", models.NewValidationError("Empty blob reference")
	}
	// Refs are single path segments; anything else is a traversal attempt.
	if strings.ContainsAny(ref, "/\\") || ref != filepath.Base(ref) {
		return "", models.NewValidationError("Invalid blob reference")
	}
	if _, err := os.Stat(filepath.Join(s.dir, ref)); err != nil {
		return "", models.NewNotFoundError("Blob", ref)
	}
	return s.baseURL + "/" + ref, nil
}

// Dir returns the directory blobs are stored in, for static file serving.
func (s *LocalStore) Dir() string {
	return s.dir
}
