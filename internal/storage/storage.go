package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/nikah-service/internal/config"
	apperrors "github.com/spec-kit/nikah-service/pkg/util/errorutil"
)

// Store persists uploaded documents and receipts and hands back an opaque
// relative path. The core never reads file content back.
type Store interface {
	Save(filename, mimeType string, size int64, content io.Reader) (string, error)
}

var allowedExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".pdf":  "application/pdf",
}

// LocalStore writes uploads under a single directory with generated names.
type LocalStore struct {
	dir      string
	maxBytes int64
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(cfg config.StorageConfig) (*LocalStore, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: cfg.UploadDir, maxBytes: cfg.MaxUploadBytes}, nil
}

// Save validates extension, MIME type, and size, then stores the content
// under a random name preserving the original extension.
func (s *LocalStore) Save(filename, mimeType string, size int64, content io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	expectedMime, ok := allowedExtensions[ext]
	if !ok {
		return "", apperrors.NewValidationError("file type not allowed",
			map[string]any{"extension": ext})
	}
	if mimeType != "" && mimeType != expectedMime {
		return "", apperrors.NewValidationError("file content type not allowed",
			map[string]any{"content_type": mimeType})
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return "", apperrors.NewValidationError("file exceeds size limit",
			map[string]any{"max_bytes": s.maxBytes})
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	defer out.Close()

	// LimitReader guards against clients lying about size.
	limit := s.maxBytes
	if limit <= 0 {
		limit = size
	}
	written, err := io.Copy(out, io.LimitReader(content, limit+1))
	if err != nil {
		_ = os.Remove(path)
		return "", apperrors.NewInternalError(err)
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		_ = os.Remove(path)
		return "", apperrors.NewValidationError("file exceeds size limit",
			map[string]any{"max_bytes": s.maxBytes})
	}

	return name, nil
}
