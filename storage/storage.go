package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no object exists at a storage path
var ErrNotFound = errors.New("stored object not found")

// Storage persists binary objects: case attachments and exported renderings
type Storage interface {
	// Upload stores data under a path derived from objectID and filename and returns that path
	Upload(ctx context.Context, objectID uuid.UUID, filename string, data io.Reader) (string, error)

	// Download opens the object at storagePath
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete removes the object at storagePath. Missing objects are not an error.
	Delete(ctx context.Context, storagePath string) error
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// Config selects and configures a backend
type Config struct {
	Type         StorageType
	LocalPath    string
	S3Bucket     string
	S3Region     string
	AWSAccessKey string
	AWSSecretKey string
}

// New creates the backend named by cfg.Type
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal, "":
		path := cfg.LocalPath
		if path == "" {
			path = "./storage/files"
		}
		return NewLocalStorage(path)
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET is required for S3 storage")
		}
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

var pathReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_", "..", "_")

// generateStoragePath builds a unique, sharded path for an object
func generateStoragePath(objectID uuid.UUID, filename string) string {
	ext := filepath.Ext(filename)
	baseName := pathReplacer.Replace(strings.TrimSuffix(filepath.Base(filename), ext))
	id := objectID.String()
	return fmt.Sprintf("%s/%s_%s%s", id[:2], id, baseName, ext)
}

// contentType determines the content type from a filename
func contentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".html":
		return "text/html; charset=utf-8"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
