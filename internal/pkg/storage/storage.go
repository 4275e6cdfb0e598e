package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrInvalidPath  = errors.New("invalid storage path")
	ErrFileNotFound = errors.New("file not found")
)

// FileStorage stores generated documents under slash-separated keys.
type FileStorage interface {
	// Put writes the content under key, replacing any previous object.
	Put(ctx context.Context, key string, content io.Reader, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// URL is the address the stored object is served from.
	URL(key string) string
}
