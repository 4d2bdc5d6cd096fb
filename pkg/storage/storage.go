// Package storage reads and writes whole files by slash-separated path,
// on the local filesystem or in an S3 bucket.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a requested path does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidPath is returned for paths that escape the storage root.
	ErrInvalidPath = errors.New("invalid path")
)

type Storage interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
	// List returns the files directly under prefix, relative to the root.
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, path string) (bool, error)
}
