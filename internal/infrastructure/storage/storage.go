// Package storage uploads parcel photos to an object store.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
	// PublicURL is the address clients use to fetch key.
	PublicURL(key string) string
}

// Storage wraps an ObjectStorage backend with parcel photo helpers.
type Storage struct {
	backend ObjectStorage
}

func NewStorage(backend ObjectStorage) *Storage {
	return &Storage{backend: backend}
}

func (s *Storage) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, key)
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// PhotoKey builds parcels/<id>/<uuid><ext> with a lower-cased extension.
func PhotoKey(parcelID int64, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("parcels/%d/%s%s", parcelID, uuid.NewString(), ext)
}

// PutParcelPhoto uploads the photo and returns its public URL.
func (s *Storage) PutParcelPhoto(ctx context.Context, parcelID int64, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key := PhotoKey(parcelID, filename)
	if err := s.backend.Put(ctx, key, r, size, contentType); err != nil {
		return "", err
	}
	return s.backend.PublicURL(key), nil
}
