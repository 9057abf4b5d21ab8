// Package storage contains file/object storage abstractions and utilities for object stores (S3-compatible).
// Implementations must avoid using local disk and rely on streaming I/O only.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// ErrObjectNotFound is returned by Stat and Get when no object exists under the key.
var ErrObjectNotFound = errors.New("object not found")

// ErrMalformedURL is returned by ObjectKeyFromURL when the URL does not
// contain the bucket marker and therefore cannot be mapped back to a key.
var ErrMalformedURL = errors.New("malformed object url")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
// ContentType and Metadata are optional.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
// Methods use context and streaming readers/writers; no local disk is used.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Stat returns object info without reading content; ErrObjectNotFound if absent.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PublicURL returns the unauthenticated download URL for the object.
	PublicURL(key string) string
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ObjectKeyFromURL recovers the object key from a public URL by locating the
// fixed "<bucket>/" marker. The administrative delete endpoint receives the
// stored file_url, not a key, so this is the one place a URL is parsed back.
func ObjectKeyFromURL(bucket, fileURL string) (string, error) {
	marker := bucket + "/"
	idx := strings.Index(fileURL, marker)
	if idx < 0 {
		return "", ErrMalformedURL
	}
	key := fileURL[idx+len(marker):]
	if key == "" {
		return "", ErrMalformedURL
	}
	return key, nil
}
