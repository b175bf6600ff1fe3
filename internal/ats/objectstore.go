package ats

import (
	"context"
	"io"
)

// ObjectStore holds candidate document blobs. Locators are opaque strings
// produced by Put and understood only by the same store.
type ObjectStore interface {
	// Put stores size bytes read from r under key and returns a locator.
	Put(ctx context.Context, key string, r io.Reader, size int64) (locator string, err error)

	// Get writes the object behind locator to w. A missing object returns an
	// error wrapping ErrObjectNotFound.
	Get(ctx context.Context, locator string, w io.Writer) error

	// Delete removes the object behind locator. A missing object returns an
	// error wrapping ErrObjectNotFound.
	Delete(ctx context.Context, locator string) error

	// ValidateSetup verifies that the store is reachable and writable.
	ValidateSetup(ctx context.Context) error
}
