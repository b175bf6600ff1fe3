package testutil

import (
	"context"
	"io"
	"sync"

	"ats-go/internal/ats"
	"ats-go/internal/vault"
)

// NewTestObjectStore creates a new in-memory object store for testing.
func NewTestObjectStore() *vault.MemoryVault {
	return vault.NewMemoryVault("test-documents")
}

// FailingObjectStore wraps an ObjectStore and fails selected calls.
// A nil error field lets the call through.
type FailingObjectStore struct {
	ats.ObjectStore

	mu        sync.Mutex
	PutErr    error
	GetErr    error
	DeleteErr error
	// FailPutAfter lets this many Puts succeed before PutErr applies.
	FailPutAfter int
	puts         int
	Deleted      []string
}

var _ ats.ObjectStore = (*FailingObjectStore)(nil)

func NewFailingObjectStore(inner ats.ObjectStore) *FailingObjectStore {
	return &FailingObjectStore{ObjectStore: inner}
}

func (f *FailingObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64) (string, error) {
	f.mu.Lock()
	f.puts++
	fail := f.PutErr != nil && f.puts > f.FailPutAfter
	f.mu.Unlock()
	if fail {
		return "", f.PutErr
	}
	return f.ObjectStore.Put(ctx, key, r, size)
}

func (f *FailingObjectStore) Get(ctx context.Context, locator string, w io.Writer) error {
	if f.GetErr != nil {
		return f.GetErr
	}
	return f.ObjectStore.Get(ctx, locator, w)
}

func (f *FailingObjectStore) Delete(ctx context.Context, locator string) error {
	f.mu.Lock()
	f.Deleted = append(f.Deleted, locator)
	f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	return f.ObjectStore.Delete(ctx, locator)
}
