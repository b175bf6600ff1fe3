package vault

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"ats-go/internal/ats"
)

const memoryScheme = "memory://"

// MemoryVault is an in-memory implementation of ats.ObjectStore.
// It is useful for testing and for throwaway setups.
// This implementation is safe for concurrent use.
type MemoryVault struct {
	name    string
	objects map[string][]byte // key -> content
	mu      sync.RWMutex
}

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:    name,
		objects: make(map[string][]byte),
	}
}

// Put stores content under key and returns a memory:// locator.
func (m *MemoryVault) Put(ctx context.Context, key string, r io.Reader, size int64) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}

	if int64(len(data)) != size {
		return "", fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = data
	return memoryScheme + key, nil
}

// Get writes the object behind locator to w.
func (m *MemoryVault) Get(ctx context.Context, locator string, w io.Writer) error {
	key, err := m.key(locator)
	if err != nil {
		return err
	}

	m.mu.RLock()
	data, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ats.ErrObjectNotFound, locator)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}
	return nil
}

// Delete removes the object behind locator.
func (m *MemoryVault) Delete(ctx context.Context, locator string) error {
	key, err := m.key(locator)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[key]; !ok {
		return fmt.Errorf("%w: %s", ats.ErrObjectNotFound, locator)
	}
	delete(m.objects, key)
	return nil
}

// Len returns the number of stored objects.
func (m *MemoryVault) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup(ctx context.Context) error {
	return nil
}

func (m *MemoryVault) key(locator string) (string, error) {
	key, ok := strings.CutPrefix(locator, memoryScheme)
	if !ok || key == "" {
		return "", fmt.Errorf("locator %q does not belong to memory vault %s", locator, m.name)
	}
	return key, nil
}

// Compile-time check that MemoryVault implements ats.ObjectStore interface
var _ ats.ObjectStore = (*MemoryVault)(nil)
