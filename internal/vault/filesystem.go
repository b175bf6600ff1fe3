package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"ats-go/internal/ats"
)

const fileScheme = "file://"

// FileSystemVault is a filesystem-based implementation of ats.ObjectStore.
// Objects are files under the root, laid out by key:
//
//	<root>/
//	  candidates/
//	    <candidateID>/
//	      <unixnano>_<filename>
//
// Locators are "file://" followed by the slash-separated key, so a vault
// can be moved by changing its root.
type FileSystemVault struct {
	name string
	root string
}

// NewFileSystemVault creates a new filesystem vault rooted at the given path.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create vault root: %w", err)
	}

	return &FileSystemVault{
		name: name,
		root: root,
	}, nil
}

// Put stores content under key using an atomic write.
func (v *FileSystemVault) Put(ctx context.Context, key string, r io.Reader, size int64) (string, error) {
	destPath, err := v.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := v.writeFile(destPath, r, size); err != nil {
		return "", err
	}
	return fileScheme + key, nil
}

// Get writes the object behind locator to w.
func (v *FileSystemVault) Get(ctx context.Context, locator string, w io.Writer) error {
	srcPath, err := v.locate(locator)
	if err != nil {
		return err
	}

	f, err := os.Open(srcPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ats.ErrObjectNotFound, locator)
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	return nil
}

// Delete removes the object behind locator.
func (v *FileSystemVault) Delete(ctx context.Context, locator string) error {
	path, err := v.locate(locator)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ats.ErrObjectNotFound, locator)
		}
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// ValidateSetup verifies that the vault root is a writable directory.
func (v *FileSystemVault) ValidateSetup(ctx context.Context) error {
	info, err := os.Stat(v.root)
	if err != nil {
		return fmt.Errorf("vault root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault root is not a directory: %s", v.root)
	}

	probe, err := os.CreateTemp(v.root, ".probe-*")
	if err != nil {
		return fmt.Errorf("vault root not writable: %w", err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

// path maps a key to a file below the root. Keys may not escape the root.
func (v *FileSystemVault) path(key string) (string, error) {
	rel := filepath.FromSlash(key)
	if key == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(v.root, rel), nil
}

func (v *FileSystemVault) locate(locator string) (string, error) {
	key, ok := strings.CutPrefix(locator, fileScheme)
	if !ok {
		return "", fmt.Errorf("locator %q does not belong to filesystem vault %s", locator, v.name)
	}
	return v.path(key)
}

// writeFile writes data from r to the specified path using atomic write (temp file + rename).
func (v *FileSystemVault) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	// The temp file lives in the destination directory so the rename is atomic.
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemVault implements ats.ObjectStore interface
var _ ats.ObjectStore = (*FileSystemVault)(nil)
