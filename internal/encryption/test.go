package encryption

import (
	"bytes"
	"fmt"
	"io"

	"ats-go/internal/ats"
)

// testHeader is prepended to data by TestEncryptor so stored objects differ
// from the plaintext while staying deterministic and reversible.
var testHeader = []byte("ATSENC\x00\x00")

// TestEncryptor is a simple, deterministic encryptor for tests and demos.
// It prepends a fixed 8-byte header during encryption and strips it during
// decryption. Unlock accepts only the passphrase given to Setup, so wrong
// passphrase handling can be exercised without real crypto.
type TestEncryptor struct {
	passphrase string
	configured bool
}

var _ ats.Encryptor = (*TestEncryptor)(nil)

// NewTestEncryptor creates a configured TestEncryptor that unlocks with any
// passphrase until Setup sets one.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{configured: true}
}

// NewUnconfiguredTestEncryptor creates a TestEncryptor that reports no keys,
// as a fresh installation would.
func NewUnconfiguredTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

func (e *TestEncryptor) Setup(passphrase string) error {
	if passphrase == "" {
		return fmt.Errorf("passphrase must not be empty")
	}
	e.passphrase = passphrase
	e.configured = true
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if !e.configured {
		return fmt.Errorf("test encryptor is not configured")
	}
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Unlock(passphrase string) (ats.DecryptionContext, error) {
	if e.passphrase != "" && passphrase != e.passphrase {
		return nil, ErrWrongPassphrase
	}
	return &TestDecryptionContext{}, nil
}

func (e *TestEncryptor) IsConfigured() bool {
	return e.configured
}

// TestDecryptionContext strips the test header added by TestEncryptor.
type TestDecryptionContext struct{}

var _ ats.DecryptionContext = (*TestDecryptionContext)(nil)

func (c *TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header, testHeader) {
		return fmt.Errorf("invalid test encryption header")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
