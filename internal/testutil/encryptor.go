package testutil

import (
	"ats-go/internal/ats"
	"ats-go/internal/encryption"
)

// NewTestEncryptor creates a configured, deterministic encryptor for testing.
func NewTestEncryptor() ats.Encryptor {
	return encryption.NewTestEncryptor()
}

// UnlockedTestContext returns a DecryptionContext matching NewTestEncryptor.
func UnlockedTestContext() ats.DecryptionContext {
	return &encryption.TestDecryptionContext{}
}
