package vault

import (
	"context"
	"fmt"

	"ats-go/internal/ats"
	"ats-go/internal/config"
)

// NewVaultFromConfig creates an ObjectStore based on the object store config type.
func NewVaultFromConfig(ctx context.Context, cfg config.ObjectStoreConfig) (ats.ObjectStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryVault("memory"), nil
	case "s3":
		return NewS3Vault(ctx, "s3", cfg)
	case "filesystem":
		if cfg.Root == "" {
			return nil, fmt.Errorf("filesystem object store requires root to be set")
		}
		return NewFileSystemVault("filesystem", cfg.Root)
	default:
		return nil, fmt.Errorf("unknown object store type: %s", cfg.Type)
	}
}
