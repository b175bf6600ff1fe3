package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ats-go/internal/ats"
	"ats-go/internal/config"
	"ats-go/internal/database"
	"ats-go/internal/encryption"
	"ats-go/internal/insight"
	"ats-go/internal/vault"
)

// ErrEncryptionDisabled is returned by key operations when encryption type is "none".
var ErrEncryptionDisabled = errors.New("encryption is disabled in the config")

// App is the application layer between the CLI/HTTP front ends and the
// ats Service. It constructs all dependencies from config, records audit
// operations and manages resource lifecycle on Close.
type App struct {
	cfg       *config.Config
	db        *database.SQLDatabase
	store     ats.ObjectStore
	encryptor ats.Encryptor
	identity  ats.Identity
	service   *ats.Service
	logger    *slog.Logger
	logCloser io.Closer
	clock     ats.Clock
}

// OpenDatabase opens the configured database without checking its schema.
// An in-memory database is migrated right away since it starts empty.
func OpenDatabase(cfg *config.Config) (*database.SQLDatabase, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}
	if cfg.Database.Type == "memory" {
		if err := db.MigrateUp(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating in-memory database: %w", err)
		}
	}
	return db, nil
}

// New creates a fully wired App from the given config.
// The caller must call Close when done.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	level, err := parseLevel(os.Getenv("ATS_LOG_LEVEL"))
	if err != nil {
		return nil, err
	}
	sessionID := time.Now().UTC().Format("20060102T150405Z")
	logger, logCloser, err := newLogger(cfg.LogDir, sessionID, level)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	a := &App{cfg: cfg, logger: logger, logCloser: logCloser, clock: ats.RealClock{}}
	if err := a.wire(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	cfg := a.cfg

	db, err := OpenDatabase(cfg)
	if err != nil {
		return err
	}
	a.db = db
	if err := db.CheckMigrations(); err != nil {
		return fmt.Errorf("database schema out of date (run `ats db migrate`): %w", err)
	}

	a.store, err = vault.NewVaultFromConfig(ctx, cfg.ObjectStore)
	if err != nil {
		return fmt.Errorf("creating object store: %w", err)
	}

	a.encryptor, err = encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}

	generator, err := insight.NewGeneratorFromConfig(ctx, cfg.Insights)
	if err != nil {
		return fmt.Errorf("creating insight generator: %w", err)
	}

	opts, err := serviceOptions(cfg)
	if err != nil {
		return err
	}

	a.identity = ats.ContextIdentity{Default: cfg.Actor.Name}
	a.service = ats.NewService(db, a.store, a.encryptor, generator, a.identity,
		&slogAdapter{l: a.logger}, a.clock, ats.UUIDGenerator{}, opts...)
	return nil
}

// serviceOptions translates the lifecycle and transition settings.
func serviceOptions(cfg *config.Config) ([]ats.Option, error) {
	policy, err := ats.NewTransitionPolicy(cfg.Transitions)
	if err != nil {
		return nil, fmt.Errorf("loading transitions: %w", err)
	}
	loc, err := cfg.Lifecycle.Location()
	if err != nil {
		return nil, err
	}
	govID, err := cfg.Lifecycle.GovernmentIDRegexp()
	if err != nil {
		return nil, err
	}

	opts := []ats.Option{
		ats.WithTransitionPolicy(policy),
		ats.WithMaxConflictRetries(cfg.Lifecycle.MaxConflictRetries),
		ats.WithLocation(loc),
	}
	if govID != nil {
		opts = append(opts, ats.WithGovernmentIDPattern(govID))
	}
	return opts, nil
}

// Service returns the wired ats Service.
func (a *App) Service() *ats.Service { return a.service }

// Config returns the config the App was built from.
func (a *App) Config() *config.Config { return a.cfg }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Track records an audit operation, runs fn, and marks the operation with
// fn's outcome. fn's error is returned unchanged.
func (a *App) Track(ctx context.Context, operation, parameters string, fn func(context.Context) error) error {
	op := NewOperation(operation, parameters)
	actor, _ := a.identity.Current(ctx)

	rec, err := a.db.CreateOperation(ctx, &ats.Operation{
		Operation:  op.Operation,
		Parameters: op.Parameters,
		Actor:      actor,
		Status:     op.Status,
	})
	if err != nil {
		return fmt.Errorf("recording operation: %w", err)
	}
	op.ID = rec.ID

	runErr := fn(ctx)
	op.Finish(runErr)

	// The outcome is recorded even when the request context was cancelled.
	if err := a.db.FinishOperation(context.WithoutCancel(ctx), op.ID, op.Status); err != nil {
		a.logger.Warn("failed to finish operation", "operation", op.Operation, "id", op.ID, "error", err)
	}
	if runErr != nil {
		a.logger.Error("operation failed", "operation", op.Operation, "id", op.ID, "error", runErr)
	}
	return runErr
}

// History returns the most recent audit operations.
func (a *App) History(ctx context.Context, limit int) ([]*ats.Operation, error) {
	return a.db.ListOperations(ctx, limit)
}

// EncryptionEnabled reports whether documents are encrypted at rest.
func (a *App) EncryptionEnabled() bool {
	return a.encryptor != nil
}

// SetupKeys generates the age key pair protected by passphrase.
func (a *App) SetupKeys(passphrase string) error {
	if a.encryptor == nil {
		return ErrEncryptionDisabled
	}
	return a.encryptor.Setup(passphrase)
}

// Unlock opens the private key for reading encrypted documents. With
// encryption disabled it returns a nil context, which plaintext documents
// do not need.
func (a *App) Unlock(passphrase string) (ats.DecryptionContext, error) {
	if a.encryptor == nil {
		return nil, nil
	}
	return a.encryptor.Unlock(passphrase)
}

// ValidateObjectStore checks that the object store is reachable and writable.
func (a *App) ValidateObjectStore(ctx context.Context) error {
	return a.store.ValidateSetup(ctx)
}

// Snapshot writes a copy of the SQLite database to destPath.
func (a *App) Snapshot(ctx context.Context, destPath string) error {
	return a.db.BackupTo(ctx, destPath)
}

// UploadSnapshot copies the database into the object store under
// snapshots/ and returns the locator.
func (a *App) UploadSnapshot(ctx context.Context) (string, error) {
	tmpDir, err := os.MkdirTemp("", "ats-snapshot-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir for snapshot: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, database.DatabaseFileName)
	if err := a.db.BackupTo(ctx, tmpPath); err != nil {
		return "", err
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		return "", fmt.Errorf("opening snapshot for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat snapshot: %w", err)
	}

	key := fmt.Sprintf("snapshots/ats-%s.db", a.clock.Now().Format("20060102T150405Z"))
	locator, err := a.store.Put(ctx, key, f, info.Size())
	if err != nil {
		return "", fmt.Errorf("uploading snapshot: %w", err)
	}
	a.logger.Info("snapshot uploaded", "locator", locator, "bytes", info.Size())
	return locator, nil
}

// Close closes the database and the log file.
func (a *App) Close() error {
	var firstErr error
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			firstErr = fmt.Errorf("closing database: %w", err)
		}
	}
	if a.logCloser != nil {
		a.logCloser.Close()
	}
	return firstErr
}
