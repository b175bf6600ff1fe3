package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"ats-go/internal/ats"
	"ats-go/internal/config"
)

func newMemoryConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig(t.TempDir())
	cfg.Database = config.DatabaseConfig{Type: "memory"}
	cfg.ObjectStore = config.ObjectStoreConfig{Type: "memory"}
	cfg.Encryption = config.EncryptionConfig{Type: "test"}
	cfg.Actor.Name = "cli-user"
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNew_WiresService(t *testing.T) {
	a := newTestApp(t, newMemoryConfig(t))
	ctx := context.Background()

	c, err := a.Service().CreateCandidate(ctx, ats.CandidateInput{
		Name:         "Ana Souza",
		GovernmentID: "111.222.333-44",
		Email:        "ana@example.com",
		Phone:        "11912345678",
		JobPosition:  "Backend Developer",
	}, []ats.Document{ats.PendingDocument{Type: ats.DocumentResume, FileName: "cv.pdf", Content: []byte("cv")}})
	if err != nil {
		t.Fatalf("CreateCandidate() error = %v", err)
	}
	if c.CreatedBy != "cli-user" {
		t.Errorf("CreatedBy = %q, want cli-user", c.CreatedBy)
	}
	if !c.Documents[0].Encrypted {
		t.Error("document not encrypted with the test encryptor")
	}
	if err := a.ValidateObjectStore(ctx); err != nil {
		t.Errorf("ValidateObjectStore() error = %v", err)
	}
}

func TestNew_AppliesLifecycleConfig(t *testing.T) {
	cfg := newMemoryConfig(t)
	cfg.Transitions = map[string][]string{"Screening": {"Rejected"}}
	cfg.Lifecycle.GovernmentIDPattern = `^\d{11}$`
	a := newTestApp(t, cfg)
	ctx := context.Background()

	in := ats.CandidateInput{Name: "Ana Souza", GovernmentID: "111.222.333-44", Email: "ana@example.com", Phone: "11912345678", JobPosition: "Dev"}
	if _, err := a.Service().CreateCandidate(ctx, in, nil); !errors.Is(err, ats.ErrValidation) {
		t.Fatalf("CreateCandidate() error = %v, want ErrValidation from the pattern", err)
	}
	in.GovernmentID = "11122233344"
	c, err := a.Service().CreateCandidate(ctx, in, nil)
	if err != nil {
		t.Fatalf("CreateCandidate() error = %v", err)
	}
	if _, err := a.Service().ChangeStatus(ctx, c.ID, ats.StatusOffer, "Jumping straight to offer."); !errors.Is(err, ats.ErrValidation) {
		t.Errorf("ChangeStatus() error = %v, want ErrValidation from the policy", err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
	}{
		{name: "unknown transition status", mutate: func(cfg *config.Config) { cfg.Transitions = map[string][]string{"Limbo": {"Hired"}} }},
		{name: "bad timezone", mutate: func(cfg *config.Config) { cfg.Lifecycle.DisplayTimezone = "Mars/Olympus" }},
		{name: "bad pattern", mutate: func(cfg *config.Config) { cfg.Lifecycle.GovernmentIDPattern = "([" }},
		{name: "unknown store", mutate: func(cfg *config.Config) { cfg.ObjectStore.Type = "tape" }},
		{name: "unknown provider", mutate: func(cfg *config.Config) { cfg.Insights.Provider = "oracle" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newMemoryConfig(t)
			tt.mutate(cfg)
			if a, err := New(context.Background(), cfg); err == nil {
				a.Close()
				t.Error("New() expected error")
			}
		})
	}
}

func TestNew_RequiresMigratedSQLite(t *testing.T) {
	cfg := newMemoryConfig(t)
	cfg.Database = config.DatabaseConfig{Type: "sqlite", DataDir: filepath.Join(cfg.BaseDir, "db")}

	if a, err := New(context.Background(), cfg); err == nil {
		a.Close()
		t.Fatal("New() on an unmigrated database expected error")
	}

	db, err := OpenDatabase(cfg)
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}
	if err := db.MigrateUp(); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	db.Close()

	a := newTestApp(t, cfg)
	dest := filepath.Join(t.TempDir(), "copy.db")
	if err := a.Snapshot(context.Background(), dest); err != nil {
		t.Errorf("Snapshot() error = %v", err)
	}
}

func TestApp_Track(t *testing.T) {
	a := newTestApp(t, newMemoryConfig(t))
	ctx := context.Background()

	if err := a.Track(ctx, "AddInterviewer", "name=Carla", func(ctx context.Context) error {
		_, err := a.Service().AddInterviewer(ctx, "Carla Dias")
		return err
	}); err != nil {
		t.Fatalf("Track() error = %v", err)
	}

	boom := errors.New("boom")
	err := a.Track(ats.WithActor(ctx, "web-user"), "DeleteCandidate", "id=x", func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("Track() error = %v, want the fn error", err)
	}

	ops, err := a.History(ctx, 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("History() = %d operations, want 2", len(ops))
	}
	// Newest first.
	if ops[0].Operation != "DeleteCandidate" || ops[0].Status != StatusError || ops[0].Actor != "web-user" {
		t.Errorf("ops[0] = %+v", ops[0])
	}
	if ops[1].Operation != "AddInterviewer" || ops[1].Status != StatusSuccess || ops[1].Actor != "cli-user" {
		t.Errorf("ops[1] = %+v", ops[1])
	}
	if ops[1].FinishedAt == nil {
		t.Error("FinishedAt not set")
	}
}

func TestApp_UploadSnapshot(t *testing.T) {
	a := newTestApp(t, newMemoryConfig(t))

	locator, err := a.UploadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("UploadSnapshot() error = %v", err)
	}
	if !strings.HasPrefix(locator, "memory://snapshots/ats-") {
		t.Errorf("locator = %q", locator)
	}
}

func TestApp_Keys(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		cfg := newMemoryConfig(t)
		cfg.Encryption.Type = "none"
		a := newTestApp(t, cfg)

		if a.EncryptionEnabled() {
			t.Error("EncryptionEnabled() = true")
		}
		if err := a.SetupKeys("secret"); !errors.Is(err, ErrEncryptionDisabled) {
			t.Errorf("SetupKeys() error = %v, want ErrEncryptionDisabled", err)
		}
		dc, err := a.Unlock("anything")
		if err != nil || dc != nil {
			t.Errorf("Unlock() = %v, %v, want nil, nil", dc, err)
		}
	})

	t.Run("age", func(t *testing.T) {
		cfg := newMemoryConfig(t)
		cfg.Encryption = config.NewConfig(cfg.BaseDir).Encryption
		a := newTestApp(t, cfg)

		if err := a.SetupKeys("correct horse"); err != nil {
			t.Fatalf("SetupKeys() error = %v", err)
		}
		if _, err := a.Unlock("correct horse"); err != nil {
			t.Errorf("Unlock() error = %v", err)
		}
	})
}
