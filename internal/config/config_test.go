package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir: "/home/user/.local/share/ats",
		LogDir:  "/home/user/.local/share/ats/log",
		Actor:   ActorConfig{Name: "maria"},
		Database: DatabaseConfig{
			Type: "postgres",
			DSN:  "postgres://ats@localhost/ats?sslmode=disable",
		},
		ObjectStore: ObjectStoreConfig{
			Type:        "s3",
			S3Bucket:    "ats-docs",
			S3Region:    "eu-west-1",
			S3Endpoint:  "http://localhost:9000",
			S3PathStyle: true,
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  "/home/user/.local/share/ats/keys/ats.pub",
			PrivateKeyPath: "/home/user/.local/share/ats/keys/ats.key",
		},
		Insights: InsightsConfig{Provider: "googleai", Model: "gemini-2.0-flash", APIKeyEnv: "GEMINI_API_KEY"},
		Server:   ServerConfig{Addr: ":9090", AllowedOrigins: []string{"http://localhost:3000"}},
		Lifecycle: LifecycleConfig{
			MaxConflictRetries:  5,
			DisplayTimezone:     "America/Sao_Paulo",
			GovernmentIDPattern: `^\d{11}$`,
		},
		Transitions: map[string][]string{
			"Hired": {"Rejected"},
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.Actor.Name != "maria" {
		t.Errorf("Actor.Name = %q, want %q", got.Actor.Name, "maria")
	}
	if got.Database.DSN != original.Database.DSN {
		t.Errorf("Database.DSN = %q, want %q", got.Database.DSN, original.Database.DSN)
	}
	if got.ObjectStore.S3Bucket != "ats-docs" || !got.ObjectStore.S3PathStyle {
		t.Errorf("ObjectStore = %+v, want bucket ats-docs with path style", got.ObjectStore)
	}
	if got.Encryption.PrivateKeyPath != original.Encryption.PrivateKeyPath {
		t.Errorf("Encryption.PrivateKeyPath = %q, want %q", got.Encryption.PrivateKeyPath, original.Encryption.PrivateKeyPath)
	}
	if got.Insights.Model != "gemini-2.0-flash" {
		t.Errorf("Insights.Model = %q, want %q", got.Insights.Model, "gemini-2.0-flash")
	}
	if len(got.Server.AllowedOrigins) != 1 {
		t.Fatalf("len(Server.AllowedOrigins) = %d, want 1", len(got.Server.AllowedOrigins))
	}
	if got.Lifecycle.MaxConflictRetries != 5 {
		t.Errorf("Lifecycle.MaxConflictRetries = %d, want 5", got.Lifecycle.MaxConflictRetries)
	}
	if got.Lifecycle.GovernmentIDPattern != original.Lifecycle.GovernmentIDPattern {
		t.Errorf("Lifecycle.GovernmentIDPattern = %q, want %q", got.Lifecycle.GovernmentIDPattern, original.Lifecycle.GovernmentIDPattern)
	}
	if targets := got.Transitions["Hired"]; len(targets) != 1 || targets[0] != "Rejected" {
		t.Errorf("Transitions[Hired] = %v, want [Rejected]", targets)
	}
}

func TestManager_Read_Transitions(t *testing.T) {
	input := `
[transitions]
Screening = ["TechnicalTest", "Rejected"]
Offer = ["Hired", "Rejected"]
`
	m := &Manager{}
	cfg, err := m.Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(cfg.Transitions) != 2 {
		t.Fatalf("len(Transitions) = %d, want 2", len(cfg.Transitions))
	}
	if got := cfg.Transitions["Screening"]; len(got) != 2 {
		t.Errorf("Transitions[Screening] = %v, want 2 targets", got)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/ats")

	if cfg.BaseDir != "/data/ats" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/ats")
	}
	if cfg.LogDir != "/data/ats/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/ats/log")
	}
	if cfg.Database.Type != "sqlite" || cfg.Database.DataDir != "/data/ats/db" {
		t.Errorf("Database = %+v, want sqlite in /data/ats/db", cfg.Database)
	}
	if cfg.ObjectStore.Root != "/data/ats/documents" {
		t.Errorf("ObjectStore.Root = %q, want %q", cfg.ObjectStore.Root, "/data/ats/documents")
	}
	if cfg.Encryption.PublicKeyPath != "/data/ats/keys/ats.pub" {
		t.Errorf("Encryption.PublicKeyPath = %q, want %q", cfg.Encryption.PublicKeyPath, "/data/ats/keys/ats.pub")
	}
	if cfg.Lifecycle.MaxConflictRetries != DefaultMaxConflictRetries {
		t.Errorf("Lifecycle.MaxConflictRetries = %d, want %d", cfg.Lifecycle.MaxConflictRetries, DefaultMaxConflictRetries)
	}
}

func TestLifecycleConfig_Location(t *testing.T) {
	loc, err := LifecycleConfig{}.Location()
	if err != nil {
		t.Fatalf("Location() error = %v", err)
	}
	if loc != time.UTC {
		t.Errorf("Location() = %v, want UTC", loc)
	}

	if _, err := (LifecycleConfig{DisplayTimezone: "Not/AZone"}).Location(); err == nil {
		t.Error("Location() expected error for unknown zone")
	}
}

func TestLifecycleConfig_GovernmentIDRegexp(t *testing.T) {
	re, err := LifecycleConfig{}.GovernmentIDRegexp()
	if err != nil || re != nil {
		t.Errorf("GovernmentIDRegexp() = %v, %v; want nil, nil", re, err)
	}

	re, err = LifecycleConfig{GovernmentIDPattern: `^\d{3}$`}.GovernmentIDRegexp()
	if err != nil {
		t.Fatalf("GovernmentIDRegexp() error = %v", err)
	}
	if !re.MatchString("123") || re.MatchString("12a") {
		t.Errorf("GovernmentIDRegexp() = %v, matches unexpectedly", re)
	}

	if _, err := (LifecycleConfig{GovernmentIDPattern: "("}).GovernmentIDRegexp(); err == nil {
		t.Error("GovernmentIDRegexp() expected error for invalid pattern")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "ats.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "ats.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "ats.toml")
		cfg := NewConfig(dir)
		cfg.Actor.Name = "read-test"
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Actor.Name != "read-test" {
			t.Errorf("Actor.Name = %q, want %q", got.Actor.Name, "read-test")
		}
		if got.Database.Type != "memory" {
			t.Errorf("Database.Type = %q, want %q", got.Database.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/ats.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
