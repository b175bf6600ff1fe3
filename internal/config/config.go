package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultMaxConflictRetries mirrors the service default so a fresh config
// file states it explicitly.
const DefaultMaxConflictRetries = 3

// Config represents the main configuration for ats.
type Config struct {
	BaseDir     string              `toml:"base_dir"`
	LogDir      string              `toml:"log_dir"`
	Actor       ActorConfig         `toml:"actor"`
	Database    DatabaseConfig      `toml:"database"`
	ObjectStore ObjectStoreConfig   `toml:"object_store"`
	Encryption  EncryptionConfig    `toml:"encryption"`
	Insights    InsightsConfig      `toml:"insights"`
	Server      ServerConfig        `toml:"server"`
	Lifecycle   LifecycleConfig     `toml:"lifecycle"`
	Transitions map[string][]string `toml:"transitions,omitempty"`
}

// ActorConfig names who the CLI acts as. An empty name is anonymous and
// history entries are labeled "System".
type ActorConfig struct {
	Name string `toml:"name"`
}

// DatabaseConfig represents configuration for the document store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite", "memory" or "postgres"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
	DSN     string `toml:"dsn,omitempty"`      // only used for type=postgres
}

// ObjectStoreConfig represents configuration for the document object store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ObjectStoreConfig struct {
	Type string `toml:"type"` // "memory", "filesystem" or "s3"

	// FileSystem-specific fields (only used when Type == "filesystem")
	Root string `toml:"root,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Prefix    string `toml:"s3_prefix,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3Endpoint  string `toml:"s3_endpoint,omitempty"`
	S3PathStyle bool   `toml:"s3_path_style,omitempty"`

	// Static credentials; when empty the default AWS credential chain is used.
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used for documents at rest.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default), "test" or "none"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// InsightsConfig selects the language model behind flow analysis.
type InsightsConfig struct {
	Provider  string `toml:"provider"` // "none" (default), "googleai", "openai" or "ollama"
	Model     string `toml:"model,omitempty"`
	APIKeyEnv string `toml:"api_key_env,omitempty"` // env var holding the API key
	BaseURL   string `toml:"base_url,omitempty"`    // ollama server or OpenAI-compatible endpoint
}

// ServerConfig configures `ats serve`.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
}

// LifecycleConfig tunes the lifecycle coordinator.
type LifecycleConfig struct {
	MaxConflictRetries  int    `toml:"max_conflict_retries"`
	DisplayTimezone     string `toml:"display_timezone,omitempty"`
	GovernmentIDPattern string `toml:"government_id_pattern,omitempty"`
}

// Location resolves DisplayTimezone. Empty means UTC.
func (l LifecycleConfig) Location() (*time.Location, error) {
	if l.DisplayTimezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(l.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("loading display timezone: %w", err)
	}
	return loc, nil
}

// GovernmentIDRegexp compiles GovernmentIDPattern. Empty returns nil.
func (l LifecycleConfig) GovernmentIDRegexp() (*regexp.Regexp, error) {
	if l.GovernmentIDPattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(l.GovernmentIDPattern)
	if err != nil {
		return nil, fmt.Errorf("compiling government_id_pattern: %w", err)
	}
	return re, nil
}

// NewConfig creates a new Config rooted at baseDir with local defaults: a
// sqlite database, filesystem documents and age keys under baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		ObjectStore: ObjectStoreConfig{
			Type: "filesystem",
			Root: filepath.Join(baseDir, "documents"),
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "ats.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "ats.key"),
		},
		Insights: InsightsConfig{Provider: "none"},
		Server:   ServerConfig{Addr: "127.0.0.1:8080"},
		Lifecycle: LifecycleConfig{
			MaxConflictRetries: DefaultMaxConflictRetries,
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
