package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("ATS_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("ATS_HOME", "/custom/ats")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		if defaults.ConfigPath != "/custom/config.toml" {
			t.Errorf("ConfigPath = %q, want %q", defaults.ConfigPath, "/custom/config.toml")
		}
		if defaults.BaseDir != "/custom/ats" {
			t.Errorf("BaseDir = %q, want %q", defaults.BaseDir, "/custom/ats")
		}
		if defaults.LogDir != "/custom/ats/log" {
			t.Errorf("LogDir = %q, want %q", defaults.LogDir, "/custom/ats/log")
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("ATS_CONFIG_PATH", "")
		t.Setenv("ATS_HOME", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()

		wantConfig := filepath.Join(homeDir, ".config", "ats.toml")
		if defaults.ConfigPath != wantConfig {
			t.Errorf("ConfigPath = %q, want %q", defaults.ConfigPath, wantConfig)
		}

		wantBase := filepath.Join(homeDir, ".local", "share", "ats")
		if defaults.BaseDir != wantBase {
			t.Errorf("BaseDir = %q, want %q", defaults.BaseDir, wantBase)
		}
	})
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "ATS_TEST_GEMINI_KEY=from-file\nATS_TEST_PRESET=from-file\n"
	if err := os.WriteFile(envFile, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("ATS_TEST_PRESET", "from-env")
	t.Setenv("ATS_TEST_GEMINI_KEY", "")
	os.Unsetenv("ATS_TEST_GEMINI_KEY")

	if err := LoadEnv(filepath.Join(dir, "missing.env"), envFile); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if got := os.Getenv("ATS_TEST_GEMINI_KEY"); got != "from-file" {
		t.Errorf("ATS_TEST_GEMINI_KEY = %q, want from-file", got)
	}
	if got := os.Getenv("ATS_TEST_PRESET"); got != "from-env" {
		t.Errorf("ATS_TEST_PRESET = %q, want from-env (existing vars win)", got)
	}
}
