package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("expected sqlite default, got %q", cfg.Database.Driver)
	}
	if cfg.AI.Provider != "gemini" {
		t.Fatalf("expected gemini default, got %q", cfg.AI.Provider)
	}
	if cfg.Scanner.SemgrepConfig != "auto" || cfg.Scanner.TimeoutSec != 180 {
		t.Fatalf("unexpected scanner defaults: %+v", cfg.Scanner)
	}
	if cfg.Worker.Count != 3 || cfg.Worker.QueueSize != 64 {
		t.Fatalf("unexpected worker defaults: %+v", cfg.Worker)
	}
	if cfg.GitHub.HasAppCredentials() {
		t.Fatal("credentials must default to unset")
	}
}

func TestLoadCredentialsFromEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GITHUB_APP_ID", "424242")
	t.Setenv("GITHUB_INSTALLATION_ID", "99")
	t.Setenv("GITHUB_PRIVATE_KEY", "Zm9v")
	t.Setenv("GEMINI_API_KEY", "k-123")
	t.Setenv("ANTHROPIC_API_KEY", "k-456")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GitHub.AppID != "424242" || cfg.GitHub.InstallationID != "99" || cfg.GitHub.PrivateKey != "Zm9v" {
		t.Fatalf("env credentials not applied: %+v", cfg.GitHub)
	}
	if !cfg.GitHub.HasAppCredentials() {
		t.Fatal("expected credentials to be detected")
	}
	if cfg.AI.GeminiKey != "k-123" || cfg.AI.AnthropicKey != "k-456" {
		t.Fatalf("env provider keys not applied: %+v", cfg.AI)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, "custom.json")
	body := `{
		"database": {"driver": "mysql", "dsn": "user:pw@tcp(db:3306)/remedy"},
		"ai": {"provider": "anthropic"},
		"github": {"app_id": "7", "installation_id": "11", "private_key": "Zm9v"}
	}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "mysql" || cfg.Database.DSN == "" {
		t.Fatalf("file values not applied: %+v", cfg.Database)
	}
	if cfg.AI.Provider != "anthropic" {
		t.Fatalf("expected anthropic, got %q", cfg.AI.Provider)
	}
	if !cfg.GitHub.HasAppCredentials() {
		t.Fatal("expected credentials to be detected")
	}
	// Unset sections keep their defaults.
	if cfg.Git.AuthorName != "Remedy Bot" {
		t.Fatalf("expected default author, got %q", cfg.Git.AuthorName)
	}
}

func TestSaveAndReload(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.AI.Provider = "anthropic"

	path := filepath.Join(home, ".remedy", "config.json")
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.AI.Provider != "anthropic" {
		t.Fatalf("expected saved provider, got %q", reloaded.AI.Provider)
	}
}
