package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultConfigDir  = ".remedy"
	DefaultConfigFile = "config.json"
	DefaultDBFile     = ".remedy/remedy.db"
)

// Load reads the config file (if present) and returns a populated Config.
// The configPath flag may override the default location. Environment
// variables override file values (GITHUB_APP_ID, GEMINI_API_KEY, ...).
func Load(configPath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(home, DefaultConfigDir))
	}

	setDefaults(v, home)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !isNotExist(err) {
			// Config file exists but is malformed.
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// No config yet — defaults and environment apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Database.Path = expandHome(cfg.Database.Path, home)
	return &cfg, nil
}

// Save writes the config to disk as JSON.
func Save(cfg *Config, configPath string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("cannot determine home directory: %w", err)
	}

	if configPath == "" {
		configPath = filepath.Join(home, DefaultConfigDir, DefaultConfigFile)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("serialising config: %w", err)
	}

	return os.WriteFile(configPath, data, 0o600)
}

// setDefaults populates viper with sensible out-of-the-box values.
func setDefaults(v *viper.Viper, home string) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", filepath.Join(home, DefaultDBFile))
	v.SetDefault("database.dsn", "")

	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.gemini_api_key", "")
	v.SetDefault("ai.anthropic_api_key", "")
	// The provider key variables do not follow the section_key convention.
	_ = v.BindEnv("ai.gemini_api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("ai.anthropic_api_key", "ANTHROPIC_API_KEY")

	v.SetDefault("github.api_url", "https://api.github.com")
	v.SetDefault("github.default_branch", "main")
	v.SetDefault("github.app_id", "")
	v.SetDefault("github.installation_id", "")
	v.SetDefault("github.private_key", "")

	v.SetDefault("git.author_name", "Remedy Bot")
	v.SetDefault("git.author_email", "remedy@example.com")

	v.SetDefault("scanner.semgrep_config", "auto")
	v.SetDefault("scanner.timeout_sec", 180)

	v.SetDefault("worker.count", 3)
	v.SetDefault("worker.queue_size", 64)
	v.SetDefault("worker.schedule", "")

	v.SetDefault("notify.slack_webhook_url", "")
	v.SetDefault("notify.webhook_url", "")
}

func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

func isNotExist(err error) bool {
	return os.IsNotExist(err) || strings.Contains(err.Error(), "no such file")
}
