package config

// Config is the root configuration structure for remedy.
// Serialised to ~/.remedy/config.json; every field can also be set through
// the environment (e.g. GITHUB_APP_ID, GEMINI_API_KEY, DATABASE_DRIVER).
type Config struct {
	Database DatabaseConfig `mapstructure:"database" json:"database"`
	AI       AIConfig       `mapstructure:"ai"       json:"ai"`
	GitHub   GitHubConfig   `mapstructure:"github"   json:"github"`
	Git      GitConfig      `mapstructure:"git"      json:"git"`
	Scanner  ScannerConfig  `mapstructure:"scanner"  json:"scanner"`
	Worker   WorkerConfig   `mapstructure:"worker"   json:"worker"`
	Notify   NotifyConfig   `mapstructure:"notify"   json:"notify"`
}

// NotifyConfig wires optional outbound notifications for scan outcomes and
// opened pull requests. Channels with an empty URL are disabled.
type NotifyConfig struct {
	SlackWebhookURL string `mapstructure:"slack_webhook_url" json:"slack_webhook_url"`
	WebhookURL      string `mapstructure:"webhook_url"       json:"webhook_url"`
}

// DatabaseConfig controls the storage backend.
type DatabaseConfig struct {
	// Driver is "sqlite" (default) or "mysql".
	Driver string `mapstructure:"driver" json:"driver"`
	// Path is the SQLite file path (expanded at runtime).
	Path string `mapstructure:"path"   json:"path"`
	// DSN is the MySQL data source name (used when Driver == "mysql").
	DSN string `mapstructure:"dsn"    json:"dsn"`
}

// AIConfig controls the completion provider used for prioritisation and
// patch planning.
type AIConfig struct {
	// Provider is "gemini" (default), "anthropic", or "" for the noop provider.
	Provider     string `mapstructure:"provider"          json:"provider"`
	GeminiKey    string `mapstructure:"gemini_api_key"    json:"gemini_api_key"`
	AnthropicKey string `mapstructure:"anthropic_api_key" json:"anthropic_api_key"`
	// Model overrides the provider's default model name.
	Model string `mapstructure:"model" json:"model"`
}

// GitHubConfig holds GitHub App installation credentials for publishing.
// All three credential fields must be present for automated push/PR; when
// any is missing the publish step stops after the local commit.
type GitHubConfig struct {
	AppID          string `mapstructure:"app_id"          json:"app_id"`
	InstallationID string `mapstructure:"installation_id" json:"installation_id"`
	// PrivateKey is the base64-encoded PEM of the app's private key.
	PrivateKey string `mapstructure:"private_key" json:"private_key"`
	// APIURL overrides the GitHub API endpoint (enterprise installs).
	APIURL string `mapstructure:"api_url" json:"api_url"`
	// DefaultBranch is the PR base fallback when the API lookup fails.
	DefaultBranch string `mapstructure:"default_branch" json:"default_branch"`
}

// HasAppCredentials reports whether all installation credential fields are set.
func (c GitHubConfig) HasAppCredentials() bool {
	return c.AppID != "" && c.InstallationID != "" && c.PrivateKey != ""
}

// GitConfig controls the bot identity used for remediation commits.
type GitConfig struct {
	AuthorName  string `mapstructure:"author_name"  json:"author_name"`
	AuthorEmail string `mapstructure:"author_email" json:"author_email"`
}

// ScannerConfig controls the external analyzer invocations.
type ScannerConfig struct {
	// SemgrepConfig is the ruleset path/registry ref passed to semgrep.
	SemgrepConfig string `mapstructure:"semgrep_config" json:"semgrep_config"`
	// OSVConfig is an optional osv-scanner config file path.
	OSVConfig string `mapstructure:"osv_config" json:"osv_config"`
	// TimeoutSec is the per-rule timeout passed to semgrep.
	TimeoutSec int `mapstructure:"timeout_sec" json:"timeout_sec"`
}

// WorkerConfig controls the job dispatcher.
type WorkerConfig struct {
	// Count is the number of parallel pipeline workers.
	Count int `mapstructure:"count" json:"count"`
	// QueueSize bounds the in-process job queue.
	QueueSize int `mapstructure:"queue_size" json:"queue_size"`
	// Schedule is an optional cron expression; when set, every registered
	// repository is enqueued for both scan kinds on that schedule.
	Schedule string `mapstructure:"schedule" json:"schedule"`
}
