package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/remedyhq/remedy-agent/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialise configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		// Secrets stay out of terminal output.
		cfg.AI.GeminiKey = redact(cfg.AI.GeminiKey)
		cfg.AI.AnthropicKey = redact(cfg.AI.AnthropicKey)
		cfg.GitHub.PrivateKey = redact(cfg.GitHub.PrivateKey)

		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			path = filepath.Join(home, config.DefaultConfigDir, config.DefaultConfigFile)
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := config.Save(cfg, path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

func init() {
	configCmd.AddCommand(configShowCmd, configInitCmd)
}
