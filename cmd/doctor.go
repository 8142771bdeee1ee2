package cmd

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/remedyhq/remedy-agent/internal/ai"
	"github.com/remedyhq/remedy-agent/internal/config"
	"github.com/remedyhq/remedy-agent/internal/database"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify tools, credentials, and storage health",
	Long: `Checks that the database can be reached, the AI provider is
configured, GitHub App credentials are present, and the external scanner
tools are on PATH. Missing scanner tools are not fatal at scan time (the
affected analysis simply reports no findings), but doctor surfaces them.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	allOK := true

	fmt.Println("=== remedy doctor ===")
	fmt.Println()

	fmt.Print("Database ................. ")
	db, err := database.New(cfg.Database)
	if err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else {
		if err := db.Ping(ctx); err != nil {
			fmt.Printf("FAIL (%s)\n", err)
			allOK = false
		} else {
			fmt.Printf("OK (%s)\n", db.Driver())
		}
		db.Close()
	}

	fmt.Print("AI provider .............. ")
	completer := ai.New(cfg.AI)
	switch {
	case completer.Name() == "noop":
		fmt.Println("disabled (scans will record findings but plan no fixes)")
	case completer.IsAvailable(ctx):
		fmt.Printf("OK (%s)\n", completer.Name())
	default:
		fmt.Printf("WARN (%s configured but unreachable or key missing)\n", completer.Name())
		allOK = false
	}

	fmt.Print("GitHub App ............... ")
	if cfg.GitHub.HasAppCredentials() {
		fmt.Printf("OK (app %s, installation %s)\n", cfg.GitHub.AppID, cfg.GitHub.InstallationID)
	} else {
		fmt.Println("WARN (not configured — fixes stop at the local commit)")
	}

	fmt.Println()
	fmt.Println("Scanner tools:")
	for _, tool := range []string{"git", "semgrep", "osv-scanner", "syft", "grype"} {
		fmt.Printf("  %-14s ... ", tool)
		if path, err := exec.LookPath(tool); err != nil {
			fmt.Println("MISSING")
			allOK = false
		} else {
			fmt.Printf("OK (%s)\n", path)
		}
	}

	fmt.Println()
	if !allOK {
		fmt.Println("Some checks failed. remedy still runs, but degraded.")
		return nil
	}
	fmt.Println("All checks passed.")
	return nil
}
