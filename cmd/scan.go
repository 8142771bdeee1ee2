package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/remedyhq/remedy-agent/internal/pipeline"
	"github.com/remedyhq/remedy-agent/models"
)

var (
	scanKind     string
	scanListRepo string
)

var scanCmd = &cobra.Command{
	Use:   "scan <repo name or id>",
	Short: "Run one scan-to-remediation pass now",
	Long: `Clones the repository, runs the selected analysis kind, plans and
applies fixes for the top findings, and publishes the result.

Kinds:
  sast   static analysis (semgrep)
  sca    dependency vulnerabilities (osv-scanner, syft + grype)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if !models.ValidScanKind(scanKind) {
			return fmt.Errorf("invalid --kind %q (expected sast or sca)", scanKind)
		}

		cfg, db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		repo, err := resolveRepo(ctx, db, args[0])
		if err != nil {
			return err
		}

		controller := pipeline.NewController(db, cfg)
		summary, err := controller.Run(ctx, pipeline.Job{RepoID: repo.ID, Kind: scanKind})
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		fmt.Printf("Scan %s completed: %d finding(s), %d planned\n",
			summary.ScanID, summary.FindingCount, summary.Planned)
		if len(summary.AppliedFiles) > 0 {
			fmt.Printf("Applied edits to: %s\n", strings.Join(summary.AppliedFiles, ", "))
		}
		if summary.Branch != "" {
			fmt.Printf("Branch: %s\n", summary.Branch)
		}
		if summary.PRURL != "" {
			fmt.Printf("Pull request: %s\n", summary.PRURL)
		}
		return nil
	},
}

var scanListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past scans",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		query := "SELECT * FROM scans ORDER BY created_at DESC"
		var queryArgs []interface{}
		if scanListRepo != "" {
			repo, err := resolveRepo(ctx, db, scanListRepo)
			if err != nil {
				return err
			}
			query = "SELECT * FROM scans WHERE repo_id = ? ORDER BY created_at DESC"
			queryArgs = append(queryArgs, repo.ID)
		}

		var scans []models.Scan
		if err := db.Select(ctx, &scans, query, queryArgs...); err != nil {
			return fmt.Errorf("listing scans: %w", err)
		}
		if len(scans) == 0 {
			fmt.Println("No scans recorded yet.")
			return nil
		}
		for _, s := range scans {
			fmt.Printf("  %-36s  %-4s  %-9s  %s\n",
				s.ID, s.Kind, s.Status, s.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanKind, "kind", models.ScanKindSAST,
		"analysis kind: sast or sca")
	scanListCmd.Flags().StringVar(&scanListRepo, "repo", "",
		"only show scans for this repository")
	scanCmd.AddCommand(scanListCmd)
}
