package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/remedyhq/remedy-agent/models"
)

var prCmd = &cobra.Command{
	Use:   "pr",
	Short: "Inspect automated pull requests",
}

var prListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pull requests opened by remedy",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		var prs []models.PullRequest
		if err := db.Select(ctx, &prs,
			"SELECT * FROM pull_requests ORDER BY created_at DESC"); err != nil {
			return fmt.Errorf("listing pull requests: %w", err)
		}
		if len(prs) == 0 {
			fmt.Println("No pull requests recorded yet.")
			return nil
		}
		for _, pr := range prs {
			url := pr.PRURL
			if url == "" {
				url = "(local branch only)"
			}
			fmt.Printf("  %-5s  %-28s  %-40s  %s\n", pr.Status, pr.Branch, pr.Summary, url)
		}
		return nil
	},
}

func init() {
	prCmd.AddCommand(prListCmd)
}
