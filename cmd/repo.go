package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/remedyhq/remedy-agent/models"
)

var repoBranch string

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage registered repositories",
	Long:  `Register, remove, and list the repositories remedy scans.`,
}

var repoAddCmd = &cobra.Command{
	Use:   "add <name> <clone-url>",
	Short: "Register a repository",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		name, url := args[0], args[1]

		var existing models.Repo
		if err := db.Get(ctx, &existing, "SELECT * FROM repos WHERE name = ?", name); err == nil {
			fmt.Printf("%s is already registered (%s)\n", name, existing.ID)
			return nil
		}

		repo := models.Repo{
			ID:            uuid.NewString(),
			Name:          name,
			URL:           url,
			DefaultBranch: repoBranch,
			CreatedAt:     time.Now().UTC(),
		}
		if err := db.Insert(ctx, "repos", repo); err != nil {
			return fmt.Errorf("registering %s: %w", name, err)
		}
		fmt.Printf("Registered %s (%s)\n", name, repo.ID)
		return nil
	},
}

var repoRemoveCmd = &cobra.Command{
	Use:   "remove <name or id>",
	Short: "Remove a registered repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		repo, err := resolveRepo(ctx, db, args[0])
		if err != nil {
			return err
		}
		if err := db.Exec(ctx, "DELETE FROM repos WHERE id = ?", repo.ID); err != nil {
			return fmt.Errorf("removing %s: %w", repo.Name, err)
		}
		fmt.Printf("Removed %s\n", repo.Name)
		return nil
	},
}

var repoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered repositories",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		var repos []models.Repo
		if err := db.Select(ctx, &repos, "SELECT * FROM repos ORDER BY created_at"); err != nil {
			return fmt.Errorf("listing repositories: %w", err)
		}
		if len(repos) == 0 {
			fmt.Println("No repositories registered. Add one with: remedy repo add <name> <clone-url>")
			return nil
		}
		for _, r := range repos {
			branch := r.DefaultBranch
			if branch == "" {
				branch = "(default)"
			}
			fmt.Printf("  %-36s  %-24s  %-10s  %s\n", r.ID, r.Name, branch, r.URL)
		}
		return nil
	},
}

func init() {
	repoAddCmd.Flags().StringVar(&repoBranch, "branch", "",
		"branch to scan (default: the repository's HEAD)")
	repoCmd.AddCommand(repoAddCmd, repoRemoveCmd, repoListCmd)
}
