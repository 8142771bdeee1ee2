package cmd

import (
	"context"
	"fmt"

	"github.com/remedyhq/remedy-agent/internal/config"
	"github.com/remedyhq/remedy-agent/internal/database"
	"github.com/remedyhq/remedy-agent/models"
)

// openDB loads the config and opens a migrated database connection.
// The caller owns db.Close.
func openDB(ctx context.Context) (*config.Config, database.DB, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrating database: %w", err)
	}
	return cfg, db, nil
}

// resolveRepo finds a registered repository by id or name.
func resolveRepo(ctx context.Context, db database.DB, ref string) (*models.Repo, error) {
	var repo models.Repo
	if err := db.Get(ctx, &repo,
		"SELECT * FROM repos WHERE id = ? OR name = ?", ref, ref); err != nil {
		return nil, fmt.Errorf("repository %q is not registered (add it with: remedy repo add)", ref)
	}
	return &repo, nil
}
