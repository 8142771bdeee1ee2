package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/remedyhq/remedy-agent/internal/database"
	"github.com/remedyhq/remedy-agent/internal/dispatch"
	"github.com/remedyhq/remedy-agent/internal/pipeline"
	"github.com/remedyhq/remedy-agent/models"
)

var workerEnqueueAll bool

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the scan worker",
	Long: `Starts the worker pool and drains the scan queue until interrupted.

When worker.schedule is set in the config (standard cron syntax), every
registered repository is enqueued for both scan kinds on that schedule.
Use --enqueue-all to also queue a full pass immediately on startup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		controller := pipeline.NewController(db, cfg)
		dispatcher := dispatch.New(controller, cfg.Worker)
		dispatcher.Start(ctx)

		if cfg.Worker.Schedule != "" {
			scheduler, err := dispatch.NewScheduler(cfg.Worker.Schedule, db, dispatcher)
			if err != nil {
				return err
			}
			scheduler.Start()
			defer scheduler.Stop()
			fmt.Printf("Schedule active: %s\n", cfg.Worker.Schedule)
		}

		if workerEnqueueAll {
			if err := enqueueAllRepos(ctx, db, dispatcher); err != nil {
				return err
			}
		}

		fmt.Println("Worker running. Press Ctrl+C to stop.")
		<-ctx.Done()
		dispatcher.Wait()
		fmt.Println("Worker stopped.")
		return nil
	},
}

func enqueueAllRepos(ctx context.Context, db database.DB, dispatcher *dispatch.Dispatcher) error {
	var repos []models.Repo
	if err := db.Select(ctx, &repos, "SELECT * FROM repos ORDER BY created_at"); err != nil {
		return fmt.Errorf("listing repositories: %w", err)
	}
	for _, repo := range repos {
		for _, kind := range []string{models.ScanKindSAST, models.ScanKindSCA} {
			if err := dispatcher.Enqueue(pipeline.Job{RepoID: repo.ID, Kind: kind}); err != nil {
				return err
			}
		}
	}
	fmt.Printf("Enqueued %d repositories for both scan kinds\n", len(repos))
	return nil
}

func init() {
	workerCmd.Flags().BoolVar(&workerEnqueueAll, "enqueue-all", false,
		"enqueue every registered repository on startup")
}
