package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/careercompass/compass/internal/notifier"
	"github.com/careercompass/compass/internal/preview"
	"github.com/careercompass/compass/internal/scheduler"
	"github.com/careercompass/compass/internal/store"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the rendered pages on a local preview server",
	Long:  "Serve the dashboard and finder results as HTML; blocks until SIGINT/SIGTERM.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: preview.addr from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustConfig(logger)

	// Toasts go to the page, not the log.
	queue := notifier.NewQueueNotifier(0)
	a := mustApp(cfg, logger, queue)
	defer a.close()
	if err := a.requireLogin(); err != nil {
		return err
	}

	addr := cfg.Preview.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	logger.Info("config loaded",
		"base_url", a.client.BaseURL(),
		"addr", addr,
		"refresh_interval", cfg.Preview.RefreshInterval.String(),
		"store", cfg.Store.Enabled,
	)

	ctx := cmd.Context()
	a.hydrate(ctx)

	srv := preview.New(preview.Deps{
		Finder:   a.finder,
		Saved:    a.cache,
		Registry: a.registry,
		Toasts:   queue,
		Logger:   logger,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(ctx, addr) })
	if tasks := upkeepTasks(a); cfg.Preview.RefreshInterval > 0 && len(tasks) > 0 {
		sched := scheduler.NewScheduler(tasks, cfg.Preview.RefreshInterval, time.Second, logger)
		g.Go(func() error { return sched.Run(ctx) })
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("goodbye")
	return nil
}

// upkeepTasks keeps the cache in step with changes made elsewhere (another
// browser tab, the web app) and prunes the mirror past its retention.
func upkeepTasks(a *app) []scheduler.Task {
	tasks := []scheduler.Task{
		scheduler.TaskFunc{TaskName: "hydrate", Fn: a.cache.HydrateAll},
	}
	if a.cfg.Store.Enabled && a.cfg.Store.Retention > 0 {
		var s store.Store = a.store
		retention := a.cfg.Store.Retention
		tasks = append(tasks, scheduler.TaskFunc{TaskName: "prune-mirror", Fn: func(ctx context.Context) error {
			return s.Cleanup(ctx, retention)
		}})
	}
	return tasks
}
