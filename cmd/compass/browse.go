package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/careercompass/compass/internal/browse"
	"github.com/careercompass/compass/internal/model"
	"github.com/careercompass/compass/internal/notifier"
)

var browseCmd = &cobra.Command{
	Use:   "browse [category]",
	Short: "Browse saved items interactively (TUI)",
	Long:  "Shows the category picker, then the saved items of that category. Press s to save or remove, o to open.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustConfig(logger)

	// Any log output before the alt-screen starts corrupts the display.
	silent := slog.New(slog.DiscardHandler)
	queue := notifier.NewQueueNotifier(0)
	a, err := newApp(cfg, silent, queue)
	if err != nil {
		logger.Error("failed to start", "error", err)
		return err
	}
	defer a.close()
	if err := a.requireLogin(); err != nil {
		return err
	}

	ctx := cmd.Context()
	err = browse.RunLoader(ctx, "Loading saved items", a.cache.HydrateAll)
	if errors.Is(err, browse.ErrCancelled) {
		return nil
	}
	if err != nil {
		// Categories that did load are still browsable.
		logger.Warn("some saved items could not be loaded", "error", err)
	}

	categories := model.Categories()
	if len(args) == 1 {
		c, err := model.ParseCategory(args[0])
		if err != nil {
			return err
		}
		categories = []model.Category{c}
	}

	for {
		category := categories[0]
		if len(categories) > 1 {
			options := make([]string, len(categories))
			for i, c := range categories {
				options[i] = "Saved " + c.Plural()
			}
			choice, err := browse.RunPicker("CareerCompass: select saved items", options)
			if errors.Is(err, browse.ErrCancelled) {
				return nil
			}
			if err != nil {
				return err
			}
			category = categories[choice]
		}

		a.registry.Reset()
		entries := browse.EntriesFromSaved(a.cache.Items(category), a.registry)
		back, err := browse.Run(ctx, "Saved "+category.Plural(), entries, queue)
		if err != nil {
			return err
		}
		if !back || len(categories) == 1 {
			return nil
		}
	}
}
