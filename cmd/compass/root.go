package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/careercompass/compass/internal/config"
	"github.com/careercompass/compass/internal/model"
	"github.com/careercompass/compass/internal/notifier"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:          "compass",
	Short:        "CareerCompass from the terminal",
	Long:         "compass finds certificates, courses and companies with the CareerCompass backend and keeps your saved items in sync.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: COMPASS_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > COMPASS_CONFIG env var > "./config.yaml".
// Only the implicit default may be missing; it then yields the defaults.
func loadConfig(path string) (*config.Config, error) {
	explicit := true
	if path == "" {
		if env := os.Getenv("COMPASS_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
			explicit = false
		}
	}
	cfg, err := config.Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// setupNotifier returns where CLI toasts go. "none" yields a nil notifier,
// which every consumer treats as silent.
func setupNotifier(cfg *config.Config, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "none":
		return nil
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// mustConfig loads the config or exits, as every command needs one.
func mustConfig(logger *slog.Logger) *config.Config {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	return cfg
}
