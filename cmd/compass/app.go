package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/careercompass/compass/internal/api"
	"github.com/careercompass/compass/internal/button"
	"github.com/careercompass/compass/internal/cache"
	"github.com/careercompass/compass/internal/config"
	"github.com/careercompass/compass/internal/finder"
	"github.com/careercompass/compass/internal/model"
	"github.com/careercompass/compass/internal/ratelimit"
	"github.com/careercompass/compass/internal/retry"
	"github.com/careercompass/compass/internal/session"
	"github.com/careercompass/compass/internal/store"
)

var errNotLoggedIn = errors.New("not logged in: run `compass login` first")

// app holds the collaborators shared by every command.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	client   *api.Client
	sess     session.Session
	notifier model.Notifier
	cache    *cache.Cache
	registry *button.Registry
	finder   *finder.Finder
	accounts *finder.Accounts
	store    store.Store
	mirror   *store.Mirror // nil when the mirror is disabled
}

// newApp wires the client, restores the saved session, and opens the local
// mirror when enabled. n may be nil.
func newApp(cfg *config.Config, logger *slog.Logger, n model.Notifier) (*app, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	client, err := api.NewClient(cfg.BaseURL, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}

	sess, err := session.Load(cfg.SessionPath)
	if err != nil {
		logger.Warn("session not restored, continuing logged out", "error", err)
	}
	if sess.LoggedIn(client.BaseURL()) {
		client.SetCookies(sess.HTTPCookies(time.Now()))
		logger.Debug("session restored", "email", sess.Email)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		client:   client,
		sess:     sess,
		notifier: n,
		store:    store.NewNopStore(),
	}

	if cfg.Store.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o700); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
		sqlStore, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.store = sqlStore
		a.mirror = store.NewMirror(sqlStore, cfg.UserID, logger)
	}

	lister := retry.NewLister(client, retry.Policy{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  cfg.Retry.BaseDelay,
	}, logger)
	a.cache = cache.New(lister, logger)

	deps := button.Deps{
		Saver:    client,
		Ledger:   a.cache,
		Notifier: n,
		Logger:   logger,
	}
	if a.mirror != nil {
		deps.Mirror = a.mirror
	}
	a.registry = button.NewRegistry(deps)

	searcher := ratelimit.NewLimitedSearcher(client, ratelimit.NewLimiter(cfg.RateLimit.MinDelay))
	a.finder = finder.New(searcher, n, logger)
	a.accounts = finder.NewAccounts(client, n, logger)
	return a, nil
}

// mustApp builds the app or exits.
func mustApp(cfg *config.Config, logger *slog.Logger, n model.Notifier) *app {
	a, err := newApp(cfg, logger, n)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	return a
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing store", "error", err)
	}
}

func (a *app) requireLogin() error {
	if !a.sess.LoggedIn(a.client.BaseURL()) {
		return errNotLoggedIn
	}
	return nil
}

// rememberSession persists the client's cookies after a successful login.
func (a *app) rememberSession(email string) error {
	a.sess = session.FromHTTP(a.client.BaseURL(), email, a.client.Cookies(), time.Now())
	if err := session.Save(a.cfg.SessionPath, a.sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// hydrate loads the saved items of categories into the cache. A failure is
// logged and the cache keeps whatever it held, so commands still run.
func (a *app) hydrate(ctx context.Context, categories ...model.Category) {
	if len(categories) == 0 {
		if err := a.cache.HydrateAll(ctx); err != nil {
			a.logger.Warn("saved items unavailable", "error", err)
		}
		return
	}
	for _, c := range categories {
		if err := a.cache.Hydrate(ctx, c); err != nil {
			a.logger.Warn("saved items unavailable", "category", c, "error", err)
		}
	}
}
