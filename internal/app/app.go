// Package app wires configuration, clients, storage, stores and the query
// layer into one process-wide value shared by the CLI and the dashboard.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/raymonds/internal/clients/raymonds"
	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/interfaces"
	"github.com/bobmcallan/raymonds/internal/pages"
	"github.com/bobmcallan/raymonds/internal/query"
	"github.com/bobmcallan/raymonds/internal/storage"
	"github.com/bobmcallan/raymonds/internal/stores/auth"
	"github.com/bobmcallan/raymonds/internal/stores/compare"
)

// App holds every initialized component. Stores are process-wide but
// constructed here and injected, never reached through globals.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Client      *raymonds.Client
	KV          interfaces.KeyValueStore
	Auth        *auth.Store
	Compare     *compare.Store
	Cache       *query.Cache
	Hooks       *query.Hooks
	Pages       *pages.Pages
	StartupTime time.Time

	schedulerCancel context.CancelFunc
	warmCacheCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and initializes all components.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	config, err := common.LoadConfig(common.ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	binDir := getBinaryDir()
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	return NewAppWithConfig(context.Background(), config, logger)
}

// NewAppWithConfig initializes components from an already loaded config.
func NewAppWithConfig(ctx context.Context, config *common.Config, logger *common.Logger) (*App, error) {
	start := time.Now()
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	kv, err := storage.NewKeyValueStore(ctx, logger, config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	client := raymonds.NewClientFromConfig(config.API, logger)
	authStore := auth.New(client, kv, auth.WithLogger(logger))
	compareStore := compare.New(config.Compare.MaxItems, logger)
	cache := query.NewCache(config.Query.GetStaleTime(), logger)
	hooks := query.NewHooks(client, cache)

	a := &App{
		Config:      config,
		Logger:      logger,
		Client:      client,
		KV:          kv,
		Auth:        authStore,
		Compare:     compareStore,
		Cache:       cache,
		Hooks:       hooks,
		Pages:       pages.New(hooks, authStore, compareStore, pages.WithLogger(logger)),
		StartupTime: start,
	}

	logger.Info().
		Str("api", client.BaseURL()).
		Str("storage", config.Storage.Backend).
		Dur("startup", time.Since(start)).
		Msg("App initialized")
	return a, nil
}

// RestoreSession revalidates a persisted session. Failures are logged;
// a rejected token has already been cleared by the auth store.
func (a *App) RestoreSession(ctx context.Context) {
	if err := a.Auth.CheckAuth(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Session check failed, keeping stored token")
		return
	}
	st := a.Auth.State()
	if st.IsAuthenticated {
		a.Logger.Info().Str("user", st.User.DisplayName()).Msg("Session restored")
	}
}

// Close releases all resources held by the App.
// Shutdown order: cancel scheduler, cancel warm cache, close storage.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.warmCacheCancel != nil {
		a.warmCacheCancel()
		a.warmCacheCancel = nil
	}
	if a.KV != nil {
		if err := a.KV.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.KV = nil
	}
}

// StartWarmCache launches the background cache warming goroutine.
func (a *App) StartWarmCache() {
	warmCtx, warmCancel := context.WithTimeout(context.Background(), time.Minute)
	a.warmCacheCancel = warmCancel
	go func() {
		defer warmCancel()
		warmCache(warmCtx, a.Hooks, a.Logger)
	}()
}

// StartRefreshScheduler periodically invalidates and re-warms the
// dashboard's landing data once per stale window.
func (a *App) StartRefreshScheduler() {
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	a.schedulerCancel = schedulerCancel
	go startRefreshScheduler(schedulerCtx, a.Hooks, a.Logger, a.Cache.StaleTime())
}
