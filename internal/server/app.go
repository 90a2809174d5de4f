// Package server initializes and runs the application: it selects a storage
// adapter, wires the token codec, revocation store and services together, and
// serves the HTTP API until shutdown.
package server

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/example/authgate/internal/logging"
	"github.com/example/authgate/internal/server/authsvc"
	"github.com/example/authgate/internal/server/config"
	"github.com/example/authgate/internal/server/httpapi"
	"github.com/example/authgate/internal/server/session"
	"github.com/example/authgate/internal/server/token"
	"github.com/example/authgate/internal/server/users"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	storage *Storage
	server  *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	handler := slog.NewJSONHandler(os.Stdout, nil)
	logger := logging.NewSlogLogger(slog.New(handler))

	storage, err := OpenStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	codec := token.NewCodec([]byte(cfg.JWTSecret))
	hasher := users.NewBcryptHasher()

	auth := authsvc.NewService(storage.Users, hasher, codec, storage.Revoked, cfg.TokenTTL, logger)
	sessions := session.NewValidator(codec, storage.Users, storage.Revoked)

	if err := auth.EnsureSeedData(ctx, authsvc.SeedData{
		AdminLogin:    cfg.AdminLogin,
		AdminPassword: cfg.AdminPassword,
		AdminEmail:    cfg.AdminEmail,
	}); err != nil {
		storage.Close()
		return nil, err
	}

	srv := httpapi.NewServer(auth, sessions, logger)

	return &App{config: cfg, logger: logger, storage: storage, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "adapter", app.config.StorageAdapter)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	if app.storage.Memory != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.storage.Memory.Run(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx, app.config.Addr); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.storage.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}

	app.logger.Info(ctx, "app stopped")
}
