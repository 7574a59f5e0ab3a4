// Package server runs the clipkeeper token service: account sign-in,
// token refresh and revocation over gRPC.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/clipkeeper/internal/logging"
	"github.com/dmitrijs2005/clipkeeper/internal/server/config"
	"github.com/dmitrijs2005/clipkeeper/internal/server/users"

	gs "github.com/dmitrijs2005/clipkeeper/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *users.Service
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend, os.Stdout)
	if err != nil {
		return nil, err
	}

	var (
		repo   users.Repository
		tokens users.TokenRepository
		db     *sql.DB
	)
	if c.DatabaseDSN != "" {
		db, err = users.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		pg := users.NewPostgresRepository(db)
		repo, tokens = pg, pg
	} else {
		logger.Warn(ctx, "no database configured, accounts are kept in memory")
		mem := users.NewMemoryRepository()
		repo, tokens = mem, mem
	}

	us := users.NewService(repo, tokens, users.Options{
		SecretKey:              []byte(c.SecretKey),
		AccessTokenTTL:         c.AccessTokenTTL,
		RefreshTokenTTL:        c.RefreshTokenTTL,
		StorageAccessKeyID:     c.StorageAccessKeyID,
		StorageSecretAccessKey: c.StorageSecretAccessKey,
	})

	app := &App{config: c, logger: logger, db: db, userService: us}
	if err := app.seed(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (app *App) seed(ctx context.Context) error {
	if app.config.SeedUser == "" || app.config.SeedPassword == "" {
		return nil
	}
	_, err := app.userService.Register(ctx, app.config.SeedUser, []byte(app.config.SeedPassword))
	if errors.Is(err, users.ErrUserExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	app.logger.Info(ctx, "account created", "username", app.config.SeedUser)
	return nil
}

func (app *App) Close() {
	if app.db != nil {
		_ = app.db.Close()
	}
}

// Run serves until SIGINT, SIGTERM or SIGQUIT.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.Close()

	app.logger.Info(ctx, "Starting app...")
	return gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.userService).Run(ctx)
}
