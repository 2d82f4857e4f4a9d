// Package server wires configuration, storage, media and services together
// and runs the HTTP API until the process is told to stop.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/libertalk/internal/logging"
	"github.com/dmitrijs2005/libertalk/internal/server/config"
	"github.com/dmitrijs2005/libertalk/internal/server/media"
	"github.com/dmitrijs2005/libertalk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/libertalk/internal/server/rest"
	"github.com/dmitrijs2005/libertalk/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager *repomanager.DocumentRepositoryManager
	userService *services.UserService
	roomService *services.RoomService
	media       media.Store
}

// NewLogger builds the JSON stdout logger at the configured level.
func NewLogger(level string) logging.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return logging.NewJSONLogger(os.Stdout, l)
}

// OpenRepositories opens the configured store with the retry policy applied.
func OpenRepositories(ctx context.Context, c *config.Config) (*repomanager.DocumentRepositoryManager, error) {
	return repomanager.Open(ctx, c.DatabaseDSN, repomanager.RetryPolicy{
		Retries: c.PersistenceRetries,
		Timeout: c.PersistenceTimeout,
	})
}

// NewMediaStore builds the configured media backend.
func NewMediaStore(ctx context.Context, c *config.Config) (media.Store, error) {
	switch c.MediaBackend {
	case config.MediaBackendLocal, "":
		return media.NewLocalStore(c.UploadDir, c.MaxUploadSize)
	case config.MediaBackendS3:
		return media.NewS3Store(ctx, media.S3Options{
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			MaxSize:      c.MaxUploadSize,
		})
	default:
		return nil, fmt.Errorf("unknown media backend %q", c.MediaBackend)
	}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := NewLogger(c.LogLevel)

	rm, err := OpenRepositories(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	ms, err := NewMediaStore(ctx, c)
	if err != nil {
		rm.Close()
		return nil, fmt.Errorf("media init error: %w", err)
	}

	gate := services.NewAccessGate()
	us := services.NewUserService(rm, gate, c, logger)
	rs := services.NewRoomService(rm, us, gate, c, logger)

	return &App{
		config:      c,
		logger:      logger,
		repomanager: rm,
		userService: us,
		roomService: rs,
		media:       ms,
	}, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewHTTPServer(app.config.HTTPAddr, app.logger, app.userService, app.roomService, app.media, app.config.MaxUploadSize)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives, ctx is cancelled or the server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "closing storage", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
