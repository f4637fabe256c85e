// Package server initializes and runs the note-processing application: it
// wires the database, object storage, summarization gateway, cache and worker
// pool together, starts the HTTP endpoint and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/autonotes/internal/logging"
	"github.com/dmitrijs2005/autonotes/internal/server/cache"
	"github.com/dmitrijs2005/autonotes/internal/server/config"
	hs "github.com/dmitrijs2005/autonotes/internal/server/http"
	"github.com/dmitrijs2005/autonotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/autonotes/internal/server/services"
	"github.com/dmitrijs2005/autonotes/internal/server/storage"
	"github.com/dmitrijs2005/autonotes/internal/server/summarizer"
	"github.com/dmitrijs2005/autonotes/internal/server/worker"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	service   *services.NoteService
	queue     *worker.Queue
	pool      *worker.Pool
	sweeper   *worker.Sweeper
	reclaimer *worker.Reclaimer
}

func NewApp(c *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	ctx := context.Background()

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := notes.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	repo := notes.NewPostgresRepository(db)

	store, err := storage.NewS3Store(ctx, storage.S3Config{
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	// Non-positive values (e.g. from a partial config overlay) keep the
	// gateway defaults rather than disabling the bounds.
	gatewayCfg := summarizer.DefaultGatewayConfig()
	if c.SummarizerTimeout > 0 {
		gatewayCfg.CallTimeout = c.SummarizerTimeout
	}
	if c.SummarizerMaxAttempts > 0 {
		gatewayCfg.MaxAttempts = uint64(c.SummarizerMaxAttempts)
	}
	if c.SummarizerMaxConcurrent > 0 {
		gatewayCfg.MaxConcurrent = int64(c.SummarizerMaxConcurrent)
	}
	gateway := summarizer.NewGateway(summarizer.NewClient(c.SummarizerEndpoint, c.SummarizerAPIKey), gatewayCfg)

	nc := cache.NewNoteCache(c.CacheTTL, c.CacheProcessingTTL)
	queue := worker.NewQueue(c.QueueSize)

	service := services.NewNoteService(repo, store, gateway, nc, queue, logger)

	return &App{
		config:    c,
		logger:    logger,
		db:        db,
		service:   service,
		queue:     queue,
		pool:      worker.NewPool(queue, service, logger, c.WorkerCount),
		sweeper:   worker.NewSweeper(repo, queue, c.SweepInterval, c.ProcessingTimeout, logger),
		reclaimer: worker.NewReclaimer(store, repo, c.ReclaimInterval, c.ReclaimGrace, logger),
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

	s := hs.NewHTTPServer(app.config.EndpointAddr, app.logger, app.service)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.pool.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sweeper.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.reclaimer.Run(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
