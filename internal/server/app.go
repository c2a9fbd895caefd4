// Package server wires the transaction service together: database and
// migrations, notification sinks and dispatcher, the HTTP API and the gRPC
// health endpoint. It also handles graceful shutdown.
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

	"github.com/dmitrijs2005/cloudbank/internal/logging"
	"github.com/dmitrijs2005/cloudbank/internal/server/config"
	"github.com/dmitrijs2005/cloudbank/internal/server/httpapi"
	"github.com/dmitrijs2005/cloudbank/internal/server/notify"
	"github.com/dmitrijs2005/cloudbank/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cloudbank/internal/server/services"

	gs "github.com/dmitrijs2005/cloudbank/internal/server/grpc"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	dispatcher *notify.Dispatcher
	http       *httpapi.Server
	grpc       *gs.GRPCServer
	closers    []func() error
}

var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	sink, closers, err := newSink(ctx, c, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("notification sink error: %w", err)
	}

	dispatcher := notify.NewDispatcher(db, rm, sink, c, logger)
	ts := services.NewTransferService(db, rm, c, logger, dispatcher)
	qs := services.NewQueryService(db, rm, logger)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		dispatcher: dispatcher,
		http:       httpapi.NewServer(c.EndpointAddrHTTP, logger, ts, qs, c.SecretKey),
		grpc:       gs.NewGRPCServer(c.EndpointAddrGRPC, logger, db, c.HealthCheckInterval),
		closers:    closers,
	}, nil
}

// newSink builds the sinks enabled in c. With none enabled events are only
// logged.
func newSink(ctx context.Context, c *config.Config, logger logging.Logger) (notify.Sink, []func() error, error) {
	var (
		sinks   notify.MultiSink
		closers []func() error
	)

	if c.NotifyURL != "" {
		sinks = append(sinks, notify.NewHTTPSink(c.NotifyURL, c.ServiceSecret, c.NotifyTimeout))
	}

	if c.RabbitMQURL != "" {
		s, err := notify.NewAMQPSink(c.RabbitMQURL, c.RabbitMQExchange)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, s)
		closers = append(closers, s.Close)
	}

	if c.S3Bucket != "" {
		s, err := notify.NewArchiveSink(ctx, c)
		if err != nil {
			for _, cl := range closers {
				cl()
			}
			return nil, nil, err
		}
		sinks = append(sinks, s)
	}

	switch len(sinks) {
	case 0:
		return notify.NewLogSink(logger), closers, nil
	case 1:
		return sinks[0], closers, nil
	default:
		return sinks, closers, nil
	}
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

func (app *App) run(ctx context.Context, cancelFunc context.CancelFunc, name string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		app.logger.Error(ctx, name+" stopped with error", "error", err)
		cancelFunc()
	}
}

// Run blocks until a termination signal arrives or a component fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	for name, fn := range map[string]func(context.Context) error{
		"notification dispatcher": app.dispatcher.Run,
		"HTTP server":             app.http.Run,
		"gRPC server":             app.grpc.Run,
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.run(ctx, cancelFunc, name, fn)
		}()
	}

	wg.Wait()

	for _, cl := range app.closers {
		if err := cl(); err != nil {
			app.logger.Warn(ctx, "close error", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
