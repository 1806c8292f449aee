package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-dashboard/internal/config"
	"github.com/BuzzLyutic/task-dashboard/internal/model"
	"github.com/BuzzLyutic/task-dashboard/internal/repo"
	"github.com/BuzzLyutic/task-dashboard/internal/service"
	"github.com/BuzzLyutic/task-dashboard/internal/worker"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "taskdash",
		Short:   "Task dashboard API",
		Version: Version,
		// без подкоманды запускаем сервер
		RunE:         runServe,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tasksCmd())
	return rootCmd
}

// app holds everything a command needs to talk to the task store.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	pool     *worker.Pool
	registry *service.Registry
	closers  []func()
}

func newApp(ctx context.Context, logger *zap.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	lifecycle, err := model.ParseLifecycle(string(cfg.Lifecycle))
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	factory, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	a.pool = worker.NewPool(logger, cfg.WorkerCount)
	a.pool.Start(ctx)
	a.closers = append(a.closers, a.pool.Stop)

	a.registry = service.NewRegistry(factory, a.pool, lifecycle, logger)
	return a, nil
}

func (a *app) openStore(ctx context.Context) (repo.Factory, error) {
	switch a.cfg.Driver {
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		a.logger.Info("Successfully connected to the Database!")
		a.closers = append(a.closers, pool.Close)
		return repo.PostgresFactory(pool), nil

	case config.DriverSQLite:
		db, err := repo.OpenSQLite(a.cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.logger.Info("opened sqlite store", zap.String("path", a.cfg.SQLitePath))
		a.closers = append(a.closers, func() { db.Close() })
		return db.Factory(), nil

	default:
		a.logger.Warn("using in-memory store, tasks are lost on exit")
		return repo.MemoryFactory(), nil
	}
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
