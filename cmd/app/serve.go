package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-dashboard/internal/handler"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	// Подключаем логгер
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// пул живёт дольше ctx, чтобы принятые записи успели завершиться
	a, err := newApp(context.Background(), logger)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      handler.NewRouter(handler.NewTaskHandler(a.registry, logger)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go a.registry.Run(ctx, a.cfg.SessionIdle.Duration)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server started",
			zap.String("addr", srv.Addr),
			zap.String("driver", a.cfg.Driver),
			zap.String("lifecycle", string(a.cfg.Lifecycle)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	select {
	case err := <-errCh:
		logger.Error("Server failed", zap.Error(err))
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout.Duration)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
		return err
	}
	logger.Info("Server stopped successfully!")
	return nil
}
