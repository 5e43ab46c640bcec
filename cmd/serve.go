package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"library/events"
	"library/handler"
	"library/log"
	"library/repository"
	"library/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	logger := log.GetLogger(ctx)

	db, err := repository.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = repository.Close(db) }()
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	publisher, err := events.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = publisher.Close() }()

	store := repository.NewStore(db)
	gin.SetMode(cfg.Server.Mode)
	router := handler.NewRouter(handler.Options{
		Users:          service.NewUserService(store, publisher),
		Books:          service.NewBookService(store),
		DB:             sqlDB,
		Development:    cfg.App.Development(),
		RequestTimeout: cfg.Server.WriteTimeout,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s (%s, %s)", cfg.Server.Address, cfg.App.Env, cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
