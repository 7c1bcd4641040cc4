package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookshelf/bookshelf-go/internal/catalog"
	"github.com/bookshelf/bookshelf-go/internal/config"
	"github.com/bookshelf/bookshelf-go/internal/crypto"
	"github.com/bookshelf/bookshelf-go/internal/handler"
	"github.com/bookshelf/bookshelf-go/internal/repository"
	"github.com/bookshelf/bookshelf-go/internal/service"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	tokens, err := crypto.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var store service.UserStore
	switch cfg.Storage {
	case config.StorageMemory:
		slog.Warn("using in-memory storage, data is lost on restart")
		store = repository.NewMemoryUserRepository()
	default:
		db, err := repository.NewDB(cfg.DatabaseDSN)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := repository.Migrate(context.Background(), db); err != nil {
			slog.Error("database migration failed", "error", err)
			os.Exit(1)
		}
		store = repository.NewUserRepository(db)
	}

	router := handler.NewRouter(handler.Handlers{
		Auth:   handler.NewAuthHandler(service.NewAuthService(store, tokens)),
		Books:  handler.NewBookHandler(service.NewBookService(store)),
		Search: handler.NewSearchHandler(catalog.NewClient(cfg.CatalogURL, cfg.CatalogRPS, nil)),
		Tokens: tokens,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
