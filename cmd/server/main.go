package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/hongminglow/campuslearn-be/internal/blob"
	"github.com/hongminglow/campuslearn-be/internal/config"
	"github.com/hongminglow/campuslearn-be/internal/logging"
	"github.com/hongminglow/campuslearn-be/internal/server"
	"github.com/hongminglow/campuslearn-be/internal/storage"
	"github.com/hongminglow/campuslearn-be/internal/storage/memory"
	"github.com/hongminglow/campuslearn-be/internal/storage/mongo"
	"github.com/hongminglow/campuslearn-be/internal/storage/postgres"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	zerolog.DefaultContextLogger = &logger
	if envErr != nil {
		logger.Info().Msg("no .env file found; relying on existing environment")
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("db_type", cfg.DBType).Msg("init database")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn().Err(err).Msg("close database")
		}
	}()

	blobs, err := openBlobs(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("blob_backend", cfg.BlobBackend).Msg("init file storage")
	}

	srv := server.New(cfg, store, blobs, logger)

	go func() {
		logger.Info().
			Str("addr", cfg.HTTPAddress()).
			Str("db_type", cfg.DBType).
			Str("blob_backend", cfg.BlobBackend).
			Msg("CampusLearn backend listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.DBType {
	case config.DBMongo:
		return mongo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	case config.DBPostgres:
		return postgres.NewStore(ctx, cfg.DatabaseURL)
	case config.DBMemory:
		return memory.NewStore(), nil
	}
	return nil, fmt.Errorf("unsupported DB_TYPE %q", cfg.DBType)
}

func openBlobs(ctx context.Context, cfg config.Config) (blob.Store, error) {
	switch cfg.BlobBackend {
	case config.BlobLocal:
		return blob.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
	case config.BlobS3:
		return blob.NewS3Store(ctx, cfg.S3)
	}
	return nil, fmt.Errorf("unsupported BLOB_BACKEND %q", cfg.BlobBackend)
}
