package main

import (
	"context"
	"net/http"
	"os"

	"go.uber.org/zap"

	"sxfs/internal/cache"
	"sxfs/internal/config"
	"sxfs/internal/handler"
	"sxfs/internal/repository"
	"sxfs/internal/uploader"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	sugar := logger.Sugar()

	sugar.Infow("Starting sxfs")

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		sugar.Fatalw("Configuration error",
			"error", err.Error())
	}

	sugar.Infow(
		"Configuration loaded",
		"server_address", cfg.ServerAddress,
		"site", cfg.Site.Name,
		"domain", cfg.Site.Domain,
		"users", len(cfg.Site.Users),
	)

	if err := uploader.Generate(cfg); err != nil {
		sugar.Fatalw("Failed to generate uploader definitions",
			"error", err.Error())
	}
	sugar.Infow("Uploader definitions written",
		"uploader", cfg.UploaderPath,
		"shortener", cfg.ShortenerPath,
	)

	var (
		uploads repository.UploadStore
		links   repository.LinkStore
		pinger  handler.Pinger
	)

	if cfg.DatabaseDSN != "" {
		db, err := repository.NewDB(context.Background(), cfg.DatabaseDSN, logger)
		if err != nil {
			sugar.Fatalw("Failed to initialize database",
				"error", err.Error())
		}
		defer db.Close()

		uploads = repository.NewPostgresUploadStore(db)
		links = repository.NewPostgresLinkStore(db)
		pinger = db
	} else {
		sugar.Warnw("No database configured, records will not survive a restart")
		uploads = repository.NewMemoryUploadStore()
		links = repository.NewMemoryLinkStore()
	}

	linkCache := cache.Noop()
	if cfg.RedisURL != "" {
		linkCache, err = cache.NewRedis(cfg.RedisURL, logger)
		if err != nil {
			sugar.Fatalw("Failed to connect to Redis",
				"error", err.Error())
		}
		sugar.Infow("Link cache enabled")
	}

	h := handler.New(uploads, links, linkCache, &cfg.Site, logger, pinger)
	r := h.SetupRouter()

	sugar.Infow(
		"Server starting",
		"address", cfg.ServerAddress,
	)

	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		sugar.Fatalw(err.Error(), "event", "start server")
	}
}
