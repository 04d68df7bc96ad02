package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"socialnet/internal/cache"
	"socialnet/internal/config"
	"socialnet/internal/database"
	"socialnet/internal/logging"
	"socialnet/internal/redis"
	"socialnet/internal/repository"
	"socialnet/internal/service"
)

func main() {
	extra := flag.String("extra", "", "comma separated tag names to seed in addition to the defaults")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
		logger.WithError(err).Fatal("failed to migrate database")
	}

	var tagCache cache.TagCache
	if cfg.RedisURL != "" {
		rdb, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, cached tag list will expire on its own")
		} else {
			defer rdb.Close()
			tagCache = cache.NewTagCache(rdb.Client, logging.Component(logger, "cache"))
		}
	}

	names := append([]string{}, defaultTags...)
	for _, name := range strings.Split(*extra, ",") {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			names = append(names, name)
		}
	}

	tags := service.NewTagService(repository.NewTagRepository(db), tagCache, logging.Component(logger, "seedtags"))
	if _, err := tags.Seed(ctx, names); err != nil {
		logger.WithError(err).Fatal("failed to seed tags")
	}
}
