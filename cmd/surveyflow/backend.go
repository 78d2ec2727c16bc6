package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"surveyflow/internal/cache"
	"surveyflow/internal/client"
	"surveyflow/internal/config"
	"surveyflow/internal/engine"
	"surveyflow/internal/repository"
	"surveyflow/internal/service"
)

// backend is where definitions come from and where submissions go.
type backend struct {
	source    service.DefinitionSource
	submitter engine.Submitter
	cache     cache.DefinitionCache

	closers []func(context.Context) error
}

func (b *backend) Close(ctx context.Context) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i](ctx)
	}
}

func openBackend(ctx context.Context, cfg *config.Config, log *zap.Logger) (*backend, error) {
	b := &backend{}

	switch cfg.Backend {
	case config.BackendMongo:
		db, disconnect, err := connectMongo(ctx, cfg.Mongo, log)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, disconnect)
		b.source = service.NewRepoSource(repository.NewSurveyRepo(db))
		b.submitter = service.NewRepoSubmitter(repository.NewResponseRepository(db))
	default:
		upstream := client.New(cfg.Upstream, log)
		b.source = upstream
		b.submitter = upstream
		log.Info("using upstream backend", zap.String("base_url", cfg.Upstream.BaseURL))
	}

	if cfg.Redis.Addr != "" {
		rdb, err := connectRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			b.Close(ctx)
			return nil, err
		}
		b.closers = append(b.closers, func(context.Context) error { return rdb.Close() })
		b.cache = cache.NewDefinitionCache(rdb, cfg.Redis.DefinitionTTL)
		log.Info("definition cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.DefinitionTTL))
	}

	return b, nil
}

func connectMongo(ctx context.Context, cfg config.Mongo, log *zap.Logger) (*mongo.Database, func(context.Context) error, error) {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		mongoClient.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	log.Info("connected to MongoDB", zap.String("database", cfg.Database))

	return mongoClient.Database(cfg.Database), mongoClient.Disconnect, nil
}

func connectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: strings.TrimPrefix(addr, "redis://"),
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping Redis: %w", err)
	}
	return rdb, nil
}
