package main

import (
	"context"
	"fmt"

	"github.com/oksasatya/go-realestate-listings/config"
	"github.com/oksasatya/go-realestate-listings/internal/container"
	pginfra "github.com/oksasatya/go-realestate-listings/internal/infrastructure/postgres"
	"github.com/oksasatya/go-realestate-listings/pkg/helpers"
)

// bootstrap connects the stores the admin commands need and fills the
// container. The returned func releases them.
func bootstrap(ctx context.Context) (func(), error) {
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-manage", cfg.Env, cfg.LogLevel)

	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
		DSN:         cfg.PostgresDSN(),
		MaxConns:    2,
		MinConns:    0,
		MaxConnLife: cfg.DBMaxConnLife,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetRedis(rdb)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL))
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		if es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass); err == nil {
			container.SetES(es)
		}
	}

	return func() {
		_ = rdb.Close()
		pool.Close()
	}, nil
}
