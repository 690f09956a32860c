package app

import (
	"context"
	"errors"

	"https-examples/internal/config"
	"https-examples/internal/db"
	"https-examples/internal/logger"
	"https-examples/internal/redis"
)

// Infra holds the optional backing services. Either field may be nil.
type Infra struct {
	DB    *db.DB
	Redis *redis.Client
}

func setupInfra(ctx context.Context, example config.Example, cfg config.Config) (*Infra, error) {
	infra := &Infra{}
	if example == config.ExampleHelmet {
		return infra, nil
	}

	if cfg.DatabaseDSN != "" {
		database, err := db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		infra.DB = database
		logger.Info("database ready", nil)
	}

	if example == config.ExampleSession && cfg.SessionStore == config.SessionStoreRedis {
		client, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			_ = infra.Close()
			return nil, err
		}
		infra.Redis = client
		logger.Info("redis ready", map[string]any{
			"addr": cfg.RedisAddr,
		})
	}

	return infra, nil
}

// Close releases whatever was opened.
func (i *Infra) Close() error {
	var errs []error
	if i.DB != nil {
		errs = append(errs, i.DB.Close())
	}
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	return errors.Join(errs...)
}
