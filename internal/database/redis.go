package database

import (
	"context"
	"time"

	"github.com/deppfellow/go-users/internal/config"
	loggerConfig "github.com/deppfellow/go-users/internal/logger"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisPingTimeout bounds the startup ping.
const RedisPingTimeout = 5 * time.Second

// NewRedisClient creates a Redis client and checks the connection.
//
// Redis connections are lazy; the ping only surfaces a bad address early.
// A failed ping is returned because Redis is the users store when this
// driver is selected. With New Relic configured every command is traced.
func NewRedisClient(cfg config.RedisConfig, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*redis.Client, error) {
	client := newRedisClient(cfg, loggerService)

	ctx, cancel := context.WithTimeout(context.Background(), RedisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info().Str("address", cfg.Address).Msg("connected to redis")

	return client, nil
}

func newRedisClient(cfg config.RedisConfig, loggerService *loggerConfig.LoggerService) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if loggerService.GetApplication() != nil {
		client.AddHook(nrredis.NewHook(client.Options()))
	}

	return client
}
