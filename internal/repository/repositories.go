package repository

import (
	"fmt"

	"github.com/deppfellow/go-users/internal/config"
	"github.com/deppfellow/go-users/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Users Repository
}

// NewRepositories picks the users repository for the configured storage driver.
//
// The matching client (DynamoDB, Postgres pool or Redis) must already be
// initialized on s; server.New takes care of that.
func NewRepositories(s *server.Server) (*Repositories, error) {
	cfg := s.Config
	var users Repository

	switch cfg.Storage.Driver {
	case config.DriverDynamoDB:
		if s.DynamoDB == nil {
			return nil, fmt.Errorf("dynamodb client is not initialized")
		}
		users = NewDynamoDBRepository(s.DynamoDB, cfg.TableName, cfg.Storage.PageSize)

	case config.DriverPostgres:
		if s.DB == nil {
			return nil, fmt.Errorf("database pool is not initialized")
		}
		users = NewPostgresRepository(s.DB.Pool, cfg.TableName, cfg.Storage.PageSize)

	case config.DriverRedis:
		if s.Redis == nil {
			return nil, fmt.Errorf("redis client is not initialized")
		}
		users = NewRedisRepository(s.Redis, cfg.TableName, cfg.Storage.PageSize)

	case config.DriverMemory:
		users = NewMemoryRepository(cfg.Storage.PageSize)

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	s.Logger.Info().
		Str("driver", cfg.Storage.Driver).
		Str("table", cfg.TableName).
		Msg("users repository initialized")

	return &Repositories{Users: users}, nil
}
