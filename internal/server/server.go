// Package server defines the Server struct that composes the app's main dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger and the optional New Relic application (LoggerService)
//   - the client of the selected storage driver (DynamoDB, Postgres pool or Redis)
//   - the local http.Server
//
// The Lambda entrypoint uses the same container but never calls Start.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/deppfellow/go-users/internal/config"
	"github.com/deppfellow/go-users/internal/database"
	loggerPkg "github.com/deppfellow/go-users/internal/logger"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Server is the application container that holds shared resources.
//
// Only the client matching Config.Storage.Driver is set; the others stay nil.
type Server struct {
	Config *config.Config
	Logger *zerolog.Logger

	// LoggerService holds the New Relic application; nil or empty when
	// New Relic is not configured.
	LoggerService *loggerPkg.LoggerService

	DynamoDB *dynamodb.Client
	DB       *database.Database
	Redis    *redis.Client

	httpServer *http.Server
}

// New constructs a Server and connects the configured storage driver.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	server := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
	}

	switch cfg.Storage.Driver {
	case config.DriverDynamoDB:
		client, err := database.NewDynamoDBClient(ctx, cfg.AWS)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize dynamodb: %w", err)
		}
		server.DynamoDB = client

	case config.DriverPostgres:
		db, err := database.New(cfg, logger, loggerService)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		server.DB = db

	case config.DriverRedis:
		client, err := database.NewRedisClient(cfg.Redis, logger, loggerService)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		server.Redis = client
	}

	return server, nil
}

// SetupHTTPServer configures the internal net/http server around handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server. It requires SetupHTTPServer to be called first
// and blocks until the server stops.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Str("driver", s.Config.Storage.Driver).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server (if started), closes storage clients and
// flushes New Relic.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
	}

	s.LoggerService.Shutdown()

	return nil
}
