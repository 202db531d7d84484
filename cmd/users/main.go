// Command users runs the users API.
//
//	users lambda   start the AWS Lambda runtime (default)
//	users serve    run the API on a local HTTP server
//	users migrate  create the Postgres users table
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/deppfellow/go-users/internal/config"
	"github.com/deppfellow/go-users/internal/handler"
	"github.com/deppfellow/go-users/internal/logger"
	"github.com/deppfellow/go-users/internal/repository"
	"github.com/deppfellow/go-users/internal/server"
	"github.com/deppfellow/go-users/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "users",
		Short:         "Users CRUD API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLambda(cmd.Context())
		},
	}

	root.AddCommand(newLambdaCmd(), newServeCmd(), newMigrateCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is everything a command needs once configuration is loaded.
type app struct {
	cfg      *config.Config
	log      *zerolog.Logger
	server   *server.Server
	handlers *handler.Handlers
}

// loadConfig loads the configuration, starts New Relic when a license key
// is configured and builds the root logger.
func loadConfig() (*config.Config, *zerolog.Logger, *logger.LoggerService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, logger.NewLoggerWithService(cfg.Observability, loggerService), loggerService, nil
}

// bootstrap wires config, storage, services and handlers.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, log, loggerService, err := loadConfig()
	if err != nil {
		return nil, err
	}

	srv, err := server.New(ctx, cfg, log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize server")
		return nil, err
	}

	repos, err := repository.NewRepositories(srv)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize repositories")
		return nil, err
	}

	services := service.NewServices(repos)

	return &app{
		cfg:      cfg,
		log:      log,
		server:   srv,
		handlers: handler.NewHandlers(srv, services, repos),
	}, nil
}
