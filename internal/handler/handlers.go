package handler

import (
	"github.com/deppfellow/go-users/internal/repository"
	"github.com/deppfellow/go-users/internal/server"
	"github.com/deppfellow/go-users/internal/service"
)

// Handlers groups everything the entrypoints need: the event pipeline used
// by both Lambda and the local server, and the local-only health check.
type Handlers struct {
	API    *Handler
	Health *HealthHandler
}

// NewHandlers wires the handlers to the application container.
func NewHandlers(s *server.Server, services *service.Services, repos *repository.Repositories) *Handlers {
	users := NewUserHandler(services.Users)

	return &Handlers{
		API:    NewHandler(s.Logger, users.Routes(), WithNewRelic(s.LoggerService.GetApplication())),
		Health: NewHealthHandler(s.Config.Primary.Env, repos.Users),
	}
}
