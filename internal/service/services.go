package service

import (
	"github.com/deppfellow/go-users/internal/repository"
)

// Services groups the business services.
type Services struct {
	Users *UserService
}

// NewServices wires services to their repositories.
func NewServices(repos *repository.Repositories) *Services {
	return &Services{
		Users: NewUserService(repos.Users),
	}
}
