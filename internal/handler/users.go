package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/go-users/internal/logger"
	"github.com/deppfellow/go-users/internal/model"
	"github.com/deppfellow/go-users/internal/service"
	"github.com/deppfellow/go-users/internal/validation"
)

// UserHandler exposes the four user operations as routes.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// ListUsersResponse is the body of GET /users.
type ListUsersResponse struct {
	Results []model.User `json:"results"`
}

// Routes returns the static route table for the user operations.
func (h *UserHandler) Routes() map[string]RouteFunc {
	return map[string]RouteFunc{
		RouteCreateUser: Handle(h.CreateUser, http.StatusCreated),
		RouteListUsers:  Handle(h.ListUsers, http.StatusOK),
		RouteUpdateUser: HandleNoContent(h.UpdateUser, http.StatusOK),
		RouteDeleteUser: HandleNoContent(h.DeleteUser, http.StatusOK),
	}
}

// CreateUser handles POST /users.
func (h *UserHandler) CreateUser(ctx context.Context, req Request) (model.User, error) {
	input, err := parseUserInput(ctx, req)
	if err != nil {
		return model.User{}, err
	}
	return h.users.Create(ctx, input)
}

// ListUsers handles GET /users.
func (h *UserHandler) ListUsers(ctx context.Context, _ Request) (ListUsersResponse, error) {
	users, err := h.users.List(ctx)
	if err != nil {
		return ListUsersResponse{}, err
	}
	return ListUsersResponse{Results: users}, nil
}

// UpdateUser handles PATCH /users/{id}. The id is checked before the body.
func (h *UserHandler) UpdateUser(ctx context.Context, req Request) error {
	id, err := PathParam(req, ParamID)
	if err != nil {
		return err
	}

	input, err := parseUserInput(ctx, req)
	if err != nil {
		return err
	}

	return h.users.Update(ctx, id, input)
}

// DeleteUser handles DELETE /users/{id}.
func (h *UserHandler) DeleteUser(ctx context.Context, req Request) error {
	id, err := PathParam(req, ParamID)
	if err != nil {
		return err
	}
	return h.users.Delete(ctx, id)
}

// parseUserInput validates the request body. Field-level detail goes to the
// debug log only.
func parseUserInput(ctx context.Context, req Request) (model.UserInput, error) {
	start := time.Now()

	input, fieldErrors, err := validation.ParseUserInput(req.Body, req.IsBase64Encoded)
	if err != nil {
		e := logger.FromContext(ctx).Debug().
			Err(err).
			Dur("validation_duration", time.Since(start))
		if len(fieldErrors) > 0 {
			e = e.Interface("field_errors", fieldErrors)
		}
		e.Msg("request validation failed")
		return model.UserInput{}, err
	}

	return input, nil
}
