package service

import (
	"context"
	"errors"

	"github.com/deppfellow/go-users/internal/errs"
	"github.com/deppfellow/go-users/internal/logger"
	"github.com/deppfellow/go-users/internal/model"
	"github.com/deppfellow/go-users/internal/repository"
	"github.com/google/uuid"
)

// IDGenerator returns a fresh, unique user id.
type IDGenerator func() string

// UserService executes the four user operations against a repository.
type UserService struct {
	repo  repository.Repository
	newID IDGenerator
}

// Option customizes a UserService.
type Option func(*UserService)

// WithIDGenerator replaces the default random UUID generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *UserService) {
		s.newID = gen
	}
}

// NewUserService creates a UserService. Ids default to random UUIDs.
func NewUserService(repo repository.Repository, opts ...Option) *UserService {
	s := &UserService{
		repo:  repo,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create assigns a new id to input and stores the record.
func (s *UserService) Create(ctx context.Context, input model.UserInput) (model.User, error) {
	user := model.NewUser(s.newID(), input)

	if err := s.repo.Put(ctx, user); err != nil {
		return model.User{}, err
	}

	logger.FromContext(ctx).Debug().Str("user_id", user.ID).Msg("user created")

	return user, nil
}

// List returns every record, following continuation cursors until the
// repository reports the last page. Pages are fetched one after another.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	cursor := ""
	pages := 0

	for {
		page, err := s.repo.Scan(ctx, cursor)
		if err != nil {
			return nil, err
		}
		pages++

		users = append(users, page.Items...)

		if page.Next == "" {
			break
		}
		cursor = page.Next
	}

	logger.FromContext(ctx).Debug().
		Int("pages", pages).
		Int("count", len(users)).
		Msg("users listed")

	return users, nil
}

// Update overwrites name and email of the record id.
func (s *UserService) Update(ctx context.Context, id string, input model.UserInput) error {
	if err := s.repo.Update(ctx, id, input); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.UserNotFoundError()
		}
		return err
	}

	logger.FromContext(ctx).Debug().Str("user_id", id).Msg("user updated")

	return nil
}

// Delete removes the record id.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.UserNotFoundError()
		}
		return err
	}

	logger.FromContext(ctx).Debug().Str("user_id", id).Msg("user deleted")

	return nil
}
