package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/deppfellow/go-users/internal/model"
)

// MemoryRepository keeps users in process memory.
//
// It backs the "memory" storage driver for local runs and tests. Scans walk
// ids in ascending order and the cursor is the last id returned, so records
// added or removed between pages never shift the following pages.
type MemoryRepository struct {
	mu       sync.RWMutex
	users    map[string]model.User
	pageSize int
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository(pageSize int32) *MemoryRepository {
	if pageSize < 1 {
		pageSize = 1
	}
	return &MemoryRepository{
		users:    make(map[string]model.User),
		pageSize: int(pageSize),
	}
}

func (r *MemoryRepository) Put(_ context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.ID] = user
	return nil
}

func (r *MemoryRepository) Scan(ctx context.Context, cursor string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		if id > cursor {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	page := Page{Items: []model.User{}}
	for _, id := range ids {
		if len(page.Items) == r.pageSize {
			page.Next = page.Items[len(page.Items)-1].ID
			break
		}
		page.Items = append(page.Items, r.users[id])
	}

	return page, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, input model.UserInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}

	user.Name = input.Name
	user.Email = input.Email
	r.users[id] = user
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// Ping always succeeds.
func (r *MemoryRepository) Ping(context.Context) error {
	return nil
}
