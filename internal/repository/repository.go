// Package repository handles all interactions with the backing store.
//
// Every implementation satisfies Repository: one upsert, one paged scan,
// one conditional update and one conditional delete. A missing record is
// reported as ErrNotFound (possibly wrapped) so callers can match it with
// errors.Is instead of inspecting driver-specific error types.
package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/go-users/internal/model"
)

// ErrNotFound is returned by Update and Delete when the id is absent.
var ErrNotFound = errors.New("record not found")

// Page is one chunk of a scan.
//
// Next is the opaque continuation cursor for the following page; an empty
// Next means the scan is complete.
type Page struct {
	Items []model.User
	Next  string
}

// Repository is the key-value storage collaborator for users.
type Repository interface {
	// Put stores user under user.ID, replacing any existing record.
	Put(ctx context.Context, user model.User) error

	// Scan returns the page that starts after cursor. An empty cursor starts
	// from the beginning.
	Scan(ctx context.Context, cursor string) (Page, error)

	// Update overwrites name and email of the record id.
	Update(ctx context.Context, id string, input model.UserInput) error

	// Delete removes the record id.
	Delete(ctx context.Context, id string) error
}

// Pinger is implemented by repositories that can check their connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
