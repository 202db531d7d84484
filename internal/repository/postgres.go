package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/go-users/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

// PgxPool is the subset of *pgxpool.Pool used by PostgresRepository.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

// PostgresRepository stores users in a PostgreSQL table with the columns
// id (primary key), name and email. The table is created by the embedded
// migration (see database.Migrate).
//
// Scans use keyset pagination on id; the cursor is the last id of the page.
type PostgresRepository struct {
	pool     PgxPool
	table    string
	pageSize int32
}

// NewPostgresRepository creates a repository over tableName.
func NewPostgresRepository(pool PgxPool, tableName string, pageSize int32) *PostgresRepository {
	return &PostgresRepository{
		pool:     pool,
		table:    pgx.Identifier{tableName}.Sanitize(),
		pageSize: pageSize,
	}
}

func (r *PostgresRepository) Put(ctx context.Context, user model.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email`, r.table)

	if _, err := r.pool.Exec(ctx, query, user.ID, user.Name, user.Email); err != nil {
		return errors.Wrapf(err, "upsert user %s", user.ID)
	}
	return nil
}

func (r *PostgresRepository) Scan(ctx context.Context, cursor string) (Page, error) {
	query := fmt.Sprintf(`
		SELECT id, name, email
		FROM %s
		WHERE id > $1
		ORDER BY id
		LIMIT $2`, r.table)

	rows, err := r.pool.Query(ctx, query, cursor, r.pageSize)
	if err != nil {
		return Page{}, errors.Wrap(err, "scan users")
	}

	users, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.User])
	if err != nil {
		return Page{}, errors.Wrap(err, "collect scanned users")
	}

	page := Page{Items: users}
	if page.Items == nil {
		page.Items = []model.User{}
	}
	// A full page may have a successor; an empty follow-up page ends the scan.
	if int32(len(users)) == r.pageSize && len(users) > 0 {
		page.Next = users[len(users)-1].ID
	}

	return page, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, input model.UserInput) error {
	query := fmt.Sprintf(`UPDATE %s SET name = $2, email = $3 WHERE id = $1`, r.table)

	tag, err := r.pool.Exec(ctx, query, id, input.Name, input.Email)
	if err != nil {
		return errors.Wrapf(err, "update user %s", id)
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(ErrNotFound, "update user %s", id)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return errors.Wrapf(err, "delete user %s", id)
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(ErrNotFound, "delete user %s", id)
	}
	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
