package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/deppfellow/go-users/internal/model"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// updateIfExists overwrites name and email only when the hash exists, so a
// concurrent delete can never be resurrected by an update.
var updateIfExists = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
redis.call("HSET", KEYS[1], "name", ARGV[1], "email", ARGV[2])
return 1
`)

// RedisRepository stores each user as a hash at "<prefix>:<id>".
//
// Scan maps onto Redis SCAN: the cursor is SCAN's numeric cursor and a
// returned cursor of 0 ends the scan. Like SCAN itself, a record may be
// returned twice if the keyspace is rehashed during the listing.
type RedisRepository struct {
	client   redis.UniversalClient
	prefix   string
	pageSize int64
}

// NewRedisRepository creates a repository that namespaces keys with prefix.
func NewRedisRepository(client redis.UniversalClient, prefix string, pageSize int32) *RedisRepository {
	return &RedisRepository{
		client:   client,
		prefix:   prefix,
		pageSize: int64(pageSize),
	}
}

func (r *RedisRepository) key(id string) string {
	return r.prefix + ":" + id
}

// globEscaper quotes the characters SCAN MATCH treats as pattern syntax.
var globEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

func (r *RedisRepository) match() string {
	return escapeGlob(r.prefix) + ":*"
}

func (r *RedisRepository) Put(ctx context.Context, user model.User) error {
	err := r.client.HSet(ctx, r.key(user.ID),
		"id", user.ID,
		"name", user.Name,
		"email", user.Email,
	).Err()
	if err != nil {
		return errors.Wrapf(err, "hset user %s", user.ID)
	}
	return nil
}

func (r *RedisRepository) Scan(ctx context.Context, cursor string) (Page, error) {
	var start uint64
	if cursor != "" {
		parsed, err := strconv.ParseUint(cursor, 10, 64)
		if err != nil {
			return Page{}, errors.Wrapf(err, "parse scan cursor %q", cursor)
		}
		start = parsed
	}

	keys, next, err := r.client.Scan(ctx, start, r.match(), r.pageSize).Result()
	if err != nil {
		return Page{}, errors.Wrap(err, "scan user keys")
	}

	page := Page{Items: make([]model.User, 0, len(keys))}
	if next != 0 {
		page.Next = strconv.FormatUint(next, 10)
	}
	if len(keys) == 0 {
		return page, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.HGetAll(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return Page{}, errors.Wrap(err, "load scanned users")
	}

	for _, cmd := range cmds {
		fields := cmd.Val()
		// Deleted between SCAN and HGETALL.
		if len(fields) == 0 {
			continue
		}
		page.Items = append(page.Items, model.User{
			ID:    fields["id"],
			Name:  fields["name"],
			Email: fields["email"],
		})
	}

	return page, nil
}

func (r *RedisRepository) Update(ctx context.Context, id string, input model.UserInput) error {
	updated, err := updateIfExists.Run(ctx, r.client, []string{r.key(id)}, input.Name, input.Email).Int()
	if err != nil {
		return errors.Wrapf(err, "update user %s", id)
	}
	if updated == 0 {
		return errors.Wrapf(ErrNotFound, "update user %s", id)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	removed, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return errors.Wrapf(err, "delete user %s", id)
	}
	if removed == 0 {
		return errors.Wrapf(ErrNotFound, "delete user %s", id)
	}
	return nil
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
