package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	c "resetkit/internal/core/domain/common"
	e "resetkit/internal/core/domain/errors"
	"resetkit/internal/core/domain/user"
	"time"

	"github.com/go-redis/redis/v9"
)

const (
	redisKeyPrefix = "account:"
	// Optimistic lock conflicts are retried locally before escalating.
	redisMaxWatchAttempts = 5
)

func redisKey(email c.Email) string {
	return redisKeyPrefix + string(email)
}

// RedisUserRepository stores one JSON document per account. Password updates
// run in a WATCH/MULTI transaction on the account key.
type RedisUserRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisUserRepository {
	if client == nil {
		panic(e.NewNilArgumentError("client"))
	}
	return &RedisUserRepository{client: client}
}

func (r *RedisUserRepository) GetByEmail(ctx context.Context, email c.Email) (a user.Account, err error) {
	data, err := r.client.Get(ctx, redisKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return a, user.ErrUserDoesNotExist
	}
	if err != nil {
		return a, err
	}
	return decodeRedisAccount(email, data)
}

func (r *RedisUserRepository) SetPassword(
	ctx context.Context,
	email c.Email,
	password user.PasswordHash,
	at time.Time,
) error {
	key := redisKey(email)
	update := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return user.ErrUserDoesNotExist
		}
		if err != nil {
			return err
		}
		rec := record{}
		if err := json.Unmarshal(data, &rec); err != nil {
			return e.NewInvalidStateError("account %s is corrupt: %v", email, err)
		}
		at := at.UTC()
		rec.PasswordHash = string(password)
		rec.UpdatedAt = &at
		updated, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	for i := 0; i < redisMaxWatchAttempts; i++ {
		err := r.client.Watch(ctx, update, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("account %s: %w", email, redis.TxFailedErr)
}

// Create stores an account, replacing one with the same email.
func (r *RedisUserRepository) Create(ctx context.Context, a user.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(encodeAccount(a))
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisKey(a.Email), data, 0).Err()
}

func decodeRedisAccount(email c.Email, data []byte) (a user.Account, err error) {
	rec := record{}
	if err := json.Unmarshal(data, &rec); err != nil {
		return a, e.NewInvalidStateError("account %s is corrupt: %v", email, err)
	}
	return decodeAccount(rec)
}
