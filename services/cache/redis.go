// Package cachesvc holds the Redis-backed verification code store.
package cachesvc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core"
	"github.com/mkulima/kilimo/core/verification"
)

const codeKeyPrefix = "verification-code:"

type RedisCodeStore struct {
	client *redis.Client
}

var _ verification.CodeStore = (*RedisCodeStore)(nil)

func NewRedisCodeStore(conf *core.Config) *RedisCodeStore {
	return &RedisCodeStore{
		client: redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		}),
	}
}

func (s *RedisCodeStore) Put(ctx context.Context, email string, p verification.PendingRegistration, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "encoding pending registration")
	}
	return errors.Wrap(s.client.Set(ctx, codeKeyPrefix+email, data, ttl).Err(), "storing pending registration")
}

func (s *RedisCodeStore) Get(ctx context.Context, email string) (verification.PendingRegistration, error) {
	var p verification.PendingRegistration
	data, err := s.client.Get(ctx, codeKeyPrefix+email).Bytes()
	if err == redis.Nil {
		return p, verification.ErrCodeNotFound
	}
	if err != nil {
		return p, errors.Wrap(err, "fetching pending registration")
	}
	return p, errors.Wrap(json.Unmarshal(data, &p), "decoding pending registration")
}

func (s *RedisCodeStore) Delete(ctx context.Context, email string) error {
	return errors.Wrap(s.client.Del(ctx, codeKeyPrefix+email).Err(), "deleting verification code")
}

func (s *RedisCodeStore) Close() error {
	return s.client.Close()
}
