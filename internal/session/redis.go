package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in redis so gateway restarts do not log
// every admin out. The TTL is enforced by redis key expiry.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (r *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	value, err := r.client.Get(ctx, sessionKey(id)).Result()
	if err == redis.Nil {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal([]byte(value), &s); err != nil {
		return Session{}, err
	}
	if !s.Expiry.After(r.now()) {
		_ = r.client.Del(ctx, sessionKey(id)).Err()
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (r *RedisStore) Put(ctx context.Context, id string, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	ttl := time.Until(s.Expiry)
	if ttl <= 0 {
		ttl = time.Second
	}
	return r.client.Set(ctx, sessionKey(id), data, ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id)).Err()
}
