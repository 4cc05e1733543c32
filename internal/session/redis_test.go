package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func redisTestClient(t *testing.T) *redis.Client {
	t.Helper()
	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run")
	}
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		t.Fatalf("redis ping failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func testSessionID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store := NewRedisStore(redisTestClient(t))
	ctx := context.Background()
	id := testSessionID("roundtrip")

	sess := Session{
		Token:     "tok",
		AdminID:   "a1",
		AdminName: "Lab Admin",
		Expiry:    time.Now().Add(time.Minute),
	}
	if err := store.Put(ctx, id, sess); err != nil {
		t.Fatalf("Put: %v", err)
	}
	defer store.Delete(ctx, id)

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.AdminID != "a1" || got.AdminName != "Lab Admin" || got.Token != "tok" {
		t.Fatalf("unexpected session %+v", got)
	}
}

func TestRedisStoreMissingKey(t *testing.T) {
	store := NewRedisStore(redisTestClient(t))

	if _, err := store.Get(context.Background(), testSessionID("missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a key redis never saw, got %v", err)
	}
}

func TestRedisStoreExpiry(t *testing.T) {
	store := NewRedisStore(redisTestClient(t))
	ctx := context.Background()
	id := testSessionID("expiry")

	if err := store.Put(ctx, id, Session{AdminID: "a1", Expiry: time.Now().Add(time.Minute)}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	defer store.Delete(ctx, id)

	if _, err := store.Get(ctx, id); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	// The store double-checks its own clock even while the redis key
	// is still alive.
	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := store.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound past expiry, got %v", err)
	}
}

func TestRedisStorePutAlreadyExpired(t *testing.T) {
	store := NewRedisStore(redisTestClient(t))
	ctx := context.Background()
	id := testSessionID("stale")

	// A session whose expiry is already behind us still writes (redis
	// rejects non-positive TTLs), but can never be read back.
	if err := store.Put(ctx, id, Session{AdminID: "a1", Expiry: time.Now().Add(-time.Minute)}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	defer store.Delete(ctx, id)

	if _, err := store.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired session to be unreadable, got %v", err)
	}
}

func TestRedisStoreDelete(t *testing.T) {
	store := NewRedisStore(redisTestClient(t))
	ctx := context.Background()
	id := testSessionID("delete")

	if err := store.Put(ctx, id, Session{AdminID: "a1", Expiry: time.Now().Add(time.Minute)}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
