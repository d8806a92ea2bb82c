package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker serializes dispatches of one order across API instances.
type Locker interface {
	// Acquire returns ok=false when another holder has the key.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

type localLocker struct{}

func (localLocker) Acquire(context.Context, string, time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}

// RedisLocker implements Locker with SET NX and a token-checked release.
type RedisLocker struct {
	rc     *redis.Client
	prefix string
}

// NewRedisLocker creates a locker on the given client.
func NewRedisLocker(rc *redis.Client) *RedisLocker {
	return &RedisLocker{rc: rc, prefix: "byabshik:lock:"}
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Acquire implements Locker.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token, err := lockToken()
	if err != nil {
		return nil, false, err
	}
	fullKey := l.prefix + key
	ok, err := l.rc.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	return func() {
		_ = releaseScript.Run(context.Background(), l.rc, []string{fullKey}, token).Err()
	}, true, nil
}

func lockToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
