package ratelimit

import (
	"fmt"
	"time"

	"github.com/go-redis/redis"
)

// RedisStore keeps the per-key counters in Redis so every server replica
// shares the same view of a client's rate. Redis handles the expiry: the
// key's TTL is the window.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(addr, password string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping().Err(); err != nil {
		return nil, fmt.Errorf("ratelimit: connecting to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

// incrScript bumps the counter and arms the window TTL in one atomic step.
// A plain INCR-then-EXPIRE pair can be cut in half by a crash, leaving a
// counter with no TTL that caps the client forever.
const incrScript = `local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count`

// Incr implements Store. The TTL is set only when the key was just created
// (count == 1), so the window runs from the first hit rather than sliding
// with every request.
func (s *RedisStore) Incr(key string, window time.Duration) (int, error) {
	res, err := s.client.Eval(incrScript, []string{"ratelimit:" + key}, window.Milliseconds()).Result()
	if err != nil {
		return 0, fmt.Errorf("ratelimit: incrementing %s: %w", key, err)
	}
	count, ok := res.(int64)
	if !ok {
		return 0, fmt.Errorf("ratelimit: unexpected count type %T for %s", res, key)
	}
	return int(count), nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
