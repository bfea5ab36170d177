package ratelimit

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	store, err := NewRedisStore(mr.Addr(), "")
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedisStore_CountsWithinWindow(t *testing.T) {
	store, _ := newRedisStore(t)

	for want := 1; want <= 3; want++ {
		got, err := store.Incr("1.2.3.4", time.Minute)
		if err != nil {
			t.Fatalf("Incr() error = %v", err)
		}
		if got != want {
			t.Errorf("Incr() = %d, want %d", got, want)
		}
	}
}

func TestRedisStore_FirstHitArmsTTL(t *testing.T) {
	store, mr := newRedisStore(t)

	if _, err := store.Incr("1.2.3.4", time.Minute); err != nil {
		t.Fatalf("Incr() error = %v", err)
	}

	// The script sets counter and TTL together, so the very first hit must
	// leave a key that expires. A key with no TTL would rate-limit the
	// client until someone deleted it by hand.
	if got := mr.TTL("ratelimit:1.2.3.4"); got != time.Minute {
		t.Errorf("TTL after first Incr() = %v, want %v", got, time.Minute)
	}
}

func TestRedisStore_LaterHitsKeepOriginalWindow(t *testing.T) {
	store, mr := newRedisStore(t)

	store.Incr("1.2.3.4", time.Minute)
	mr.FastForward(30 * time.Second)
	store.Incr("1.2.3.4", time.Minute)

	if got := mr.TTL("ratelimit:1.2.3.4"); got != 30*time.Second {
		t.Errorf("TTL after second Incr() = %v, want %v", got, 30*time.Second)
	}
}

func TestRedisStore_WindowResets(t *testing.T) {
	store, mr := newRedisStore(t)

	store.Incr("1.2.3.4", time.Minute)
	store.Incr("1.2.3.4", time.Minute)
	mr.FastForward(time.Minute + time.Second)

	if got, _ := store.Incr("1.2.3.4", time.Minute); got != 1 {
		t.Errorf("Incr() after window = %d, want 1", got)
	}
}

func TestNewRedisStore_BadAddr(t *testing.T) {
	if _, err := NewRedisStore("127.0.0.1:1", ""); err == nil {
		t.Fatal("NewRedisStore() with unreachable addr, want error")
	}
}
