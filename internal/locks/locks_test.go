package locks

import (
	"context"
	"testing"
	"time"
)

func TestMapLockerMutualExclusion(t *testing.T) {
	l := NewMapLocker()
	ctx := context.Background()

	ok, err := l.Acquire(ctx, "lock:phase:reserve_stock:1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	ok, err = l.Acquire(ctx, "lock:phase:reserve_stock:1", time.Minute)
	if err != nil || ok {
		t.Fatalf("second acquire should be refused: ok=%v err=%v", ok, err)
	}
	// A different key is independent.
	ok, _ = l.Acquire(ctx, "lock:phase:reserve_stock:2", time.Minute)
	if !ok {
		t.Fatal("different key should acquire")
	}

	if err := l.Release(ctx, "lock:phase:reserve_stock:1"); err != nil {
		t.Fatal(err)
	}
	ok, _ = l.Acquire(ctx, "lock:phase:reserve_stock:1", time.Minute)
	if !ok {
		t.Fatal("acquire after release should succeed")
	}
}

func TestMapLockerTTLExpiry(t *testing.T) {
	l := NewMapLocker()
	now := time.Now()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	if ok, _ := l.Acquire(ctx, "k", 5*time.Minute); !ok {
		t.Fatal("acquire")
	}
	now = now.Add(4 * time.Minute)
	if ok, _ := l.Acquire(ctx, "k", 5*time.Minute); ok {
		t.Fatal("lock should still be held before TTL")
	}
	now = now.Add(2 * time.Minute)
	if ok, _ := l.Acquire(ctx, "k", 5*time.Minute); !ok {
		t.Fatal("expired lock should be acquirable")
	}
}

func TestPhaseKey(t *testing.T) {
	if got := PhaseKey("reserve_stock", "42"); got != "lock:phase:reserve_stock:42" {
		t.Errorf("key = %q", got)
	}
}
