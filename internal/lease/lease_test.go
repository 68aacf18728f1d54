package lease

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func newTestManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	m, err := NewManager("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m, mr
}

func TestManager_AcquireAndRelease(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	release, acquired, err := m.Acquire(ctx, "fda_recalls", time.Minute)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if !acquired {
		t.Fatal("Acquire() acquired = false on free lease, want true")
	}

	_, again, err := m.Acquire(ctx, "fda_recalls", time.Minute)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if again {
		t.Error("Acquire() acquired = true while lease held, want false")
	}

	release()

	_, after, err := m.Acquire(ctx, "fda_recalls", time.Minute)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if !after {
		t.Error("Acquire() acquired = false after release, want true")
	}
}

func TestManager_SourcesIndependent(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	if _, acquired, err := m.Acquire(ctx, "fda_recalls", time.Minute); err != nil || !acquired {
		t.Fatalf("Acquire(fda_recalls) = %v, %v", acquired, err)
	}
	if _, acquired, err := m.Acquire(ctx, "cdc_outbreaks", time.Minute); err != nil || !acquired {
		t.Errorf("Acquire(cdc_outbreaks) = %v, %v, want acquired on distinct source", acquired, err)
	}
}

func TestManager_ExpiredLeaseCanBeReacquired(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	staleRelease, acquired, err := m.Acquire(ctx, "fda_recalls", 100*time.Millisecond)
	if err != nil || !acquired {
		t.Fatalf("Acquire() = %v, %v", acquired, err)
	}

	mr.FastForward(200 * time.Millisecond)

	release, acquired, err := m.Acquire(ctx, "fda_recalls", time.Minute)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if !acquired {
		t.Fatal("Acquire() acquired = false after TTL expiry, want true")
	}

	// The stale holder's release must not free the new holder's lease.
	staleRelease()
	_, again, err := m.Acquire(ctx, "fda_recalls", time.Minute)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if again {
		t.Error("stale release freed a lease held by another owner")
	}
	release()
}

func TestLocalManager(t *testing.T) {
	m := NewLocalManager()
	ctx := context.Background()

	release, acquired, err := m.Acquire(ctx, "fda_recalls", time.Minute)
	if err != nil || !acquired {
		t.Fatalf("Acquire() = %v, %v", acquired, err)
	}

	if _, again, _ := m.Acquire(ctx, "fda_recalls", time.Minute); again {
		t.Error("Acquire() acquired = true while lease held, want false")
	}

	release()

	if _, after, _ := m.Acquire(ctx, "fda_recalls", time.Minute); !after {
		t.Error("Acquire() acquired = false after release, want true")
	}
}

func TestLocalManager_ExpiredLease(t *testing.T) {
	m := NewLocalManager()
	ctx := context.Background()

	if _, acquired, _ := m.Acquire(ctx, "fda_recalls", time.Nanosecond); !acquired {
		t.Fatal("Acquire() acquired = false on free lease, want true")
	}
	time.Sleep(time.Millisecond)

	if _, acquired, _ := m.Acquire(ctx, "fda_recalls", time.Minute); !acquired {
		t.Error("Acquire() acquired = false after expiry, want true")
	}
}
