package ratelimit

import (
	"context"
	"testing"

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

func TestCheckRate_AllowsUnderLimit(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, _, err := m.CheckRate(ctx, "key1", "GET", "/v1/alerts", 5)
		if err != nil {
			t.Fatalf("CheckRate() error = %v", err)
		}
		if !allowed {
			t.Fatalf("CheckRate() allowed = false on request %d, want true", i+1)
		}
	}
}

func TestCheckRate_BlocksOverLimit(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, _, err := m.CheckRate(ctx, "key1", "GET", "/v1/alerts", 3); err != nil {
			t.Fatalf("CheckRate() error = %v", err)
		}
	}

	allowed, resetSec, err := m.CheckRate(ctx, "key1", "GET", "/v1/alerts", 3)
	if err != nil {
		t.Fatalf("CheckRate() error = %v", err)
	}
	if allowed {
		t.Error("CheckRate() allowed = true over limit, want false")
	}
	if resetSec <= 0 || resetSec > 60 {
		t.Errorf("CheckRate() resetSec = %d, want within (0, 60]", resetSec)
	}
}

func TestCheckRate_IndependentKeys(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, _, err := m.CheckRate(ctx, "key1", "GET", "/v1/alerts", 2); err != nil {
			t.Fatalf("CheckRate() error = %v", err)
		}
	}

	allowed, _, err := m.CheckRate(ctx, "key2", "GET", "/v1/alerts", 2)
	if err != nil {
		t.Fatalf("CheckRate() error = %v", err)
	}
	if !allowed {
		t.Error("CheckRate() allowed = false for a different key, want true")
	}
}
