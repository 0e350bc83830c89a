package quiz2pdf

import (
	"runtime"
	"testing"
)

// ---------------------------------------------------------------------------
// TestServicePool
// ---------------------------------------------------------------------------

func TestNewServicePool_ClampsSize(t *testing.T) {
	t.Parallel()

	if got := NewServicePool(0).Size(); got != 1 {
		t.Errorf("Size() = %d, want 1", got)
	}
	if got := NewServicePool(-3).Size(); got != 1 {
		t.Errorf("Size() = %d, want 1", got)
	}
	if got := NewServicePool(4).Size(); got != 4 {
		t.Errorf("Size() = %d, want 4", got)
	}
}

func TestServicePool_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool := NewServicePool(1)
	defer pool.Close()

	svc := pool.Acquire()
	if svc == nil {
		t.Fatal("Acquire() returned nil")
	}
	pool.Release(svc)

	// Capacity 1: the released instance is reused rather than a new one
	// created.
	again := pool.Acquire()
	if again != svc {
		t.Error("Acquire() after Release() did not reuse the pooled service")
	}
	pool.Release(again)
}

func TestServicePool_ReleaseAfterClose(t *testing.T) {
	t.Parallel()

	pool := NewServicePool(1)
	svc := pool.Acquire()

	if err := pool.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Must not panic on the closed channel.
	pool.Release(svc)

	// Second close is a no-op.
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestResolvePoolSize
// ---------------------------------------------------------------------------

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	t.Run("explicit workers win", func(t *testing.T) {
		t.Parallel()

		if got := ResolvePoolSize(3); got != 3 {
			t.Errorf("ResolvePoolSize(3) = %d, want 3", got)
		}
	})

	t.Run("auto stays within bounds", func(t *testing.T) {
		t.Parallel()

		got := ResolvePoolSize(0)
		if got < MinPoolSize || got > MaxPoolSize {
			t.Errorf("ResolvePoolSize(0) = %d, outside [%d, %d]", got, MinPoolSize, MaxPoolSize)
		}

		want := runtime.GOMAXPROCS(0) / 2
		if want < MinPoolSize {
			want = MinPoolSize
		}
		if want > MaxPoolSize {
			want = MaxPoolSize
		}
		if got != want {
			t.Errorf("ResolvePoolSize(0) = %d, want %d for %d procs", got, want, runtime.GOMAXPROCS(0))
		}
	})
}
