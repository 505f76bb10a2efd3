package gate_test

import (
	"context"
	"testing"
	"time"

	"github.com/clinicdesk/crm/gate"
)

// countingResolver counts how many times Resolve hits the inner source.
type countingResolver struct {
	inner *gate.StaticResolver[uint]
	calls int
}

func (r *countingResolver) Resolve(ctx context.Context, user uint) (gate.Profile, error) {
	r.calls++
	return r.inner.Resolve(ctx, user)
}

func TestCachedResolver_CachesWithinTTL(t *testing.T) {
	static := gate.NewStaticResolver[uint]()
	static.Set(1, gate.NewStaticProfile(1, "assistant"))
	counting := &countingResolver{inner: static}

	cached := gate.NewCachedResolver[uint](counting, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := cached.Resolve(context.Background(), 1); err != nil {
			t.Fatalf("resolve: %v", err)
		}
	}
	if counting.calls != 1 {
		t.Fatalf("expected 1 inner call, got %d", counting.calls)
	}
}

func TestCachedResolver_Invalidate(t *testing.T) {
	static := gate.NewStaticResolver[uint]()
	static.Set(1, gate.NewStaticProfile(1, "assistant"))
	counting := &countingResolver{inner: static}

	cached := gate.NewCachedResolver[uint](counting, time.Minute)
	_, _ = cached.Resolve(context.Background(), 1)
	cached.Invalidate(1)
	_, _ = cached.Resolve(context.Background(), 1)

	if counting.calls != 2 {
		t.Fatalf("expected refetch after invalidation, got %d calls", counting.calls)
	}

	cached.InvalidateAll()
	_, _ = cached.Resolve(context.Background(), 1)
	if counting.calls != 3 {
		t.Fatalf("expected refetch after InvalidateAll, got %d calls", counting.calls)
	}
}
