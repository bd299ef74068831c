package housekeep_test

import (
	"testing"
	"time"

	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/housekeep"
)

func TestRunDueFiresOnceAtInterval(t *testing.T) {
	start := time.Unix(0, 0)
	r := housekeep.New()
	var fired []time.Time
	r.Register("job", start, 10*time.Second, func(now time.Time) {
		fired = append(fired, now)
	})

	r.RunDue(start.Add(5 * time.Second))
	if len(fired) != 0 {
		t.Fatalf("expected no firing before the first interval elapses, got %d", len(fired))
	}

	r.RunDue(start.Add(10 * time.Second))
	if len(fired) != 1 {
		t.Fatalf("expected exactly one firing at the interval boundary, got %d", len(fired))
	}
}

func TestRunDueCatchesUpMultipleIntervals(t *testing.T) {
	start := time.Unix(0, 0)
	r := housekeep.New()
	var count int
	r.Register("job", start, 1*time.Second, func(time.Time) { count++ })

	// Jumping straight to t=5s with a 1s interval should fire 5 times,
	// matching a driver that calls RunDue once per tick but a consumer
	// who skips ticks should still see every due callback.
	r.RunDue(start.Add(5 * time.Second))
	if count != 5 {
		t.Fatalf("expected 5 catch-up firings, got %d", count)
	}
}

func TestRunDueIgnoresNonPositiveInterval(t *testing.T) {
	start := time.Unix(0, 0)
	r := housekeep.New()
	var count int
	r.Register("job", start, 0, func(time.Time) { count++ })

	r.RunDue(start.Add(100 * time.Second))
	if count != 0 {
		t.Fatalf("expected a non-positive interval job to never fire, got %d", count)
	}
}
