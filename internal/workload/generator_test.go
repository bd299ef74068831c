package workload_test

import (
	"testing"
	"time"

	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/workload"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/xoshiro256"
)

func idGen() func() int {
	n := 0
	return func() int { n++; return n }
}

func TestGenerateFallsBackToMinBundlesWhenLambdaIsZero(t *testing.T) {
	spec := workload.Spec{
		Sources:      []string{"a"},
		Destinations: []string{"b"},
		Start:        time.Unix(0, 0),
		Stop:         time.Unix(100, 0),
		Lambda:       0, // never fires: must hit the fallback floor
		SizeBytes:    100,
		MinBundles:   17,
	}
	rng := xoshiro256.New(1)
	bundles, err := workload.Generate(spec, rng, idGen())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bundles) != 17 {
		t.Fatalf("expected fallback floor of 17 bundles, got %d", len(bundles))
	}
	for _, b := range bundles {
		if b.ReleaseTime.Before(spec.Start) || !b.ReleaseTime.Before(spec.Stop) {
			t.Fatalf("bundle release time %v outside [start,stop)", b.ReleaseTime)
		}
	}
}

func TestGenerateDefaultsFallbackTo100(t *testing.T) {
	spec := workload.Spec{
		Sources:      []string{"a"},
		Destinations: []string{"b"},
		Start:        time.Unix(0, 0),
		Stop:         time.Unix(10, 0),
		Lambda:       0,
		SizeBytes:    100,
		// MinBundles unset
	}
	rng := xoshiro256.New(1)
	bundles, err := workload.Generate(spec, rng, idGen())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bundles) != 100 {
		t.Fatalf("expected default fallback floor of 100, got %d", len(bundles))
	}
}

func TestGenerateDeterministicForSameSeed(t *testing.T) {
	spec := workload.Spec{
		Sources:      []string{"a", "b"},
		Destinations: []string{"c", "d"},
		Start:        time.Unix(0, 0),
		Stop:         time.Unix(50, 0),
		Lambda:       0.3,
		SizeBytes:    500,
		TTLSeconds:   60,
	}
	r1 := xoshiro256.New(99)
	b1, err := workload.Generate(spec, r1, idGen())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2 := xoshiro256.New(99)
	b2, err := workload.Generate(spec, r2, idGen())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b1) != len(b2) {
		t.Fatalf("same-seed runs produced different counts: %d vs %d", len(b1), len(b2))
	}
	for i := range b1 {
		if b1[i].Source != b2[i].Source || b1[i].Destination != b2[i].Destination ||
			!b1[i].ReleaseTime.Equal(b2[i].ReleaseTime) {
			t.Fatalf("same-seed runs diverged at bundle %d", i)
		}
	}
}

func TestGenerateRejectsEmptySourcesOrDestinations(t *testing.T) {
	spec := workload.Spec{
		Sources:      nil,
		Destinations: []string{"b"},
		Start:        time.Unix(0, 0),
		Stop:         time.Unix(10, 0),
	}
	if _, err := workload.Generate(spec, xoshiro256.New(1), idGen()); err == nil {
		t.Fatalf("expected an error for an empty source list")
	}
}

func TestGenerateRejectsNonPositiveSpan(t *testing.T) {
	spec := workload.Spec{
		Sources:      []string{"a"},
		Destinations: []string{"b"},
		Start:        time.Unix(10, 0),
		Stop:         time.Unix(10, 0),
	}
	if _, err := workload.Generate(spec, xoshiro256.New(1), idGen()); err == nil {
		t.Fatalf("expected an error when stop does not come after start")
	}
}
