package routing_test

import (
	"testing"
	"time"

	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/adjacency"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/model"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/phy"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/routing"
)

// lineOracle places three nodes 100km apart on a line, close enough for
// every adjacent pair to be in PHY range and LOS-clear, far enough that
// only neighbours connect (node 0 -- node 1 -- node 2, no 0-2 edge).
type lineOracle struct{}

func (lineOracle) XYZKm(name string, t time.Time) (x, y, z float64, err error) {
	switch name {
	case "a":
		return 0, 0, 0, nil
	case "b":
		return 100, 0, 0, nil
	case "c":
		return 200, 0, 0, nil
	}
	return 0, 0, 0, nil
}

func buildLine(t *testing.T) (*model.Registry, *adjacency.Matrix) {
	nodes := model.NewRegistry()
	for _, n := range []string{"a", "b", "c"} {
		name := n
		if _, err := nodes.Add(name, model.GroundStation, func(tt time.Time) (float64, float64, float64) {
			x, y, z, _ := lineOracle{}.XYZKm(name, tt)
			return x, y, z
		}); err != nil {
			t.Fatal(err)
		}
	}
	profile := phy.Profile{Name: "test", DataRateBitsPerSecond: 1000, MaxRangeKm: 150}
	eval := adjacency.NewEvaluator(lineOracle{}, profile)
	matrix, err := eval.Evaluate(nodes.All(), time.Unix(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	return nodes, matrix
}

func TestAdvanceEpidemicPropagatesOneHopPerTick(t *testing.T) {
	nodes, matrix := buildLine(t)
	b := model.New(1, "a", "c", 100, time.Unix(0, 0), 0, 0)

	t1 := time.Unix(0, 0)
	res := routing.Advance(b, routing.Epidemic, nodes, matrix, t1)
	if !res.JustBorn {
		t.Fatalf("expected bundle to be born on first tick")
	}
	if b.NumHolders() != 2 || !b.HasHolder(1) {
		t.Fatalf("expected holders {a,b} after first tick, got %v", b.HolderIndices())
	}
	if b.Delivered {
		t.Fatalf("bundle must not be delivered yet (c not yet a holder)")
	}

	t2 := time.Unix(1, 0)
	res = routing.Advance(b, routing.Epidemic, nodes, matrix, t2)
	if !res.JustDelivered {
		t.Fatalf("expected delivery on second tick once c becomes a holder")
	}
	if !b.Delivered {
		t.Fatalf("bundle should be marked delivered")
	}
}

func TestAdvanceRespectsTTL(t *testing.T) {
	// "a" and "c" alone, 200km apart, with a 150km max range: never
	// adjacent, so the bundle can only ever time out, never deliver.
	nodes := model.NewRegistry()
	for _, n := range []string{"a", "c"} {
		name := n
		if _, err := nodes.Add(name, model.GroundStation, func(tt time.Time) (float64, float64, float64) {
			x, y, z, _ := lineOracle{}.XYZKm(name, tt)
			return x, y, z
		}); err != nil {
			t.Fatal(err)
		}
	}
	profile := phy.Profile{Name: "test", DataRateBitsPerSecond: 1000, MaxRangeKm: 150}
	eval := adjacency.NewEvaluator(lineOracle{}, profile)
	matrix, err := eval.Evaluate(nodes.All(), time.Unix(0, 0))
	if err != nil {
		t.Fatal(err)
	}

	b := model.New(1, "a", "c", 100, time.Unix(0, 0), 1, 0) // 1 second TTL

	res := routing.Advance(b, routing.Epidemic, nodes, matrix, time.Unix(0, 0))
	if res.JustExpired || res.JustDelivered {
		t.Fatalf("bundle should be neither delivered nor expired immediately at birth")
	}
	res = routing.Advance(b, routing.Epidemic, nodes, matrix, time.Unix(5, 0))
	if !res.JustExpired {
		t.Fatalf("expected TTL expiry once 5s have elapsed against a 1s TTL with no path to the destination")
	}
}

func TestAdvanceSprayAndWaitLimitsCopies(t *testing.T) {
	nodes, matrix := buildLine(t)
	b := model.New(1, "a", "c", 100, time.Unix(0, 0), 0, 1) // maxCopies=1: source keeps its only copy

	routing.Advance(b, routing.SprayAndWait, nodes, matrix, time.Unix(0, 0))
	if b.NumHolders() != 1 {
		t.Fatalf("with maxCopies=1 the source should never forward, got holders %v", b.HolderIndices())
	}
}
