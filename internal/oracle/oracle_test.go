package oracle_test

import (
	"math"
	"testing"
	"time"

	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/oracle"
)

func TestGroundStationECEFEquatorAtPrimeMeridian(t *testing.T) {
	gs := oracle.GroundStation{Name: "eq0", LatitudeDeg: 0, LongitudeDeg: 0, AltitudeKm: 0}
	x, y, z := gs.ECEF()
	if math.Abs(x-6378.137) > 1e-6 {
		t.Fatalf("expected x ~= equatorial radius, got %v", x)
	}
	if math.Abs(y) > 1e-9 || math.Abs(z) > 1e-9 {
		t.Fatalf("expected y=z=0 at (0,0) on the equator/meridian, got y=%v z=%v", y, z)
	}
}

func TestGroundStationECEFNorthPole(t *testing.T) {
	gs := oracle.GroundStation{Name: "np", LatitudeDeg: 90, LongitudeDeg: 0, AltitudeKm: 0}
	x, y, z := gs.ECEF()
	if math.Abs(x) > 1e-6 || math.Abs(y) > 1e-6 {
		t.Fatalf("expected x=y~=0 at the pole, got x=%v y=%v", x, y)
	}
	if z <= 6300 {
		t.Fatalf("expected z close to the polar radius, got %v", z)
	}
}

func TestGroundStationECEFAltitudeAddsRadius(t *testing.T) {
	low := oracle.GroundStation{Name: "a", LatitudeDeg: 0, LongitudeDeg: 0, AltitudeKm: 0}
	high := oracle.GroundStation{Name: "b", LatitudeDeg: 0, LongitudeDeg: 0, AltitudeKm: 100}
	xl, _, _ := low.ECEF()
	xh, _, _ := high.ECEF()
	if math.Abs((xh-xl)-100) > 1e-6 {
		t.Fatalf("expected a 100km altitude delta to shift x by ~100km, got %v", xh-xl)
	}
}

func TestCompositeResolvesGroundStationsAndDefersToSatelliteOracle(t *testing.T) {
	c := oracle.NewComposite(fakeSatOracle{})
	c.AddGroundStation(oracle.GroundStation{Name: "gs-1", LatitudeDeg: 0, LongitudeDeg: 0})

	if _, _, _, err := c.XYZKm("gs-1", time.Unix(0, 0)); err != nil {
		t.Fatalf("unexpected error resolving a known ground station: %v", err)
	}
	x, y, z, err := c.XYZKm("sat-1", time.Unix(0, 0))
	if err != nil {
		t.Fatalf("unexpected error deferring to the satellite oracle: %v", err)
	}
	if x != 1 || y != 2 || z != 3 {
		t.Fatalf("expected the satellite oracle's fixed position, got (%v,%v,%v)", x, y, z)
	}
}

func TestCompositeErrorsOnUnknownNodeWithNoSatelliteOracle(t *testing.T) {
	c := oracle.NewComposite(nil)
	if _, _, _, err := c.XYZKm("nowhere", time.Unix(0, 0)); err == nil {
		t.Fatalf("expected an error for an unresolvable node with no satellite propagator")
	}
}

type fakeSatOracle struct{}

func (fakeSatOracle) XYZKm(name string, t time.Time) (float64, float64, float64, error) {
	return 1, 2, 3, nil
}
