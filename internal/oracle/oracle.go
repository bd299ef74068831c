// Package oracle defines the position-oracle contract this engine
// consumes: orbit propagation itself is out of scope (spec §1) and lives
// in an external collaborator. This package only specifies the
// interface, a ground-station geodetic-to-ECEF helper, and a composite
// that lets Mode A mix fixed ground stations with a pluggable satellite
// propagator.
package oracle

import (
	"math"
	"time"

	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/cos"
)

// Oracle is the pluggable position source: xyzKm(nodeName, t) -> (x,y,z)
// in kilometres, pure for a given t. This engine's driver never calls an
// Oracle concurrently, and the interface makes no promise about
// concurrent use.
type Oracle interface {
	XYZKm(nodeName string, t time.Time) (x, y, z float64, err error)
}

// earthRadiusEquatorialKm and flattening are the WGS84 constants used by
// the ground-station geodetic-to-ECEF transform.
const (
	earthRadiusEquatorialKm = 6378.137
	wgs84Flattening         = 1.0 / 298.257223563
)

// GroundStation is a fixed-position node specified by geodetic
// coordinates; XYZKm ignores t (ground stations have a constant
// position, per spec §3).
type GroundStation struct {
	Name         string
	LatitudeDeg  float64
	LongitudeDeg float64
	AltitudeKm   float64
}

// ECEF converts the station's (lat, lon, alt) to Earth-centered,
// Earth-fixed kilometres.
func (g GroundStation) ECEF() (x, y, z float64) {
	const degToRad = math.Pi / 180.0
	lat := g.LatitudeDeg * degToRad
	lon := g.LongitudeDeg * degToRad

	e2 := wgs84Flattening * (2 - wgs84Flattening)
	sinLat := math.Sin(lat)
	n := earthRadiusEquatorialKm / math.Sqrt(1-e2*sinLat*sinLat)

	x = (n + g.AltitudeKm) * math.Cos(lat) * math.Cos(lon)
	y = (n + g.AltitudeKm) * math.Cos(lat) * math.Sin(lon)
	z = (n*(1-e2) + g.AltitudeKm) * sinLat
	return
}

// Composite resolves ground stations from a fixed table and defers
// satellites to an external propagator oracle.
type Composite struct {
	groundStations map[string]GroundStation
	satellites     Oracle
}

func NewComposite(satellites Oracle) *Composite {
	return &Composite{groundStations: make(map[string]GroundStation), satellites: satellites}
}

func (c *Composite) AddGroundStation(gs GroundStation) { c.groundStations[gs.Name] = gs }

func (c *Composite) XYZKm(nodeName string, t time.Time) (x, y, z float64, err error) {
	if gs, ok := c.groundStations[nodeName]; ok {
		x, y, z = gs.ECEF()
		return x, y, z, nil
	}
	if c.satellites == nil {
		return 0, 0, 0, cos.Errorf("position oracle: no satellite propagator configured for %q", nodeName)
	}
	return c.satellites.XYZKm(nodeName, t)
}
