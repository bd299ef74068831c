// Command dtnsim is a minimal demonstration entrypoint: it wires up a
// small fixed Mode A scenario and prints the resulting summary.
// Configuration-file loading and CLI argument parsing are out of scope
// (spec §1 Non-goals); a real embedding application constructs
// config.ModeAConfig/ModeBConfig and an oracle.Oracle itself and calls
// into internal/sim directly.
package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/config"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/ledger"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/model"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/nlog"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/oracle"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/phy"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/sim"
)

// circularOrbit is a toy satellite propagator: a fixed-altitude circular
// orbit in the equatorial plane, for demonstration only. A real run
// supplies its own oracle.Oracle backed by a proper propagator.
type circularOrbit struct {
	name       string
	radiusKm   float64
	periodSec  float64
	phaseRad   float64
}

func (c circularOrbit) XYZKm(nodeName string, t time.Time) (x, y, z float64, err error) {
	if nodeName != c.name {
		return 0, 0, 0, fmt.Errorf("circularOrbit: unknown node %q", nodeName)
	}
	theta := c.phaseRad + 2*math.Pi*t.Sub(time.Unix(0, 0)).Seconds()/c.periodSec
	return c.radiusKm * math.Cos(theta), c.radiusKm * math.Sin(theta), 0, nil
}

func main() {
	log := nlog.New()

	sat := circularOrbit{name: "sat-1", radiusKm: 6378.137 + 550, periodSec: 5_754, phaseRad: 0}
	orc := oracle.NewComposite(sat)
	orc.AddGroundStation(oracle.GroundStation{Name: "gs-north", LatitudeDeg: 45, LongitudeDeg: 0, AltitudeKm: 0})
	orc.AddGroundStation(oracle.GroundStation{Name: "gs-south", LatitudeDeg: -45, LongitudeDeg: 0, AltitudeKm: 0})

	nodes := model.NewRegistry()
	mustAdd := func(name string, kind model.Kind) {
		if _, err := nodes.Add(name, kind, func(t time.Time) (float64, float64, float64) {
			x, y, z, _ := orc.XYZKm(name, t)
			return x, y, z
		}); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	mustAdd("gs-north", model.GroundStation)
	mustAdd("gs-south", model.GroundStation)
	mustAdd("sat-1", model.Satellite)

	profile := phy.DefaultRegistry().Get("S-band")

	cfg := &config.ModeAConfig{
		Nodes:             []config.NodeConfig{{Name: "gs-north", Kind: "ground"}, {Name: "gs-south", Kind: "ground"}, {Name: "sat-1", Kind: "satellite"}},
		TickSeconds:       30,
		HorizonSeconds:    6 * 3600,
		RoutingTag:        "Epidemic",
		PhyMode:           "S-band",
		LOSRadiusKm:       6350,
		BundleArrivalRate: 0.001,
		PacketSizeBytes:   2048,
		TTLSeconds:        4 * 3600,
		RNGSeed:           42,
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	l := ledger.New(log)
	t0 := time.Unix(0, 0).UTC()
	runner := sim.NewRunnerA(cfg, nodes, orc, profile, l, log)

	summary, err := runner.Run(t0, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("mode=%s total=%d delivered=%d expired=%d notDelivered=%d meanLatencySec=%.1f meanHops=%.2f\n",
		summary.Mode, summary.TotalBundles, summary.Delivered, summary.Expired, summary.NotDelivered,
		summary.MeanLatencySec, summary.MeanHops)
}
