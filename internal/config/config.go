// Package config holds the run configuration for both simulation modes
// (spec §6) and its validation pass, grounded on the teacher's read-mostly
// config pattern (cmn/config: an atomically-swapped pointer to an
// immutable struct, validated once before a run rather than checked
// field-by-field at every use site).
package config

import (
	"time"

	"golang.org/x/mod/semver"

	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/buffer"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/cos"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/routing"
)

// EngineVersion is this build's config-schema version. A config carrying
// a SchemaVersion with a different major component is rejected: minor/
// patch drift is forward-compatible, a major bump is not, matching the
// teacher's own config-version gate (cmn/config).
const EngineVersion = "v1.0.0"

// checkSchemaVersion accepts an empty version (older configs predating
// the field) and any version sharing EngineVersion's major component.
func checkSchemaVersion(v string) error {
	if v == "" {
		return nil
	}
	if !semver.IsValid(v) {
		return cos.NewErrConfig("schemaVersion %q is not a valid semantic version", v)
	}
	if semver.Major(v) != semver.Major(EngineVersion) {
		return cos.NewErrConfig("schemaVersion %q is incompatible with engine %s", v, EngineVersion)
	}
	return nil
}

// Mode A has no byte-capacity buffer: §4.4 advances bundles through an
// unbounded holder set, not a queue with admission/eviction. Buffer
// capacity and policy are Mode B-only config, per spec §6's two
// configuration tables.

// NodeConfig describes one ground station or satellite entry.
type NodeConfig struct {
	Name string
	Kind string // "ground" or "satellite"
}

// ModeAConfig is the option set for the tick-stepped, live-adjacency
// engine (spec §4.1-§4.4), enumerating every option spec §6 recognises
// for Mode A.
type ModeAConfig struct {
	SchemaVersion     string // "" accepted; otherwise must share EngineVersion's major
	Nodes             []NodeConfig
	TickSeconds       float64 // stepSeconds
	HorizonSeconds    float64 // horizonMinutes, converted to seconds by the caller
	RoutingTag        string  // raw, pre-normalization
	PhyMode           string
	LOSRadiusKm       float64
	BundleArrivalRate float64 // Bernoulli probability per simulated second per source
	MinBundles        int     // fallback floor, spec §7
	PacketSizeBytes   int     // packetSizeBytes: size for PHY-extra calculation
	TTLSeconds        int     // ttlMinutes, converted to seconds by the caller; 0 => disabled
	MaxCopies         int
	RNGSeed           uint64

	// StartTime anchors the run's logical clock (startTime). The zero
	// Time means the caller passes t0 to Run directly instead.
	StartTime time.Time
	// SimStartOffsetMinutes skips the first N minutes of the horizon:
	// no workload is generated and no ticks execute before
	// StartTime+this offset (simStartOffsetMinutes; spec §8 boundary
	// case horizonMinutes <= simStartOffsetMinutes => empty run).
	SimStartOffsetMinutes float64
	// RealTimeSpeed paces the driver loop to wall-clock time: each tick
	// sleeps stepSeconds/RealTimeSpeed of real time before advancing.
	// 0 (the default) runs as fast as possible (realTimeSpeed).
	RealTimeSpeed float64

	// NumBundles, when > 0, switches generation from the Bernoulli
	// arrival process to an explicit population of exactly this many
	// bundles, drawing endpoints and release offsets from the four
	// fields below (numBundles).
	NumBundles int
	// BundleReleaseOffsetsMinutes is each explicit bundle's release
	// time, in minutes after the simulated start; a single entry
	// broadcasts to every bundle (bundleReleaseOffsetsMinutes).
	BundleReleaseOffsetsMinutes []float64
	// BundleSrcNames/BundleDstNames name each explicit bundle's
	// source/destination node; a single entry broadcasts to every
	// bundle (bundleSrcNames, bundleDstNames).
	BundleSrcNames []string
	BundleDstNames []string

	// derived, filled by Validate
	Routing routing.Mode
}

// ModeBConfig is the option set for the pre-scheduled contact-plan
// engine (spec §4.5), enumerating every option spec §6 recognises for
// Mode B.
type ModeBConfig struct {
	SchemaVersion   string
	Nodes           []NodeConfig
	BufferPolicyTag string // bufferPolicy
	// SourceBufferBytes/SatelliteBufferBytes are independent capacities
	// for ground-station source buffers and per-satellite buffers
	// (sourceBufferBytes, satelliteBufferBytes): the teacher's storage
	// layer never gave two tiers of a pipeline the same byte budget by
	// construction, and neither does this one.
	SourceBufferBytes    int
	SatelliteBufferBytes int
	MinDwellSeconds      float64
	ArqFactor            float64
	BundleArrivalRate    float64 // lambdaMsgPerSecond
	MinBundles           int
	BundleSizeBytes      int // msgSizeBytes
	TTLSeconds           int // ttlSeconds
	RNGSeed              uint64

	// StartTime/StopTime bound the run's logical clock (startTime,
	// stopTime); the zero Time for either means the caller passes its
	// own start/stop to Run directly instead.
	StartTime time.Time
	StopTime  time.Time

	// RoutingTag selects single-copy delivery or multi-copy spraying
	// (routing ∈ {single,spray}); unknown tags fall back to single, the
	// same "unrecognised normalizes to a safe default" treatment Mode
	// A's routing tag gets.
	RoutingTag string
	// SprayCopies is how many independent entries of one bundle are
	// admitted into its source buffer when RoutingTag resolves to spray
	// (sprayCopies); each copy rides whichever uplink reaches it, so two
	// copies may land on the same satellite. Ignored under single-copy
	// routing.
	SprayCopies int
	// ContactPlanSource names the provenance of the windows passed to
	// RunnerB.Run (contactPlanSource) — a label surfaced in logs, not a
	// file path the engine itself resolves (config-file loading is out
	// of scope, spec §1 Non-goals).
	ContactPlanSource string

	Policy buffer.Policy
	Spray  bool // derived, filled by Validate
}

// Validate runs every check in one pass, accumulating problems in a
// cos.Errs, and returns one error joining all their messages rather than
// failing on the first problem found, per spec §6's
// "configuration error" taxonomy.
func (c *ModeAConfig) Validate() error {
	var errs cos.Errs
	if err := checkSchemaVersion(c.SchemaVersion); err != nil {
		errs.Add(err)
	}
	if len(c.Nodes) == 0 {
		errs.Add(cos.NewErrConfig("mode A: at least one node required"))
	}
	if c.TickSeconds <= 0 {
		errs.Add(cos.NewErrConfig("mode A: tickSeconds must be > 0, got %v", c.TickSeconds))
	}
	if c.HorizonSeconds <= 0 {
		errs.Add(cos.NewErrConfig("mode A: horizonSeconds must be > 0, got %v", c.HorizonSeconds))
	}
	if c.LOSRadiusKm <= 0 {
		errs.Add(cos.NewErrConfig("mode A: losRadiusKm must be > 0, got %v", c.LOSRadiusKm))
	}
	if c.PacketSizeBytes <= 0 {
		errs.Add(cos.NewErrConfig("mode A: packetSizeBytes must be > 0, got %d", c.PacketSizeBytes))
	}
	if c.BundleArrivalRate < 0 || c.BundleArrivalRate > 1 {
		errs.Add(cos.NewErrConfig("mode A: bundleArrivalRate must be in [0,1], got %v", c.BundleArrivalRate))
	}
	if c.MinBundles <= 0 {
		c.MinBundles = 100 // spec §7 fallback floor
	}
	if c.NumBundles > 0 {
		if len(c.BundleSrcNames) == 0 || len(c.BundleDstNames) == 0 {
			errs.Add(cos.NewErrConfig("mode A: numBundles > 0 requires bundleSrcNames and bundleDstNames"))
		}
		known := make(map[string]bool, len(c.Nodes))
		for _, n := range c.Nodes {
			known[n.Name] = true
		}
		for _, name := range c.BundleSrcNames {
			if !known[name] {
				errs.Add(cos.NewErrConfig("mode A: bundleSrcNames: unknown node %q", name))
			}
		}
		for _, name := range c.BundleDstNames {
			if !known[name] {
				errs.Add(cos.NewErrConfig("mode A: bundleDstNames: unknown node %q", name))
			}
		}
	}
	if c.SimStartOffsetMinutes < 0 {
		errs.Add(cos.NewErrConfig("mode A: simStartOffsetMinutes must be >= 0, got %v", c.SimStartOffsetMinutes))
	}
	if c.RealTimeSpeed < 0 {
		errs.Add(cos.NewErrConfig("mode A: realTimeSpeed must be >= 0, got %v", c.RealTimeSpeed))
	}
	// Unknown routing tags are not a configuration error: they normalize
	// to the documented Epidemic fallback (spec §4.4), applied here so
	// the rest of the engine only ever sees a resolved Mode.
	c.Routing = routing.ParseMode(c.RoutingTag)
	return errs.JoinErr()
}

func (c *ModeBConfig) Validate() error {
	var errs cos.Errs
	if err := checkSchemaVersion(c.SchemaVersion); err != nil {
		errs.Add(err)
	}
	if len(c.Nodes) == 0 {
		errs.Add(cos.NewErrConfig("mode B: at least one node required"))
	}
	if c.SourceBufferBytes <= 0 {
		errs.Add(cos.NewErrConfig("mode B: sourceBufferBytes must be > 0, got %d", c.SourceBufferBytes))
	}
	if c.SatelliteBufferBytes <= 0 {
		errs.Add(cos.NewErrConfig("mode B: satelliteBufferBytes must be > 0, got %d", c.SatelliteBufferBytes))
	}
	if c.MinDwellSeconds < 0 {
		errs.Add(cos.NewErrConfig("mode B: minDwellSeconds must be >= 0, got %v", c.MinDwellSeconds))
	}
	if c.ArqFactor <= 0 {
		c.ArqFactor = 1.0
	}
	if c.BundleSizeBytes <= 0 {
		errs.Add(cos.NewErrConfig("mode B: bundleSizeBytes must be > 0, got %d", c.BundleSizeBytes))
	}
	if c.BundleArrivalRate < 0 || c.BundleArrivalRate > 1 {
		errs.Add(cos.NewErrConfig("mode B: bundleArrivalRate must be in [0,1], got %v", c.BundleArrivalRate))
	}
	if c.MinBundles <= 0 {
		c.MinBundles = 100
	}
	if !c.StopTime.IsZero() && !c.StartTime.IsZero() && !c.StopTime.After(c.StartTime) {
		errs.Add(cos.NewErrConfig("mode B: stopTime must be after startTime"))
	}
	// Unknown routing tags normalize to single-copy delivery, the same
	// safe-fallback treatment Mode A's routing tag gets.
	c.Spray = c.RoutingTag == "spray"
	if c.Spray && c.SprayCopies <= 0 {
		c.SprayCopies = 2 // spec names sprayCopies as a recognized option but no default; 2 is the minimal spray fanout
	}
	c.Policy = buffer.ParsePolicy(c.BufferPolicyTag)
	return errs.JoinErr()
}

// TickDuration is a small convenience used by the Mode A driver.
func (c *ModeAConfig) TickDuration() time.Duration {
	return time.Duration(c.TickSeconds * float64(time.Second))
}
