package sim

import (
	"sort"
	"time"

	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/buffer"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/config"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/contactplan"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/housekeep"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/ledger"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/model"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/nlog"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/report"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/workload"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/xoshiro256"
)

// RunnerB drives Mode B: bundles are generated, admitted into their
// source ground-station buffer(s), and the contact plan is walked to
// completion.
type RunnerB struct {
	Cfg *config.ModeBConfig
	Log *nlog.Logger
	RNG *xoshiro256.Source
	Hk  *housekeep.Registry

	byID   map[int]*model.Bundle
	nextID int
}

func NewRunnerB(cfg *config.ModeBConfig, log *nlog.Logger) *RunnerB {
	return &RunnerB{
		Cfg:  cfg,
		Log:  log,
		RNG:  xoshiro256.New(cfg.RNGSeed),
		Hk:   housekeep.New(),
		byID: make(map[int]*model.Bundle),
	}
}

func (r *RunnerB) Get(id int) (*model.Bundle, bool) { b, ok := r.byID[id]; return b, ok }

// Run executes the whole Mode B pipeline over windows, which need not be
// sorted (they are ordered with contactplan.SortWindows): generate the
// bundle population, admit each into its source ground station's buffer
// (Cfg.SprayCopies entries per bundle when RoutingTag resolves to spray,
// otherwise one), drive the contact plan, then build the
// report. If start/stop are the zero Time, Cfg.StartTime/StopTime
// anchor the run instead (startTime, stopTime).
func (r *RunnerB) Run(start, stop time.Time, windows []model.ContactWindow, l *ledger.Ledger) (report.Summary, error) {
	if start.IsZero() {
		start = r.Cfg.StartTime
	}
	if stop.IsZero() {
		stop = r.Cfg.StopTime
	}
	if r.Log != nil && r.Cfg.ContactPlanSource != "" {
		r.Log.Infof("mode B: contact plan source=%s windows=%d", r.Cfg.ContactPlanSource, len(windows))
	}

	var sources, destinations []string
	satellites := map[string]bool{}
	groundStations := map[string]bool{}
	for _, w := range windows {
		satellites[w.Satellite] = true
		groundStations[w.GroundStation] = true
	}
	for gs := range groundStations {
		sources = append(sources, gs)
		destinations = append(destinations, gs)
	}
	// Map iteration order is random; sort so the workload consumes the
	// shared RNG stream in the same order on every run.
	sort.Strings(sources)
	sort.Strings(destinations)

	spec := workload.Spec{
		Sources:      sources,
		Destinations: destinations,
		Start:        start,
		Stop:         stop,
		Lambda:       r.Cfg.BundleArrivalRate,
		SizeBytes:    r.Cfg.BundleSizeBytes,
		TTLSeconds:   r.Cfg.TTLSeconds,
		MinBundles:   r.Cfg.MinBundles,
	}
	bundles, err := workload.Generate(spec, r.RNG, func() int { r.nextID++; return r.nextID })
	if err != nil {
		return report.Summary{}, err
	}
	for _, b := range bundles {
		r.byID[b.ID] = b
	}

	sched := contactplan.New(r, l, r.Cfg.MinDwellSeconds, r.Cfg.ArqFactor)
	sourceBufs := make(map[string]*buffer.Manager)
	satBufs := make(map[string]*buffer.Manager)
	for gs := range groundStations {
		m, err := buffer.NewManager(gs, r.Cfg.SourceBufferBytes, r.Cfg.Policy, r.RNG)
		if err != nil {
			return report.Summary{}, err
		}
		sourceBufs[gs] = m
		sched.SetSourceBuffer(gs, m)
	}
	for sat := range satellites {
		m, err := buffer.NewManager(sat, r.Cfg.SatelliteBufferBytes, r.Cfg.Policy, r.RNG)
		if err != nil {
			return report.Summary{}, err
		}
		satBufs[sat] = m
		sched.SetSatelliteBuffer(sat, m)
	}

	// spray admits sprayCopies independent FIFO entries for the same
	// bundleId into its source buffer instead of one: each copy then
	// rides whichever uplink window reaches it first, so a bundle can
	// cross to more than one satellite and reach the destination over
	// more than one downlink (spec §1 "multi-copy spraying with
	// duplicate suppression at the destination"; testable property #6).
	// Single-copy routing (the default) is unchanged: exactly one entry
	// per bundle.
	copies := 1
	if r.Cfg.Spray {
		copies = r.Cfg.SprayCopies
		if copies <= 0 {
			copies = 1
		}
	}
	for _, b := range bundles {
		src := sourceBufs[b.Source]
		if src == nil {
			continue // source has no outgoing window in this plan
		}
		for c := 0; c < copies; c++ {
			admitted, evicted := src.Admit(model.Entry{
				BundleID:  b.ID,
				CreatedAt: b.ReleaseTime,
				Size:      b.SizeBytes,
				TTL:       time.Duration(b.TTLSeconds) * time.Second,
			})
			if l != nil {
				if len(evicted) > 0 {
					l.RecordBufferDrop(len(evicted))
				}
				if !admitted {
					l.RecordBufferDrop(1)
				}
			}
		}
		if l != nil {
			l.RecordReleased(b.ReleaseTime, b.ID)
		}
	}

	// A periodic sweep logging aggregate buffer occupancy, run between
	// windows rather than per-tick since Mode B has no tick clock of its
	// own; registered fresh every Run so a prior run's job never fires
	// against this run's windows.
	r.Hk = housekeep.New()
	if len(windows) > 0 {
		r.Hk.Register("buffer-occupancy", windows[0].Start, 10*time.Minute, func(now time.Time) {
			if r.Log == nil {
				return
			}
			var sourceQueued, satQueued int
			for _, m := range sourceBufs {
				for _, e := range m.Entries() {
					sourceQueued += e.Size
				}
			}
			for _, m := range satBufs {
				for _, e := range m.Entries() {
					satQueued += e.Size
				}
			}
			r.Log.Eventf(now, "housekeep: sourceQueuedBytes=%d satelliteQueuedBytes=%d", sourceQueued, satQueued)
		})
	}
	for _, w := range contactplan.SortWindows(windows) {
		sched.ProcessWindow(w)
		r.Hk.RunDue(w.Start)
	}

	delivered := make(map[int]bool, len(sched.Deliveries))
	for _, d := range sched.Deliveries {
		delivered[d.BundleID] = true
	}

	rows := make([]report.BundleReport, 0, len(bundles))
	for _, b := range bundles {
		if delivered[b.ID] {
			for _, d := range sched.Deliveries {
				if d.BundleID == b.ID {
					b.Delivered = true
					b.DeliveredAt = d.DeliveredAt
					break
				}
			}
		}
		rows = append(rows, report.BuildBundleReport(b, true))
	}

	for _, m := range sourceBufs {
		_ = m.Close()
	}
	for _, m := range satBufs {
		_ = m.Close()
	}

	var bufferDrops, ttlDrops, dupSuppressed int
	var airBytes float64
	if l != nil {
		_, _, bufferDrops, ttlDrops, dupSuppressed, airBytes = l.Snapshot()
	} else {
		airBytes = sched.AirBytesTotal()
	}
	return report.BuildSummary("B", rows, bufferDrops, ttlDrops, dupSuppressed, airBytes), nil
}
