package model

import "time"

// Link identifies the direction of a contact window relative to the
// satellite end.
type Link int

const (
	Uplink Link = iota // ground-station source -> satellite
	Downlink
)

func (l Link) String() string {
	if l == Downlink {
		return "downlink"
	}
	return "uplink"
}

// ContactWindow is an immutable, plan-owned directed link opportunity
// between a ground station and a satellite (Mode B). Invariant:
// End > Start; CapacityBytes == RateBytesPerSecond * DurationSeconds.
type ContactWindow struct {
	Satellite             string
	GroundStation         string
	Link                  Link
	Start                 time.Time
	End                   time.Time
	DurationSeconds       float64
	MeanRangeKm           float64
	RateBytesPerSecond    float64
	CapacityBytes         float64
	PropagationDelaySeconds float64
}

// NewContactWindow derives DurationSeconds and CapacityBytes from the
// given start/end/rate, per the invariant in spec §3.
func NewContactWindow(sat, gs string, link Link, start, end time.Time, meanRangeKm, rateBytesPerSecond, propDelay float64) ContactWindow {
	dur := end.Sub(start).Seconds()
	return ContactWindow{
		Satellite:               sat,
		GroundStation:           gs,
		Link:                    link,
		Start:                   start,
		End:                     end,
		DurationSeconds:         dur,
		MeanRangeKm:             meanRangeKm,
		RateBytesPerSecond:      rateBytesPerSecond,
		CapacityBytes:           rateBytesPerSecond * dur,
		PropagationDelaySeconds: propDelay,
	}
}

func (c ContactWindow) Valid() bool { return c.End.After(c.Start) }

// Less orders contact windows by ascending start, ties broken by
// (satellite, link) lexicographic order, per the Mode B ordering
// guarantee.
func (c ContactWindow) Less(o ContactWindow) bool {
	if !c.Start.Equal(o.Start) {
		return c.Start.Before(o.Start)
	}
	if c.Satellite != o.Satellite {
		return c.Satellite < o.Satellite
	}
	return c.Link < o.Link
}
