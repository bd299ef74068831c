// Package housekeep registers named maintenance callbacks that run at
// specified intervals, the way the teacher's hk package does for a
// long-lived daemon. The difference: this registry is driven by the
// simulation's own logical clock rather than a wall-clock ticker, and
// RunDue is called in-line from the driver loop, never from a background
// goroutine — per-tick work stays an atomic unit (no callback can race
// the driver that invokes it).
package housekeep

import "time"

type job struct {
	name     string
	interval time.Duration
	next     time.Time
	fn       func(now time.Time)
}

// Registry holds the due-callback list for one simulation run.
type Registry struct {
	jobs []*job
}

func New() *Registry { return &Registry{} }

// Register adds a named callback invoked once per elapsed interval,
// first firing at start+interval. A RunDue call that jumps past several
// intervals invokes it once for each of them.
func (r *Registry) Register(name string, start time.Time, interval time.Duration, fn func(now time.Time)) {
	r.jobs = append(r.jobs, &job{
		name:     name,
		interval: interval,
		next:     start.Add(interval),
		fn:       fn,
	})
}

// RunDue invokes every callback whose next-run time has arrived, in
// registration order, and reschedules it. Called once per tick (Mode A)
// or once per contact window (Mode B).
func (r *Registry) RunDue(now time.Time) {
	for _, j := range r.jobs {
		if j.interval <= 0 {
			continue
		}
		for !now.Before(j.next) {
			j.fn(now)
			j.next = j.next.Add(j.interval)
		}
	}
}
