// Package buffer implements the bounded per-node buffer manager shared by
// both simulation modes (spec §4.6): admission with eviction on overflow,
// under one of three policies (oldest/largest/random).
//
// Each buffer is backed by its own in-memory buntdb database rather than
// a hand-rolled slice: buntdb gives us, for free, the two orderings this
// policy set needs (ascending insertion order for "oldest", from the
// zero-padded sequence keys; descending size for "largest", from the one
// secondary index "by_size"), the same way the teacher's storage
// layers lean on an embedded, indexed store instead of re-deriving
// order-maintenance by hand. buntdb's own per-key expiry is wall-clock
// (time.Now()) driven and cannot honor the simulation's logical clock,
// so TTL sweep (spec §4.5 Phase 1) is implemented as an explicit
// ascending scan compared against simulated time, not buntdb's built-in
// TTL.
package buffer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/buntdb"

	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/cos"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/model"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/xoshiro256"
)

// Policy selects the eviction victim when admission would overflow
// capacity.
type Policy int

const (
	Oldest Policy = iota
	Largest
	Random
)

// ParsePolicy maps the `bufferPolicy` config option; unknown values fall
// back to Oldest.
func ParsePolicy(s string) Policy {
	switch s {
	case "largest":
		return Largest
	case "random":
		return Random
	default:
		return Oldest
	}
}

const idxBySize = "by_size"

type record struct {
	BundleID  int       `json:"bundleID"`
	CreatedAt time.Time `json:"createdAt"`
	Size      int       `json:"size"`
	TTLSec    int       `json:"ttlSec"`
	ReadyAt   time.Time `json:"readyAt"`
}

func toEntry(r record) model.Entry {
	return model.Entry{
		BundleID:  r.BundleID,
		CreatedAt: r.CreatedAt,
		Size:      r.Size,
		TTL:       time.Duration(r.TTLSec) * time.Second,
		ReadyAt:   r.ReadyAt,
	}
}

func fromEntry(e model.Entry) record {
	return record{
		BundleID:  e.BundleID,
		CreatedAt: e.CreatedAt,
		Size:      e.Size,
		TTLSec:    int(e.TTL / time.Second),
		ReadyAt:   e.ReadyAt,
	}
}

// Manager is one bounded buffer (a source buffer or a single satellite's
// buffer).
type Manager struct {
	ID           string
	db           *buntdb.DB
	capacity     int
	current      int
	policy       Policy
	rng          *xoshiro256.Source
	seq          uint64
	bufferDrops  int
	ttlDropsSeen int // entries this manager itself TTL-dropped via Sweep
}

// NewManager opens a fresh in-memory buntdb-backed buffer. rng must be
// the run's single shared RNG stream when policy is Random, so that
// eviction draws participate in the same deterministic sequence as
// workload generation and any other randomized component.
func NewManager(id string, capacityBytes int, policy Policy, rng *xoshiro256.Source) (*Manager, error) {
	db, err := buntdb.Open(":memory:")
	if err != nil {
		return nil, cos.Wrap(err, "buffer: open in-memory store")
	}
	if err := db.CreateIndex(idxBySize, "*", buntdb.IndexJSON("size")); err != nil {
		return nil, cos.Wrap(err, "buffer: create size index")
	}
	return &Manager{ID: id, db: db, capacity: capacityBytes, policy: policy, rng: rng}, nil
}

func (m *Manager) key(seq uint64) string { return fmt.Sprintf("%020d", seq) }

// Admit attempts to admit entry, evicting victims per policy until it
// fits or the buffer is empty. Returns whether entry was ultimately
// admitted and the list of evicted entries (for ledger accounting).
func (m *Manager) Admit(e model.Entry) (admitted bool, evicted []model.Entry) {
	for m.current+e.Size > m.capacity && m.count() > 0 {
		victim, ok := m.selectVictim()
		if !ok {
			break
		}
		m.removeKey(victim.key)
		m.current -= victim.rec.Size
		m.bufferDrops++
		evicted = append(evicted, toEntry(victim.rec))
	}
	if m.current+e.Size > m.capacity {
		m.bufferDrops++ // the incoming entry itself is the buffer drop
		return false, evicted
	}
	m.insert(e)
	return true, evicted
}

func (m *Manager) insert(e model.Entry) {
	m.seq++
	k := m.key(m.seq)
	rec := fromEntry(e)
	buf, _ := json.Marshal(rec)
	_ = m.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(k, string(buf), nil)
		return err
	})
	m.current += e.Size
}

type located struct {
	key string
	rec record
}

func (m *Manager) count() (n int) {
	_ = m.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(k, v string) bool { n++; return true })
	})
	return n
}

// Entries returns the buffer's contents in FIFO order.
func (m *Manager) Entries() []model.Entry {
	var out []model.Entry
	_ = m.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(k, v string) bool {
			var rec record
			if err := json.Unmarshal([]byte(v), &rec); err == nil {
				out = append(out, toEntry(rec))
			}
			return true
		})
	})
	return out
}

func (m *Manager) selectVictim() (located, bool) {
	switch m.policy {
	case Largest:
		return m.selectLargest()
	case Random:
		return m.selectRandom()
	default:
		return m.selectOldest()
	}
}

// selectOldest picks the FIFO head: ascending over the default
// key-order index, which is insertion order because keys are a
// zero-padded monotonic sequence.
func (m *Manager) selectOldest() (out located, found bool) {
	_ = m.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(k, v string) bool {
			var rec record
			if err := json.Unmarshal([]byte(v), &rec); err == nil {
				out = located{key: k, rec: rec}
				found = true
			}
			return false // first only
		})
	})
	return out, found
}

// selectLargest descends the by-size index; ties go to the earliest
// arrival (lowest index). buntdb breaks index ties by key, so a descending
// scan meets equal sizes newest first: the scan keeps walking while the
// size stays at the maximum and the last one seen is the oldest.
func (m *Manager) selectLargest() (out located, found bool) {
	_ = m.db.View(func(tx *buntdb.Tx) error {
		return tx.Descend(idxBySize, func(k, v string) bool {
			var rec record
			if err := json.Unmarshal([]byte(v), &rec); err != nil {
				return true
			}
			if found && rec.Size < out.rec.Size {
				return false
			}
			out = located{key: k, rec: rec}
			found = true
			return true
		})
	})
	return out, found
}

// selectRandom draws a uniform index from the run's seeded RNG stream
// (spec §4.6: "Random eviction MUST use the same RNG stream seeded at
// run start to preserve determinism").
func (m *Manager) selectRandom() (out located, found bool) {
	all := m.allLocated()
	if len(all) == 0 {
		return out, false
	}
	idx := m.rng.Intn(len(all))
	return all[idx], true
}

func (m *Manager) allLocated() []located {
	var out []located
	_ = m.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(k, v string) bool {
			var rec record
			if err := json.Unmarshal([]byte(v), &rec); err == nil {
				out = append(out, located{key: k, rec: rec})
			}
			return true
		})
	})
	return out
}

func (m *Manager) removeKey(k string) {
	_ = m.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(k)
		return err
	})
}

// Sweep evicts every entry for which expired(createdAt, ttl) is true,
// e.g. createdAt+ttl < windowStart (spec §4.5 Phase 1). Returns the
// dropped entries for TTL-drop accounting (distinct from bufferDrops).
func (m *Manager) Sweep(expired func(createdAt time.Time, ttl time.Duration) bool) []model.Entry {
	var victims []located
	for _, loc := range m.allLocated() {
		e := toEntry(loc.rec)
		if e.TTL > 0 && expired(e.CreatedAt, e.TTL) {
			victims = append(victims, loc)
		}
	}
	out := make([]model.Entry, 0, len(victims))
	for _, v := range victims {
		m.removeKey(v.key)
		m.current -= v.rec.Size
		out = append(out, toEntry(v.rec))
	}
	m.ttlDropsSeen += len(out)
	return out
}

// ReduceHead shrinks the size of the FIFO head entry by delta bytes, for
// Mode B's partial-transmission rule: when a contact's remaining budget
// is less than the head entry's size, the entry stays queued with its
// size reduced by the transmitted remainder.
func (m *Manager) ReduceHead(delta int) {
	head, ok := m.selectOldest()
	if !ok {
		return
	}
	head.rec.Size -= delta
	if head.rec.Size <= 0 {
		m.removeKey(head.key)
		m.current -= delta
		return
	}
	buf, _ := json.Marshal(head.rec)
	_ = m.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(head.key, string(buf), nil)
		return err
	})
	m.current -= delta
}

// RemoveBundle purges every entry for bundleID from this buffer
// (delivery with no further copies, or TTL expiry at the bundle level).
func (m *Manager) RemoveBundle(bundleID int) {
	for _, loc := range m.allLocated() {
		if loc.rec.BundleID == bundleID {
			m.removeKey(loc.key)
			m.current -= loc.rec.Size
		}
	}
}

func (m *Manager) CurrentBytes() int { return m.current }
func (m *Manager) Capacity() int     { return m.capacity }
func (m *Manager) BufferDrops() int  { return m.bufferDrops }
func (m *Manager) Len() int          { return m.count() }

func (m *Manager) Close() error { return m.db.Close() }
