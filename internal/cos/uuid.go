package cos

import (
	"fmt"
	"sync/atomic"

	"github.com/OneOfOne/xxhash"
	"github.com/teris-io/shortid"
)

// idAlphabet mirrors the teacher's uuidABC: a 64-character set safe for use
// in log lines and serialised IDs.
const idAlphabet = "-5nZJDft6LuzsjGNpPwY7rQa39vehq4i1cV2FROo8yHSlC0BUEdWbIxMmTgKXAk_"

// tieSeed is a fixed hash seed, analogous to the teacher's MLCG32
// constant: a constant, not a per-run random value, so that hashing a
// given bundle id always yields the same digest run over run.
const tieSeed uint64 = 0x9E3779B97F4A7C15

var tieCounter atomic.Uint32

// IDGen produces short IDs from an alphabet shuffled by seed. The IDs
// also encode the wall-clock time of each Next call (shortid's time
// component), so two IDGens with the same seed do not produce the same
// ID sequence in different runs; only distinctness within one
// generator's stream holds.
type IDGen struct {
	sid *shortid.Shortid
}

func NewIDGen(seed uint64) *IDGen {
	sid, err := shortid.New(1, idAlphabet, seed)
	if err != nil {
		// shortid.New only errors on a malformed alphabet; idAlphabet is
		// a fixed, known-good 64-rune constant, so this cannot happen.
		panic(err)
	}
	return &IDGen{sid: sid}
}

func (g *IDGen) Next() string {
	id, err := g.sid.Generate()
	if err != nil {
		// Generate only errors once every ~12 days of continuous
		// worker-exhaustion; unreachable within one simulation run.
		panic(err)
	}
	return id
}

// GenTie returns a short, monotonically-varying tie-breaker string used
// only to order log lines deterministically when two entities share a
// timestamp; never consulted by routing or delivery logic.
func GenTie() string {
	tie := tieCounter.Add(1)
	b0 := idAlphabet[tie&0x3f]
	b1 := idAlphabet[(^tie)&0x3f]
	b2 := idAlphabet[(tie>>2)&0x3f]
	return string([]byte{b0, b1, b2})
}

// HashBundleID returns a deterministic 64-bit digest of a bundle id,
// used as the cuckoo-filter membership key for duplicate suppression.
func HashBundleID(id int) uint64 {
	return xxhash.Checksum64S([]byte(fmt.Sprintf("bundle#%d", id)), tieSeed)
}
