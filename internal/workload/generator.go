// Package workload generates the bundle arrival process shared by both
// simulation modes (spec §7): a per-second Bernoulli trial at rate λ,
// fixed bundle size, with a fallback-minimum floor so a run is never
// empty. Grounded on the teacher's dsort "shard generator" pattern of a
// pure function driven end to end by one seeded RNG stream.
package workload

import (
	"fmt"
	"time"

	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/cos"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/model"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/xoshiro256"
)

// Spec is the parameters for one generation pass over [start, stop).
type Spec struct {
	Sources     []string
	Destinations []string
	Start       time.Time
	Stop        time.Time
	Lambda      float64 // per-second Bernoulli arrival probability
	SizeBytes   int
	TTLSeconds  int
	MaxCopies   int
	MinBundles  int // fallback floor, spec §7
}

// Generate produces bundle-create events per spec §7: a per-second
// Bernoulli trial with probability Lambda over [Start, Stop) for each
// source; if the pass yields zero bundles, MinBundles are injected
// uniformly over [Start, Stop) instead, so no run is ever empty. nextID
// assigns each bundle a unique int ID in generation order; rng must be
// the run's single shared RNG stream.
func Generate(spec Spec, rng *xoshiro256.Source, nextID func() int) ([]*model.Bundle, error) {
	if len(spec.Sources) == 0 || len(spec.Destinations) == 0 {
		return nil, cos.NewErrConfig("workload: at least one source and one destination required")
	}
	if !spec.Stop.After(spec.Start) {
		return nil, cos.NewErrConfig("workload: stop must be after start")
	}

	var out []*model.Bundle
	totalSeconds := int(spec.Stop.Sub(spec.Start).Seconds())
	for _, src := range spec.Sources {
		for sec := 0; sec < totalSeconds; sec++ {
			if !rng.Bernoulli(spec.Lambda) {
				continue
			}
			t := spec.Start.Add(time.Duration(sec) * time.Second)
			dst := spec.Destinations[rng.Intn(len(spec.Destinations))]
			out = append(out, newBundle(nextID(), src, dst, spec, t))
		}
	}

	if len(out) > 0 {
		return out, nil
	}

	// Fallback: inject MinBundles uniformly over [start, stop), spec §7.
	n := spec.MinBundles
	if n <= 0 {
		n = 100
	}
	out = make([]*model.Bundle, 0, n)
	span := spec.Stop.Sub(spec.Start)
	for i := 0; i < n; i++ {
		src := spec.Sources[rng.Intn(len(spec.Sources))]
		dst := spec.Destinations[rng.Intn(len(spec.Destinations))]
		offset := time.Duration(rng.Float64() * float64(span))
		t := spec.Start.Add(offset)
		out = append(out, newBundle(nextID(), src, dst, spec, t))
	}
	return out, nil
}

func newBundle(id int, src, dst string, spec Spec, release time.Time) *model.Bundle {
	b := model.New(id, src, dst, spec.SizeBytes, release, spec.TTLSeconds, spec.MaxCopies)
	b.Tie = fmt.Sprintf("%03d", id%1000)
	return b
}

// ExplicitSpec is the parameters for GenerateExplicit: a fixed bundle
// count with named endpoints and release offsets, replacing the
// Bernoulli arrival process (spec §6 Mode A numBundles/
// bundleReleaseOffsetsMinutes/bundleSrcNames/bundleDstNames).
type ExplicitSpec struct {
	NumBundles int
	Start      time.Time
	// ReleaseOffsetsMinutes, SrcNames, and DstNames each broadcast a
	// single entry to every bundle; otherwise entry i governs bundle i,
	// wrapping if the slice is shorter than NumBundles.
	ReleaseOffsetsMinutes []float64
	SrcNames              []string
	DstNames              []string
	SizeBytes             int
	TTLSeconds            int
	MaxCopies             int
}

// GenerateExplicit builds exactly spec.NumBundles bundles with named
// endpoints and release offsets instead of the random Bernoulli arrival
// process.
func GenerateExplicit(spec ExplicitSpec, nextID func() int) ([]*model.Bundle, error) {
	if spec.NumBundles <= 0 {
		return nil, cos.NewErrConfig("workload: numBundles must be > 0 for explicit generation")
	}
	if len(spec.SrcNames) == 0 || len(spec.DstNames) == 0 {
		return nil, cos.NewErrConfig("workload: bundleSrcNames and bundleDstNames are required for explicit generation")
	}
	out := make([]*model.Bundle, 0, spec.NumBundles)
	genSpec := Spec{SizeBytes: spec.SizeBytes, TTLSeconds: spec.TTLSeconds, MaxCopies: spec.MaxCopies}
	for i := 0; i < spec.NumBundles; i++ {
		src := broadcastString(spec.SrcNames, i)
		dst := broadcastString(spec.DstNames, i)
		offsetMin := broadcastFloat(spec.ReleaseOffsetsMinutes, i)
		release := spec.Start.Add(time.Duration(offsetMin * float64(time.Minute)))
		out = append(out, newBundle(nextID(), src, dst, genSpec, release))
	}
	return out, nil
}

func broadcastString(values []string, i int) string {
	if len(values) == 1 {
		return values[0]
	}
	return values[i%len(values)]
}

func broadcastFloat(values []float64, i int) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(values) == 1 {
		return values[0]
	}
	return values[i%len(values)]
}
