// Package report serializes per-run outputs (spec §6 "Persisted
// outputs"): per-bundle outcome records and an aggregate Summary, using
// jsoniter for the human-readable report and msgp for a compact binary
// form, matching the two serialization paths the teacher's api package
// exercises for its own wire types.
package report

import (
	"bytes"
	"context"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"

	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BundleReport is one row of the per-bundle outcome table. EncodeMsg is
// hand-written in msgp.go rather than generated.
type BundleReport struct {
	ID          int     `json:"id" msg:"id"`
	Source      string  `json:"source" msg:"source"`
	Destination string  `json:"destination" msg:"destination"`
	SizeBytes   int     `json:"sizeBytes" msg:"sizeBytes"`
	Hops        int     `json:"hops" msg:"hops"`
	Outcome     string  `json:"outcome" msg:"outcome"`
	LatencySec  float64 `json:"latencySec" msg:"latencySec"`
}

// Summary is the run-level aggregate (spec §8 invariants 1, 2, 6, 7):
// delivered + expired + notDelivered == TotalBundles. Not-simulated
// bundles are counted under NotDelivered; Summary has no separate field
// for them.
type Summary struct {
	Mode             string  `json:"mode" msg:"mode"`
	TotalBundles     int     `json:"totalBundles" msg:"totalBundles"`
	Delivered        int     `json:"delivered" msg:"delivered"`
	Expired          int     `json:"expired" msg:"expired"`
	NotDelivered     int     `json:"notDelivered" msg:"notDelivered"`
	BufferDrops      int     `json:"bufferDrops" msg:"bufferDrops"`
	TTLDrops         int     `json:"ttlDrops" msg:"ttlDrops"`
	DupSuppressed    int     `json:"dupSuppressed" msg:"dupSuppressed"`
	AirBytesTotal    float64 `json:"airBytesTotal" msg:"airBytesTotal"`
	MeanLatencySec   float64 `json:"meanLatencySec" msg:"meanLatencySec"`
	MeanHops         float64 `json:"meanHops" msg:"meanHops"`
}

// BuildBundleReport classifies one bundle's terminal state into a
// BundleReport row. simulated reports whether the run reached this
// bundle's release time before stopping (spec's notSimulated outcome).
func BuildBundleReport(b *model.Bundle, simulated bool) BundleReport {
	var latency float64
	if b.Delivered {
		latency = b.DeliveredAt.Sub(b.ReleaseTime).Seconds()
	}
	return BundleReport{
		ID:          b.ID,
		Source:      b.Source,
		Destination: b.Destination,
		SizeBytes:   b.SizeBytes,
		Hops:        b.Hops,
		Outcome:     string(b.Outcome(simulated)),
		LatencySec:  latency,
	}
}

// BuildSummary aggregates a run's bundle reports into a Summary; mode
// is "A" or "B".
func BuildSummary(mode string, rows []BundleReport, bufferDrops, ttlDrops, dupSuppressed int, airBytesTotal float64) Summary {
	s := Summary{
		Mode:          mode,
		TotalBundles:  len(rows),
		BufferDrops:   bufferDrops,
		TTLDrops:      ttlDrops,
		DupSuppressed: dupSuppressed,
		AirBytesTotal: airBytesTotal,
	}
	var latencySum float64
	var hopsSum int
	for _, r := range rows {
		switch r.Outcome {
		case string(model.OutcomeDelivered):
			s.Delivered++
			latencySum += r.LatencySec
			hopsSum += r.Hops
		case string(model.OutcomeExpired):
			s.Expired++
		default:
			s.NotDelivered++
		}
	}
	if s.Delivered > 0 {
		s.MeanLatencySec = latencySum / float64(s.Delivered)
		s.MeanHops = float64(hopsSum) / float64(s.Delivered)
	}
	return s
}

// MarshalJSON renders v via jsoniter, matching the teacher's wire
// encoding for API payloads (cmn/cos uses the same ConfigCompat preset).
func MarshalJSON(v any) ([]byte, error) { return json.Marshal(v) }

// WriteArtifacts renders summary as both a JSON document and a msgpack
// document and writes each to its own io.Writer, running the two
// encodings concurrently: the two formats share no state, so there is
// nothing to gain from serializing them.
func WriteArtifacts(ctx context.Context, summary Summary, jsonOut, msgpOut io.Writer) error {
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		buf, err := MarshalJSON(summary)
		if err != nil {
			return err
		}
		_, err = jsonOut.Write(buf)
		return err
	})
	g.Go(func() error {
		buf, err := MarshalMsgpack(summary)
		if err != nil {
			return err
		}
		_, err = io.Copy(msgpOut, bytes.NewReader(buf))
		return err
	})
	return g.Wait()
}

// Now exists only so callers can stamp a report's generation time
// without importing time directly for a one-line need; it is never
// consulted by simulation logic (Idempotence-of-replay never depends
// on wall-clock time).
func Now() time.Time { return time.Now() }
