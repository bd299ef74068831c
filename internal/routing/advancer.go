package routing

import (
	"time"

	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/adjacency"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/model"
)

// Result reports what happened to a bundle during one tick's advance,
// for the ledger to record.
type Result struct {
	JustBorn     bool
	NewHolders   []int // node indices added this tick, in the order added
	JustDelivered bool
	JustExpired  bool
}

// Advance applies birth, routing, delivery, and TTL checks to bundle b
// for one tick, per spec §4.4. matrix must already reflect adjacency at
// time t; nodes resolves Source/Destination names to indices.
func Advance(b *model.Bundle, mode Mode, nodes *model.Registry, matrix *adjacency.Matrix, t time.Time) Result {
	var res Result

	srcNode, srcOK := nodes.ByName(b.Source)
	dstNode, dstOK := nodes.ByName(b.Destination)
	if !srcOK || !dstOK {
		return res // configuration error: caught by config validation, not here
	}

	if !b.Born {
		if t.Before(b.ReleaseTime) {
			return res // not yet born: no forwarding, no TTL check
		}
		b.Birth(srcNode.Index, t)
		res.JustBorn = true
	}

	if b.Finalized() {
		return res
	}

	// Snapshot holders as of tick start: "holders in their current
	// order" is evaluated once per tick, so a node reached this tick
	// does not itself forward again until the next tick.
	snapshot := b.HolderIndices()
	holderSet := make(map[int]bool, len(snapshot))
	for _, h := range snapshot {
		holderSet[h] = true
	}
	exclude := func(n int) bool { return holderSet[n] }

	switch {
	case mode == Epidemic || (mode == SprayAndWait && b.MaxCopies <= 0):
		for _, h := range snapshot {
			for _, n := range matrix.Neighbors(h) {
				if exclude(n) {
					continue
				}
				if b.AddHolder(n) {
					holderSet[n] = true
					res.NewHolders = append(res.NewHolders, n)
				}
			}
		}
	case mode == PRoPHET:
		dist := distanceTable(matrix, nodes.Len(), dstNode.Index)
		for _, h := range snapshot {
			n, ok := greedyNeighbor(matrix, h, dist, exclude)
			if !ok {
				continue
			}
			if b.AddHolder(n) {
				holderSet[n] = true
				res.NewHolders = append(res.NewHolders, n)
			}
		}
	case mode == SprayAndWait:
		dist := distanceTable(matrix, nodes.Len(), dstNode.Index)
		for _, h := range snapshot {
			if !b.CanSprayMore() {
				break
			}
			n, ok := greedyNeighbor(matrix, h, dist, exclude)
			if !ok {
				continue
			}
			if b.AddHolder(n) {
				holderSet[n] = true
				b.CopiesUsed++
				res.NewHolders = append(res.NewHolders, n)
			}
		}
	}

	if b.MaybeDeliver(dstNode.Index, t) {
		res.JustDelivered = true
	}
	if !res.JustDelivered && b.CheckTTL(t) {
		res.JustExpired = true
	}
	return res
}
