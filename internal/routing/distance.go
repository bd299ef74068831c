package routing

import (
	"math"

	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/adjacency"
)

// distanceTable precomputes distToDst[i] = ||xyz(i) - xyz(dst)|| from the
// tick's already-evaluated adjacency Matrix, per spec §4.4.
func distanceTable(m *adjacency.Matrix, n, destIndex int) []float64 {
	dst := m.Position(destIndex)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		p := m.Position(i)
		dx, dy, dz := p[0]-dst[0], p[1]-dst[1], p[2]-dst[2]
		out[i] = math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return out
}

// greedyNeighbor selects, among holder's connected neighbours not
// already excluded, the one with the smallest distToDst, ties broken by
// lowest node index (spec §4.4, PRoPHET-like). ok is false if no
// qualifying neighbour exists.
func greedyNeighbor(m *adjacency.Matrix, holder int, dist []float64, exclude func(int) bool) (best int, ok bool) {
	bestDist := math.Inf(1)
	for _, n := range m.Neighbors(holder) {
		if exclude(n) {
			continue
		}
		if dist[n] >= dist[holder] {
			continue
		}
		if dist[n] < bestDist {
			bestDist = dist[n]
			best = n
			ok = true
		}
	}
	return best, ok
}
