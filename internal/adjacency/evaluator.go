// Package adjacency implements Mode A's line-of-sight and PHY-range
// adjacency test (spec §4.2): two nodes are connected iff an unobstructed
// straight segment between them exists and their separation is within
// the PHY profile's max range. There is no teacher precedent for orbital
// geometry in the retrieval pack; this package is grounded directly on
// the spec's own closed-form LOS derivation rather than an example file
// (see DESIGN.md).
package adjacency

import (
	"math"
	"time"

	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/model"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/oracle"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/phy"
)

// DefaultLOSRadiusKm is R_LOS, the spherical-Earth radius used for the
// line-of-sight obstruction test.
const DefaultLOSRadiusKm = 6350.0

type vec3 struct{ x, y, z float64 }

func sub(a, b vec3) vec3      { return vec3{a.x - b.x, a.y - b.y, a.z - b.z} }
func dot(a, b vec3) float64   { return a.x*b.x + a.y*b.y + a.z*b.z }
func norm(a vec3) float64     { return math.Sqrt(dot(a, a)) }

// LineOfSight reports whether the straight segment between p1 and p2
// clears a spherical Earth of radius losRadiusKm, per spec §4.2 step 1:
// solve (a,b,c) = (d.d, 2 r1.d, r1.r1 - R^2), discriminant Δ = b^2-4ac.
// If Δ<=0 LOS holds; otherwise LOS is blocked iff either root of the
// quadratic lies in [0,1].
func LineOfSight(p1, p2 [3]float64, losRadiusKm float64) bool {
	r1 := vec3{p1[0], p1[1], p1[2]}
	r2 := vec3{p2[0], p2[1], p2[2]}
	d := sub(r2, r1)

	a := dot(d, d)
	b := 2 * dot(r1, d)
	c := dot(r1, r1) - losRadiusKm*losRadiusKm

	delta := b*b - 4*a*c
	if delta <= 0 {
		return true
	}
	if a == 0 {
		return true
	}
	sqrtDelta := math.Sqrt(delta)
	s1 := (-b - sqrtDelta) / (2 * a)
	s2 := (-b + sqrtDelta) / (2 * a)
	blocked := (s1 >= 0 && s1 <= 1) || (s2 >= 0 && s2 <= 1)
	return !blocked
}

// InRange reports whether p1 and p2 are within maxRangeKm of each other.
func InRange(p1, p2 [3]float64, maxRangeKm float64) bool {
	d := sub(vec3{p2[0], p2[1], p2[2]}, vec3{p1[0], p1[1], p1[2]})
	return norm(d) <= maxRangeKm
}

// Matrix is a symmetric connectivity relation over node indices,
// computed fresh every tick.
type Matrix struct {
	n         int
	links     map[[2]int]bool
	positions [][3]float64
}

func newMatrix(n int) *Matrix { return &Matrix{n: n, links: make(map[[2]int]bool)} }

// Position returns the position used to compute this tick's adjacency
// for node index i, so routing can reuse it instead of re-querying the
// oracle (the oracle is pure for a given t, but re-querying it per
// routing mode would double the number of calls for no benefit).
func (m *Matrix) Position(i int) [3]float64 { return m.positions[i] }

func key(i, j int) [2]int {
	if i > j {
		i, j = j, i
	}
	return [2]int{i, j}
}

func (m *Matrix) set(i, j int) { m.links[key(i, j)] = true }

// Connected reports whether i and j are adjacent at the tick this
// Matrix was computed for.
func (m *Matrix) Connected(i, j int) bool {
	if i == j {
		return false
	}
	return m.links[key(i, j)]
}

// Neighbors returns the indices connected to i, in ascending order.
func (m *Matrix) Neighbors(i int) []int {
	out := make([]int, 0, m.n)
	for j := 0; j < m.n; j++ {
		if m.Connected(i, j) {
			out = append(out, j)
		}
	}
	return out
}

// Evaluator computes the adjacency Matrix for a tick, given the shared
// position oracle and PHY profile.
type Evaluator struct {
	Oracle      oracle.Oracle
	Profile     phy.Profile
	LOSRadiusKm float64
}

func NewEvaluator(o oracle.Oracle, p phy.Profile) *Evaluator {
	return &Evaluator{Oracle: o, Profile: p, LOSRadiusKm: DefaultLOSRadiusKm}
}

// Evaluate computes connected[i,j] for every unordered pair in nodes at
// time t (spec §4.2: LOS test and PHY range test both must pass).
func (e *Evaluator) Evaluate(nodes []*model.Node, t time.Time) (*Matrix, error) {
	n := len(nodes)
	positions := make([][3]float64, n)
	for i, nd := range nodes {
		x, y, z, err := e.Oracle.XYZKm(nd.Name, t)
		if err != nil {
			return nil, err
		}
		positions[i] = [3]float64{x, y, z}
	}

	m := newMatrix(n)
	m.positions = positions
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !InRange(positions[i], positions[j], e.Profile.MaxRangeKm) {
				continue
			}
			if !LineOfSight(positions[i], positions[j], e.LOSRadiusKm) {
				continue
			}
			m.set(i, j)
		}
	}
	return m, nil
}
