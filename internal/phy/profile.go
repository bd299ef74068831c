// Package phy holds the physical-layer profile contract this engine
// consumes (spec §4.3): a flat per-profile range, data rate, and
// handshake constant. Realistic radio/frame-loss modelling is explicitly
// out of scope; BitErrorRate is recorded but never simulated.
package phy

// Profile is a named PHY configuration selected by the `phyMode` config
// option.
type Profile struct {
	Name                     string
	DataRateBitsPerSecond    float64
	HandshakeOverheadSeconds float64
	MaxRangeKm               float64
	BitErrorRate             float64
}

// Registry is a closed set of named profiles, keyed by `phyMode`.
type Registry struct {
	profiles map[string]Profile
	fallback string
}

func NewRegistry() *Registry {
	return &Registry{profiles: make(map[string]Profile)}
}

func (r *Registry) Register(p Profile) {
	r.profiles[p.Name] = p
	if r.fallback == "" {
		r.fallback = p.Name
	}
}

// Get resolves a phyMode selector; unknown selectors fall back to the
// first profile registered, matching the spec's "unknown -> fallback"
// treatment used elsewhere for the routing selector.
func (r *Registry) Get(name string) Profile {
	if p, ok := r.profiles[name]; ok {
		return p
	}
	return r.profiles[r.fallback]
}

// DefaultRegistry returns a small built-in set of representative
// profiles (UHF proximity link, S-band, Ka-band) so a caller can run
// without constructing one from scratch.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Profile{Name: "UHF", DataRateBitsPerSecond: 9_600, HandshakeOverheadSeconds: 2.0, MaxRangeKm: 2_500, BitErrorRate: 1e-5})
	r.Register(Profile{Name: "S-band", DataRateBitsPerSecond: 2_000_000, HandshakeOverheadSeconds: 0.5, MaxRangeKm: 4_000, BitErrorRate: 1e-7})
	r.Register(Profile{Name: "Ka-band", DataRateBitsPerSecond: 50_000_000, HandshakeOverheadSeconds: 0.2, MaxRangeKm: 1_500, BitErrorRate: 1e-8})
	return r
}
