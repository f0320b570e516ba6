package bnb

import "sync"

// pseudoCostEntry tracks the running average degradation and observation
// count for one (variable, direction) pair (§3 data model).
type pseudoCostEntry struct {
	cost  float64
	count int
}

// PseudoCosts learns, per discrete variable and branch direction, the
// empirical objective degradation caused by rounding a unit of fractional
// value (§4.4). Each worker keeps its own replica: it observes locally and
// sends every sample to the coordinator, which relays it to every other
// worker's replica (§5). The coordinator keeps no merged copy of its own
// after startup.
type PseudoCosts struct {
	mu      sync.RWMutex
	entries map[int][2]pseudoCostEntry // keyed by raw variable index
}

// NewPseudoCosts returns an empty learner. Variables accumulate entries
// lazily the first time they are observed or initialized; there is no
// up-front dimensioning requirement (unlike the wire-level |D|x2 layout
// used when a VariableSet hands its own pre-seeded pseudo-costs to the
// engine via PseudoCosts()).
func NewPseudoCosts() *PseudoCosts {
	return &PseudoCosts{entries: make(map[int][2]pseudoCostEntry)}
}

func dirIndex(d branchDirection) int {
	if d == branchUp {
		return 1
	}
	return 0
}

// Observe folds one (parent, child) degradation sample into variable i's
// running average for direction d, per the update rule in §4.4:
//
//	delta = (childObjective - parentObjective) / fractionalDistance
//	cost' = (cost*n + delta) / (n+1)
func (pc *PseudoCosts) Observe(i int, d branchDirection, parentObjective, childObjective, fractionalDistance float64) {
	if fractionalDistance <= 0 {
		return
	}
	delta := (childObjective - parentObjective) / fractionalDistance

	pc.mu.Lock()
	defer pc.mu.Unlock()
	pair := pc.entries[i]
	e := pair[dirIndex(d)]
	e.cost = (e.cost*float64(e.count) + delta) / float64(e.count+1)
	e.count++
	pair[dirIndex(d)] = e
	pc.entries[i] = pair
}

// Get returns the current (cost, observationCount) for variable i, direction d.
func (pc *PseudoCosts) Get(i int, d branchDirection) (cost float64, count int) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	e := pc.entries[i][dirIndex(d)]
	return e.cost, e.count
}

// InitUniform seeds every index in vars with a small positive constant in
// both directions — the `uniform` PseudoCostInit strategy (§4.4).
func (pc *PseudoCosts) InitUniform(vars []int, value float64) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	for _, i := range vars {
		pc.entries[i] = [2]pseudoCostEntry{{cost: value, count: 1}, {cost: value, count: 1}}
	}
}

// Reliable reports whether variable i has accumulated at least threshold
// observations in both directions. The search does not call it: under the
// `reliable` PseudoCostInit strategy the pseudoCost rule trusts a variable's
// learned costs from its first observation in each direction.
func (pc *PseudoCosts) Reliable(i int, threshold int) bool {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	pair := pc.entries[i]
	return pair[0].count >= threshold && pair[1].count >= threshold
}

// pseudoCostDelta is the payload of a PseudoCostUpdate protocol message
// (§9): one worker's freshly observed sample, broadcast via the coordinator.
type pseudoCostDelta struct {
	VarIndex           int
	Direction           branchDirection
	ParentObjective     float64
	ChildObjective      float64
	FractionalDistance  float64
}

// Apply merges a delta received from another worker into pc.
func (pc *PseudoCosts) Apply(d pseudoCostDelta) {
	pc.Observe(d.VarIndex, d.Direction, d.ParentObjective, d.ChildObjective, d.FractionalDistance)
}
