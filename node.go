package bnb

import (
	"math"

	"github.com/google/uuid"
)

// branchDirection identifies which side of a branch decision produced a
// child node (§4.1).
type branchDirection int

const (
	branchNone branchDirection = iota
	branchDown
	branchUp
)

// node is a search-tree node (§3 data model). Bounds are cumulative — a
// full-length copy of the problem's variable bounds tightened by every
// ancestor branch decision — rather than a delta, so a relaxation solve
// never needs to replay history (unlike the teacher's bnbConstraints
// accumulation in subproblem.go, which this expansion intentionally
// simplifies away per the spec's data model).
type node struct {
	id     string
	parent string

	branchLoBs []float64
	branchUpBs []float64

	depth int

	// objective is -Inf until solved, +Inf if proven infeasible.
	objective float64
	primal    []float64
	dual      []float64
	avgFrac   float64

	// reliable is false iff objective is only a heuristic score (warm
	// started from a stale/inconclusive dual basis), not a certified lower
	// bound (§4.2, §4.5).
	reliable bool

	// pseudoObjective is the score NodeQueue orders on; computed once at
	// insertion (§4.3).
	pseudoObjective float64

	// branch decision metadata, used to update PseudoCosts once this node
	// is solved (§4.4). branchVar is -1 for the root or for SOS1-branched
	// nodes (pseudo-costs are only tracked for fractional-variable
	// branching).
	branchVar       int
	branchDirection branchDirection
	parentObjective float64
	parentFrac      float64 // branch-side distance of primal[branchVar] in the parent: frac for down, 1-frac for up
}

func newRootNode(p *compiledProblem) *node {
	return &node{
		id:              uuid.NewString(),
		branchLoBs:      append([]float64(nil), p.varLoBs...),
		branchUpBs:      append([]float64(nil), p.varUpBs...),
		depth:           0,
		objective:       math.Inf(-1),
		reliable:        true,
		branchVar:       -1,
		parentObjective: math.Inf(-1),
	}
}

// boundsConsistent reports whether every branchLoBs[i] <= branchUpBs[i],
// i.e. whether the node's feasible region is non-empty on bound grounds
// alone (invariant 1, §8).
func (n *node) boundsConsistent() bool {
	for i := range n.branchLoBs {
		if n.branchLoBs[i] > n.branchUpBs[i] {
			return false
		}
	}
	return true
}

// branchOnVariable creates the "down" and "up" children of n by branching
// on discrete variable i with fractional primal value v (§4.1). A child
// whose bounds become inconsistent is pruned at creation and returned as
// nil instead of being handed back to the caller for enqueueing.
func (n *node) branchOnVariable(i int, v float64) (down, up *node) {
	floorV := math.Floor(v)
	ceilV := math.Ceil(v)
	frac := v - floorV

	down = n.child()
	down.branchUpBs[i] = floorV
	down.branchVar = i
	down.branchDirection = branchDown
	down.parentObjective = n.objective
	down.parentFrac = frac
	if !down.boundsConsistent() {
		down = nil
	}

	up = n.child()
	up.branchLoBs[i] = ceilV
	up.branchVar = i
	up.branchDirection = branchUp
	up.parentObjective = n.objective
	up.parentFrac = 1 - frac
	if !up.boundsConsistent() {
		up = nil
	}

	return down, up
}

// branchOnSOS1 creates the two children fixing one side of a violated SOS1
// group to zero each, partitioning by cumulative primal magnitude (§4.1).
func (n *node) branchOnSOS1(group []int, primal []float64) (side1, side2 *node) {
	type member struct {
		idx   int
		value float64
	}
	members := make([]member, len(group))
	for k, idx := range group {
		members[k] = member{idx: idx, value: math.Abs(primal[idx])}
	}

	total := 0.0
	for _, m := range members {
		total += m.value
	}

	// partition into a prefix whose cumulative magnitude crosses half the
	// group's total magnitude, and the remaining suffix.
	splitAt := len(members)
	running := 0.0
	half := total / 2
	for k, m := range members {
		running += m.value
		if running >= half {
			splitAt = k + 1
			break
		}
	}
	if splitAt == 0 {
		splitAt = 1
	}
	if splitAt == len(members) && len(members) > 1 {
		splitAt = len(members) - 1
	}

	side1 = n.child()
	for _, m := range members[:splitAt] {
		side1.branchLoBs[m.idx] = 0
		side1.branchUpBs[m.idx] = 0
	}
	if !side1.boundsConsistent() {
		side1 = nil
	}

	side2 = n.child()
	for _, m := range members[splitAt:] {
		side2.branchLoBs[m.idx] = 0
		side2.branchUpBs[m.idx] = 0
	}
	if !side2.boundsConsistent() {
		side2 = nil
	}

	return side1, side2
}

// child copies n's bounds into a fresh, unsolved node one depth deeper. The
// caller is expected to further tighten bounds on the returned node before
// it is solved.
func (n *node) child() *node {
	return &node{
		id:         uuid.NewString(),
		parent:     n.id,
		branchLoBs: append([]float64(nil), n.branchLoBs...),
		branchUpBs: append([]float64(nil), n.branchUpBs...),
		depth:      n.depth + 1,
		objective:  math.Inf(-1),
		reliable:   true,
		branchVar:  -1,

		parentObjective: n.objective,
	}
}
