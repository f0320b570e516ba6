package bnb

import (
	"math"
	"sort"
)

// fractionalPart returns v's distance above its floor, in [0, 1).
func fractionalPart(v float64) float64 {
	return v - math.Floor(v)
}

// isIntegerFeasible implements the integer/SOS1 feasibility check of §4.5
// step 4: every discrete variable within integerTol of an integer, and every
// SOS1 group with at most one non-zero member.
func isIntegerFeasible(p *compiledProblem, primal []float64, integerTol float64) bool {
	for _, i := range p.discreteIdxAll {
		f := fractionalPart(primal[i])
		if f > integerTol && f < 1-integerTol {
			return false
		}
	}
	return violatedSOS1Group(p, primal, integerTol) == nil
}

// violatedSOS1Group returns the first SOS1 group with more than one
// non-zero member (by absolute value, above tol), or nil if none is violated.
func violatedSOS1Group(p *compiledProblem, primal []float64, tol float64) []int {
	for _, members := range p.sos1Groups {
		nonzero := 0
		for _, i := range members {
			if math.Abs(primal[i]) > tol {
				nonzero++
			}
		}
		if nonzero > 1 {
			return members
		}
	}
	return nil
}

// fractionalCandidate is one discrete variable eligible for branching.
type fractionalCandidate struct {
	index int
	frac  float64
}

// fractionalCandidates returns every discrete variable whose primal value
// sits farther than integerTol from its nearest integer, grounded on the
// teacher's mostInfeasibleBranchPoint scan over integralityConstraints.
func fractionalCandidates(p *compiledProblem, primal []float64, integerTol float64) []fractionalCandidate {
	var out []fractionalCandidate
	for _, i := range p.discreteIdxAll {
		f := fractionalPart(primal[i])
		if f > integerTol && f < 1-integerTol {
			out = append(out, fractionalCandidate{index: i, frac: f})
		}
	}
	return out
}

// selectBranchVariable picks the branching variable among candidates per
// rule (§4.4). It implements mostFractional and pseudoCost directly;
// strongBranching requires trial relaxation solves and is implemented by
// selectBranchVariableStrong below, which branchAndSolve calls instead of
// this function when strong branching is requested (any other rule value
// reaching this function is treated as mostFractional).
func selectBranchVariable(rule BranchRuleKind, candidates []fractionalCandidate, pc *PseudoCosts) int {
	if len(candidates) == 0 {
		return -1
	}
	switch rule {
	case BranchPseudoCost:
		best := -1
		bestScore := -1.0
		for _, c := range candidates {
			downCost, downN := pc.Get(c.index, branchDown)
			upCost, upN := pc.Get(c.index, branchUp)
			if downN == 0 || upN == 0 {
				continue
			}
			s := math.Min(downCost*c.frac, upCost*(1-c.frac))
			if s > bestScore {
				bestScore = s
				best = c.index
			}
		}
		if best >= 0 {
			return best
		}
		fallthrough
	case BranchMostFractional:
		fallthrough
	default:
		best := candidates[0].index
		bestDist := math.Min(candidates[0].frac, 1-candidates[0].frac)
		for _, c := range candidates[1:] {
			d := math.Min(c.frac, 1-c.frac)
			if d > bestDist {
				bestDist = d
				best = c.index
			}
		}
		return best
	}
}

// selectBranchVariableStrong implements the strongBranching rule of §4.4:
// for each of the top strongBranchingCandidates fractional variables
// (ranked by mostFractional distance), actually solve both children's
// relaxations and keep the variable maximizing the smaller child's
// improvement over the parent. Seeds pc with the resulting samples. Falls
// back to the most fractional candidate (ranked[0]) if w.Solve never
// returns a usable result (e.g. an immediately infeasible child on both
// sides).
func selectBranchVariableStrong(p *compiledProblem, s *Settings, w SubWorkspace, n *node, candidates []fractionalCandidate, pc *PseudoCosts, primal []float64) int {
	if len(candidates) == 0 {
		return -1
	}
	ranked := append([]fractionalCandidate(nil), candidates...)
	sortByMostFractional(ranked)
	k := s.StrongBranchingCandidates
	if k <= 0 || k > len(ranked) {
		k = len(ranked)
	}

	best := ranked[0].index
	bestScore := math.Inf(-1)
	for _, c := range ranked[:k] {
		down, up := n.branchOnVariable(c.index, primal[c.index])
		downObj, upObj := math.Inf(1), math.Inf(1)
		if down != nil {
			if err := w.UpdateBounds(down.branchLoBs, down.branchUpBs); err == nil {
				r := w.Solve(s.PrimalTolerance, s.TimeLimit.Seconds())
				if r.status == StatusOptimal || r.status == StatusIterationLimit || r.status == StatusTimeLimit {
					downObj = r.objective
					pc.Observe(c.index, branchDown, n.objective, downObj, c.frac)
				}
			}
		}
		if up != nil {
			if err := w.UpdateBounds(up.branchLoBs, up.branchUpBs); err == nil {
				r := w.Solve(s.PrimalTolerance, s.TimeLimit.Seconds())
				if r.status == StatusOptimal || r.status == StatusIterationLimit || r.status == StatusTimeLimit {
					upObj = r.objective
					pc.Observe(c.index, branchUp, n.objective, upObj, 1-c.frac)
				}
			}
		}
		downImprove := downObj - n.objective
		upImprove := upObj - n.objective
		score := math.Min(downImprove, upImprove)
		if score > bestScore {
			bestScore = score
			best = c.index
		}
	}
	return best
}

func sortByMostFractional(c []fractionalCandidate) {
	sort.Slice(c, func(i, j int) bool {
		di := math.Min(c[i].frac, 1-c[i].frac)
		dj := math.Min(c[j].frac, 1-c[j].frac)
		return di > dj
	})
}

// firstChildDirection picks which of a branched variable's two children to
// explore first: the direction with the smaller expected pseudo-cost
// degradation (§4.4, "dive toward incumbents"), unless depthFirst asks for
// deterministic descent (down first).
func firstChildDirection(rule PriorityRule, i int, frac float64, pc *PseudoCosts) branchDirection {
	if rule == PriorityDepthFirst {
		return branchDown
	}
	downCost, downN := pc.Get(i, branchDown)
	upCost, upN := pc.Get(i, branchUp)
	if downN == 0 || upN == 0 {
		return branchDown
	}
	if downCost*frac <= upCost*(1-frac) {
		return branchDown
	}
	return branchUp
}
