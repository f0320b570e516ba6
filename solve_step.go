package bnb

import (
	"math"
	"time"
)

// fathomReason names why a node was fathomed without producing children
// (§4.5 step 3). Coordinator.Run reads it to tell an integer-feasible root
// from an infeasible or cut-off one; it is not logged.
type fathomReason int

const (
	fathomNone fathomReason = iota
	fathomInfeasible
	fathomBound
	fathomCutoff
	fathomIntegerFeasible
)

// stepResult is the outcome of one Branch-and-Solve call: either a fathomed
// leaf (possibly a new incumbent) or up to two children to enqueue, plus
// enough branch metadata for the caller to defer a PseudoCosts.Observe call
// once each child has itself been solved (§4.4's "deferred" update).
type stepResult struct {
	fathomed     fathomReason
	newIncumbent bool
	incumbentObj float64
	incumbentX   []float64

	children []*node

	branchedOnSOS bool
}

// branchAndSolve runs the per-node step of §4.5 against node n, using
// workspace w (already Setup for the problem) and the incumbent objective
// currently known to the caller (objUpB, +Inf if none yet). pc is consulted
// for pseudo-cost-based branch-variable/first-child selection. The only
// mutation of pc here is the samples selectBranchVariableStrong records
// from its trial solves under BranchStrongBranching; the regular Observe
// calls happen once a child's own relaxation result is known, in runloop.go.
func branchAndSolve(p *compiledProblem, s *Settings, w SubWorkspace, pc *PseudoCosts, n *node, objUpB float64) (stepResult, error) {
	if err := w.UpdateBounds(n.branchLoBs, n.branchUpBs); err != nil {
		return stepResult{}, err
	}
	// s.TimeLimit is the one timeLimit knob §3 enumerates; it bounds both
	// the overall search (via Engine.Solve's context deadline) and, passed
	// through here, each individual relaxation call, so a single pathological
	// node can never silently outlast the budget the caller configured.
	res := w.Solve(s.PrimalTolerance, s.TimeLimit.Seconds())

	n.objective = res.objective
	n.primal = res.primal
	n.dual = res.dual
	n.reliable = res.reliable

	if res.status == StatusInfeasible {
		n.objective = math.Inf(1)
		return stepResult{fathomed: fathomInfeasible}, nil
	}
	if res.status != StatusOptimal && res.status != StatusIterationLimit && res.status != StatusTimeLimit {
		return stepResult{}, res.err
	}

	// fathom-by-bound only applies to certified (reliable) lower bounds; an
	// unreliable score still branches (§4.5 "Reliability").
	if n.reliable {
		if res.objective >= objUpB-s.AbsoluteGapTolerance {
			return stepResult{fathomed: fathomBound}, nil
		}
		if res.objective >= s.ObjectiveCutoff {
			return stepResult{fathomed: fathomCutoff}, nil
		}
	}

	violated := violatedSOS1Group(p, res.primal, s.IntegerTolerance)
	candidates := fractionalCandidates(p, res.primal, s.IntegerTolerance)

	if violated == nil && len(candidates) == 0 {
		improves := res.objective < objUpB
		return stepResult{
			fathomed:     fathomIntegerFeasible,
			newIncumbent: improves,
			incumbentObj: res.objective,
			incumbentX:   append([]float64(nil), res.primal...),
		}, nil
	}

	// SOS1 branching takes priority over fractional branching only when a
	// group is actually violated and settings ask for that priority (Open
	// Question (b): absent a violation, always fall through to fractional
	// branching rather than special-casing SOS1-only problems).
	if violated != nil && s.SOS1BranchingPriority {
		side1, side2 := n.branchOnSOS1(violated, res.primal)
		var children []*node
		if side1 != nil {
			children = append(children, side1)
		}
		if side2 != nil {
			children = append(children, side2)
		}
		return stepResult{children: children, branchedOnSOS: true}, nil
	}

	var branchVar int
	if s.BranchRule == BranchStrongBranching {
		branchVar = selectBranchVariableStrong(p, s, w, n, candidates, pc, res.primal)
	} else {
		branchVar = selectBranchVariable(s.BranchRule, candidates, pc)
	}
	if branchVar < 0 {
		// only a violated SOS1 group remains and priority was declined;
		// branch on it anyway rather than wrongly declaring feasibility.
		side1, side2 := n.branchOnSOS1(violated, res.primal)
		var children []*node
		if side1 != nil {
			children = append(children, side1)
		}
		if side2 != nil {
			children = append(children, side2)
		}
		return stepResult{children: children, branchedOnSOS: true}, nil
	}

	down, up := n.branchOnVariable(branchVar, res.primal[branchVar])
	var children []*node
	frac := fractionalPart(res.primal[branchVar])
	if firstChildDirection(s.PriorityRule, branchVar, frac, pc) == branchUp {
		down, up = up, down
	}
	if down != nil {
		children = append(children, down)
	}
	if up != nil {
		children = append(children, up)
	}

	return stepResult{children: children}, nil
}
