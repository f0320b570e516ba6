package bnb

import (
	"math"
	"sync"
	"sync/atomic"
)

// Status is the single logical record of a run's progress (§3 data model).
// objUpB and the incumbent are written by whichever worker discovers a
// better feasible solution; objLoB and description are written only by the
// coordinator (§5 "Shared state and who may mutate"). All fields are read
// through a lock, but readers tolerate transiently stale objUpB/objLoB
// since both only ever move in the direction that makes a stale read still
// conservative for fathoming.
type Status struct {
	mu            sync.RWMutex
	objLoB        float64
	objUpB        float64
	incumbent     []float64
	description   string
	nodesExplored int64 // atomic
}

func newStatus() *Status {
	return &Status{
		objLoB: math.Inf(-1),
		objUpB: math.Inf(1),
	}
}

// tryUpdateIncumbent atomically replaces the incumbent iff obj improves on
// the current objUpB (§4.5 step 4). Returns whether the replacement happened.
func (s *Status) tryUpdateIncumbent(obj float64, x []float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if obj >= s.objUpB {
		return false
	}
	s.objUpB = obj
	s.incumbent = append([]float64(nil), x...)
	return true
}

func (s *Status) setLoB(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v > s.objLoB {
		s.objLoB = v
	}
}

func (s *Status) setDescription(desc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.description == "" {
		s.description = desc
	}
}

func (s *Status) hasDescription() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.description != ""
}

func (s *Status) incrExplored(n int64) {
	atomic.AddInt64(&s.nodesExplored, n)
}

// ObjLoB returns the current global lower bound on the optimum.
func (s *Status) ObjLoB() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objLoB
}

// ObjUpB returns the current incumbent's objective (+Inf if none found yet).
func (s *Status) ObjUpB() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objUpB
}

// Description returns the run's terminal description, or "" if still running.
func (s *Status) Description() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.description
}

// NodesExplored returns the number of nodes fathomed or branched so far.
func (s *Status) NodesExplored() int64 {
	return atomic.LoadInt64(&s.nodesExplored)
}

// BestSolution returns a copy of the current incumbent, if any.
func (s *Status) BestSolution() ([]float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.incumbent == nil {
		return nil, false
	}
	return append([]float64(nil), s.incumbent...), true
}

// terminationDescription evaluates §4.6 step 4's termination predicates
// against the current bounds. Returns "" if no termination condition holds.
func terminationDescription(objLoB, objUpB float64, s *Settings, queuesEmpty bool) string {
	if !math.IsInf(objUpB, 1) {
		absGap := objUpB - objLoB
		relGap := math.Inf(1)
		if objUpB != 0 {
			relGap = absGap / math.Abs(objUpB)
		}
		if absGap < s.AbsoluteGapTolerance || relGap < s.RelativeGapTolerance {
			return "optimalSolutionFound"
		}
	}
	if objLoB >= s.ObjectiveCutoff {
		return "infeasible"
	}
	if queuesEmpty && math.IsInf(objUpB, 1) {
		return "infeasible"
	}
	return ""
}
