package bnb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsIntegerFeasible(t *testing.T) {
	p := &compiledProblem{discreteIdxAll: []int{0, 1}}
	assert.True(t, isIntegerFeasible(p, []float64{1.0, 2.0}, 1e-6))
	assert.False(t, isIntegerFeasible(p, []float64{1.4, 2.0}, 1e-6))
}

func TestIsIntegerFeasible_SOS1Violation(t *testing.T) {
	p := &compiledProblem{
		sos1Groups: map[int][]int{1: {0, 1}},
	}
	assert.False(t, isIntegerFeasible(p, []float64{1, 1}, 1e-6))
	assert.True(t, isIntegerFeasible(p, []float64{1, 0}, 1e-6))
}

func TestFractionalCandidates(t *testing.T) {
	p := &compiledProblem{discreteIdxAll: []int{0, 1, 2}}
	cands := fractionalCandidates(p, []float64{1.0, 2.5, 3.9}, 1e-6)
	assert.Len(t, cands, 2)
}

func TestSelectBranchVariable_MostFractional(t *testing.T) {
	cands := []fractionalCandidate{{index: 0, frac: 0.1}, {index: 1, frac: 0.5}}
	got := selectBranchVariable(BranchMostFractional, cands, nil)
	assert.Equal(t, 1, got)
}

func TestSelectBranchVariable_PseudoCostFallsBackWithoutObservations(t *testing.T) {
	pc := NewPseudoCosts()
	cands := []fractionalCandidate{{index: 0, frac: 0.1}, {index: 1, frac: 0.5}}
	got := selectBranchVariable(BranchPseudoCost, cands, pc)
	assert.Equal(t, 1, got) // no observations yet -> falls back to mostFractional
}

func TestSelectBranchVariable_PseudoCostUsesLearnedCosts(t *testing.T) {
	pc := NewPseudoCosts()
	pc.InitUniform([]int{0, 1}, 1.0)
	pc.Observe(1, branchDown, 0, 100, 0.5) // huge degradation -> variable 1 should dominate
	pc.Observe(1, branchUp, 0, 100, 0.5)

	cands := []fractionalCandidate{{index: 0, frac: 0.5}, {index: 1, frac: 0.5}}
	got := selectBranchVariable(BranchPseudoCost, cands, pc)
	assert.Equal(t, 1, got)
}

func TestFirstChildDirection_DepthFirstAlwaysDown(t *testing.T) {
	pc := NewPseudoCosts()
	got := firstChildDirection(PriorityDepthFirst, 0, 0.9, pc)
	assert.Equal(t, branchDown, got)
}

func TestFirstChildDirection_PrefersSmallerDegradation(t *testing.T) {
	pc := NewPseudoCosts()
	pc.InitUniform([]int{0}, 1.0)
	pc.Observe(0, branchDown, 0, 1, 1) // cheap down
	pc.Observe(0, branchUp, 0, 100, 1) // expensive up

	got := firstChildDirection(PriorityBestFirst, 0, 0.5, pc)
	assert.Equal(t, branchDown, got)
}
