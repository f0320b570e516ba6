package bnb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_TryUpdateIncumbentOnlyOnImprovement(t *testing.T) {
	s := newStatus()
	assert.True(t, s.tryUpdateIncumbent(5, []float64{1}))
	assert.False(t, s.tryUpdateIncumbent(5, []float64{2})) // not strictly better
	assert.True(t, s.tryUpdateIncumbent(3, []float64{3}))
	x, ok := s.BestSolution()
	assert.True(t, ok)
	assert.Equal(t, []float64{3}, x)
}

func TestStatus_SetLoBNeverDecreases(t *testing.T) {
	s := newStatus()
	s.setLoB(2)
	s.setLoB(1) // must not regress
	assert.Equal(t, 2.0, s.ObjLoB())
	s.setLoB(5)
	assert.Equal(t, 5.0, s.ObjLoB())
}

func TestTerminationDescription_OptimalOnTightGap(t *testing.T) {
	s := &Settings{AbsoluteGapTolerance: 1e-6, RelativeGapTolerance: 1e-4, ObjectiveCutoff: math.Inf(1)}
	desc := terminationDescription(4.999999, 5.0, s, false)
	assert.Equal(t, "optimalSolutionFound", desc)
}

func TestTerminationDescription_InfeasibleOnEmptyQueuesNoIncumbent(t *testing.T) {
	s := &Settings{ObjectiveCutoff: math.Inf(1)}
	desc := terminationDescription(math.Inf(-1), math.Inf(1), s, true)
	assert.Equal(t, "infeasible", desc)
}

func TestTerminationDescription_RunningWhenNeitherHolds(t *testing.T) {
	s := &Settings{AbsoluteGapTolerance: 1e-6, RelativeGapTolerance: 1e-4, ObjectiveCutoff: math.Inf(1)}
	desc := terminationDescription(0, 10, s, false)
	assert.Equal(t, "", desc)
}
