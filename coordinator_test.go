package bnb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCoordinator_MultiWorkerAgreesWithSingleWorker exercises the errgroup
// fan-out/fan-in and work-stealing path (§5) on a problem with enough
// branching to keep more than one worker briefly busy, checking that the
// multi-worker run still reaches the single-worker optimum.
func TestCoordinator_MultiWorkerAgreesWithSingleWorker(t *testing.T) {
	build := func() Problem {
		b := NewProblemBuilder()
		x := b.AddVariable("x").SetCoeff(2).UpperBound(6).IsInteger()
		y := b.AddVariable("y").SetCoeff(3).UpperBound(6).IsInteger()
		b.AddConstraint().AddExpression(1, x).AddExpression(1, y).GreaterThanOrEqualTo(4.5)
		p, err := b.Build()
		require.NoError(t, err)
		return p
	}

	single := DefaultSettings().WithNumProcesses(1)
	multi := DefaultSettings().WithNumProcesses(4)

	s1 := solveForTest(t, build(), single)
	s2 := solveForTest(t, build(), multi)

	assert.Equal(t, "optimalSolutionFound", s1.Description())
	assert.Equal(t, "optimalSolutionFound", s2.Description())
	assert.InDelta(t, s1.ObjUpB(), s2.ObjUpB(), 1e-4)
}

func TestCoordinator_RespectsContextTimeout(t *testing.T) {
	b := NewProblemBuilder()
	x := b.AddVariable("x").SetCoeff(-1).UpperBound(1000).IsInteger()
	_ = x
	p, err := b.Build()
	require.NoError(t, err)

	e, err := NewEngine(p, DefaultSettings())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	status, err := e.Solve(ctx)
	require.NoError(t, err)
	assert.Contains(t, []string{"optimalSolutionFound", "interrupted"}, status.Description())
}
