package bnb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestGonumWorkspace_SolvesBoxOnlyLP(t *testing.T) {
	p := &compiledProblem{
		n:       2,
		l:       []float64{-1, -2},
		varLoBs: []float64{0, 0},
		varUpBs: []float64{4, 9},
	}
	w := newGonumWorkspace()
	require.NoError(t, w.Setup(p, &Settings{}))

	res := w.Solve(1e-7, 0)
	assert.Equal(t, StatusOptimal, res.status)
	assert.True(t, res.reliable)
	assert.InDelta(t, -22.0, res.objective, 1e-6)
}

func TestGonumWorkspace_DetectsInfeasibility(t *testing.T) {
	p := &compiledProblem{
		n:       1,
		l:       []float64{1},
		a:       mat.NewDense(1, 1, []float64{1}),
		cnsLoBs: []float64{10},
		cnsUpBs: []float64{10},
		varLoBs: []float64{0},
		varUpBs: []float64{1}, // x <= 1 conflicts with constraint x == 10
	}
	w := newGonumWorkspace()
	require.NoError(t, w.Setup(p, &Settings{}))

	res := w.Solve(1e-7, 0)
	assert.Equal(t, StatusInfeasible, res.status)
}

func TestGonumWorkspace_UpdateBoundsNarrowsFeasibleRegion(t *testing.T) {
	p := &compiledProblem{
		n:       1,
		l:       []float64{-1},
		varLoBs: []float64{0},
		varUpBs: []float64{10},
	}
	w := newGonumWorkspace()
	require.NoError(t, w.Setup(p, &Settings{}))

	res := w.Solve(1e-7, 0)
	assert.InDelta(t, -10, res.objective, 1e-6)

	require.NoError(t, w.UpdateBounds([]float64{0}, []float64{3}))
	res = w.Solve(1e-7, 0)
	assert.InDelta(t, -3, res.objective, 1e-6)
}

func TestGonumWorkspace_LPReportsTimeLimitWhenDeadlinePassed(t *testing.T) {
	p := &compiledProblem{
		n:       1,
		l:       []float64{-1},
		varLoBs: []float64{0},
		varUpBs: []float64{10},
	}
	w := newGonumWorkspace()
	require.NoError(t, w.Setup(p, &Settings{}))

	res := w.solveLP(p.l, time.Now().Add(-time.Second), true)
	assert.Equal(t, StatusTimeLimit, res.status)
}

func TestDeadlineFrom_NonPositiveMeansNoDeadline(t *testing.T) {
	_, has := deadlineFrom(0)
	assert.False(t, has)
	_, has = deadlineFrom(-1)
	assert.False(t, has)
	d, has := deadlineFrom(5)
	assert.True(t, has)
	assert.True(t, d.After(time.Now()))
}

func TestGonumWorkspace_SetupWiresIterationLimitFromSettings(t *testing.T) {
	p := &compiledProblem{n: 1, l: []float64{-1}, varLoBs: []float64{0}, varUpBs: []float64{1}}
	w := newGonumWorkspace()
	require.NoError(t, w.Setup(p, &Settings{IterationLimit: 7}))
	assert.Equal(t, 7, w.iterationLimit)
}

func TestClassifyQPStatus(t *testing.T) {
	assert.Equal(t, StatusTimeLimit, classifyQPStatus(true, false, 3, 10))
	assert.Equal(t, StatusTimeLimit, classifyQPStatus(true, true, 3, 10)) // timeout wins even if also converged
	assert.Equal(t, StatusIterationLimit, classifyQPStatus(false, false, 10, 10))
	assert.Equal(t, StatusOptimal, classifyQPStatus(false, true, 3, 10))
}

func TestGonumWorkspace_QPFallbackMinimizesQuadratic(t *testing.T) {
	q := mat.NewSymDense(1, []float64{2}) // objective = x^2
	p := &compiledProblem{
		n:       1,
		q:       q,
		l:       []float64{0},
		varLoBs: []float64{-3},
		varUpBs: []float64{3},
	}
	w := newGonumWorkspace()
	require.NoError(t, w.Setup(p, &Settings{}))

	res := w.Solve(1e-6, 0)
	assert.Equal(t, StatusOptimal, res.status)
	assert.False(t, res.reliable)
	assert.InDelta(t, 0.0, res.primal[0], 1e-2)
}
