package bnb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestCompile_RejectsEmptyProblem(t *testing.T) {
	b := NewProblemBuilder()
	_, err := b.Build()
	assert.Error(t, err)
}

func TestCompile_RejectsInconsistentBounds(t *testing.T) {
	b := NewProblemBuilder()
	b.AddVariable("x").LowerBound(5).UpperBound(1)
	p, err := b.Build()
	require.NoError(t, err)

	_, err = compile(p)
	assert.Error(t, err)
}

func TestCompile_RejectsNonPSDQuadratic(t *testing.T) {
	b := NewProblemBuilder()
	x := b.AddVariable("x").UpperBound(10)
	y := b.AddVariable("y").UpperBound(10)
	b.SetQuadraticTerm(x, x, -2)
	b.SetQuadraticTerm(y, y, -2)

	p, err := b.Build()
	require.NoError(t, err)

	_, err = compile(p)
	assert.Error(t, err)
}

func TestCompile_AcceptsPSDQuadratic(t *testing.T) {
	b := NewProblemBuilder()
	x := b.AddVariable("x").UpperBound(10)
	b.SetQuadraticTerm(x, x, 2) // x^2

	p, err := b.Build()
	require.NoError(t, err)

	cp, err := compile(p)
	require.NoError(t, err)
	assert.NotNil(t, cp.q)
}

func TestCheckPSD_SingularButPSDAccepted(t *testing.T) {
	// the zero matrix is PSD (and singular); checkPSD's jitter must accept it.
	q := mat.NewSymDense(2, []float64{0, 0, 0, 0})
	assert.NoError(t, checkPSD(q))
}

func TestCheckPSD_RejectsIndefinite(t *testing.T) {
	q := mat.NewSymDense(2, []float64{0, 1, 1, 0}) // indefinite
	assert.Error(t, checkPSD(q))
}

func TestCompile_RejectsMismatchedSOS1GroupLength(t *testing.T) {
	vs := newDenseVariableSet([]float64{0, 0}, []float64{1, 1}, []int{0, 1}, []int{1})
	p := &denseProblem{
		obj:  &linearObjective{l: []float64{1, 1}},
		cons: &nullConstraintSet{},
		vars: vs,
	}
	_, err := compile(p)
	assert.Error(t, err)
}

func TestCompile_DiscreteIndexOutOfRangeRejected(t *testing.T) {
	vs := newDenseVariableSet([]float64{0}, []float64{1}, []int{5}, nil)
	p := &denseProblem{
		obj:  &linearObjective{l: []float64{1}},
		cons: &nullConstraintSet{},
		vars: vs,
	}
	_, err := compile(p)
	assert.Error(t, err)
}

func TestCompile_NaNBoundRejected(t *testing.T) {
	vs := newDenseVariableSet([]float64{math.NaN()}, []float64{1}, nil, nil)
	p := &denseProblem{
		obj:  &linearObjective{l: []float64{1}},
		cons: &nullConstraintSet{},
		vars: vs,
	}
	_, err := compile(p)
	assert.Error(t, err)
}
