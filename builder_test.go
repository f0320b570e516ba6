package bnb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemBuilder_LinearMinimize(t *testing.T) {
	b := NewProblemBuilder()
	x := b.AddVariable("x").SetCoeff(-1).UpperBound(2.5)
	b.AddConstraint().AddExpression(1, x).SmallerThanOrEqualTo(2.5)

	p, err := b.Build()
	require.NoError(t, err)

	cp, err := compile(p)
	require.NoError(t, err)
	assert.Equal(t, 1, cp.n)
	assert.Equal(t, -1.0, cp.l[0])
}

func TestProblemBuilder_AddExpression_PanicsOnForeignVariable(t *testing.T) {
	b1 := NewProblemBuilder()
	b2 := NewProblemBuilder()
	v2 := b2.AddVariable("y")

	assert.Panics(t, func() {
		b1.AddConstraint().AddExpression(1, v2)
	})
}

func TestProblemBuilder_SOS1RequiresIntegerMembers(t *testing.T) {
	b := NewProblemBuilder()
	x := b.AddVariable("x")
	y := b.AddVariable("y")
	require.NoError(t, b.AddSOS1(x, y))

	_, err := b.Build()
	assert.Error(t, err)
}

func TestProblemBuilder_SOS1SingleMemberRejected(t *testing.T) {
	b := NewProblemBuilder()
	x := b.AddVariable("x").IsInteger()
	err := b.AddSOS1(x)
	assert.Error(t, err)
}

func TestProblemBuilder_QuadraticTermSymmetric(t *testing.T) {
	b := NewProblemBuilder()
	x := b.AddVariable("x")
	y := b.AddVariable("y")
	b.SetQuadraticTerm(x, y, 4)

	p, err := b.Build()
	require.NoError(t, err)
	cp, err := compile(p)
	require.NoError(t, err)
	assert.Equal(t, cp.q.At(0, 1), cp.q.At(1, 0))
}

func TestProblemBuilder_Maximize_NegatesObjective(t *testing.T) {
	b := NewProblemBuilder()
	x := b.AddVariable("x").SetCoeff(3).UpperBound(10)
	_ = x
	b.Maximize()

	p, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, -3.0, p.Objective().L()[0])
}
