package bnb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestCompiledProblem() *compiledProblem {
	return &compiledProblem{
		n:       2,
		l:       []float64{1, 1},
		varLoBs: []float64{0, 0},
		varUpBs: []float64{5, 5},
	}
}

func TestNewRootNode_BoundsMatchProblem(t *testing.T) {
	p := newTestCompiledProblem()
	root := newRootNode(p)
	assert.Equal(t, p.varLoBs, root.branchLoBs)
	assert.Equal(t, p.varUpBs, root.branchUpBs)
	assert.True(t, root.boundsConsistent())
	assert.Equal(t, -1, root.branchVar)
}

func TestBranchOnVariable_FloorCeilSplit(t *testing.T) {
	p := newTestCompiledProblem()
	root := newRootNode(p)
	root.objective = 3.2

	down, up := root.branchOnVariable(0, 2.7)
	assert.NotNil(t, down)
	assert.NotNil(t, up)
	assert.Equal(t, 2.0, down.branchUpBs[0])
	assert.Equal(t, 3.0, up.branchLoBs[0])
	assert.Equal(t, branchDown, down.branchDirection)
	assert.Equal(t, branchUp, up.branchDirection)
	assert.Equal(t, 3.2, down.parentObjective)
	assert.InDelta(t, 0.7, down.parentFrac, 1e-9)
	assert.InDelta(t, 0.3, up.parentFrac, 1e-9)
}

func TestBranchOnVariable_PrunesInconsistentChild(t *testing.T) {
	p := newTestCompiledProblem()
	root := newRootNode(p)
	root.branchUpBs[0] = 2 // tighten so the "up" child (>=3) becomes infeasible

	down, up := root.branchOnVariable(0, 2.5)
	assert.NotNil(t, down)
	assert.Nil(t, up)
}

func TestBranchOnSOS1_FixesOneSideToZero(t *testing.T) {
	p := newTestCompiledProblem()
	p.varLoBs = []float64{-5, -5}
	root := newRootNode(p)

	side1, side2 := root.branchOnSOS1([]int{0, 1}, []float64{3, 1})
	assert.NotNil(t, side1)
	assert.NotNil(t, side2)

	zeroCount := func(n *node) int {
		c := 0
		for i, lo := range n.branchLoBs {
			if lo == 0 && n.branchUpBs[i] == 0 {
				c++
			}
		}
		return c
	}
	assert.Equal(t, 1, zeroCount(side1))
	assert.Equal(t, 1, zeroCount(side2))
	// the two sides must fix complementary members
	assert.NotEqual(t, side1.branchLoBs[0] == 0 && side1.branchUpBs[0] == 0,
		side2.branchLoBs[0] == 0 && side2.branchUpBs[0] == 0)
}

func TestChildInheritsObjectiveAsMinusInfUntilSolved(t *testing.T) {
	p := newTestCompiledProblem()
	root := newRootNode(p)
	down, _ := root.branchOnVariable(0, 1.5)
	assert.True(t, math.IsInf(down.objective, -1))
	assert.Nil(t, down.primal)
}
