package bnb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPseudoCosts_ObserveRunningAverage(t *testing.T) {
	pc := NewPseudoCosts()
	pc.Observe(0, branchDown, 10, 12, 0.5) // delta = 4
	cost, count := pc.Get(0, branchDown)
	assert.Equal(t, 4.0, cost)
	assert.Equal(t, 1, count)

	pc.Observe(0, branchDown, 10, 11, 0.5) // delta = 2, average with 4 -> 3
	cost, count = pc.Get(0, branchDown)
	assert.Equal(t, 3.0, cost)
	assert.Equal(t, 2, count)
}

func TestPseudoCosts_ObserveIgnoresNonPositiveDistance(t *testing.T) {
	pc := NewPseudoCosts()
	pc.Observe(0, branchUp, 10, 20, 0)
	_, count := pc.Get(0, branchUp)
	assert.Equal(t, 0, count)
}

func TestPseudoCosts_InitUniformSeedsBothDirections(t *testing.T) {
	pc := NewPseudoCosts()
	pc.InitUniform([]int{2, 5}, 1e-4)

	cost, count := pc.Get(2, branchDown)
	assert.Equal(t, 1e-4, cost)
	assert.Equal(t, 1, count)
	cost, count = pc.Get(5, branchUp)
	assert.Equal(t, 1e-4, cost)
	assert.Equal(t, 1, count)
}

func TestPseudoCosts_Reliable(t *testing.T) {
	pc := NewPseudoCosts()
	for i := 0; i < 3; i++ {
		pc.Observe(1, branchDown, 0, 1, 1)
		pc.Observe(1, branchUp, 0, 1, 1)
	}
	assert.False(t, pc.Reliable(1, 4))
	pc.Observe(1, branchDown, 0, 1, 1)
	pc.Observe(1, branchUp, 0, 1, 1)
	assert.True(t, pc.Reliable(1, 4))
}

func TestPseudoCosts_ApplyMergesDelta(t *testing.T) {
	pc := NewPseudoCosts()
	pc.Apply(pseudoCostDelta{VarIndex: 3, Direction: branchUp, ParentObjective: 1, ChildObjective: 3, FractionalDistance: 0.5})
	cost, count := pc.Get(3, branchUp)
	assert.Equal(t, 4.0, cost)
	assert.Equal(t, 1, count)
}
