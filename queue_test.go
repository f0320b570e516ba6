package bnb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeQueue_PopBestReturnsMinimumScore(t *testing.T) {
	q := NewNodeQueue()
	a, b, c := &node{id: "a"}, &node{id: "b"}, &node{id: "c"}
	q.Push(a, 3)
	q.Push(b, 1)
	q.Push(c, 2)

	require.Equal(t, 3, q.Size())
	assert.Equal(t, b, q.PopBest())
	assert.Equal(t, c, q.PopBest())
	assert.Equal(t, a, q.PopBest())
	assert.Nil(t, q.PopBest())
}

func TestNodeQueue_TiesBrokenByInsertionOrder(t *testing.T) {
	q := NewNodeQueue()
	a, b := &node{id: "a"}, &node{id: "b"}
	q.Push(a, 1)
	q.Push(b, 1)
	assert.Equal(t, a, q.PopBest())
	assert.Equal(t, b, q.PopBest())
}

func TestNodeQueue_Reprioritize(t *testing.T) {
	q := NewNodeQueue()
	a, b := &node{id: "a", depth: 1}, &node{id: "b", depth: 5}
	q.Push(a, 1)
	q.Push(b, 2)

	q.Reprioritize(func(n *node) float64 { return -float64(n.depth) })
	assert.Equal(t, b, q.PopBest()) // depth 5 now scores -5, lower than -1
	assert.Equal(t, a, q.PopBest())
}

func TestNodeQueue_DrainWorstHalfKeepsBestScoring(t *testing.T) {
	q := NewNodeQueue()
	for i := 0; i < 4; i++ {
		q.Push(&node{id: string(rune('a' + i))}, float64(i))
	}
	given := q.DrainWorstHalf()
	assert.Len(t, given, 2)
	assert.Equal(t, 2, q.Size())
	assert.Equal(t, "a", q.PopBest().id)
	assert.Equal(t, "b", q.PopBest().id)
}

func TestNodeBound_UsesParentObjectiveWhileUnsolved(t *testing.T) {
	n := &node{parentObjective: 2.5}
	assert.Equal(t, 2.5, nodeBound(n))
	n.primal = []float64{1}
	n.objective = 9
	assert.Equal(t, 9.0, nodeBound(n))
}
