package bnb

import (
	"container/heap"
	"math"
)

// NodeQueue is a priority-ordered multiset of live search-tree nodes,
// private to one worker (§4.3, §5). It pops the minimum-score node first;
// score is computed once at insertion and is stable until Reprioritize is
// called explicitly.
type NodeQueue struct {
	h nodeHeap
	n int64 // insertion sequence, used as a stable tie-breaker
}

// NewNodeQueue returns an empty queue.
func NewNodeQueue() *NodeQueue {
	return &NodeQueue{}
}

// Push inserts n with the given score.
func (q *NodeQueue) Push(n *node, score float64) {
	heap.Push(&q.h, &scoredNode{node: n, score: score, seq: q.n})
	q.n++
}

// PopBest removes and returns the minimum-score node, or nil if empty.
func (q *NodeQueue) PopBest() *node {
	if q.h.Len() == 0 {
		return nil
	}
	return heap.Pop(&q.h).(*scoredNode).node
}

// Size reports the number of queued nodes.
func (q *NodeQueue) Size() int { return q.h.Len() }

// Reprioritize recomputes every entry's score via score and reheapifies
// (§4.3: invoked explicitly, e.g. after substantial pseudo-cost learning;
// never run automatically on a timer or a per-push basis).
func (q *NodeQueue) Reprioritize(score func(n *node) float64) {
	for _, e := range q.h {
		e.score = score(e.node)
	}
	heap.Init(&q.h)
}

// DrainWorstHalf removes and returns the worse-scoring half of the queue's
// entries, leaving the donor with its best-scoring half — the work-stealing
// split described in §5 ("the donor splits off its worst-priority half,
// minimizing donor-side bound degradation").
func (q *NodeQueue) DrainWorstHalf() []*node {
	total := q.h.Len()
	if total == 0 {
		return nil
	}
	keep := (total + 1) / 2
	give := total - keep

	all := make([]*scoredNode, total)
	for i := range all {
		all[i] = heap.Pop(&q.h).(*scoredNode)
	}
	// all is now sorted best-to-worst (heap pop order); the tail is worst.
	for _, e := range all[:keep] {
		heap.Push(&q.h, e)
	}
	out := make([]*node, give)
	for i, e := range all[keep:] {
		out[i] = e.node
	}
	return out
}

type scoredNode struct {
	node  *node
	score float64
	seq   int64
}

// nodeHeap implements container/heap.Interface, ordering by score ascending
// and breaking ties by insertion order (FIFO among equal scores).
type nodeHeap []*scoredNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score < h[j].score
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) {
	*h = append(*h, x.(*scoredNode))
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// nodeBound returns the best lower-bound estimate available for n: its own
// relaxation objective once solved, or (while still queued, unsolved) the
// parent's objective it inherited at creation — valid by the child-bound
// monotonicity invariant (§8 invariant 2).
func nodeBound(n *node) float64 {
	if n.primal != nil {
		return n.objective
	}
	return n.parentObjective
}

// score computes a node's pseudoObjective under the given priority rule
// (§4.3), evaluated once at insertion. alpha is the pseudo-cost blend
// coefficient; pc may be nil only when rule != PriorityPseudoCost.
func score(rule PriorityRule, n *node, alpha float64, pc *PseudoCosts, discrete []int, integerTol float64) float64 {
	switch rule {
	case PriorityDepthFirst:
		return -float64(n.depth)
	case PriorityPseudoCost:
		sum := 0.0
		if n.primal != nil {
			for _, i := range discrete {
				if i >= len(n.primal) {
					continue
				}
				frac := fractionalPart(n.primal[i])
				if frac <= integerTol || frac >= 1-integerTol {
					continue
				}
				downCost, _ := pc.Get(i, branchDown)
				upCost, _ := pc.Get(i, branchUp)
				down := downCost * frac
				up := upCost * (1 - frac)
				if down < up {
					sum += down
				} else {
					sum += up
				}
			}
		}
		return nodeBound(n) + alpha*sum
	case PriorityBestFirst, PriorityBestBound:
		fallthrough
	default:
		return nodeBound(n)
	}
}

// MinBound returns the smallest nodeBound among queued entries, or +Inf if
// the queue is empty — the "worker's best queued objective" of §4.6 step 3.
func (q *NodeQueue) MinBound() float64 {
	best := math.Inf(1)
	for _, e := range q.h {
		if b := nodeBound(e.node); b < best {
			best = b
		}
	}
	return best
}
