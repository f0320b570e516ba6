package bnb

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// worker bundles one goroutine's exclusively-owned state (§5): its
// SubWorkspace, its private NodeQueue, and its private PseudoCosts replica
// (updated locally on every solve and by relayed PseudoCostUpdate messages,
// never accessed by any other goroutine).
type worker struct {
	id    int
	ws    SubWorkspace
	queue *NodeQueue
	pc    *PseudoCosts

	inbox      chan message
	peers      []chan message // indexed by worker id; peers[id] is this worker's own inbox, never sent to
	coordInbox chan<- message
}

// runLoop implements §4.6: pop best, branch-and-solve, publish local bound,
// check termination, repeat; steals from a peer when its own queue empties,
// exits when no peer has work to give.
func (w *worker) runLoop(ctx context.Context, p *compiledProblem, s *Settings, status *Status) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if w.drainInbox(s, status) {
			return nil // received Terminate
		}
		if status.hasDescription() {
			return nil
		}

		n := w.queue.PopBest()
		if n == nil {
			if !w.stealWork(ctx, s) {
				return nil
			}
			continue
		}

		res, err := branchAndSolve(p, s, w.ws, w.pc, n, status.ObjUpB())
		if err != nil {
			if _, ok := err.(*SubsolverError); ok {
				if s.Verbose {
					log.Warn().Int("worker", w.id).Err(err).Msg("subsolver error, treating node as unreliable")
				}
				continue
			}
			return err
		}
		status.incrExplored(1)

		if n.branchVar >= 0 {
			w.pc.Observe(n.branchVar, n.branchDirection, n.parentObjective, n.objective, n.parentFrac)
			w.sendNonBlocking(w.coordInbox, message{
				kind: msgPseudoCostUpdate,
				from: w.id,
				delta: pseudoCostDelta{
					VarIndex:           n.branchVar,
					Direction:          n.branchDirection,
					ParentObjective:    n.parentObjective,
					ChildObjective:     n.objective,
					FractionalDistance: n.parentFrac,
				},
			})
		}

		if res.newIncumbent {
			status.tryUpdateIncumbent(res.incumbentObj, res.incumbentX)
		}

		for _, c := range res.children {
			if !c.boundsConsistent() {
				continue
			}
			sc := score(s.PriorityRule, c, s.PseudoCostBlendCoef, w.pc, p.discreteIdxAll, s.IntegerTolerance)
			w.queue.Push(c, sc)
		}

		localBound := minFloat(w.queue.MinBound(), n.objective)
		w.sendNonBlocking(w.coordInbox, message{
			kind:        msgStatusUpdate,
			from:        w.id,
			localObjLoB: localBound,
			queueSize:   w.queue.Size(),
		})
	}
}

// drainInbox processes every message currently waiting without blocking.
// Returns true iff a Terminate message was seen (caller must exit).
func (w *worker) drainInbox(s *Settings, status *Status) bool {
	for {
		select {
		case m := <-w.inbox:
			switch m.kind {
			case msgTerminate:
				status.setDescription(m.description)
				return true
			case msgNodeBatch:
				for _, n := range m.nodes {
					w.queue.Push(n, nodeBound(n))
				}
			case msgPseudoCostUpdate:
				w.pc.Apply(m.delta)
			case msgNodeSteal:
				if m.from >= 0 && m.from < len(w.peers) {
					w.replySteal(s, m)
				}
			}
		default:
			return false
		}
	}
}

// stealWork asks every peer for a batch of nodes and applies the first
// non-empty reply. Returns false if no peer had enough nodes to share,
// meaning this worker has genuinely run out of work.
func (w *worker) stealWork(ctx context.Context, s *Settings) bool {
	if len(w.peers) <= 1 {
		return false
	}
	correlationID := uuid.NewString()
	for id, peer := range w.peers {
		if id == w.id {
			continue
		}
		w.sendNonBlocking(peer, message{kind: msgNodeSteal, correlationID: correlationID, from: w.id})
	}

	replies := 0
	want := len(w.peers) - 1
	for replies < want {
		select {
		case <-ctx.Done():
			return false
		case m := <-w.inbox:
			switch m.kind {
			case msgNodeBatch:
				if m.correlationID == correlationID {
					replies++
					if len(m.nodes) > 0 {
						for _, n := range m.nodes {
							w.queue.Push(n, nodeBound(n))
						}
						return true
					}
				} else {
					// a batch pushed unsolicited (shouldn't happen in this
					// protocol, but don't drop live nodes) or stale replies
					// from an earlier steal round.
					for _, n := range m.nodes {
						w.queue.Push(n, nodeBound(n))
					}
				}
			case msgAck:
				if m.correlationID == correlationID {
					replies++
				}
			case msgPseudoCostUpdate:
				w.pc.Apply(m.delta)
			case msgNodeSteal:
				if m.from >= 0 && m.from < len(w.peers) {
					w.replySteal(s, m)
				}
			case msgTerminate:
				return false
			}
		}
	}
	return false
}

// handleSteal responds to an msgNodeSteal request on this worker's own
// inbox, invoked from the worker's own runLoop the next time it drains its
// inbox between nodes (§5: donor splits off its worst-priority half).
func (w *worker) handleSteal(s *Settings, m message) message {
	if w.queue.Size() < s.StealThreshold {
		return message{kind: msgAck, correlationID: m.correlationID, from: w.id}
	}
	given := w.queue.DrainWorstHalf()
	return message{kind: msgNodeBatch, correlationID: m.correlationID, from: w.id, nodes: given}
}

// replySteal answers a steal request and, if the requester's inbox is full,
// puts the already-dequeued nodes back on this worker's own queue instead
// of letting sendNonBlocking silently drop them — DrainWorstHalf has
// already physically removed them from w.queue, so a dropped send would
// otherwise lose live search-tree nodes for good (§8 completeness).
func (w *worker) replySteal(s *Settings, m message) {
	reply := w.handleSteal(s, m)
	if w.sendNonBlocking(w.peers[m.from], reply) {
		return
	}
	for _, n := range reply.nodes {
		w.queue.Push(n, nodeBound(n))
	}
}

func (w *worker) sendNonBlocking(ch chan<- message, m message) bool {
	select {
	case ch <- m:
		return true
	default:
		return false
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
