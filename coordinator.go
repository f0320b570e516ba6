package bnb

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const inboxBufferSize = 64

// Coordinator owns the canonical Status and fans the configured number of
// workers out and back in with an errgroup (§5). It is the goroutine
// re-architecture of the source's OS-process pool: workers never share
// memory with each other directly, only via each other's inboxes and the
// jointly-visible Status.
type Coordinator struct {
	problem  *compiledProblem
	settings *Settings
	status   *Status
	newWS    func() SubWorkspace
}

// newCoordinator builds a Coordinator for a compiled problem. newWS
// constructs one fresh SubWorkspace per worker (§5: "each worker still owns
// its SubWorkspace exclusively").
func newCoordinator(p *compiledProblem, s *Settings, status *Status, newWS func() SubWorkspace) *Coordinator {
	return &Coordinator{problem: p, settings: s, status: status, newWS: newWS}
}

// Run drives the whole search to termination: it solves the root on a
// bootstrap workspace, seeds PseudoCosts, spins up s.NumProcesses workers,
// and aggregates their StatusUpdate/PseudoCostUpdate messages until every
// worker has exited or ctx is cancelled (§4.6 "Startup", §5).
func (c *Coordinator) Run(ctx context.Context) (*Status, error) {
	p, s := c.problem, c.settings

	root := newRootNode(p)
	bootstrapWS := c.newWS()
	if err := bootstrapWS.Setup(p, s); err != nil {
		return nil, err
	}
	canonicalPC := NewPseudoCosts()
	initPseudoCosts(canonicalPC, p, s)

	rootResult, err := branchAndSolve(p, s, bootstrapWS, canonicalPC, root, c.status.ObjUpB())
	bootstrapWS.Close()
	if err != nil {
		return nil, err
	}
	c.status.incrExplored(1)
	if rootResult.newIncumbent {
		c.status.tryUpdateIncumbent(rootResult.incumbentObj, rootResult.incumbentX)
	}
	c.status.setLoB(nodeBound(root))

	if len(rootResult.children) == 0 {
		desc := "infeasible"
		if rootResult.fathomed == fathomIntegerFeasible {
			desc = "optimalSolutionFound"
		}
		c.status.setDescription(desc)
		return c.status, nil
	}

	n := s.NumProcesses
	if n < 1 {
		n = 1
	}

	inboxes := make([]chan message, n)
	for i := range inboxes {
		inboxes[i] = make(chan message, inboxBufferSize)
	}
	coordInbox := make(chan message, inboxBufferSize*n)

	workers := make([]*worker, n)
	for i := 0; i < n; i++ {
		ws := c.newWS()
		if err := ws.Setup(p, s); err != nil {
			return nil, err
		}
		workers[i] = &worker{
			id:         i,
			ws:         ws,
			queue:      NewNodeQueue(),
			pc:         clonePseudoCosts(canonicalPC),
			inbox:      inboxes[i],
			peers:      inboxes,
			coordInbox: coordInbox,
		}
	}

	for i, child := range rootResult.children {
		target := workers[i%n]
		sc := score(s.PriorityRule, child, s.PseudoCostBlendCoef, target.pc, p.discreteIdxAll, s.IntegerTolerance)
		target.queue.Push(child, sc)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range workers {
		w := w
		g.Go(func() error {
			defer w.ws.Close()
			return w.runLoop(gctx, p, s, c.status)
		})
	}

	g.Go(func() error {
		return c.aggregate(gctx, coordInbox, inboxes, n)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !c.status.hasDescription() {
		if ctx.Err() != nil {
			c.status.setDescription("interrupted")
		} else {
			c.status.setDescription("optimalSolutionFound")
		}
	}
	return c.status, nil
}

// aggregate is the coordinator's own loop (§9 "Inter-worker coordination"):
// it is the sole writer of Status.objLoB, folding in each worker's
// self-reported local bound, relays PseudoCostUpdate deltas to every other
// worker, and broadcasts Terminate once a termination predicate fires.
func (c *Coordinator) aggregate(ctx context.Context, coordInbox chan message, inboxes []chan message, n int) error {
	localBounds := make([]float64, n)
	for i := range localBounds {
		localBounds[i] = c.status.ObjLoB()
	}
	queueSizes := make([]int, n)

	broadcastTerminate := func(desc string) {
		c.status.setDescription(desc)
		for _, inbox := range inboxes {
			select {
			case inbox <- message{kind: msgTerminate, description: desc}:
			default:
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-coordInbox:
			if !ok {
				return nil
			}
			switch m.kind {
			case msgStatusUpdate:
				localBounds[m.from] = m.localObjLoB
				queueSizes[m.from] = m.queueSize
				global := minOf(localBounds)
				c.status.setLoB(global)
			case msgPseudoCostUpdate:
				for i, inbox := range inboxes {
					if i == m.from {
						continue
					}
					select {
					case inbox <- m:
					default:
					}
				}
			}
		}

		allEmpty := true
		for _, qs := range queueSizes {
			if qs > 0 {
				allEmpty = false
				break
			}
		}
		if desc := terminationDescription(c.status.ObjLoB(), c.status.ObjUpB(), c.settings, allEmpty); desc != "" {
			broadcastTerminate(desc)
			return nil
		}
	}
}

func minOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

// initPseudoCosts seeds pc per s.PseudoCostInit (§4.4). Only `uniform` does
// anything here. The `strongBranching` and `reliable` strategies leave pc
// empty: no root strong-branching sweep is run, and the pseudoCost rule
// falls back to mostFractional for a variable until it has an observation
// in both directions. Strong-branching trial solves happen only when
// s.BranchRule is BranchStrongBranching, whatever s.PseudoCostInit says.
func initPseudoCosts(pc *PseudoCosts, p *compiledProblem, s *Settings) {
	if s.PseudoCostInit == PseudoCostInitUniform {
		pc.InitUniform(p.discreteIdxAll, 1e-4)
	}
}

// clonePseudoCosts gives each worker its own private replica seeded from
// the canonical root-derived costs (§4.6 "Startup": "broadcast to peers").
func clonePseudoCosts(src *PseudoCosts) *PseudoCosts {
	dst := NewPseudoCosts()
	src.mu.RLock()
	defer src.mu.RUnlock()
	for k, v := range src.entries {
		dst.entries[k] = v
	}
	return dst
}
