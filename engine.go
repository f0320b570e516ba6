package bnb

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

// Engine is the public entry point (§6.3): compile a Problem once, then
// drive the parallel search to termination via Solve.
type Engine struct {
	problem  *compiledProblem
	settings Settings
	coord    *Coordinator
	status   *Status
	done     bool
}

// NewEngine validates and compiles problem against settings, rejecting
// malformed input before any relaxation is attempted (§6.3, §8 boundary
// behaviours). The returned Engine's SubWorkspace backend is the in-module
// gonumWorkspace reference (§4.2.1); swapping in a production backend means
// constructing the Coordinator directly with a different newWS factory.
func NewEngine(problem Problem, settings Settings) (*Engine, error) {
	if err := settings.validate(); err != nil {
		return nil, err
	}
	p, err := compile(problem)
	if err != nil {
		return nil, err
	}
	status := newStatus()
	coord := newCoordinator(p, &settings, status, func() SubWorkspace { return newGonumWorkspace() })
	return &Engine{problem: p, settings: settings, coord: coord, status: status}, nil
}

// Solve runs the search to termination (§4.6), honoring ctx cancellation
// (§5 "Cancellation"). It may be called only once per Engine.
func (e *Engine) Solve(ctx context.Context) (*Status, error) {
	if e.done {
		return e.status, newSetupError("Solve called more than once on this Engine")
	}
	e.done = true

	if e.settings.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.settings.TimeLimit)
		defer cancel()
	}

	status, err := e.coord.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("search terminated with a fatal error")
		return status, err
	}
	e.status = status

	if status.Description() == "optimalSolutionFound" {
		if _, ok := status.BestSolution(); !ok {
			return status, ErrNoIntegerFeasibleSolution
		}
	}
	return status, nil
}

// Status returns the current (possibly still-running) Status snapshot.
func (e *Engine) Status() *Status { return e.status }

// PrintStatus writes a one-line human-readable summary of the current
// Status to w, in the teacher's PrintStatus style (ilp.go).
func (e *Engine) PrintStatus(w io.Writer) {
	s := e.status
	fmt.Fprintf(w, "nodesExplored=%d objLoB=%v objUpB=%v description=%q\n",
		s.NodesExplored(), s.ObjLoB(), s.ObjUpB(), s.Description())
}

// BestSolution returns the current incumbent, if any.
func (e *Engine) BestSolution() ([]float64, bool) { return e.status.BestSolution() }

// NodesExplored returns the number of nodes fathomed or branched so far.
func (e *Engine) NodesExplored() int64 { return e.status.NodesExplored() }

// ObjLoB returns the current global lower bound.
func (e *Engine) ObjLoB() float64 { return e.status.ObjLoB() }

// ObjUpB returns the current incumbent's objective (+Inf if none found).
func (e *Engine) ObjUpB() float64 { return e.status.ObjUpB() }

// SubmitIncumbent lets an external heuristic hand the engine a candidate
// solution (§1, §6.3), validated and folded in exactly like an internally
// discovered incumbent. x must be integer- and SOS1-feasible, satisfy the
// problem's variable bounds within integerTolerance, and satisfy its linear
// constraints within primalTolerance.
func (e *Engine) SubmitIncumbent(x []float64) error {
	if len(x) != e.problem.n {
		return newSetupError("SubmitIncumbent: dimension mismatch")
	}
	for i, v := range x {
		if v < e.problem.varLoBs[i]-e.settings.IntegerTolerance || v > e.problem.varUpBs[i]+e.settings.IntegerTolerance {
			return newSetupError("SubmitIncumbent: bound violation")
		}
	}
	if !isIntegerFeasible(e.problem, x, e.settings.IntegerTolerance) {
		return newSetupError("SubmitIncumbent: not integer/SOS1 feasible")
	}
	if !linearConstraintsSatisfied(e.problem, x, e.settings.PrimalTolerance) {
		return newSetupError("SubmitIncumbent: linear constraint violation")
	}
	obj := evalObjective(e.problem, x)
	e.status.tryUpdateIncumbent(obj, x)
	return nil
}

// linearConstraintsSatisfied checks cnsLoBs <= A x <= cnsUpBs within tol,
// the constraint half of §6.3's SubmitIncumbent contract (bounds and
// integer/SOS1 feasibility are checked separately by the caller).
func linearConstraintsSatisfied(p *compiledProblem, x []float64, tol float64) bool {
	if p.a == nil {
		return true
	}
	r, c := p.a.Dims()
	for i := 0; i < r; i++ {
		row := 0.0
		for j := 0; j < c; j++ {
			row += p.a.At(i, j) * x[j]
		}
		if row < p.cnsLoBs[i]-tol || row > p.cnsUpBs[i]+tol {
			return false
		}
	}
	return true
}

func evalObjective(p *compiledProblem, x []float64) float64 {
	obj := 0.0
	for i, c := range p.l {
		obj += c * x[i]
	}
	if p.q != nil {
		for i := 0; i < p.n; i++ {
			for j := 0; j < p.n; j++ {
				obj += 0.5 * x[i] * p.q.At(i, j) * x[j]
			}
		}
	}
	return obj
}
