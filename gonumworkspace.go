package bnb

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// gonumWorkspace is the in-module reference SubWorkspace (§4.2.1). It
// converts the node's two-sided constraint and variable bounds into the
// teacher's inequality/equality slack-variable form and solves with
// gonum's Simplex for pure LPs, falling back to a projected-gradient
// iteration when the objective carries a quadratic term. It is
// deliberately dependency-light and is not a substitute for a production
// QP backend (OSQP/QPALM/GUROBI) — see DESIGN.md.
type gonumWorkspace struct {
	problem *compiledProblem

	// current working bounds, overwritten by UpdateBounds.
	varLoBs, varUpBs []float64

	// iterationLimit caps the QP fallback's projected-gradient loop (§3's
	// iterationLimit setting, installed at Setup time since solve() has no
	// separate iterationLimit parameter of its own — see §4.2). <= 0 means
	// the fallback's own default cap applies.
	iterationLimit int
}

func newGonumWorkspace() *gonumWorkspace { return &gonumWorkspace{} }

func (w *gonumWorkspace) Setup(p *compiledProblem, s *Settings) error {
	if p == nil {
		return newSetupError("gonumWorkspace.Setup: nil problem")
	}
	w.problem = p
	w.varLoBs = append([]float64(nil), p.varLoBs...)
	w.varUpBs = append([]float64(nil), p.varUpBs...)
	if s != nil {
		w.iterationLimit = s.IterationLimit
	}
	return nil
}

func (w *gonumWorkspace) UpdateBounds(loBs, upBs []float64) error {
	if len(loBs) != w.problem.n || len(upBs) != w.problem.n {
		return newSetupError("gonumWorkspace.UpdateBounds: length mismatch")
	}
	copy(w.varLoBs, loBs)
	copy(w.varUpBs, upBs)
	return nil
}

func (w *gonumWorkspace) Close() error { return nil }

// boxToInequalities turns the two-sided variable bounds into the teacher's
// G x <= h form: x <= upBs becomes one row, -x <= -loBs the other; rows
// with an infinite bound are omitted (an unconstrained side contributes no
// row, matching the teacher's G/h being nil when there are no inequalities).
func boxToInequalities(loBs, upBs []float64) (g *mat.Dense, h []float64) {
	n := len(loBs)
	var rows [][]float64
	for i := 0; i < n; i++ {
		if !math.IsInf(upBs[i], 1) {
			row := make([]float64, n)
			row[i] = 1
			rows = append(rows, row)
			h = append(h, upBs[i])
		}
		if !math.IsInf(loBs[i], -1) {
			row := make([]float64, n)
			row[i] = -1
			rows = append(rows, row)
			h = append(h, -loBs[i])
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	data := make([]float64, 0, len(rows)*n)
	for _, r := range rows {
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), n, data), h
}

// constraintsToInequalities expands the two-sided linear constraint rows
// (cnsLoBs <= A x <= cnsUpBs) into the same G x <= h form.
func constraintsToInequalities(a *mat.Dense, loBs, upBs []float64) (g *mat.Dense, h []float64) {
	if a == nil {
		return nil, nil
	}
	r, c := a.Dims()
	var rows [][]float64
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		for j := 0; j < c; j++ {
			row[j] = a.At(i, j)
		}
		if !math.IsInf(upBs[i], 1) {
			rows = append(rows, row)
			h = append(h, upBs[i])
		}
		if !math.IsInf(loBs[i], -1) {
			neg := make([]float64, c)
			for j, v := range row {
				neg[j] = -v
			}
			rows = append(rows, neg)
			h = append(h, -loBs[i])
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	data := make([]float64, 0, len(rows)*c)
	for _, row := range rows {
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), c, data), h
}

// stackInequalities combines two G/h pairs, either of which may be nil,
// mirroring the teacher's combineInequalities.
func stackInequalities(g1 *mat.Dense, h1 []float64, g2 *mat.Dense, h2 []float64) (*mat.Dense, []float64) {
	if g1 == nil {
		return g2, h2
	}
	if g2 == nil {
		return g1, h1
	}
	r1, c := g1.Dims()
	r2, _ := g2.Dims()
	stacked := mat.NewDense(r1+r2, c, nil)
	stacked.Stack(g1, g2)
	return stacked, append(append([]float64(nil), h1...), h2...)
}

// convertToEqualities converts a G x <= h system (plus, optionally, an
// existing equality system A x = b) into an equality-only system using one
// slack variable per inequality row. Adapted from the teacher's
// subproblem.go (same name, same algorithm), generalized to accept a nil A.
func convertToEqualities(c []float64, a *mat.Dense, b []float64, g *mat.Dense, h []float64) (cNew []float64, aNew *mat.Dense, bNew []float64) {
	nVar := len(c)
	nCons := len(b)
	nIneq := len(h)
	nNewVar := nVar + nIneq
	nNewCons := nCons + nIneq

	cNew = make([]float64, nNewVar)
	copy(cNew, c)

	bNew = make([]float64, nNewCons)
	copy(bNew, b)
	copy(bNew[nCons:], h)

	aNew = mat.NewDense(nNewCons, nNewVar, nil)
	if a != nil {
		aNew.Slice(0, nCons, 0, nVar).(*mat.Dense).Copy(a)
	}
	aNew.Slice(nCons, nNewCons, 0, nVar).(*mat.Dense).Copy(g)
	bottomRight := aNew.Slice(nCons, nNewCons, nVar, nVar+nIneq).(*mat.Dense)
	for i := 0; i < nIneq; i++ {
		bottomRight.Set(i, i, 1)
	}
	return cNew, aNew, bNew
}

// deadlineFrom turns a per-call timeLimit (seconds, <= 0 meaning none) into
// an absolute time.Time the caller can poll against.
func deadlineFrom(timeLimit float64) (deadline time.Time, has bool) {
	if timeLimit <= 0 {
		return time.Time{}, false
	}
	return time.Now().Add(time.Duration(timeLimit * float64(time.Second))), true
}

// solveLP solves min c.x s.t. the node's box and linear-constraint bounds,
// via the slack-variable equality form, exactly as gonumWorkspace's LP path.
// gonum's Simplex call itself cannot be interrupted mid-solve, so the time
// budget is checked only at entry: a call that starts after its deadline has
// already passed reports StatusTimeLimit instead of solving.
func (w *gonumWorkspace) solveLP(c []float64, deadline time.Time, hasDeadline bool) relaxationResult {
	p := w.problem

	if hasDeadline && time.Now().After(deadline) {
		return relaxationResult{status: StatusTimeLimit}
	}

	boxG, boxH := boxToInequalities(w.varLoBs, w.varUpBs)
	consG, consH := constraintsToInequalities(p.a, p.cnsLoBs, p.cnsUpBs)
	g, h := stackInequalities(boxG, boxH, consG, consH)

	if g == nil {
		return relaxationResult{status: StatusUnbounded, objective: math.Inf(-1)}
	}

	cNew, aNew, bNew := convertToEqualities(c, nil, nil, g, h)

	z, x, err := lp.Simplex(cNew, aNew, bNew, 0, nil)
	if err != nil {
		switch err {
		case lp.ErrInfeasible:
			return relaxationResult{status: StatusInfeasible, objective: math.Inf(1)}
		case lp.ErrUnbounded:
			return relaxationResult{status: StatusUnbounded, objective: math.Inf(-1)}
		default:
			return relaxationResult{status: StatusError, err: wrapSubsolverError(err, "lp.Simplex")}
		}
	}
	if len(x) > p.n {
		x = x[:p.n]
	}
	return relaxationResult{
		status:    StatusOptimal,
		objective: z,
		primal:    x,
		reliable:  true,
	}
}

// Solve dispatches to the LP path when the objective has no quadratic term,
// and to the projected-gradient QP fallback otherwise (§4.2.1 step 3).
// timeLimit (seconds, <= 0 for none) bounds this single call (§4.2).
func (w *gonumWorkspace) Solve(primalTol, timeLimit float64) relaxationResult {
	p := w.problem
	deadline, hasDeadline := deadlineFrom(timeLimit)
	if p.q == nil {
		return w.solveLP(p.l, deadline, hasDeadline)
	}
	return w.solveQP(primalTol, deadline, hasDeadline)
}
