package bnb

import (
	"time"

	"gonum.org/v1/gonum/mat"
)

// solveQP is the reference-quality convex QP fallback described in
// SPEC_FULL.md §4.2.1 step 3: a box/linear-constraint-penalized projected
// gradient method with Armijo backtracking, seeded from the LP relaxation
// of the same node with Q dropped. It is adequate for this engine's own
// test suite but is explicitly not a production QP method — a production
// deployment installs an OSQP/QPALM/GUROBI-backed SubWorkspace instead.
// deadline/hasDeadline (from Solve's timeLimit) are polled once per
// iteration, unlike the LP path's single entry check, since this loop can
// run long enough for a mid-solve cutoff to matter.
func (w *gonumWorkspace) solveQP(primalTol float64, deadline time.Time, hasDeadline bool) relaxationResult {
	p := w.problem

	seed := w.solveLP(p.l, deadline, hasDeadline)
	if seed.status != StatusOptimal {
		return seed
	}

	x := append([]float64(nil), seed.primal...)
	const (
		defaultMaxIters = 500
		penaltyCoef     = 1e4
		armijoC         = 1e-4
		armijoShrink    = 0.5
		minStep         = 1e-12
	)
	maxIters := defaultMaxIters
	if w.iterationLimit > 0 {
		maxIters = w.iterationLimit
	}

	objGrad := func(x []float64) (obj float64, grad []float64) {
		qx := make([]float64, p.n)
		mat.NewVecDense(p.n, qx).MulVec(p.q, mat.NewVecDense(p.n, x))
		obj = 0
		grad = make([]float64, p.n)
		for i := 0; i < p.n; i++ {
			obj += 0.5*x[i]*qx[i] + p.l[i]*x[i]
			grad[i] = qx[i] + p.l[i]
		}
		obj += constraintPenalty(p, x, penaltyCoef, func(viol float64) float64 { return viol * viol })
		addConstraintPenaltyGrad(p, x, penaltyCoef, grad)
		return obj, grad
	}

	obj, grad := objGrad(x)
	timedOut := false
	converged := false
	iter := 0
	for ; iter < maxIters; iter++ {
		if hasDeadline && time.Now().After(deadline) {
			timedOut = true
			break
		}
		gradNorm2 := 0.0
		for _, g := range grad {
			gradNorm2 += g * g
		}
		if gradNorm2 < primalTol*primalTol {
			converged = true
			break
		}

		step := 1.0
		var next []float64
		var nextObj float64
		for step > minStep {
			next = projectBox(stepAndClamp(x, grad, step), w.varLoBs, w.varUpBs)
			nextObj, _ = objGrad(next)
			if nextObj <= obj-armijoC*step*gradNorm2 {
				break
			}
			step *= armijoShrink
		}
		if step <= minStep {
			converged = true // no further descent direction available
			break
		}
		x = next
		obj = nextObj
		_, grad = objGrad(x)
	}

	return relaxationResult{
		status:    classifyQPStatus(timedOut, converged, iter, maxIters),
		objective: obj,
		primal:    x,
		reliable:  false, // penalty method gives no certified dual bound
	}
}

// classifyQPStatus picks the SolveStatus for a projected-gradient run given
// why its loop stopped: a timed-out run reports StatusTimeLimit (checked
// first since a run can exhaust its deadline on the very iteration it would
// otherwise have converged on); a run that never set converged and ran out
// its iteration budget reports StatusIterationLimit (§3 iterationLimit);
// anything else is a genuine convergence.
func classifyQPStatus(timedOut, converged bool, iter, maxIters int) SolveStatus {
	switch {
	case timedOut:
		return StatusTimeLimit
	case !converged && iter >= maxIters:
		return StatusIterationLimit
	default:
		return StatusOptimal
	}
}

func stepAndClamp(x, grad []float64, step float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] - step*grad[i]
	}
	return out
}

func projectBox(x, loBs, upBs []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		v := x[i]
		if v < loBs[i] {
			v = loBs[i]
		}
		if v > upBs[i] {
			v = upBs[i]
		}
		out[i] = v
	}
	return out
}

// constraintPenalty adds a quadratic penalty for violation of the general
// linear constraints (box bounds are handled exactly via projection, not
// penalized).
func constraintPenalty(p *compiledProblem, x []float64, coef float64, f func(float64) float64) float64 {
	if p.a == nil {
		return 0
	}
	r, c := p.a.Dims()
	total := 0.0
	for i := 0; i < r; i++ {
		row := 0.0
		for j := 0; j < c; j++ {
			row += p.a.At(i, j) * x[j]
		}
		viol := 0.0
		if row < p.cnsLoBs[i] {
			viol = p.cnsLoBs[i] - row
		} else if row > p.cnsUpBs[i] {
			viol = row - p.cnsUpBs[i]
		}
		total += coef * f(viol)
	}
	return total
}

func addConstraintPenaltyGrad(p *compiledProblem, x []float64, coef float64, grad []float64) {
	if p.a == nil {
		return
	}
	r, c := p.a.Dims()
	for i := 0; i < r; i++ {
		row := 0.0
		for j := 0; j < c; j++ {
			row += p.a.At(i, j) * x[j]
		}
		viol := 0.0
		if row < p.cnsLoBs[i] {
			viol = row - p.cnsLoBs[i] // negative
		} else if row > p.cnsUpBs[i] {
			viol = row - p.cnsUpBs[i] // positive
		} else {
			continue
		}
		for j := 0; j < c; j++ {
			grad[j] += 2 * coef * viol * p.a.At(i, j)
		}
	}
}
