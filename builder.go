package bnb

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ProblemBuilder is the concrete, in-module Problem implementation promised
// in SPEC_FULL.md §6.1.1. Its fluent chain (AddVariable/SetCoeff/IsInteger/
// UpperBound/LowerBound, AddConstraint/AddExpression) is adapted directly
// from the teacher's api.go, generalized to a quadratic objective term,
// two-sided constraint bounds, and SOS1 group declaration.
type ProblemBuilder struct {
	maximize bool

	variables   []*Variable
	constraints []*Constraint

	// quadraticTerms accumulates symmetric entries of Q keyed by the
	// unordered pair of variable pointers resolved to indices at Build time.
	quadraticTerms map[quadKey]float64

	sos1Groups    map[*Variable]int
	nextSOS1Group int
}

type quadKey struct{ i, j *Variable }

// Variable is a decision variable of a ProblemBuilder problem.
type Variable struct {
	name        string
	coefficient float64
	integer     bool
	upper       float64
	lower       float64
}

// expression is a coefficient*variable term used to build up a Constraint's
// left-hand side, same shape as the teacher's private expression type.
type expression struct {
	coef     float64
	variable *Variable
}

// Constraint is a linear constraint of a ProblemBuilder problem, with
// two-sided bounds loBs <= expr <= upBs (the teacher only had EqualTo /
// SmallerThanOrEqualTo; this generalizes to the expanded data model's
// two-sided cnsLoBs/cnsUpBs).
type Constraint struct {
	expressions []expression
	lo, up      float64
	builder     *ProblemBuilder
}

// NewProblemBuilder starts a new problem under construction. Minimizes by
// default, matching the teacher's NewProblem().
func NewProblemBuilder() *ProblemBuilder {
	return &ProblemBuilder{
		quadraticTerms: make(map[quadKey]float64),
		sos1Groups:     make(map[*Variable]int),
	}
}

// AddVariable adds a variable and returns a reference to it. Defaults to
// continuous, objective coefficient 0, bounds [0, +Inf) — identical
// defaults to the teacher's AddVariable.
func (b *ProblemBuilder) AddVariable(name string) *Variable {
	v := &Variable{
		name:  name,
		upper: math.Inf(1),
		lower: 0,
	}
	b.variables = append(b.variables, v)
	return v
}

// SetCoeff sets the variable's coefficient in the linear part of the
// objective.
func (v *Variable) SetCoeff(coef float64) *Variable {
	v.coefficient = coef
	return v
}

// IsInteger marks the variable as integer-constrained.
func (v *Variable) IsInteger() *Variable {
	v.integer = true
	return v
}

// UpperBound sets the inclusive upper bound.
func (v *Variable) UpperBound(bound float64) *Variable {
	v.upper = bound
	return v
}

// LowerBound sets the inclusive lower bound.
func (v *Variable) LowerBound(bound float64) *Variable {
	v.lower = bound
	return v
}

// SetQuadraticTerm adds coef to the (vi, vj) entry of the objective's Q
// matrix, and symmetrically to (vj, vi), so that repeated calls accumulate
// rather than overwrite. The objective contributes (1/2) x^T Q x, so a pure
// x_i^2 term with coefficient c is added via SetQuadraticTerm(vi, vi, 2*c).
func (b *ProblemBuilder) SetQuadraticTerm(vi, vj *Variable, coef float64) *ProblemBuilder {
	key := quadKey{vi, vj}
	if vi != vj {
		// canonicalize unordered pairs so (vi,vj) and (vj,vi) accumulate
		// into the same entry regardless of call order.
		if laterVar(vi, vj, b.variables) {
			key = quadKey{vj, vi}
		}
	}
	b.quadraticTerms[key] += coef
	return b
}

func laterVar(a, b *Variable, order []*Variable) bool {
	ia, ib := -1, -1
	for k, v := range order {
		if v == a {
			ia = k
		}
		if v == b {
			ib = k
		}
	}
	return ia > ib
}

// AddSOS1 declares that at most one of vars may be non-zero at a feasible
// solution. Every member must already be a variable of b, and must be
// marked integer (SOS1 branching fixes bounds to zero, which only makes
// sense alongside integrality in this engine). len(vars) must be >= 2.
func (b *ProblemBuilder) AddSOS1(vars ...*Variable) error {
	if len(vars) < 2 {
		return newSetupError("SOS1 group must contain at least two members")
	}
	for _, v := range vars {
		if b.getVariableIndex(v) < 0 {
			return newSetupError("AddSOS1: variable not part of this problem")
		}
	}
	b.nextSOS1Group++
	g := b.nextSOS1Group
	for _, v := range vars {
		b.sos1Groups[v] = g
	}
	return nil
}

// AddConstraint starts a new constraint, unbounded until EqualTo /
// SmallerThanOrEqualTo / GreaterThanOrEqualTo / Between is called.
func (b *ProblemBuilder) AddConstraint() *Constraint {
	c := &Constraint{
		builder: b,
		lo:      math.Inf(-1),
		up:      math.Inf(1),
	}
	b.constraints = append(b.constraints, c)
	return c
}

// EqualTo constrains the expression to equal val.
func (c *Constraint) EqualTo(val float64) *Constraint {
	c.lo, c.up = val, val
	return c
}

// SmallerThanOrEqualTo constrains the expression to be <= val.
func (c *Constraint) SmallerThanOrEqualTo(val float64) *Constraint {
	c.up = val
	return c
}

// GreaterThanOrEqualTo constrains the expression to be >= val.
func (c *Constraint) GreaterThanOrEqualTo(val float64) *Constraint {
	c.lo = val
	return c
}

// Between constrains the expression to lo <= expr <= up.
func (c *Constraint) Between(lo, up float64) *Constraint {
	c.lo, c.up = lo, up
	return c
}

// AddExpression adds coef*v to the constraint's left-hand side. Panics if v
// was not declared on the same builder, exactly like the teacher's
// AddExpression (the teacher treats this as a programmer error, not a
// runtime condition to recover from).
func (c *Constraint) AddExpression(coef float64, v *Variable) *Constraint {
	if c.builder.getVariableIndex(v) < 0 {
		panic("bnb: variable not declared on this problem's builder")
	}
	c.expressions = append(c.expressions, expression{coef: coef, variable: v})
	return c
}

// Maximize switches the builder to maximization; Build negates the linear
// and quadratic objective coefficients accordingly, same approach as the
// teacher's toSolveable.
func (b *ProblemBuilder) Maximize() { b.maximize = true }

// Minimize switches the builder to minimization (the default).
func (b *ProblemBuilder) Minimize() { b.maximize = false }

func (b *ProblemBuilder) getVariableIndex(v *Variable) int {
	for i, va := range b.variables {
		if va == v {
			return i
		}
	}
	return -1
}

// Build compiles the builder's declarations into a Problem, ready to be
// handed to NewEngine.
func (b *ProblemBuilder) Build() (Problem, error) {
	n := len(b.variables)
	if n == 0 {
		return nil, newSetupError("problem has no variables")
	}

	sign := 1.0
	if b.maximize {
		sign = -1.0
	}

	l := make([]float64, n)
	loBs := make([]float64, n)
	upBs := make([]float64, n)
	var discrete []int
	for i, v := range b.variables {
		l[i] = sign * v.coefficient
		loBs[i] = v.lower
		upBs[i] = v.upper
		if v.integer {
			discrete = append(discrete, i)
		}
	}

	var sos1 []int
	if len(b.sos1Groups) > 0 {
		sos1 = make([]int, len(discrete))
		for k, i := range discrete {
			sos1[k] = b.sos1Groups[b.variables[i]]
		}
	}
	for v, g := range b.sos1Groups {
		if !v.integer {
			return nil, newSetupError("SOS1 member must be an integer variable")
		}
		_ = g
	}

	var obj ObjectiveFunction = &linearObjective{l: l}
	if len(b.quadraticTerms) > 0 {
		q := mat.NewSymDense(n, nil)
		for key, coef := range b.quadraticTerms {
			i := b.getVariableIndex(key.i)
			j := b.getVariableIndex(key.j)
			scaled := sign * coef
			if i == j {
				q.SetSym(i, j, q.At(i, j)+scaled)
			} else {
				q.SetSym(i, j, q.At(i, j)+scaled)
			}
		}
		obj = &quadraticObjective{q: q, l: l}
	}

	var cons ConstraintSet = &nullConstraintSet{}
	if len(b.constraints) > 0 {
		rows := len(b.constraints)
		data := make([]float64, rows*n)
		cnsLoBs := make([]float64, rows)
		cnsUpBs := make([]float64, rows)
		for r, c := range b.constraints {
			for _, e := range c.expressions {
				i := b.getVariableIndex(e.variable)
				data[r*n+i] += e.coef
			}
			cnsLoBs[r] = c.lo
			cnsUpBs[r] = c.up
		}
		cons = &linearConstraintSet{
			a:    mat.NewDense(rows, n, data),
			loBs: cnsLoBs,
			upBs: cnsUpBs,
		}
	}

	vars := newDenseVariableSet(loBs, upBs, discrete, sos1)

	return &denseProblem{obj: obj, cons: cons, vars: vars}, nil
}

// --- concrete Problem / ObjectiveFunction / ConstraintSet implementations ---

type denseProblem struct {
	obj  ObjectiveFunction
	cons ConstraintSet
	vars VariableSet
}

func (p *denseProblem) Objective() ObjectiveFunction { return p.obj }
func (p *denseProblem) Constraints() ConstraintSet   { return p.cons }
func (p *denseProblem) Variables() VariableSet       { return p.vars }

type linearObjective struct{ l []float64 }

func (o *linearObjective) Kind() ObjectiveKind { return ObjectiveLinear }
func (o *linearObjective) L() []float64        { return o.l }
func (o *linearObjective) Q() mat.Symmetric    { return nil }

type quadraticObjective struct {
	q mat.Symmetric
	l []float64
}

func (o *quadraticObjective) Kind() ObjectiveKind { return ObjectiveQuadratic }
func (o *quadraticObjective) L() []float64        { return o.l }
func (o *quadraticObjective) Q() mat.Symmetric    { return o.q }

type nullConstraintSet struct{}

func (c *nullConstraintSet) Kind() ConstraintKind          { return ConstraintNull }
func (c *nullConstraintSet) A() *mat.Dense                 { return nil }
func (c *nullConstraintSet) Bounds() ([]float64, []float64) { return nil, nil }

type linearConstraintSet struct {
	a          *mat.Dense
	loBs, upBs []float64
}

func (c *linearConstraintSet) Kind() ConstraintKind { return ConstraintLinear }
func (c *linearConstraintSet) A() *mat.Dense        { return c.a }
func (c *linearConstraintSet) Bounds() ([]float64, []float64) {
	return c.loBs, c.upBs
}
