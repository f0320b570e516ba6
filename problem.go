package bnb

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ObjectiveKind enumerates the supported ObjectiveFunction variants (§6.1).
type ObjectiveKind int

const (
	ObjectiveNull ObjectiveKind = iota
	ObjectiveLinear
	ObjectiveQuadratic
)

// ObjectiveFunction is the objective half of the problem-definition contract
// the engine consumes. Implementations are expected to be immutable.
type ObjectiveFunction interface {
	Kind() ObjectiveKind
	// L returns the linear coefficient vector. Nil for ObjectiveNull.
	L() []float64
	// Q returns the (symmetric, PSD) quadratic term. Nil unless Kind() ==
	// ObjectiveQuadratic.
	Q() mat.Symmetric
}

// ConstraintKind enumerates the supported ConstraintSet variants (§6.1).
type ConstraintKind int

const (
	ConstraintNull ConstraintKind = iota
	ConstraintLinear
)

// ConstraintSet is the linear-constraint half of the problem-definition
// contract the engine consumes.
type ConstraintSet interface {
	Kind() ConstraintKind
	// A returns the constraint matrix. Nil for ConstraintNull.
	A() *mat.Dense
	// Bounds returns the two-sided row bounds cnsLoBs <= A x <= cnsUpBs.
	Bounds() (loBs, upBs []float64)
}

// VariableSet is the variable-metadata half of the problem-definition
// contract (§6.1): bounds, integrality, SOS1 membership, and the mutation
// operations a presolve/reduction step would need.
type VariableSet interface {
	Size() int
	NumDiscrete() int
	Bounds() (loBs, upBs []float64)
	// DiscreteIndices returns the indices i in D, ascending.
	DiscreteIndices() []int
	// SOS1Groups returns, parallel to DiscreteIndices, the group id each
	// discrete variable belongs to (0 == ungrouped). May be empty, meaning
	// "all ungrouped".
	SOS1Groups() []int
	PseudoCosts() *PseudoCosts

	RemoveVariables(indices []int) error
	InsertVariables(set VariableSet, insertionPoint int) error
	AppendVariables(set VariableSet) error
	// UpdateBounds overwrites bounds for indices (nil == all variables, in
	// which case loBs/upBs must have length Size()).
	UpdateBounds(indices []int, loBs, upBs []float64) error
}

// Problem is the full input contract the engine consumes: (objective,
// constraints, variables). The engine never reads more than these three
// accessors.
type Problem interface {
	Objective() ObjectiveFunction
	Constraints() ConstraintSet
	Variables() VariableSet
}

// compiledProblem is the engine's internal, dense, index-addressed view of
// a Problem — the analogue of the teacher's milpProblem in ilp.go, extended
// with a quadratic term and two-sided constraint bounds per the expanded
// data model (§3).
type compiledProblem struct {
	n int // number of variables

	q mat.Symmetric // nil => pure LP
	l []float64

	a              *mat.Dense // may be nil (no linear constraints)
	cnsLoBs        []float64
	cnsUpBs        []float64
	varLoBs        []float64
	varUpBs        []float64
	discrete       []bool // length n
	sos1GroupOf    []int  // length n, 0 == ungrouped, parallel to variable index
	sos1Groups     map[int][]int
	discreteIdxAll []int // cached ascending discrete indices
}

// compile converts a Problem into the engine's internal representation,
// validating it along the way (§7 NumericalError / SetupError, §8 boundary
// behaviours).
func compile(p Problem) (*compiledProblem, error) {
	vs := p.Variables()
	n := vs.Size()
	if n == 0 {
		return nil, newSetupError("problem has no variables")
	}

	loBs, upBs := vs.Bounds()
	if len(loBs) != n || len(upBs) != n {
		return nil, newSetupError("variable bounds length mismatch")
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(loBs[i]) || math.IsNaN(upBs[i]) {
			return nil, newNumericalError("variable bound is NaN")
		}
		if loBs[i] > upBs[i] {
			return nil, newSetupError("variable lower bound exceeds upper bound")
		}
	}

	discrete := make([]bool, n)
	for _, i := range vs.DiscreteIndices() {
		if i < 0 || i >= n {
			return nil, newSetupError("discrete index out of range")
		}
		discrete[i] = true
	}

	sos1GroupOf := make([]int, n)
	groups := vs.SOS1Groups()
	discreteIdx := vs.DiscreteIndices()
	if len(groups) > 0 {
		if len(groups) != len(discreteIdx) {
			return nil, newSetupError("sos1Groups length must match discreteIndices length")
		}
		for k, i := range discreteIdx {
			sos1GroupOf[i] = groups[k]
		}
	}

	sos1Groups := make(map[int][]int)
	for i, g := range sos1GroupOf {
		if g != 0 {
			sos1Groups[g] = append(sos1Groups[g], i)
		}
	}
	for g, members := range sos1Groups {
		if len(members) < 2 {
			return nil, newSetupError("SOS1 group must contain at least two members")
		}
		_ = g
	}

	obj := p.Objective()
	l := make([]float64, n)
	var q mat.Symmetric
	switch obj.Kind() {
	case ObjectiveNull:
		// l stays zero
	case ObjectiveLinear:
		coefs := obj.L()
		if len(coefs) != n {
			return nil, newSetupError("objective L length mismatch")
		}
		copy(l, coefs)
	case ObjectiveQuadratic:
		coefs := obj.L()
		if coefs != nil {
			if len(coefs) != n {
				return nil, newSetupError("objective L length mismatch")
			}
			copy(l, coefs)
		}
		q = obj.Q()
		if q == nil {
			return nil, newSetupError("quadratic objective missing Q")
		}
		if r, _ := q.Dims(); r != n {
			return nil, newSetupError("objective Q dimension mismatch")
		}
		if err := checkPSD(q); err != nil {
			return nil, err
		}
	default:
		return nil, newSetupError("unrecognized objective kind")
	}
	for _, c := range l {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, newNumericalError("objective coefficient is not finite")
		}
	}

	cons := p.Constraints()
	var a *mat.Dense
	var cnsLoBs, cnsUpBs []float64
	switch cons.Kind() {
	case ConstraintNull:
		// no rows
	case ConstraintLinear:
		a = cons.A()
		cnsLoBs, cnsUpBs = cons.Bounds()
		if a != nil {
			r, c := a.Dims()
			if c != n {
				return nil, newSetupError("constraint matrix column count mismatch")
			}
			if r != len(cnsLoBs) || r != len(cnsUpBs) {
				return nil, newSetupError("constraint bound length mismatch")
			}
			for i := 0; i < r; i++ {
				if cnsLoBs[i] > cnsUpBs[i] {
					return nil, newSetupError("constraint lower bound exceeds upper bound")
				}
			}
		}
	default:
		return nil, newSetupError("unrecognized constraint kind")
	}

	return &compiledProblem{
		n:              n,
		q:              q,
		l:              l,
		a:              a,
		cnsLoBs:        cnsLoBs,
		cnsUpBs:        cnsUpBs,
		varLoBs:        loBs,
		varUpBs:        upBs,
		discrete:       discrete,
		sos1GroupOf:    sos1GroupOf,
		sos1Groups:     sos1Groups,
		discreteIdxAll: append([]int(nil), discreteIdx...),
	}, nil
}

// checkPSD verifies that q is symmetric positive semi-definite by attempting
// a Cholesky factorization of q plus a small diagonal jitter (to tolerate
// exact PSD-but-singular matrices, which Cholesky alone would reject).
func checkPSD(q mat.Symmetric) error {
	n, _ := q.Dims()
	jittered := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := q.At(i, j)
			if i == j {
				v += 1e-9
			}
			jittered.SetSym(i, j, v)
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(jittered); !ok {
		return newNumericalError("objective Q is not positive semi-definite")
	}
	return nil
}
