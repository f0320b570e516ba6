package bnb

import "gonum.org/v1/gonum/mat"

// SerialData is a length-prefixed, version-tagged vector of doubles used
// for inter-worker messages and persistence (§6.2). Every payload is
// prefixed by one f64 format-version tag; there is no overall length
// header, and variable-length fields carry their own counts inside the
// payload (integers are stored losslessly as doubles since every index here
// is bounded by problem size).
type SerialData []float64

const serialFormatVersion float64 = 1

func newSerialWriter() *serialWriter { return &serialWriter{} }

type serialWriter struct{ buf []float64 }

func (w *serialWriter) f64(v float64) { w.buf = append(w.buf, v) }
func (w *serialWriter) vec(v []float64) {
	w.buf = append(w.buf, float64(len(v)))
	w.buf = append(w.buf, v...)
}
func (w *serialWriter) ints(v []int) {
	w.buf = append(w.buf, float64(len(v)))
	for _, i := range v {
		w.buf = append(w.buf, float64(i))
	}
}
func (w *serialWriter) str(s string) {
	bs := []byte(s)
	w.buf = append(w.buf, float64(len(bs)))
	for _, b := range bs {
		w.buf = append(w.buf, float64(b))
	}
}
func (w *serialWriter) bytes() SerialData {
	out := make(SerialData, 0, len(w.buf)+1)
	out = append(out, serialFormatVersion)
	return append(out, w.buf...)
}

type serialReader struct {
	data SerialData
	pos  int
}

func newSerialReader(d SerialData) (*serialReader, error) {
	if len(d) == 0 || d[0] != serialFormatVersion {
		return nil, newSetupError("SerialData: unrecognized or missing format version tag")
	}
	return &serialReader{data: d, pos: 1}, nil
}

func (r *serialReader) f64() (float64, error) {
	if r.pos >= len(r.data) {
		return 0, newSetupError("SerialData: truncated payload")
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *serialReader) vec() ([]float64, error) {
	n, err := r.f64()
	if err != nil {
		return nil, err
	}
	count := int(n)
	if count < 0 || r.pos+count > len(r.data) {
		return nil, newSetupError("SerialData: truncated vector")
	}
	out := append([]float64(nil), r.data[r.pos:r.pos+count]...)
	r.pos += count
	return out, nil
}

func (r *serialReader) str() (string, error) {
	n, err := r.f64()
	if err != nil {
		return "", err
	}
	count := int(n)
	if count < 0 || r.pos+count > len(r.data) {
		return "", newSetupError("SerialData: truncated string")
	}
	bs := make([]byte, count)
	for i := 0; i < count; i++ {
		bs[i] = byte(r.data[r.pos+i])
	}
	r.pos += count
	return string(bs), nil
}

func (r *serialReader) ints() ([]int, error) {
	v, err := r.vec()
	if err != nil {
		return nil, err
	}
	out := make([]int, len(v))
	for i, f := range v {
		out[i] = int(f)
	}
	return out, nil
}

// serializeVariableSet encodes a VariableSet per §6.2's layout:
//
//	[ numVars | numDsc | loBs[numVars] | upBs[numVars] | dscIndices[numDsc] | sos1Groups[numDsc] ]
func serializeVariableSet(vs VariableSet) SerialData {
	loBs, upBs := vs.Bounds()
	w := newSerialWriter()
	w.f64(float64(vs.Size()))
	w.f64(float64(vs.NumDiscrete()))
	w.buf = append(w.buf, loBs...)
	w.buf = append(w.buf, upBs...)
	w.buf = append(w.buf, intsToFloats(vs.DiscreteIndices())...)
	sos1 := vs.SOS1Groups()
	if len(sos1) == 0 {
		// empty means "all ungrouped"; the layout always carries numDsc entries.
		sos1 = make([]int, vs.NumDiscrete())
	}
	w.buf = append(w.buf, intsToFloats(sos1)...)
	return w.bytes()
}

func deserializeVariableSet(d SerialData) (VariableSet, error) {
	r, err := newSerialReader(d)
	if err != nil {
		return nil, err
	}
	numVarsF, err := r.f64()
	if err != nil {
		return nil, err
	}
	numDscF, err := r.f64()
	if err != nil {
		return nil, err
	}
	numVars, numDsc := int(numVarsF), int(numDscF)

	loBs, err := readFixed(r, numVars)
	if err != nil {
		return nil, err
	}
	upBs, err := readFixed(r, numVars)
	if err != nil {
		return nil, err
	}
	dscF, err := readFixed(r, numDsc)
	if err != nil {
		return nil, err
	}
	sosF, err := readFixed(r, numDsc)
	if err != nil {
		return nil, err
	}
	return newDenseVariableSet(loBs, upBs, floatsToInts(dscF), floatsToInts(sosF)), nil
}

// serializeNode encodes a node's bounds and solved state:
//
//	[ n | depth | objective | branchLoBs[n] | branchUpBs[n] | hasPrimal | primal[n or 0] ]
func serializeNode(nd *node) SerialData {
	w := newSerialWriter()
	w.f64(float64(len(nd.branchLoBs)))
	w.f64(float64(nd.depth))
	w.f64(nd.objective)
	w.buf = append(w.buf, nd.branchLoBs...)
	w.buf = append(w.buf, nd.branchUpBs...)
	if nd.primal != nil {
		w.f64(1)
		w.buf = append(w.buf, nd.primal...)
	} else {
		w.f64(0)
	}
	return w.bytes()
}

func deserializeNode(d SerialData) (*node, error) {
	r, err := newSerialReader(d)
	if err != nil {
		return nil, err
	}
	nF, err := r.f64()
	if err != nil {
		return nil, err
	}
	depthF, err := r.f64()
	if err != nil {
		return nil, err
	}
	objective, err := r.f64()
	if err != nil {
		return nil, err
	}
	n := int(nF)
	loBs, err := readFixed(r, n)
	if err != nil {
		return nil, err
	}
	upBs, err := readFixed(r, n)
	if err != nil {
		return nil, err
	}
	hasPrimal, err := r.f64()
	if err != nil {
		return nil, err
	}
	var primal []float64
	if hasPrimal != 0 {
		primal, err = readFixed(r, n)
		if err != nil {
			return nil, err
		}
	}
	return &node{
		branchLoBs: loBs,
		branchUpBs: upBs,
		depth:      int(depthF),
		objective:  objective,
		primal:     primal,
		branchVar:  -1,
	}, nil
}

// serializeStatus encodes the reportable fields of a Status snapshot:
//
//	[ objLoB | objUpB | nodesExplored | hasIncumbent | incumbent[...] | description ]
func serializeStatus(s *Status) SerialData {
	w := newSerialWriter()
	w.f64(s.ObjLoB())
	w.f64(s.ObjUpB())
	w.f64(float64(s.NodesExplored()))
	if x, ok := s.BestSolution(); ok {
		w.f64(1)
		w.vec(x)
	} else {
		w.f64(0)
	}
	w.str(s.Description())
	return w.bytes()
}

func deserializeStatus(d SerialData) (*Status, error) {
	r, err := newSerialReader(d)
	if err != nil {
		return nil, err
	}
	objLoB, err := r.f64()
	if err != nil {
		return nil, err
	}
	objUpB, err := r.f64()
	if err != nil {
		return nil, err
	}
	nodesF, err := r.f64()
	if err != nil {
		return nil, err
	}
	hasIncumbent, err := r.f64()
	if err != nil {
		return nil, err
	}
	s := newStatus()
	s.objLoB = objLoB
	s.objUpB = objUpB
	s.nodesExplored = int64(nodesF)
	if hasIncumbent != 0 {
		x, err := r.vec()
		if err != nil {
			return nil, err
		}
		s.incumbent = x
	}
	desc, err := r.str()
	if err != nil {
		return nil, err
	}
	s.description = desc
	return s, nil
}

// serializeProblem encodes a compiledProblem's full numeric data (§8's
// round-trip law extended to Problem, not just Node/Status):
//
//	[ n | hasQ | q[n*n] | l[n] | hasA | consRows | a[consRows*n] | cnsLoBs[consRows] | cnsUpBs[consRows] |
//	  varLoBs[n] | varUpBs[n] | discrete[n] | sos1GroupOf[n] ]
//
// discreteIdxAll and sos1Groups are not stored: both are fully derivable
// from discrete/sos1GroupOf, exactly as compile() derives them from a
// VariableSet in problem.go.
func serializeProblem(p *compiledProblem) SerialData {
	w := newSerialWriter()
	w.f64(float64(p.n))
	if p.q != nil {
		w.f64(1)
		for i := 0; i < p.n; i++ {
			for j := 0; j < p.n; j++ {
				w.f64(p.q.At(i, j))
			}
		}
	} else {
		w.f64(0)
	}
	w.buf = append(w.buf, p.l...)
	if p.a != nil {
		rows, cols := p.a.Dims()
		w.f64(1)
		w.f64(float64(rows))
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				w.f64(p.a.At(i, j))
			}
		}
		w.buf = append(w.buf, p.cnsLoBs...)
		w.buf = append(w.buf, p.cnsUpBs...)
	} else {
		w.f64(0)
	}
	w.buf = append(w.buf, p.varLoBs...)
	w.buf = append(w.buf, p.varUpBs...)
	discreteF := make([]float64, p.n)
	for i, d := range p.discrete {
		if d {
			discreteF[i] = 1
		}
	}
	w.buf = append(w.buf, discreteF...)
	w.buf = append(w.buf, intsToFloats(p.sos1GroupOf)...)
	return w.bytes()
}

func deserializeProblem(d SerialData) (*compiledProblem, error) {
	r, err := newSerialReader(d)
	if err != nil {
		return nil, err
	}
	nF, err := r.f64()
	if err != nil {
		return nil, err
	}
	n := int(nF)

	hasQ, err := r.f64()
	if err != nil {
		return nil, err
	}
	var q mat.Symmetric
	if hasQ != 0 {
		flat, err := readFixed(r, n*n)
		if err != nil {
			return nil, err
		}
		q = mat.NewSymDense(n, flat)
	}

	l, err := readFixed(r, n)
	if err != nil {
		return nil, err
	}

	hasA, err := r.f64()
	if err != nil {
		return nil, err
	}
	var a *mat.Dense
	var cnsLoBs, cnsUpBs []float64
	if hasA != 0 {
		rowsF, err := r.f64()
		if err != nil {
			return nil, err
		}
		rows := int(rowsF)
		flat, err := readFixed(r, rows*n)
		if err != nil {
			return nil, err
		}
		a = mat.NewDense(rows, n, flat)
		cnsLoBs, err = readFixed(r, rows)
		if err != nil {
			return nil, err
		}
		cnsUpBs, err = readFixed(r, rows)
		if err != nil {
			return nil, err
		}
	}

	varLoBs, err := readFixed(r, n)
	if err != nil {
		return nil, err
	}
	varUpBs, err := readFixed(r, n)
	if err != nil {
		return nil, err
	}
	discreteF, err := readFixed(r, n)
	if err != nil {
		return nil, err
	}
	sos1F, err := readFixed(r, n)
	if err != nil {
		return nil, err
	}

	discrete := make([]bool, n)
	var discreteIdxAll []int
	for i, f := range discreteF {
		if f != 0 {
			discrete[i] = true
			discreteIdxAll = append(discreteIdxAll, i)
		}
	}
	sos1GroupOf := floatsToInts(sos1F)
	sos1Groups := make(map[int][]int)
	for i, g := range sos1GroupOf {
		if g != 0 {
			sos1Groups[g] = append(sos1Groups[g], i)
		}
	}

	return &compiledProblem{
		n:              n,
		q:              q,
		l:              l,
		a:              a,
		cnsLoBs:        cnsLoBs,
		cnsUpBs:        cnsUpBs,
		varLoBs:        varLoBs,
		varUpBs:        varUpBs,
		discrete:       discrete,
		sos1GroupOf:    sos1GroupOf,
		sos1Groups:     sos1Groups,
		discreteIdxAll: discreteIdxAll,
	}, nil
}

func readFixed(r *serialReader, n int) ([]float64, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, newSetupError("SerialData: truncated fixed-length field")
	}
	out := append([]float64(nil), r.data[r.pos:r.pos+n]...)
	r.pos += n
	return out, nil
}

func intsToFloats(v []int) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func floatsToInts(v []float64) []int {
	out := make([]int, len(v))
	for i, x := range v {
		out[i] = int(x)
	}
	return out
}
