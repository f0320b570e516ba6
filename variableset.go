package bnb

import "sort"

// denseVariableSet is the reference VariableSet implementation: every
// accessor is backed by a plain slice, mirroring the teacher's preference
// for dense, pointer-light data structures (api.go's Variable slice,
// subproblem.go's comment on avoiding field-by-field copies).
type denseVariableSet struct {
	loBs, upBs []float64
	discrete   []int // ascending
	sos1       []int // parallel to discrete, 0 == ungrouped
	pc         *PseudoCosts
}

func newDenseVariableSet(loBs, upBs []float64, discrete []int, sos1 []int) *denseVariableSet {
	d := append([]int(nil), discrete...)
	sort.Ints(d)
	return &denseVariableSet{
		loBs:     loBs,
		upBs:     upBs,
		discrete: d,
		sos1:     sos1,
		pc:       NewPseudoCosts(),
	}
}

func (v *denseVariableSet) Size() int         { return len(v.loBs) }
func (v *denseVariableSet) NumDiscrete() int  { return len(v.discrete) }
func (v *denseVariableSet) Bounds() ([]float64, []float64) {
	return append([]float64(nil), v.loBs...), append([]float64(nil), v.upBs...)
}
func (v *denseVariableSet) DiscreteIndices() []int { return append([]int(nil), v.discrete...) }
func (v *denseVariableSet) SOS1Groups() []int      { return append([]int(nil), v.sos1...) }
func (v *denseVariableSet) PseudoCosts() *PseudoCosts { return v.pc }

// RemoveVariables drops the given variable indices (and any discrete/SOS1
// metadata attached to them), shifting all higher indices down.
func (v *denseVariableSet) RemoveVariables(indices []int) error {
	if len(indices) == 0 {
		return nil
	}
	remove := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(v.loBs) {
			return newSetupError("RemoveVariables: index out of range")
		}
		remove[i] = true
	}

	remap := make(map[int]int) // old index -> new index
	newLo := make([]float64, 0, len(v.loBs))
	newUp := make([]float64, 0, len(v.upBs))
	for i := range v.loBs {
		if remove[i] {
			continue
		}
		remap[i] = len(newLo)
		newLo = append(newLo, v.loBs[i])
		newUp = append(newUp, v.upBs[i])
	}

	var newDiscrete, newSOS1 []int
	for k, i := range v.discrete {
		if remove[i] {
			continue
		}
		newDiscrete = append(newDiscrete, remap[i])
		if k < len(v.sos1) {
			newSOS1 = append(newSOS1, v.sos1[k])
		}
	}

	v.loBs, v.upBs = newLo, newUp
	v.discrete, v.sos1 = newDiscrete, newSOS1
	v.pc = NewPseudoCosts()
	return nil
}

// AppendVariables adds the contents of set after the current variables.
func (v *denseVariableSet) AppendVariables(set VariableSet) error {
	return v.InsertVariables(set, len(v.loBs))
}

// InsertVariables splices set's variables into this set starting at
// insertionPoint, shifting discrete/SOS1 indices above the insertion point.
func (v *denseVariableSet) InsertVariables(set VariableSet, insertionPoint int) error {
	if insertionPoint < 0 || insertionPoint > len(v.loBs) {
		return newSetupError("InsertVariables: insertionPoint out of range")
	}
	lo, up := set.Bounds()
	if len(lo) != len(up) {
		return newSetupError("InsertVariables: bounds length mismatch")
	}
	width := len(lo)

	v.loBs = spliceFloat(v.loBs, insertionPoint, lo)
	v.upBs = spliceFloat(v.upBs, insertionPoint, up)

	shifted := make([]int, len(v.discrete))
	for k, i := range v.discrete {
		if i >= insertionPoint {
			shifted[k] = i + width
		} else {
			shifted[k] = i
		}
	}
	for _, i := range set.DiscreteIndices() {
		shifted = append(shifted, i+insertionPoint)
	}

	sos1 := append([]int(nil), v.sos1...)
	sos1 = append(sos1, set.SOS1Groups()...)

	order := sort.IntSlice(shifted)
	idx := make([]int, len(shifted))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return order[idx[a]] < order[idx[b]] })

	sortedDiscrete := make([]int, len(shifted))
	sortedSOS1 := make([]int, len(sos1))
	for newPos, oldPos := range idx {
		sortedDiscrete[newPos] = shifted[oldPos]
		if oldPos < len(sos1) {
			sortedSOS1[newPos] = sos1[oldPos]
		}
	}

	v.discrete = sortedDiscrete
	v.sos1 = sortedSOS1
	v.pc = NewPseudoCosts()
	return nil
}

func spliceFloat(base []float64, at int, insert []float64) []float64 {
	out := make([]float64, 0, len(base)+len(insert))
	out = append(out, base[:at]...)
	out = append(out, insert...)
	out = append(out, base[at:]...)
	return out
}

// UpdateBounds overwrites variable bounds either for the given indices, or
// (indices == nil) for every variable.
func (v *denseVariableSet) UpdateBounds(indices []int, loBs, upBs []float64) error {
	if indices == nil {
		if len(loBs) != len(v.loBs) || len(upBs) != len(v.upBs) {
			return newSetupError("UpdateBounds: full-vector length mismatch")
		}
		copy(v.loBs, loBs)
		copy(v.upBs, upBs)
		return nil
	}
	if len(indices) != len(loBs) || len(indices) != len(upBs) {
		return newSetupError("UpdateBounds: indices/bounds length mismatch")
	}
	for k, i := range indices {
		if i < 0 || i >= len(v.loBs) {
			return newSetupError("UpdateBounds: index out of range")
		}
		v.loBs[i] = loBs[k]
		v.upBs[i] = upBs[k]
	}
	return nil
}
