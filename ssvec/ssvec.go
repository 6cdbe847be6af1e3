// Package ssvec implements the semi-sparse vector (SSVector): a dense
// array of values with an optional index list of its numerically nonzero
// positions, driving the simplex inner loop's arithmetic (spec §4.1, C2).
package ssvec

import (
	"math"

	"github.com/go-revsimplex/core/vecmath"
)

// SSVector augments a dense array with an index set I of positions whose
// value exceeds Eps in magnitude, tracked only while Setup is true.
//
// Invariant when Setup: for every i in Idx, |Data[i]| > Eps, and for every
// i not in Idx, Data[i] == 0. When !Setup, Idx carries no information.
type SSVector struct {
	Dim   int
	Data  []float64
	Idx   []int
	Setup bool
	Eps   float64
}

// New allocates a cleared, setup SSVector of the given dimension.
func New(dim int, eps float64) *SSVector {
	v := &SSVector{Dim: dim, Data: make([]float64, dim), Eps: eps}
	v.Clear()
	return v
}

// Clear zeroes every entry and empties the index set; the vector is left
// in setup mode.
func (v *SSVector) Clear() {
	for i := range v.Data {
		v.Data[i] = 0
	}
	v.Idx = v.Idx[:0]
	v.Setup = true
}

// UnSetup leaves the values untouched but declares the index set stale.
func (v *SSVector) UnSetup() {
	v.Setup = false
}

// SetupNow rebuilds the index set from the dense array, snapping anything
// at or below Eps to exactly zero. Linear in Dim; idempotent.
func (v *SSVector) SetupNow() {
	if v.Idx == nil {
		v.Idx = make([]int, 0, v.Dim)
	}
	v.Idx = v.Idx[:0]
	for i, x := range v.Data {
		if math.Abs(x) > v.Eps {
			v.Idx = append(v.Idx, i)
		} else if x != 0 {
			v.Data[i] = 0
		}
	}
	v.Setup = true
}

// SetValue sets Data[i] = x, maintaining the setup invariant if currently
// setup (adding i to the index set when x becomes nonzero, and leaving a
// zero entry's stale index to be swept by the next SetupNow).
func (v *SSVector) SetValue(i int, x float64) {
	v.Data[i] = x
	if v.Setup && math.Abs(x) > v.Eps {
		for _, j := range v.Idx {
			if j == i {
				return
			}
		}
		v.Idx = append(v.Idx, i)
	}
}

// ClearIdx zeroes a single position and, if setup, drops it from the index
// set in O(|I|).
func (v *SSVector) ClearIdx(i int) {
	v.Data[i] = 0
	if !v.Setup {
		return
	}
	for k, j := range v.Idx {
		if j == i {
			v.Idx[k] = v.Idx[len(v.Idx)-1]
			v.Idx = v.Idx[:len(v.Idx)-1]
			return
		}
	}
}

// ClearNum zeroes the first n dense entries and, if setup, rebuilds the
// index set (a bulk variant of ClearIdx).
func (v *SSVector) ClearNum(n int) {
	for i := 0; i < n && i < len(v.Data); i++ {
		v.Data[i] = 0
	}
	if v.Setup {
		v.SetupNow()
	}
}

// Dense returns the backing dense array as a *vecmath.DenseVec view.
func (v *SSVector) Dense() *vecmath.DenseVec {
	return &vecmath.DenseVec{Dim: v.Dim, Data: v.Data}
}

// AddAssign computes v += o, densifying through unSetup/setup when either
// operand is not itself setup.
func (v *SSVector) AddAssign(o *SSVector) {
	for i := range v.Data {
		v.Data[i] += o.Data[i]
	}
	if v.Setup && o.Setup {
		v.SetupNow()
	} else {
		v.UnSetup()
	}
}

// SubAssign computes v -= o.
func (v *SSVector) SubAssign(o *SSVector) {
	for i := range v.Data {
		v.Data[i] -= o.Data[i]
	}
	if v.Setup && o.Setup {
		v.SetupNow()
	} else {
		v.UnSetup()
	}
}

// ScaleAssign computes v *= alpha. A setup vector stays setup (scaling a
// nonzero by a nonzero alpha cannot introduce new nonzeros; alpha == 0 is
// handled by clearing).
func (v *SSVector) ScaleAssign(alpha float64) {
	if alpha == 0 {
		v.Clear()
		return
	}
	for i := range v.Data {
		v.Data[i] *= alpha
	}
}

// MultAdd computes v += alpha * o.Dense(), i.e. a dense-result axpy; the
// vector is left unSetup since the result's sparsity pattern is the union
// of two operands and is not tracked incrementally.
func (v *SSVector) MultAdd(alpha float64, o *vecmath.DenseVec) {
	for i := range v.Data {
		v.Data[i] += alpha * o.Data[i]
	}
	v.UnSetup()
}

// MaxAbs returns max_i |v_i|, iterating over I when setup, the full array
// otherwise.
func (v *SSVector) MaxAbs() float64 {
	m := 0.0
	if v.Setup {
		for _, i := range v.Idx {
			if a := math.Abs(v.Data[i]); a > m {
				m = a
			}
		}
		return m
	}
	for _, x := range v.Data {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

// Length returns the number of tracked nonzeros when setup, or sweeps the
// full array otherwise.
func (v *SSVector) Length() int {
	if v.Setup {
		return len(v.Idx)
	}
	n := 0
	for _, x := range v.Data {
		if math.Abs(x) > v.Eps {
			n++
		}
	}
	return n
}

// Length2 returns the squared 2-norm.
func (v *SSVector) Length2() float64 {
	sum := 0.0
	if v.Setup {
		for _, i := range v.Idx {
			sum += v.Data[i] * v.Data[i]
		}
		return sum
	}
	for _, x := range v.Data {
		sum += x * x
	}
	return sum
}

// shortFactor bounds the estimated work of the "short" regime of
// Assign2ProductRight relative to a dense sweep: work = |y| * avgCol must
// stay below shortFactor * dim * nCols to take the sparse path.
const shortFactor = 0.25

// elephant is the "white elephant" sentinel value planted in the
// short-regime accumulation below: a magnitude far below any real pivot
// or objective coefficient, so a single post-accumulation equality test
// against it tells whether the last slot was ever touched by the
// sparse-column sweep, without keeping a separate touched flag or
// special-casing index Dim-1 inside the accumulation loop itself.
const elephant = 1e-300

// Assign2ProductRight sets v := A . y, where A is supplied as sparse
// columns (cols[j] is the column y_j multiplies) and y is itself an
// SSVector. It picks one
// of three regimes based on y's sparsity (spec §4.1):
//
//   - single-nonzero: y has exactly one entry, so the result is a scaled
//     copy of a single column.
//   - short: the estimated work |y|*avgCol is small relative to dim*nCols;
//     accumulate into v's dense array after planting a white-elephant
//     sentinel at the last slot, then a single equality test against the
//     sentinel afterward (rather than a touched flag threaded through the
//     loop) tells whether that slot needs its pre-existing value restored
//     or corrected for the seed.
//   - full: the same accumulation over the columns of y's nonzeros, without
//     the sentinel, re-setup at the end.
func (v *SSVector) Assign2ProductRight(cols []*vecmath.SparseVec, y *SSVector, nCols int) {
	v.Clear()

	nzY := nonzeroIdx(y)
	if len(nzY) == 0 {
		return
	}

	if len(nzY) == 1 {
		j := nzY[0]
		alpha := y.Data[j]
		for _, e := range cols[j].Entries {
			v.Data[e.Idx] = alpha * e.Val
		}
		v.SetupNow()
		return
	}

	avgCol := 0.0
	for _, c := range cols {
		avgCol += float64(c.NNZ())
	}
	if nCols > 0 {
		avgCol /= float64(nCols)
	}
	work := float64(len(nzY)) * avgCol
	short := work <= shortFactor*float64(v.Dim)*float64(nCols)

	if short && v.Dim > 0 {
		saved := v.Data[v.Dim-1]
		v.Data[v.Dim-1] = elephant
		for _, j := range nzY {
			alpha := y.Data[j]
			for _, e := range cols[j].Entries {
				v.Data[e.Idx] += alpha * e.Val
			}
		}
		if v.Data[v.Dim-1] == elephant {
			v.Data[v.Dim-1] = saved
		} else {
			v.Data[v.Dim-1] += saved - elephant
		}
		v.SetupNow()
		return
	}

	for _, j := range nzY {
		alpha := y.Data[j]
		for _, e := range cols[j].Entries {
			v.Data[e.Idx] += alpha * e.Val
		}
	}
	v.SetupNow()
}

// Assign2ProductLeft sets v := y . A (a row vector times A), used by the
// co-pricing side of the kernel. rows is A stored row-wise.
func (v *SSVector) Assign2ProductLeft(rows []*vecmath.SparseVec, y *SSVector, nRows int) {
	v.Clear()
	nzY := nonzeroIdx(y)
	for _, i := range nzY {
		alpha := y.Data[i]
		if alpha == 0 {
			continue
		}
		for _, e := range rows[i].Entries {
			v.Data[e.Idx] += alpha * e.Val
		}
	}
	v.SetupNow()
}

func nonzeroIdx(y *SSVector) []int {
	if y.Setup {
		return y.Idx
	}
	out := make([]int, 0, y.Dim)
	for i, x := range y.Data {
		if x != 0 {
			out = append(out, i)
		}
	}
	return out
}
