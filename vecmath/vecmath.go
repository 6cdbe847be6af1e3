// Package vecmath provides the flat dense vector and ordered sparse vector
// types shared by the rest of the solver, plus the handful of linear
// algebra primitives the simplex kernel's inner loop needs.
package vecmath

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DenseVec is a fixed-dimension array of machine-precision values.
type DenseVec struct {
	Dim  int
	Data []float64
}

// NewDenseVec allocates a zeroed dense vector of the given dimension.
func NewDenseVec(dim int) *DenseVec {
	return &DenseVec{Dim: dim, Data: make([]float64, dim)}
}

// Clone returns an independent copy.
func (v *DenseVec) Clone() *DenseVec {
	out := NewDenseVec(v.Dim)
	copy(out.Data, v.Data)
	return out
}

// Clear zeroes every entry.
func (v *DenseVec) Clear() {
	for i := range v.Data {
		v.Data[i] = 0
	}
}

// Dot returns the inner product of two equal-length dense vectors.
func (v *DenseVec) Dot(o *DenseVec) float64 {
	return floats.Dot(v.Data, o.Data)
}

// Scale multiplies every entry by alpha in place.
func (v *DenseVec) Scale(alpha float64) {
	floats.Scale(alpha, v.Data)
}

// AxPy computes v += alpha*o in place (dense "axpy").
func (v *DenseVec) AxPy(alpha float64, o *DenseVec) {
	for i := range v.Data {
		v.Data[i] += alpha * o.Data[i]
	}
}

// MaxAbs returns max_i |v_i|.
func (v *DenseVec) MaxAbs() float64 {
	m := 0.0
	for _, x := range v.Data {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

// Length returns the number of entries v considers nonzero under eps.
func (v *DenseVec) Length(eps float64) int {
	n := 0
	for _, x := range v.Data {
		if math.Abs(x) > eps {
			n++
		}
	}
	return n
}

// Entry is a single (index, value) pair of a SparseVec.
type Entry struct {
	Idx int
	Val float64
}

// SparseVec is an ordered (not necessarily sorted) list of (index, value)
// pairs with no duplicate indices, all in [0, Dim).
type SparseVec struct {
	Dim     int
	Entries []Entry
}

// NewSparseVec allocates an empty sparse vector with room for cap entries.
func NewSparseVec(dim, cap int) *SparseVec {
	return &SparseVec{Dim: dim, Entries: make([]Entry, 0, cap)}
}

// Append adds a (idx, val) pair; the caller is responsible for avoiding
// duplicate indices when that matters to the consumer.
func (s *SparseVec) Append(idx int, val float64) {
	s.Entries = append(s.Entries, Entry{Idx: idx, Val: val})
}

// ToDense materializes a SparseVec into a freshly allocated DenseVec.
func (s *SparseVec) ToDense() *DenseVec {
	d := NewDenseVec(s.Dim)
	for _, e := range s.Entries {
		d.Data[e.Idx] = e.Val
	}
	return d
}

// FromDense builds a SparseVec from a dense vector, keeping entries whose
// magnitude exceeds eps.
func FromDense(d *DenseVec, eps float64) *SparseVec {
	s := NewSparseVec(d.Dim, 0)
	for i, x := range d.Data {
		if math.Abs(x) > eps {
			s.Append(i, x)
		}
	}
	return s
}

// DotDense returns the inner product of a sparse vector against a dense one.
func (s *SparseVec) DotDense(d *DenseVec) float64 {
	sum := 0.0
	for _, e := range s.Entries {
		sum += e.Val * d.Data[e.Idx]
	}
	return sum
}

// MaxAbs returns the largest-magnitude entry, or 0 for an empty vector.
func (s *SparseVec) MaxAbs() float64 {
	m := 0.0
	for _, e := range s.Entries {
		if a := math.Abs(e.Val); a > m {
			m = a
		}
	}
	return m
}

// NNZ returns the number of stored entries (an upper bound on true nonzeros).
func (s *SparseVec) NNZ() int { return len(s.Entries) }
