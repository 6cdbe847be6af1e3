// Package model holds the LP data shared by the kernel and the refinement
// loop: rows, columns, and the constraint matrix stored both row- and
// column-wise (spec §3). It is grounded on
// felipends-revised-simplex/model/model.go's mutation API, generalized
// from that teacher's artificial-variable standard form to the bounded,
// ranged-row form spec.md requires.
package model

import (
	"github.com/pkg/errors"

	"github.com/go-revsimplex/core/vecmath"
)

// Sense is the caller-facing optimization direction. The kernel always
// works in the maximization convention internally (spec §3); Sense only
// affects how callers read Value().
type Sense int

const (
	Maximize Sense = iota
	Minimize
)

const Inf = 1e300

// LP is the constraint system maximize cᵀx s.t. lhs <= Ax <= rhs,
// lo <= x <= up, stored in the maximization convention.
type LP struct {
	Sense Sense

	NRows int
	NCols int

	// A stored twice, by rows and by columns.
	RowsA []*vecmath.SparseVec
	ColsA []*vecmath.SparseVec

	Lhs []float64
	Rhs []float64

	Lo []float64
	Up []float64
	C  []float64

	// Initialized is cleared by every mutation (spec §3 "Lifecycles").
	Initialized bool

	// onInvalidate is called by every mutating method, before it returns,
	// so an attached factorization (owned elsewhere) can be cleared.
	onInvalidate func()
}

// New allocates an empty LP of the given shape with all rows free
// (-inf,+inf) and all columns at [0,+inf), objective 0.
func New(nRows, nCols int) *LP {
	lp := &LP{
		NRows: nRows,
		NCols: nCols,
		RowsA: make([]*vecmath.SparseVec, nRows),
		ColsA: make([]*vecmath.SparseVec, nCols),
		Lhs:   make([]float64, nRows),
		Rhs:   make([]float64, nRows),
		Lo:    make([]float64, nCols),
		Up:    make([]float64, nCols),
		C:     make([]float64, nCols),
	}
	for i := 0; i < nRows; i++ {
		lp.RowsA[i] = vecmath.NewSparseVec(nCols, 0)
		lp.Lhs[i], lp.Rhs[i] = -Inf, Inf
	}
	for j := 0; j < nCols; j++ {
		lp.ColsA[j] = vecmath.NewSparseVec(nRows, 0)
		lp.Lo[j], lp.Up[j] = 0, Inf
	}
	return lp
}

// OnInvalidate registers a callback fired by every mutation, used by the
// kernel to drop a stale LU factorization (spec §6 "Each such mutation
// invalidates initialized and clears the LU factor").
func (lp *LP) OnInvalidate(f func()) { lp.onInvalidate = f }

func (lp *LP) invalidate() {
	lp.Initialized = false
	if lp.onInvalidate != nil {
		lp.onInvalidate()
	}
}

// AddRow appends a row with the given sparse coefficients and sides.
func (lp *LP) AddRow(coefs []vecmath.Entry, lhs, rhs float64) error {
	if lhs > rhs {
		return errors.Errorf("AddRow: lhs %v > rhs %v", lhs, rhs)
	}
	row := vecmath.NewSparseVec(lp.NCols, len(coefs))
	for _, e := range coefs {
		if e.Idx < 0 || e.Idx >= lp.NCols {
			return errors.Errorf("AddRow: column index %d out of range", e.Idx)
		}
		row.Append(e.Idx, e.Val)
		lp.ColsA[e.Idx].Append(lp.NRows, e.Val)
	}
	lp.RowsA = append(lp.RowsA, row)
	lp.Lhs = append(lp.Lhs, lhs)
	lp.Rhs = append(lp.Rhs, rhs)
	lp.NRows++
	lp.invalidate()
	return nil
}

// AddCol appends a column with the given sparse coefficients, bounds, and
// objective coefficient (in the maximization convention).
func (lp *LP) AddCol(coefs []vecmath.Entry, lo, up, c float64) error {
	if lo > up {
		return errors.Errorf("AddCol: lo %v > up %v", lo, up)
	}
	col := vecmath.NewSparseVec(lp.NRows, len(coefs))
	for _, e := range coefs {
		if e.Idx < 0 || e.Idx >= lp.NRows {
			return errors.Errorf("AddCol: row index %d out of range", e.Idx)
		}
		col.Append(e.Idx, e.Val)
		lp.RowsA[e.Idx].Append(lp.NCols, e.Val)
	}
	lp.ColsA = append(lp.ColsA, col)
	lp.Lo = append(lp.Lo, lo)
	lp.Up = append(lp.Up, up)
	lp.C = append(lp.C, c)
	lp.NCols++
	lp.invalidate()
	return nil
}

// RemoveRow deletes row r and renumbers subsequent rows/entries.
func (lp *LP) RemoveRow(r int) error {
	if r < 0 || r >= lp.NRows {
		return errors.Errorf("RemoveRow: row %d does not exist", r)
	}
	lp.RowsA = append(lp.RowsA[:r], lp.RowsA[r+1:]...)
	lp.Lhs = append(lp.Lhs[:r], lp.Lhs[r+1:]...)
	lp.Rhs = append(lp.Rhs[:r], lp.Rhs[r+1:]...)
	lp.NRows--
	for _, col := range lp.ColsA {
		filtered := col.Entries[:0]
		for _, e := range col.Entries {
			switch {
			case e.Idx == r:
				continue
			case e.Idx > r:
				filtered = append(filtered, vecmath.Entry{Idx: e.Idx - 1, Val: e.Val})
			default:
				filtered = append(filtered, e)
			}
		}
		col.Entries = filtered
		col.Dim = lp.NRows
	}
	lp.invalidate()
	return nil
}

// RemoveCol deletes column c and renumbers subsequent columns/entries.
func (lp *LP) RemoveCol(c int) error {
	if c < 0 || c >= lp.NCols {
		return errors.Errorf("RemoveCol: column %d does not exist", c)
	}
	lp.ColsA = append(lp.ColsA[:c], lp.ColsA[c+1:]...)
	lp.Lo = append(lp.Lo[:c], lp.Lo[c+1:]...)
	lp.Up = append(lp.Up[:c], lp.Up[c+1:]...)
	lp.C = append(lp.C[:c], lp.C[c+1:]...)
	lp.NCols--
	for _, row := range lp.RowsA {
		filtered := row.Entries[:0]
		for _, e := range row.Entries {
			switch {
			case e.Idx == c:
				continue
			case e.Idx > c:
				filtered = append(filtered, vecmath.Entry{Idx: e.Idx - 1, Val: e.Val})
			default:
				filtered = append(filtered, e)
			}
		}
		row.Entries = filtered
		row.Dim = lp.NCols
	}
	lp.invalidate()
	return nil
}

// ChangeObj sets c[j] and invalidates.
func (lp *LP) ChangeObj(j int, c float64) error {
	if j < 0 || j >= lp.NCols {
		return errors.Errorf("ChangeObj: column %d does not exist", j)
	}
	lp.C[j] = c
	lp.invalidate()
	return nil
}

// ChangeBounds sets lo[j], up[j] and invalidates.
func (lp *LP) ChangeBounds(j int, lo, up float64) error {
	if j < 0 || j >= lp.NCols {
		return errors.Errorf("ChangeBounds: column %d does not exist", j)
	}
	if lo > up {
		return errors.Errorf("ChangeBounds: lo %v > up %v", lo, up)
	}
	lp.Lo[j], lp.Up[j] = lo, up
	lp.invalidate()
	return nil
}

// ChangeSides sets lhs[i], rhs[i] and invalidates.
func (lp *LP) ChangeSides(i int, lhs, rhs float64) error {
	if i < 0 || i >= lp.NRows {
		return errors.Errorf("ChangeSides: row %d does not exist", i)
	}
	if lhs > rhs {
		return errors.Errorf("ChangeSides: lhs %v > rhs %v", lhs, rhs)
	}
	lp.Lhs[i], lp.Rhs[i] = lhs, rhs
	lp.invalidate()
	return nil
}

// ChangeElement sets A[i][j] = val in both the row- and column-wise
// storage, adding an entry if one did not already exist.
func (lp *LP) ChangeElement(i, j int, val float64) error {
	if i < 0 || i >= lp.NRows || j < 0 || j >= lp.NCols {
		return errors.Errorf("ChangeElement: (%d,%d) out of range", i, j)
	}
	setOrAppend(lp.RowsA[i], j, val)
	setOrAppend(lp.ColsA[j], i, val)
	lp.invalidate()
	return nil
}

func setOrAppend(s *vecmath.SparseVec, idx int, val float64) {
	for k := range s.Entries {
		if s.Entries[k].Idx == idx {
			s.Entries[k].Val = val
			return
		}
	}
	s.Append(idx, val)
}

// Value computes cᵀx in the maximization convention, then flips sign if
// the caller's original sense was Minimize (spec §6 value()).
func (lp *LP) Value(x []float64) float64 {
	sum := 0.0
	for j, cj := range lp.C {
		sum += cj * x[j]
	}
	if lp.Sense == Minimize {
		return -sum
	}
	return sum
}
