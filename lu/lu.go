// Package lu implements the sparse LU factorization of a basis matrix
// (spec §4.2, C3): forward/back solves, eta-form (product-form-of-inverse)
// updates, and the pivoting-threshold stability ladder.
//
// Grounded on the Markowitz threshold-pivoting sparse factorization in
// edp1096-sparse (factor.go, markowitz.go, pivot.go) — adapted here from
// that package's SPICE circuit-matrix setting to a simplex basis matrix —
// and on the Doolittle elimination shape of
// katalvlaran-lvlath/matrix/ops/lu.go for the inner elimination step. The
// basis matrices a simplex kernel factorizes are small enough relative to
// a typical LP (at most dim x dim, dim = min(nRows,nCols)) that this
// package keeps the working array dense between factorizations while
// still exposing the sparse-vector contract (SparseVec in, SSVector out)
// spec §4.2 and §6 describe; fill-reducing Markowitz search is applied as
// a tie-break among threshold-admissible pivots rather than against a
// linked sparse structure, which DESIGN.md records as a scope trade-off.
package lu

import (
	"math"

	"github.com/pkg/errors"

	"github.com/go-revsimplex/core/ssvec"
	"github.com/go-revsimplex/core/vecmath"
)

// EtaUpdate is a single rank-one basis-column replacement: column Idx of
// the (possibly already updated) basis was replaced by the column whose
// solveRight image under the factorization at that time is Vec.
type EtaUpdate struct {
	Idx int
	Vec []float64
}

// ErrSingular is returned by Factorize/Update when a pivot column has no
// admissible nonzero left, even after the theta ladder saturates.
var ErrSingular = errors.New("lu: singular basis")

// Params are the numeric policy knobs of spec §4.2/§6.
type Params struct {
	ThetaMin  float64 // pivoting threshold floor, default 0.01
	StabFloor float64 // minimum acceptable stability, default 1e-2
}

func DefaultParams() Params { return Params{ThetaMin: 0.01, StabFloor: 1e-2} }

// Factor owns the LU of the current basis matrix plus the ordered list of
// eta-update factors applied since the last full refactorization.
type Factor struct {
	Dim    int
	Params Params

	theta float64

	// Dense working factorization: l is unit lower-triangular, u is upper
	// triangular, both in *factored* row/col order; rowPerm[i]/colPerm[j]
	// map original row/col i/j to their position in that order.
	l, u               [][]float64
	rowPerm, colPerm   []int
	invRowPerm         []int
	invColPerm         []int

	etas []EtaUpdate

	stability float64
	singular  bool
}

// New builds an unloaded factorization handle.
func New(p Params) *Factor {
	return &Factor{Params: p, theta: p.ThetaMin}
}

// Clear drops the factorization, forcing the next Load to refactorize
// from scratch (spec §5 "the LU factorization ... is invalidated —
// explicit clear — whenever the basis is altered outside a standard
// pivot").
func (f *Factor) Clear() {
	f.l, f.u = nil, nil
	f.rowPerm, f.colPerm = nil, nil
	f.etas = nil
	f.singular = false
	f.stability = 0
	f.theta = f.Params.ThetaMin
}

// thetaBetter tightens the pivoting threshold per spec §4.2: x10 below
// 0.1, midpoint between theta and 1 below 0.9, and from 0.9 on straight
// to the 0.99999 cap.
func thetaBetter(theta float64) float64 {
	switch {
	case theta < 0.1:
		theta *= 10
	case theta < 0.9:
		theta = (theta + 1) / 2
	default:
		theta = 0.99999
	}
	if theta > 0.99999 {
		theta = 0.99999
	}
	return theta
}

// Load factorizes B = L.U for the basis matrix given as dim ordered
// columns, retrying with a tightened theta whenever stability falls below
// 2*StabFloor, until stability clears the floor or theta saturates.
func (f *Factor) Load(cols []*vecmath.SparseVec, dim int) error {
	f.Dim = dim
	dense := toDense(cols, dim)

	theta := f.Params.ThetaMin
	var lastErr error
	for tries := 0; tries < 8; tries++ {
		l, u, rowPerm, colPerm, stab, err := factorizeDense(dense, dim, theta)
		if err != nil {
			lastErr = err
			theta = thetaBetter(theta)
			if theta >= 0.99999 {
				break
			}
			continue
		}
		f.l, f.u, f.rowPerm, f.colPerm = l, u, rowPerm, colPerm
		f.invRowPerm = invert(rowPerm)
		f.invColPerm = invert(colPerm)
		f.etas = nil
		f.stability = stab
		f.singular = false
		f.theta = theta
		if stab >= 2*f.Params.StabFloor || theta >= 0.99999 {
			return nil
		}
		theta = thetaBetter(theta)
	}
	f.singular = true
	if lastErr != nil {
		return errors.Wrap(ErrSingular, lastErr.Error())
	}
	return ErrSingular
}

func toDense(cols []*vecmath.SparseVec, dim int) [][]float64 {
	m := make([][]float64, dim)
	for i := range m {
		m[i] = make([]float64, dim)
	}
	for j, c := range cols {
		for _, e := range c.Entries {
			m[e.Idx][j] = e.Val
		}
	}
	return m
}

func invert(p []int) []int {
	inv := make([]int, len(p))
	for i, v := range p {
		inv[v] = i
	}
	return inv
}

// factorizeDense runs threshold (Markowitz tie-break) Doolittle
// elimination with full row+column pivoting on a dense copy of B,
// returning L (unit lower), U (upper), the chosen row/col orderings, and
// a [0,1] stability metric (min/max magnitude pivot ratio).
func factorizeDense(b [][]float64, dim int, theta float64) (l, u [][]float64, rowPerm, colPerm []int, stability float64, err error) {
	// work is b with rows/cols still to be eliminated; we physically
	// permute a copy so elimination always proceeds on a leading
	// submatrix, matching the textbook Doolittle loop shape.
	work := make([][]float64, dim)
	for i := range work {
		work[i] = append([]float64(nil), b[i]...)
	}
	rowOrder := identity(dim)
	colOrder := identity(dim)

	l = allocSquare(dim)
	u = allocSquare(dim)
	for i := 0; i < dim; i++ {
		l[i][i] = 1
	}

	minPivot, maxPivot := math.Inf(1), 0.0

	for k := 0; k < dim; k++ {
		pr, pc, ok := selectPivot(work, k, dim, theta)
		if !ok {
			return nil, nil, nil, nil, 0, errors.Errorf("no admissible pivot at step %d", k)
		}
		if pr != k {
			work[k], work[pr] = work[pr], work[k]
			rowOrder[k], rowOrder[pr] = rowOrder[pr], rowOrder[k]
			// Swap only the multipliers already computed (columns < k);
			// the unit diagonal stays in place.
			for j := 0; j < k; j++ {
				l[k][j], l[pr][j] = l[pr][j], l[k][j]
			}
		}
		if pc != k {
			for i := range work {
				work[i][k], work[i][pc] = work[i][pc], work[i][k]
			}
			colOrder[k], colOrder[pc] = colOrder[pc], colOrder[k]
		}

		piv := work[k][k]
		a := math.Abs(piv)
		if a < minPivot {
			minPivot = a
		}
		if a > maxPivot {
			maxPivot = a
		}
		u[k][k] = piv

		for i := k + 1; i < dim; i++ {
			if work[i][k] == 0 {
				continue
			}
			factor := work[i][k] / piv
			l[i][k] = factor
			for j := k; j < dim; j++ {
				work[i][j] -= factor * work[k][j]
			}
		}
		for j := k + 1; j < dim; j++ {
			u[k][j] = work[k][j]
		}
	}

	if maxPivot == 0 {
		return nil, nil, nil, nil, 0, errors.New("zero matrix")
	}
	stability = minPivot / maxPivot
	if stability > 1 {
		stability = 1
	}
	return l, u, rowOrder, colOrder, stability, nil
}

// selectPivot scans the trailing (dim-k)x(dim-k) submatrix for entries
// whose magnitude is at least theta * that column's max, then among those
// admissible candidates picks the one with the fewest nonzeros in its row
// (a dense stand-in for Markowitz count), matching the threshold-pivoting
// shape of edp1096-sparse's markowitz.go.
func selectPivot(work [][]float64, k, dim int, theta float64) (row, col int, ok bool) {
	colMax := make([]float64, dim)
	for j := k; j < dim; j++ {
		m := 0.0
		for i := k; i < dim; i++ {
			if a := math.Abs(work[i][j]); a > m {
				m = a
			}
		}
		colMax[j] = m
	}

	bestCount := math.MaxInt32
	found := false
	for j := k; j < dim; j++ {
		if colMax[j] == 0 {
			continue
		}
		for i := k; i < dim; i++ {
			a := math.Abs(work[i][j])
			if a == 0 || a < theta*colMax[j] {
				continue
			}
			count := 0
			for jj := k; jj < dim; jj++ {
				if work[i][jj] != 0 {
					count++
				}
			}
			if count < bestCount {
				bestCount = count
				row, col = i, j
				found = true
			}
		}
	}
	return row, col, found
}

func allocSquare(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

func identity(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// Stability returns the [0,1] conditioning metric from the last
// factorize; values below Params.StabFloor should trigger a caller-driven
// refactorize.
func (f *Factor) Stability() float64 { return f.stability }

// Singular reports whether the last Load/Update hit ErrSingular.
func (f *Factor) Singular() bool { return f.singular }

// solveBaseRight runs the dense forward/back substitution against the
// stored L,U and permutations, ignoring any eta updates layered on top.
func (f *Factor) solveBaseRight(b []float64) []float64 {
	dim := f.Dim
	pb := make([]float64, dim)
	for i := 0; i < dim; i++ {
		pb[f.invRowPerm[i]] = b[i]
	}
	y := make([]float64, dim)
	for i := 0; i < dim; i++ {
		sum := pb[i]
		for j := 0; j < i; j++ {
			sum -= f.l[i][j] * y[j]
		}
		y[i] = sum
	}
	z := make([]float64, dim)
	for i := dim - 1; i >= 0; i-- {
		sum := y[i]
		for j := i + 1; j < dim; j++ {
			sum -= f.u[i][j] * z[j]
		}
		z[i] = sum / f.u[i][i]
	}
	x := make([]float64, dim)
	for i := 0; i < dim; i++ {
		x[f.colPerm[i]] = z[i]
	}
	return x
}

func (f *Factor) solveBaseLeft(b []float64) []float64 {
	dim := f.Dim
	// xᵀB = bᵀ  <=>  Bᵀx = b. Bᵀ = (ProwᵗL U Pcolᵗ)ᵗ permutation-transposed
	// solved by reversing the forward/back substitution order against Uᵗ
	// then Lᵗ, then unpermuting the other way.
	pb := make([]float64, dim)
	for i := 0; i < dim; i++ {
		pb[f.invColPerm[i]] = b[i]
	}
	y := make([]float64, dim)
	for i := 0; i < dim; i++ {
		sum := pb[i]
		for j := 0; j < i; j++ {
			sum -= f.u[j][i] * y[j]
		}
		y[i] = sum / f.u[i][i]
	}
	z := make([]float64, dim)
	for i := dim - 1; i >= 0; i-- {
		sum := y[i]
		for j := i + 1; j < dim; j++ {
			sum -= f.l[j][i] * z[j]
		}
		z[i] = sum
	}
	x := make([]float64, dim)
	for i := 0; i < dim; i++ {
		x[f.rowPerm[i]] = z[i]
	}
	return x
}

// applyEtaRight inverts a single eta update in the forward (solveRight)
// direction: given y = (old basis)^-1 * b, returns x = (new basis)^-1 * b.
func applyEtaRight(e EtaUpdate, y []float64) []float64 {
	x := append([]float64(nil), y...)
	piv := e.Vec[e.Idx]
	if piv == 0 {
		return x
	}
	t := y[e.Idx] / piv
	x[e.Idx] = t
	for i := range x {
		if i == e.Idx {
			continue
		}
		x[i] = y[i] - e.Vec[i]*t
	}
	return x
}

// applyEtaLeftInverse peels one eta update off in the backward
// (solveLeft) direction: x_j = y_j for j != idx,
// x_idx = (y_idx - sum_{i!=idx} h_i*y_i) / h_idx.
func applyEtaLeftInverse(e EtaUpdate, y []float64) []float64 {
	x := append([]float64(nil), y...)
	piv := e.Vec[e.Idx]
	if piv == 0 {
		return x
	}
	sum := 0.0
	for i, h := range e.Vec {
		if i == e.Idx {
			continue
		}
		sum += h * y[i]
	}
	x[e.Idx] = (y[e.Idx] - sum) / piv
	return x
}

// SolveRight yields x with B.x = b.
func (f *Factor) SolveRight(b *vecmath.DenseVec) (*vecmath.DenseVec, error) {
	if f.singular || f.l == nil {
		return nil, ErrSingular
	}
	x := f.solveBaseRight(b.Data)
	for _, e := range f.etas {
		x = applyEtaRight(e, x)
	}
	return &vecmath.DenseVec{Dim: f.Dim, Data: x}, nil
}

// SolveLeft yields x with xᵀ.B = bᵀ.
func (f *Factor) SolveLeft(b *vecmath.DenseVec) (*vecmath.DenseVec, error) {
	if f.singular || f.l == nil {
		return nil, ErrSingular
	}
	y := append([]float64(nil), b.Data...)
	for i := len(f.etas) - 1; i >= 0; i-- {
		y = applyEtaLeftInverse(f.etas[i], y)
	}
	x := f.solveBaseLeft(y)
	return &vecmath.DenseVec{Dim: f.Dim, Data: x}, nil
}

// SolveRight4Update is the dual sparse-vector solve: returns x = B^-1 b as
// an SSVector directly, the hot path used inside a pivot.
func (f *Factor) SolveRight4Update(b *vecmath.SparseVec, eps float64) (*ssvec.SSVector, error) {
	dense := b.ToDense()
	x, err := f.SolveRight(dense)
	if err != nil {
		return nil, err
	}
	v := ssvec.New(f.Dim, eps)
	copy(v.Data, x.Data)
	v.SetupNow()
	return v, nil
}

// Update replaces the idx-th column of the (possibly already updated)
// basis by the column whose SolveRight image is eta, recording a rank-one
// eta-form correction instead of refactorizing (product form of the
// inverse). The permutations and L/U from the last full factorization
// stay fixed; SolveRight/SolveLeft thread the accumulated eta list on top
// of them (applyEtaRight/applyEtaLeftInverse), and NumUpdates drives the
// kernel's periodic-refactorize policy once the list grows too long or
// Stability drops below floor.
func (f *Factor) Update(idx int, eta []float64) error {
	if f.singular || f.l == nil {
		return ErrSingular
	}
	if eta[idx] == 0 {
		f.singular = true
		return ErrSingular
	}
	f.etas = append(f.etas, EtaUpdate{Idx: idx, Vec: append([]float64(nil), eta...)})
	return nil
}

// NumUpdates reports how many eta corrections are layered on top of the
// last full factorization, used by the kernel's periodic-refactorize
// policy (spec §4.4 "every N iterations or when stability drops below
// floor").
func (f *Factor) NumUpdates() int { return len(f.etas) }
