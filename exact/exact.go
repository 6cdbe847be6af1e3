// Package exact implements the rational arithmetic domain the iterative
// refinement loop certifies against (spec §4.6/§4.7, part of C8): exact
// LP data, exact violation measurement, and rational reconstruction of a
// floating-point solution via continued fractions.
//
// No repository in the retrieval pack implements general rational
// arithmetic or rational reconstruction (predrag3141-PSLQ's BigNumber is
// a fixed-point scaled integer with no denominator, unable to represent
// an arbitrary p/q — see SPEC_FULL.md §3), so this package is built on
// the standard library's math/big.Rat, the one domain dependency not
// grounded on a pack repository; the continued-fraction reconstruction
// algorithm itself is the standard one, not drawn from any example.
package exact

import (
	"math"
	"math/big"

	"github.com/go-revsimplex/core/basis"
	"github.com/go-revsimplex/core/model"
)

// Vec is a dense vector of exact rationals.
type Vec struct {
	Dim  int
	Data []*big.Rat
}

func NewVec(dim int) *Vec {
	v := &Vec{Dim: dim, Data: make([]*big.Rat, dim)}
	for i := range v.Data {
		v.Data[i] = new(big.Rat)
	}
	return v
}

// FromFloat converts a float64 slice to exact rationals. SetFloat64 is
// lossless here: every float64 is itself a dyadic rational, so the
// conversion introduces no rounding (spec §4.7 "the exact domain's copy
// of the LP data is bit-identical to the input, not a rounded
// approximation of it").
func FromFloat(xs []float64) *Vec {
	v := NewVec(len(xs))
	for i, x := range xs {
		v.Data[i].SetFloat64(x)
	}
	return v
}

// ToFloatApprox returns the nearest float64 to each entry, for reporting
// only; it is never fed back into the exact arithmetic.
func (v *Vec) ToFloatApprox() []float64 {
	out := make([]float64, v.Dim)
	for i, r := range v.Data {
		f, _ := r.Float64()
		out[i] = f
	}
	return out
}

// col is one column of an exact constraint matrix.
type col struct {
	idx []int
	val []*big.Rat
}

// LP is the exact-rational mirror of model.LP (and, after FromEquality,
// of an equality-form system): the same shape, with coefficients, bounds,
// and sides converted once via FromFloat.
type LP struct {
	NRows, NCols int
	Cols         []col // length NCols
	Lo, Up, C    []*big.Rat
	Lhs, Rhs     []*big.Rat
}

// FromModel builds the exact mirror of lp.
func FromModel(lp *model.LP) *LP {
	e := &LP{NRows: lp.NRows, NCols: lp.NCols}
	e.Lo = FromFloat(lp.Lo).Data
	e.Up = FromFloat(lp.Up).Data
	e.C = FromFloat(lp.C).Data
	e.Lhs = FromFloat(lp.Lhs).Data
	e.Rhs = FromFloat(lp.Rhs).Data
	e.Cols = make([]col, lp.NCols)
	for j, sv := range lp.ColsA {
		c := col{idx: make([]int, len(sv.Entries)), val: make([]*big.Rat, len(sv.Entries))}
		for k, ent := range sv.Entries {
			c.idx[k] = ent.Idx
			c.val[k] = new(big.Rat).SetFloat64(ent.Val)
		}
		e.Cols[j] = c
	}
	return e
}

// RowActivity computes the exact Ax for every row, given a full primal
// vector x (length NCols).
func (e *LP) RowActivity(x *Vec) []*big.Rat {
	act := make([]*big.Rat, e.NRows)
	for i := range act {
		act[i] = new(big.Rat)
	}
	for j, c := range e.Cols {
		xj := x.Data[j]
		if xj.Sign() == 0 {
			continue
		}
		for k, i := range c.idx {
			t := new(big.Rat).Mul(c.val[k], xj)
			act[i].Add(act[i], t)
		}
	}
	return act
}

// PrimalViolation returns the largest exact infeasibility of x against
// row sides and column bounds: 0 means x is exactly feasible.
func (e *LP) PrimalViolation(x *Vec) *big.Rat {
	worst := new(big.Rat)
	act := e.RowActivity(x)
	for i, a := range act {
		if a.Cmp(e.Lhs[i]) < 0 {
			d := new(big.Rat).Sub(e.Lhs[i], a)
			if d.Cmp(worst) > 0 {
				worst = d
			}
		}
		if a.Cmp(e.Rhs[i]) > 0 {
			d := new(big.Rat).Sub(a, e.Rhs[i])
			if d.Cmp(worst) > 0 {
				worst = d
			}
		}
	}
	for j := 0; j < e.NCols; j++ {
		xj := x.Data[j]
		if xj.Cmp(e.Lo[j]) < 0 {
			d := new(big.Rat).Sub(e.Lo[j], xj)
			if d.Cmp(worst) > 0 {
				worst = d
			}
		}
		if xj.Cmp(e.Up[j]) > 0 {
			d := new(big.Rat).Sub(xj, e.Up[j])
			if d.Cmp(worst) > 0 {
				worst = d
			}
		}
	}
	return worst
}

// ReducedCost computes the exact reduced cost d_j = c_j - y.A_j for
// column j given exact row duals y.
func (e *LP) ReducedCost(j int, y *Vec) *big.Rat {
	d := new(big.Rat).Set(e.C[j])
	c := e.Cols[j]
	for k, i := range c.idx {
		t := new(big.Rat).Mul(c.val[k], y.Data[i])
		d.Sub(d, t)
	}
	return d
}

// DualViolation returns the largest exact sign violation of the reduced
// costs against the given column statuses, in the maximization convention
// the LP is stored in (PonLower wants d<=0, PonUpper wants d>=0, PFree
// wants d=0): 0 means y is an exactly dual-feasible certificate for that
// basis.
func (e *LP) DualViolation(y *Vec, statusOf func(j int) basis.Status) *big.Rat {
	worst := new(big.Rat)
	zero := new(big.Rat)
	for j := 0; j < e.NCols; j++ {
		st := statusOf(j)
		if st == basis.Basic || st == basis.PFixed {
			continue
		}
		d := e.ReducedCost(j, y)
		switch st {
		case basis.PonLower:
			if d.Cmp(zero) > 0 && d.Cmp(worst) > 0 {
				worst = d
			}
		case basis.PonUpper:
			if d.Cmp(zero) < 0 {
				neg := new(big.Rat).Neg(d)
				if neg.Cmp(worst) > 0 {
					worst = neg
				}
			}
		case basis.PFree:
			abs := new(big.Rat).Abs(d)
			if abs.Cmp(worst) > 0 {
				worst = abs
			}
		}
	}
	return worst
}

// Reconstruct finds the rational with denominator at most maxDenom
// closest to x, via the standard continued-fraction convergent search
// (spec §4.7 "rational reconstruction"): successive convergents p_k/q_k
// are generated until the next one would exceed maxDenom, at which point
// the last convergent within budget is returned.
func Reconstruct(x float64, maxDenom int64) *big.Rat {
	if x == 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return new(big.Rat)
	}
	neg := x < 0
	v := math.Abs(x)

	p0, q0 := int64(0), int64(1)
	p1, q1 := int64(1), int64(0)
	for i := 0; i < 64; i++ {
		a := int64(math.Floor(v))
		p2 := a*p1 + p0
		q2 := a*q1 + q0
		if q2 <= 0 || q2 > maxDenom {
			break
		}
		p0, q0 = p1, q1
		p1, q1 = p2, q2
		frac := v - float64(a)
		if frac < 1e-15 {
			break
		}
		v = 1 / frac
	}
	if q1 == 0 {
		q1 = 1
	}
	r := big.NewRat(p1, q1)
	if neg {
		r.Neg(r)
	}
	return r
}

// ReconstructVec applies Reconstruct entrywise.
func ReconstructVec(xs []float64, maxDenom int64) *Vec {
	v := NewVec(len(xs))
	for i, x := range xs {
		v.Data[i] = Reconstruct(x, maxDenom)
	}
	return v
}

// PowerOfTwoScale returns the power of two nearest in log-magnitude to x,
// used by the IR loop to scale rows/columns before refinement (spec
// §4.6): multiplying or dividing by a power of two is exact in binary
// floating point, so scaling never itself introduces rounding error.
func PowerOfTwoScale(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Pow(2, math.Round(math.Log2(math.Abs(x))))
}
