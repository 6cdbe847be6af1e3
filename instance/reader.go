// Package instance reads an LP instance off disk into a model.LP.
//
// Grounded on the go-glpk MPS-reading calls of the teacher's original
// reader.go (NumRows/NumCols/ColLB/ColUB/RowLB/RowUB/MatRow/ObjCoef),
// retargeted to populate the ranged-row, two-sided-bounded model.LP
// directly instead of converting to slack/artificial-variable standard
// form first.
package instance

import (
	"math"
	"runtime"

	"github.com/lukpank/go-glpk/glpk"
	"github.com/pkg/errors"

	"github.com/go-revsimplex/core/model"
)

// Reader reads an MPS file to construct an LP.
type Reader struct {
	filename string
}

func NewReader(filename string) *Reader {
	return &Reader{filename: filename}
}

// Read parses the MPS file and returns the LP it describes, in the
// minimization convention MPS files use.
func (r *Reader) Read() (*model.LP, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	g := glpk.New()
	defer g.Delete()
	if err := g.ReadMPS(glpk.MPS_FILE, nil, r.filename); err != nil {
		return nil, errors.Wrapf(err, "instance: reading MPS file %s", r.filename)
	}

	nRows, nCols := g.NumRows(), g.NumCols()
	lp := model.New(nRows, nCols)
	lp.Sense = model.Minimize

	for j := 1; j <= nCols; j++ {
		lo := boundOrInf(g.ColLB(j))
		up := boundOrInf(g.ColUB(j))
		if err := lp.ChangeBounds(j-1, lo, up); err != nil {
			return nil, errors.Wrapf(err, "instance: column %d bounds", j)
		}
		// lp.C is contractually stored in the maximization convention
		// (model.go), but MPS files are read here in the minimization
		// convention (Sense is fixed to Minimize above); negate so the
		// kernel's always-maximizing solve and Value()'s sign flip back
		// agree on the same objective.
		if err := lp.ChangeObj(j-1, -g.ObjCoef(j)); err != nil {
			return nil, errors.Wrapf(err, "instance: column %d objective", j)
		}
	}

	for i := 1; i <= nRows; i++ {
		lhs := boundOrInf(g.RowLB(i))
		rhs := boundOrInf(g.RowUB(i))
		if err := lp.ChangeSides(i-1, lhs, rhs); err != nil {
			return nil, errors.Wrapf(err, "instance: row %d sides", i)
		}
		idxs, vals := g.MatRow(i)
		for k, colIdx := range idxs {
			if colIdx == 0 {
				continue
			}
			if err := lp.ChangeElement(i-1, colIdx-1, vals[k]); err != nil {
				return nil, errors.Wrapf(err, "instance: row %d entry", i)
			}
		}
	}
	return lp, nil
}

// boundOrInf maps go-glpk's math.MaxFloat64 unboundedness sentinel to the
// solver's own +/-Inf sentinel (spec §3).
func boundOrInf(v float64) float64 {
	switch {
	case v <= -math.MaxFloat64:
		return -model.Inf
	case v >= math.MaxFloat64:
		return model.Inf
	default:
		return v
	}
}
