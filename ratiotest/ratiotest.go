// Package ratiotest implements the ratio-test component (spec §4.5, C6):
// the RatioTester interface, a textbook single-pass implementation, and
// the Harris two-pass variant with delta-tolerance bound relaxation.
//
// Grounded in shape on the minimal-ratio loop in
// felipends-revised-simplex/simplex/simplex.go (the `minimalRatio`/
// `leaveBaseIndex` loop), generalized from that teacher's slack-only,
// lower-bound-only standard form to bounded variables on both sides. The
// kernel's dual ratio test (LEAVE algorithm) does not use this package.
package ratiotest

import "math"

// Candidate is one basic entity considered during a ratio test: its
// position, the step length its own
// bound admits, and the pivot magnitude used to break near-ties.
type Candidate struct {
	Pos   int
	Step  float64 // non-negative distance to this candidate's binding bound
	Pivot float64 // |alpha_pos|, used for the Harris tie-break
}

// Source is the narrow view of kernel state a RatioTester needs.
type Source interface {
	Delta() float64 // feasibility tolerance driving the relaxed first pass
	Eps() float64
	// Shift relaxes the bound of a basic entity outward by slack,
	// recording the shift so the kernel can unShift it before declaring
	// optimality (spec §4.4 "Shifting").
	Shift(pos int, slack float64)
}

// RatioTester selects the counterpart variable preserving feasibility (or
// priceability, for the dual test), possibly shifting a bound to avoid a
// numerically unstable or infeasible pivot.
type RatioTester interface {
	Load(src Source)
	// Select runs the ratio test over cands and returns the winning
	// position, its step, and whether any candidate existed (false means
	// unbounded: no candidate restricts the step).
	Select(cands []Candidate) (pos int, step float64, ok bool)
}

// Textbook is the single-pass minimum-ratio rule: take the candidate with
// the smallest Step, breaking ties by largest Pivot (for stability),
// exactly as felipends-revised-simplex/simplex/simplex.go's loop does
// modulo its lack of an upper-bound side.
type Textbook struct {
	src Source
}

func NewTextbook() *Textbook { return &Textbook{} }
func (t *Textbook) Load(src Source) { t.src = src }

func (t *Textbook) Select(cands []Candidate) (int, float64, bool) {
	if len(cands) == 0 {
		return -1, math.Inf(1), false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.Step < best.Step-t.src.Eps() ||
			(math.Abs(c.Step-best.Step) <= t.src.Eps() && math.Abs(c.Pivot) > math.Abs(best.Pivot)) {
			best = c
		}
	}
	return best.Pos, best.Step, true
}

// Harris is the two-phase ratio test of spec §4.5: a first pass finds the
// maximum step delta1 admitted once every bound is relaxed by the
// feasibility tolerance, then a second pass picks, among candidates whose
// Step falls in [delta1-eps, delta1], the one with the largest pivot
// magnitude (for numerical stability), shifting that candidate's bound by
// the residual slack it borrowed from the relaxation.
type Harris struct {
	src Source
}

func NewHarris() *Harris { return &Harris{} }
func (h *Harris) Load(src Source) { h.src = src }

func (h *Harris) Select(cands []Candidate) (int, float64, bool) {
	if len(cands) == 0 {
		return -1, math.Inf(1), false
	}
	delta := h.src.Delta()
	eps := h.src.Eps()

	delta1 := math.Inf(1)
	for _, c := range cands {
		relaxed := c.Step + delta/maxAbs1(c.Pivot)
		if relaxed < delta1 {
			delta1 = relaxed
		}
	}

	bestIdx := -1
	bestPivot := 0.0
	for i, c := range cands {
		if c.Step < delta1-eps || c.Step > delta1 {
			continue
		}
		if math.Abs(c.Pivot) > bestPivot {
			bestPivot = math.Abs(c.Pivot)
			bestIdx = i
		}
	}
	if bestIdx == -1 {
		// no candidate landed in the relaxed band; fall back to the
		// tightest true step, same as Textbook.
		bestIdx = 0
		for i, c := range cands {
			if c.Step < cands[bestIdx].Step {
				bestIdx = i
			}
		}
	}
	winner := cands[bestIdx]
	if winner.Step < delta1 {
		h.src.Shift(winner.Pos, delta1-winner.Step)
	}
	return winner.Pos, winner.Step, true
}

func maxAbs1(x float64) float64 {
	a := math.Abs(x)
	if a < 1 {
		return 1
	}
	return a
}
