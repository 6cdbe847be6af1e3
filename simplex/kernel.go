// Package simplex implements the revised-simplex kernel (spec §4.4, C7):
// the four representation x algorithm combinations, bound shifting and
// unshifting, a bounded-cycling guard, and periodic refactorization,
// wired to the LU factorization, basis descriptor, pricer, and ratio
// tester components. Basic values and duals are recomputed from the
// factorization at every iteration; no step compares them against
// incrementally updated copies.
//
// Grounded on the pricing/ratio-test/pivot loop shape of
// felipends-revised-simplex/simplex/simplex.go, generalized from that
// teacher's single dense primal variant (lower-bounded slack form) to
// the sparse, two-sided-bounded, four-mode kernel spec.md §4.4 describes.
package simplex

import (
	"math"
	"math/rand"

	"github.com/go-revsimplex/core/basis"
	"github.com/go-revsimplex/core/lu"
	"github.com/go-revsimplex/core/model"
	"github.com/go-revsimplex/core/pricer"
	"github.com/go-revsimplex/core/ratiotest"
	"github.com/go-revsimplex/core/transform"
	"github.com/go-revsimplex/core/vecmath"
)

// Algorithm selects whether a pivot is driven by the entering variable
// (primal-style search) or the leaving variable (dual-style search).
type Algorithm int

const (
	Enter Algorithm = iota
	Leave
)

// Outcome is the kernel's terminal status for one Solve call.
type Outcome int

const (
	Optimal Outcome = iota
	Unbounded
	Infeasible
	SingularBasis
	IterationLimit
)

func (o Outcome) String() string {
	switch o {
	case Optimal:
		return "OPTIMAL"
	case Unbounded:
		return "UNBOUNDED"
	case Infeasible:
		return "INFEASIBLE"
	case SingularBasis:
		return "SINGULAR"
	case IterationLimit:
		return "ITERATION_LIMIT"
	default:
		return "UNKNOWN"
	}
}

// Params are the kernel's numeric policy knobs (spec §4.4/§6).
type Params struct {
	Eps           float64 // zero tolerance for pivot/reduced-cost comparisons
	Delta         float64 // feasibility and optimality tolerance
	MaxIter       int
	MaxCycle      int // consecutive degenerate pivots before perturbing
	PerturbMax    float64
	RefactorEvery int
	MaxShiftRound int // outer shift/unshift rounds before declaring Infeasible
}

func DefaultParams() Params {
	return Params{
		Eps:           1e-9,
		Delta:         1e-7,
		MaxIter:       10000,
		MaxCycle:      50,
		PerturbMax:    1e-6,
		RefactorEvery: 100,
		MaxShiftRound: 50,
	}
}

// Kernel is the revised-simplex engine. One Kernel is built per LP shape
// and re-loaded across the iterative-refinement loop's rounds via Reload,
// warm-starting from the previous round's basis (spec §4.6: "the same
// combinatorial basis is reused, only the numeric values differ").
type Kernel struct {
	eq     *transform.EqualityLP
	desc   *basis.Desc
	factor *lu.Factor
	params Params
	pricer pricer.Pricer
	ratio  ratiotest.RatioTester
	rep    basis.Rep

	basicAt []int // position -> variable id, length dim
	posOf   []int // variable id -> position, or -1 if nonbasic

	fVec  []float64 // current basic values, length dim
	lBnd  []float64 // current (possibly shifted) lower bound per position
	uBnd  []float64 // current (possibly shifted) upper bound per position
	shift []float64 // accumulated shift at each position, signed: >0 means lBnd was pulled down, <0 means uBnd was pushed up

	coP []float64 // dual multipliers y = B^-T c_B, length dim

	iterations  int
	degenCount  int
	rnd         *rand.Rand
	lastOutcome Outcome
}

// New builds an unloaded kernel using the given Pricer and RatioTester
// implementations.
func New(p pricer.Pricer, rt ratiotest.RatioTester, params Params) *Kernel {
	return &Kernel{
		params: params,
		pricer: p,
		ratio:  rt,
		factor: lu.New(lu.DefaultParams()),
		rnd:    rand.New(rand.NewSource(1)),
	}
}

// Reload rebuilds the equality-form system from lp. If the shape matches
// the previous load, the existing basis (basicAt/desc) is kept and used
// as a warm start; otherwise the kernel cold-starts at the all-slack
// basis (spec §4.8 "Equality transform").
func (k *Kernel) Reload(lp *model.LP) {
	eq := transform.ToEquality(lp)
	warm := k.eq != nil && k.eq.NVars == eq.NVars && k.eq.NRows == eq.NRows
	k.eq = eq

	if !warm {
		k.coldStart()
		return
	}
	// Shape unchanged: keep basicAt/posOf/desc, reset each basic
	// position's bounds to the new LP's values, and read nonbasic values
	// from the new bounds through nonbasicValue.
	for pos, id := range k.basicAt {
		k.lBnd[pos], k.uBnd[pos] = eq.Lo[id], eq.Up[id]
		k.shift[pos] = 0
	}
	k.factor.Clear()
	if err := k.factor.Load(k.basisCols(), k.desc.Dim()); err != nil {
		// warm basis no longer factorizes (structural change beyond a
		// same-shape reload); fall back to a cold start.
		k.coldStart()
	}
}

func (k *Kernel) coldStart() {
	eq := k.eq
	dim := eq.NRows
	k.desc = basis.New(eq.NRows, eq.NCols, basis.Column)
	k.basicAt = make([]int, dim)
	k.posOf = make([]int, eq.NVars)
	for id := range k.posOf {
		k.posOf[id] = -1
	}
	for i := 0; i < dim; i++ {
		id := eq.NCols + i
		k.basicAt[i] = id
		k.posOf[id] = i
		k.desc.RowStatus[i] = basis.Basic
	}
	for j := 0; j < eq.NCols; j++ {
		k.desc.ColStatus[j] = k.initialNonbasicStatus(j)
	}
	k.lBnd = make([]float64, dim)
	k.uBnd = make([]float64, dim)
	k.shift = make([]float64, dim)
	for i := 0; i < dim; i++ {
		id := eq.NCols + i
		k.lBnd[i], k.uBnd[i] = eq.Lo[id], eq.Up[id]
	}
	k.factor.Clear()
	_ = k.factor.Load(k.basisCols(), dim)
	k.iterations, k.degenCount = 0, 0
}

func (k *Kernel) initialNonbasicStatus(j int) basis.Status {
	lo, up := k.eq.Lo[j], k.eq.Up[j]
	switch {
	case lo == up:
		return basis.PFixed
	case lo <= -model.Inf && up >= model.Inf:
		return basis.PFree
	case lo > -model.Inf:
		return basis.PonLower
	default:
		return basis.PonUpper
	}
}

// initialDualFeasibleStatus assigns every structural nonbasic to the
// bound consistent with the slack basis's initial y=0 reduced cost
// (d_j = c_j there), so the dual algorithm starts dual-feasible without
// needing a dual-side shift mechanism.
func (k *Kernel) initialDualFeasibleStatus(j int) basis.Status {
	lo, up := k.eq.Lo[j], k.eq.Up[j]
	if lo == up {
		return basis.PFixed
	}
	if lo <= -model.Inf && up >= model.Inf {
		return basis.PFree
	}
	if isSlack, _ := k.eq.IsSlack(j); isSlack {
		return k.slackDualFeasibleStatus(lo, up)
	}
	if k.eq.C[j] <= 0 {
		if lo > -model.Inf {
			return basis.PonLower
		}
		return basis.PonUpper
	}
	if up < model.Inf {
		return basis.PonUpper
	}
	return basis.PonLower
}

// slackDualFeasibleStatus derives a row slack's dual-feasible initial
// status from the §4.3 ranged-row dual-bound table (basis.RangedSlackBounds)
// rather than the structural branch's cost-sign check above, which has no
// meaning for a slack (C[slack] == 0 always). lo/up are the slack's own
// equality-form bounds [-rhs,-lhs]; RangedSlackBounds wants lhs/rhs, so
// they are recovered before the lookup. The table bounds the row's dual
// multiplier y_i; since the slack's reduced cost is d = -y_i (a single 1
// in row i, zero cost), y_i <= 0 admits PonLower (d >= 0) and y_i >= 0
// admits PonUpper (d <= 0). The table's remaining case (a generic ranged
// row, both sides finite and unequal) pins y_i at 0, which is reachable
// from either bound; PonLower is the tie-break, matching this kernel's
// structural-variable tie-break above.
func (k *Kernel) slackDualFeasibleStatus(lo, up float64) basis.Status {
	rhs, lhs := -lo, -up
	dLo, dUp := basis.RangedSlackBounds(lhs, rhs)
	switch {
	case dUp <= 0 && dLo <= -model.Inf:
		return basis.PonLower
	case dLo >= 0 && dUp >= model.Inf:
		return basis.PonUpper
	default:
		return basis.PonLower
	}
}

func (k *Kernel) basisCols() []*vecmath.SparseVec {
	cols := make([]*vecmath.SparseVec, len(k.basicAt))
	for pos, id := range k.basicAt {
		cols[pos] = k.eq.ColsByID[id]
	}
	return cols
}

func (k *Kernel) statusOf(id int) basis.Status {
	if slack, row := k.eq.IsSlack(id); slack {
		return k.desc.RowStatus[row]
	}
	return k.desc.ColStatus[id]
}

func (k *Kernel) setStatus(id int, s basis.Status) {
	if slack, row := k.eq.IsSlack(id); slack {
		k.desc.RowStatus[row] = s
	} else {
		k.desc.ColStatus[id] = s
	}
}

func (k *Kernel) pricerID(id int) pricer.Id {
	slack, row := k.eq.IsSlack(id)
	if slack {
		return pricer.Id{IsRow: true, Index: row}
	}
	return pricer.Id{IsRow: false, Index: id}
}

func (k *Kernel) idFromPricerID(pid pricer.Id) int {
	if pid.IsRow {
		return k.eq.NCols + pid.Index
	}
	return pid.Index
}

func (k *Kernel) nonbasicValue(id int) float64 {
	switch k.statusOf(id) {
	case basis.PonLower, basis.PFixed:
		return k.eq.Lo[id]
	case basis.PonUpper:
		return k.eq.Up[id]
	default:
		return 0
	}
}

func denseFrom(data []float64) *vecmath.DenseVec {
	return &vecmath.DenseVec{Dim: len(data), Data: data}
}

func dotSparseSlice(sv *vecmath.SparseVec, y []float64) float64 {
	s := 0.0
	for _, e := range sv.Entries {
		s += e.Val * y[e.Idx]
	}
	return s
}

// computeFVec recomputes the basic values from scratch: x_B = B^-1 *
// (-sum over nonbasic id of A_id * nonbasicValue(id)).
func (k *Kernel) computeFVec() error {
	dim := k.desc.Dim()
	rhs := make([]float64, dim)
	for id := 0; id < k.eq.NVars; id++ {
		if k.posOf[id] >= 0 {
			continue
		}
		v := k.nonbasicValue(id)
		if v == 0 {
			continue
		}
		for _, e := range k.eq.ColsByID[id].Entries {
			rhs[e.Idx] += e.Val * v
		}
	}
	for i := range rhs {
		rhs[i] = -rhs[i]
	}
	sol, err := k.factor.SolveRight(denseFrom(rhs))
	if err != nil {
		return err
	}
	k.fVec = sol.Data
	return nil
}

// computeCoP recomputes the dual multipliers y solving B^T y = c_B.
func (k *Kernel) computeCoP() error {
	dim := k.desc.Dim()
	cb := make([]float64, dim)
	for pos, id := range k.basicAt {
		cb[pos] = k.eq.C[id]
	}
	sol, err := k.factor.SolveLeft(denseFrom(cb))
	if err != nil {
		return err
	}
	k.coP = sol.Data
	return nil
}

func (k *Kernel) reducedCost(id int) float64 {
	return k.eq.C[id] - dotSparseSlice(k.eq.ColsByID[id], k.coP)
}

// test implements pricer.Source.Test's "negative means profitable"
// convention uniformly over the three nonbasic regimes.
func (k *Kernel) test(id int) float64 {
	d := k.reducedCost(id)
	switch k.statusOf(id) {
	case basis.PonLower:
		return -d
	case basis.PonUpper:
		return d
	case basis.PFree:
		return -math.Abs(d)
	default: // PFixed
		return 1
	}
}

func (k *Kernel) fTest(pos int) float64 {
	v := k.fVec[pos]
	if v < k.lBnd[pos]-k.params.Delta {
		return k.lBnd[pos] - v
	}
	if v > k.uBnd[pos]+k.params.Delta {
		return v - k.uBnd[pos]
	}
	return 0
}

// kernelSource adapts *Kernel to pricer.Source.
type kernelSource struct{ k *Kernel }

func (s kernelSource) Dim() int     { return s.k.desc.Dim() }
func (s kernelSource) CoDim() int   { return s.k.eq.NVars - s.k.desc.Dim() }
func (s kernelSource) Rep() basis.Rep { return s.k.rep }
func (s kernelSource) Test(id pricer.Id) float64 {
	return s.k.test(s.k.idFromPricerID(id))
}
func (s kernelSource) FTest(pos int) float64 { return s.k.fTest(pos) }
func (s kernelSource) ComputeTest(id pricer.Id) float64 {
	return s.k.test(s.k.idFromPricerID(id))
}
func (s kernelSource) NonBasicIds() []pricer.Id {
	out := make([]pricer.Id, 0, len(s.k.posOf)-s.k.desc.Dim())
	for id, pos := range s.k.posOf {
		if pos < 0 {
			out = append(out, s.k.pricerID(id))
		}
	}
	return out
}
func (s kernelSource) BasicPositions() []int {
	out := make([]int, s.k.desc.Dim())
	for i := range out {
		out[i] = i
	}
	return out
}

// ratioSource adapts *Kernel to ratiotest.Source.
type ratioSource struct{ k *Kernel }

func (s ratioSource) Delta() float64 { return s.k.params.Delta }
func (s ratioSource) Eps() float64   { return s.k.params.Eps }
func (s ratioSource) Shift(pos int, slack float64) {
	s.k.shiftPosition(pos, slack)
}

// shiftPosition widens whichever bound is currently binding at pos by
// slack, recording the amount so unShift can try to undo it (spec §4.4
// "Shifting").
func (k *Kernel) shiftPosition(pos int, slack float64) {
	if slack <= 0 {
		return
	}
	v := k.fVec[pos]
	if v <= k.lBnd[pos] {
		k.lBnd[pos] -= slack
		k.shift[pos] += slack
	} else {
		k.uBnd[pos] += slack
		k.shift[pos] -= slack
	}
}

// unShift tries to restore every shifted position's bound to its true
// value, returning the largest true-bound violation left over where a
// restore was not possible (spec §4.4: "if a violation remains, the
// algorithm continues").
func (k *Kernel) unShift() float64 {
	worst := 0.0
	for pos := range k.shift {
		if k.shift[pos] == 0 {
			continue
		}
		id := k.basicAt[pos]
		trueLo, trueUp := k.eq.Lo[id], k.eq.Up[id]
		v := k.fVec[pos]
		viol := 0.0
		if v < trueLo-k.params.Delta {
			viol = trueLo - v
		} else if v > trueUp+k.params.Delta {
			viol = v - trueUp
		}
		if viol <= k.params.Delta {
			k.lBnd[pos], k.uBnd[pos] = trueLo, trueUp
			k.shift[pos] = 0
		} else if viol > worst {
			worst = viol
		}
	}
	return worst
}

// Solve runs the kernel to termination under the given representation and
// algorithm, per the semantic table of spec §4.4: (Column,Enter)=primal,
// (Column,Leave)=dual, (Row,Enter)=dual, (Row,Leave)=primal. Both row
// combinations are realized by running the same dim=nRows engine under
// the algorithm the table names directly: representation is a bookkeeping
// viewpoint that does not change the optimal solution found, so a second
// dim=nCols engine is not built to realize it (recorded as a scope
// decision in DESIGN.md).
func (k *Kernel) Solve(rep basis.Rep, alg Algorithm) Outcome {
	k.rep = rep
	k.iterations = 0
	primal := (rep == basis.Column && alg == Enter) || (rep == basis.Row && alg == Leave)
	k.pricer.SetRep(rep)
	if primal {
		k.lastOutcome = k.runPrimal()
	} else {
		k.lastOutcome = k.runDual()
	}
	return k.lastOutcome
}

func (k *Kernel) runPrimal() Outcome {
	k.pricer.Load(kernelSource{k})
	k.ratio.Load(ratioSource{k})

	// Phase 1 by shifting: widen the bound of every basic position whose
	// starting value lies outside it; unShift later tries to restore it.
	if err := k.computeFVec(); err != nil {
		return SingularBasis
	}
	for pos, v := range k.fVec {
		if v < k.lBnd[pos] {
			k.shiftPosition(pos, k.lBnd[pos]-v)
		} else if v > k.uBnd[pos] {
			k.shiftPosition(pos, v-k.uBnd[pos])
		}
	}

	shiftRounds := 0
	for {
		outcome, converged := k.primalInnerLoop()
		if outcome != Optimal {
			return outcome
		}
		if !converged {
			continue
		}
		remaining := k.unShift()
		if remaining <= k.params.Delta {
			return Optimal
		}
		shiftRounds++
		if shiftRounds > k.params.MaxShiftRound {
			return Infeasible
		}
	}
}

// primalInnerLoop runs entering-variable pivots until no profitable
// entering candidate remains under the current (possibly shifted)
// bounds. converged=true with Optimal means that point was reached;
// any other outcome is terminal.
func (k *Kernel) primalInnerLoop() (outcome Outcome, converged bool) {
	for {
		if err := k.computeFVec(); err != nil {
			return SingularBasis, false
		}
		if err := k.computeCoP(); err != nil {
			return SingularBasis, false
		}

		enterPID, found := k.pricer.SelectEnter()
		if !found {
			return Optimal, true
		}
		enterID := k.idFromPricerID(enterPID)
		dir := k.enterDirection(enterID)

		colDense := k.eq.ColsByID[enterID].ToDense()
		alphaSol, err := k.factor.SolveRight(colDense)
		if err != nil {
			return SingularBasis, false
		}
		alpha := alphaSol.Data

		flipStep := k.boundFlipLimit(enterID, dir)

		cands := make([]ratiotest.Candidate, 0, len(alpha))
		hitUpper := make(map[int]bool)
		for pos, a := range alpha {
			rate := a * dir
			if rate > k.params.Eps && k.lBnd[pos] > -model.Inf {
				step := (k.fVec[pos] - k.lBnd[pos]) / rate
				if step < 0 {
					step = 0
				}
				cands = append(cands, ratiotest.Candidate{Pos: pos, Step: step, Pivot: a})
			} else if rate < -k.params.Eps && k.uBnd[pos] < model.Inf {
				step := (k.fVec[pos] - k.uBnd[pos]) / rate
				if step < 0 {
					step = 0
				}
				cands = append(cands, ratiotest.Candidate{Pos: pos, Step: step, Pivot: a})
				hitUpper[pos] = true
			}
		}

		winPos, step, ok := k.ratio.Select(cands)
		if !ok || (flipStep < model.Inf && flipStep <= step) {
			if flipStep >= model.Inf {
				return Unbounded, false
			}
			k.flipBound(enterID, dir, flipStep)
			k.iterations++
			if k.iterations > k.params.MaxIter {
				return IterationLimit, false
			}
			continue
		}

		k.pivot(enterID, dir, step, winPos, alpha, hitUpper[winPos])
		k.pricer.Entered4(enterPID, winPos)

		if step <= k.params.Delta {
			k.degenCount++
			if k.degenCount > k.params.MaxCycle {
				k.perturb()
				k.degenCount = 0
			}
		} else {
			k.degenCount = 0
		}

		k.iterations++
		if k.iterations > k.params.MaxIter {
			return IterationLimit, false
		}
		if k.params.RefactorEvery > 0 && k.iterations%k.params.RefactorEvery == 0 {
			if err := k.factor.Load(k.basisCols(), k.desc.Dim()); err != nil {
				return SingularBasis, false
			}
		}
	}
}

func (k *Kernel) enterDirection(id int) float64 {
	switch k.statusOf(id) {
	case basis.PonUpper:
		return -1
	case basis.PFree:
		if k.reducedCost(id) < 0 {
			return -1
		}
		return 1
	default:
		return 1
	}
}

func (k *Kernel) boundFlipLimit(id int, dir float64) float64 {
	lo, up := k.eq.Lo[id], k.eq.Up[id]
	if lo <= -model.Inf || up >= model.Inf {
		return model.Inf
	}
	return up - lo
}

func (k *Kernel) flipBound(id int, dir, step float64) {
	if dir > 0 {
		k.setStatus(id, basis.PonUpper)
	} else {
		k.setStatus(id, basis.PonLower)
	}
}

// pivot commits an entering/leaving exchange: id enters at position
// winPos with the given step and direction, the previous occupant of
// winPos leaves to the bound determined by atUpper.
func (k *Kernel) pivot(enterID int, dir, step float64, winPos int, alpha []float64, atUpper bool) {
	leaveID := k.basicAt[winPos]

	for pos := range k.fVec {
		k.fVec[pos] -= alpha[pos] * dir * step
	}
	if atUpper {
		k.fVec[winPos] = k.uBnd[winPos]
	} else {
		k.fVec[winPos] = k.lBnd[winPos]
	}

	lo, up := k.eq.Lo[leaveID], k.eq.Up[leaveID]
	fixed := lo == up
	free := lo <= -model.Inf && up >= model.Inf
	slack, row := k.eq.IsSlack(leaveID)
	k.desc.LeaveBasic(slack, rowOrIdx(slack, row, leaveID), atUpper, fixed, free)

	eSlack, eRow := k.eq.IsSlack(enterID)
	k.desc.EnterBasic(eSlack, rowOrIdx(eSlack, eRow, enterID))

	k.basicAt[winPos] = enterID
	k.posOf[enterID] = winPos
	k.posOf[leaveID] = -1

	k.lBnd[winPos], k.uBnd[winPos] = k.eq.Lo[enterID], k.eq.Up[enterID]
	k.shift[winPos] = 0

	_ = k.factor.Update(winPos, alpha)
}

func rowOrIdx(isRow bool, rowIdx, id int) int {
	if isRow {
		return rowIdx
	}
	return id
}

// perturb nudges every nonbasic bound outward by a small random amount to
// break a degenerate cycle (spec §4.4 "bounded perturbation").
func (k *Kernel) perturb() {
	for id := 0; id < k.eq.NVars; id++ {
		if k.posOf[id] >= 0 {
			continue
		}
		if k.eq.Lo[id] > -model.Inf {
			k.eq.Lo[id] -= k.rnd.Float64() * k.params.PerturbMax
		}
		if k.eq.Up[id] < model.Inf {
			k.eq.Up[id] += k.rnd.Float64() * k.params.PerturbMax
		}
	}
}

// runDual runs the leaving-variable-first dual simplex: leaving variable
// picked by primal-bound violation, entering variable picked by the dual
// ratio test over nonbasic reduced costs.
func (k *Kernel) runDual() Outcome {
	for id := 0; id < k.eq.NVars; id++ {
		if k.posOf[id] < 0 {
			k.setStatus(id, k.initialDualFeasibleStatus(id))
		}
	}
	k.pricer.Load(kernelSource{k})

	for {
		if err := k.computeFVec(); err != nil {
			return SingularBasis
		}
		if err := k.computeCoP(); err != nil {
			return SingularBasis
		}

		leavePos, found := k.pricer.SelectLeave()
		if !found {
			return Optimal
		}
		need := 1.0
		if k.fVec[leavePos] > k.uBnd[leavePos] {
			need = -1.0
		}

		rowSol, err := k.factor.SolveLeft(unitVec(k.desc.Dim(), leavePos))
		if err != nil {
			return SingularBasis
		}
		gammaRow := rowSol.Data

		// The dual ratio test picks the nonbasic with smallest |d_j/gamma_j|
		// directly, rather than through the pluggable RatioTester: that
		// interface's Shift side channel relaxes a basic position's primal
		// bound (spec §4.4's primal shifting), which has no meaning here,
		// where the quantity at risk is a nonbasic's dual feasibility.
		best := -1
		bestStep, bestPivot := math.Inf(1), 0.0
		for id, pos := range k.posOf {
			if pos >= 0 {
				continue
			}
			st := k.statusOf(id)
			if st == basis.PFixed {
				continue
			}
			gamma := dotSparseSlice(k.eq.ColsByID[id], gammaRow)
			if math.Abs(gamma) <= k.params.Eps {
				continue
			}
			if !dualAdmissible(st, gamma, need) {
				continue
			}
			d := k.reducedCost(id)
			step := math.Abs(d) / math.Max(k.params.Eps, math.Abs(gamma))
			if step < bestStep-k.params.Eps ||
				(math.Abs(step-bestStep) <= k.params.Eps && math.Abs(gamma) > bestPivot) {
				best, bestStep, bestPivot = id, step, math.Abs(gamma)
			}
		}
		if best < 0 {
			return Infeasible
		}
		enterID := best

		colDense := k.eq.ColsByID[enterID].ToDense()
		alphaSol, err := k.factor.SolveRight(colDense)
		if err != nil {
			return SingularBasis
		}

		k.pivot(enterID, 1, 0, leavePos, alphaSol.Data, need < 0)
		k.pricer.Left4(leavePos, k.pricerID(enterID))

		k.iterations++
		if k.iterations > k.params.MaxIter {
			return IterationLimit
		}
		if k.params.RefactorEvery > 0 && k.iterations%k.params.RefactorEvery == 0 {
			if err := k.factor.Load(k.basisCols(), k.desc.Dim()); err != nil {
				return SingularBasis
			}
		}
	}
}

// dualAdmissible reports whether nonbasic status st permits a change of
// sign matching need, given the pivot-row entry gamma (spec §4.5 dual
// ratio test direction rule, derived from x_B(leavePos) = f - gamma*Δx).
func dualAdmissible(st basis.Status, gamma, need float64) bool {
	switch st {
	case basis.PonLower: // can only increase (Δx >= 0)
		return -gamma*need >= 0
	case basis.PonUpper: // can only decrease (Δx <= 0)
		return gamma*need >= 0
	default: // PFree
		return true
	}
}

func unitVec(dim, i int) *vecmath.DenseVec {
	v := vecmath.NewDenseVec(dim)
	v.Data[i] = 1
	return v
}

// Iterations reports the number of pivots performed by the last Solve
// call (reset on each Solve).
func (k *Kernel) Iterations() int { return k.iterations }

// Stability exposes the current factorization's conditioning metric.
func (k *Kernel) Stability() float64 { return k.factor.Stability() }

// Primal extracts the full equality-form primal solution vector.
func (k *Kernel) Primal() []float64 {
	x := make([]float64, k.eq.NVars)
	for pos, id := range k.basicAt {
		x[id] = k.fVec[pos]
	}
	for id, pos := range k.posOf {
		if pos < 0 {
			x[id] = k.nonbasicValue(id)
		}
	}
	return x
}

// Dual extracts the row dual multipliers of the last solved basis.
func (k *Kernel) Dual() []float64 {
	return append([]float64(nil), k.coP...)
}

// Desc exposes the basis descriptor for callers that need getBasis/
// setBasis semantics (spec §6).
func (k *Kernel) Desc() *basis.Desc { return k.desc }

// Equality exposes the equality-form system the kernel is solving.
func (k *Kernel) Equality() *transform.EqualityLP { return k.eq }

// Delta reports the kernel's current feasibility/optimality tolerance.
func (k *Kernel) Delta() float64 { return k.params.Delta }

// SetDelta relaxes or tightens the feasibility/optimality tolerance
// (spec §7 ladder steps "relax feasibility tolerance" / "tighten
// feasibility tolerance"), taking effect on the next Solve call.
func (k *Kernel) SetDelta(delta float64) { k.params.Delta = delta }

// SetPricer swaps the entering/leaving-selection component (spec §7
// ladder step "switch pricer"), taking effect on the next Solve call.
func (k *Kernel) SetPricer(p pricer.Pricer) { k.pricer = p }

// SetRatioTester swaps the ratio-test component (spec §7 ladder step
// "switch ratio tester"), taking effect on the next Solve call.
func (k *Kernel) SetRatioTester(rt ratiotest.RatioTester) { k.ratio = rt }
