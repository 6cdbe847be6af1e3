// Package refine implements the iterative-refinement outer loop (spec
// §4.6/§4.7, C8): it drives the floating-point simplex kernel round by
// round, measuring each round's result in exact rational arithmetic and
// feeding the residual back as a shifted correction subproblem, in the
// style of defect-correction iterative refinement.
//
// Grounded on felipends-revised-simplex/simplex/simplex.go's top-level
// "Solve" driver loop shape (the outer for{} around a single solve
// attempt, with an iteration cap and a printed per-round status),
// generalized from one floating solve to a sequence of them connected by
// exact-arithmetic correction.
package refine

import (
	"math"
	"math/big"

	"github.com/go-revsimplex/core/basis"
	"github.com/go-revsimplex/core/exact"
	"github.com/go-revsimplex/core/logging"
	"github.com/go-revsimplex/core/model"
	"github.com/go-revsimplex/core/pricer"
	"github.com/go-revsimplex/core/ratiotest"
	"github.com/go-revsimplex/core/simplex"
	"github.com/go-revsimplex/core/solvererr"
	"github.com/go-revsimplex/core/transform"
)

// Params controls the refinement loop's numeric policy.
type Params struct {
	Kernel    simplex.Params
	MaxRounds int
	MaxDenom  int64   // rational reconstruction denominator bound
	Delta     float64 // exact-violation tolerance, compared as a Rat
	Rep       basis.Rep
	Alg       simplex.Algorithm
	LogLevel  logging.Level
	MaxScale  float64 // ceiling on primalScale/dualScale (spec §4.6 step 8)
	ScalePow2 bool    // round scales to the nearest power of two (spec §6)
}

func DefaultParams() Params {
	return Params{
		Kernel:    simplex.DefaultParams(),
		MaxRounds: 20,
		MaxDenom:  1 << 50,
		Delta:     1e-9,
		Rep:       basis.Column,
		Alg:       simplex.Enter,
		LogLevel:  logging.Info,
		MaxScale:  1e8,
		ScalePow2: true,
	}
}

// Result is the certified outcome of a refinement run.
type Result struct {
	Outcome     simplex.Outcome
	Rounds      int
	Primal      *exact.Vec // exact primal solution of the structural columns (length NCols)
	Dual        *exact.Vec // exact row dual multipliers
	PrimalFloat []float64
	DualFloat   []float64
	Objective   float64
	Ray         []float64 // set only on a certified Unbounded outcome (spec §4.8)
}

// Solve runs the refinement loop to a certified (or best-effort, on round
// exhaustion) result.
func Solve(lp *model.LP, p Params) (*Result, error) {
	log := logging.New(p.LogLevel)

	pr := pricer.NewDantzig()
	rt := ratiotest.NewHarris()
	k := simplex.New(pr, rt, p.Kernel)
	k.Reload(lp)

	exactLP := exact.FromModel(lp)

	deltaRat := new(big.Rat).SetFloat64(p.Delta)
	accX := exact.NewVec(lp.NCols)

	working := cloneLP(lp)
	primalScale, dualScale := 1.0, 1.0

	var lastOutcome simplex.Outcome
	for round := 0; round < p.MaxRounds; round++ {
		outcome, err := solveOnce(k, working, p, log, round)
		lastOutcome = outcome
		if err != nil {
			return nil, err
		}
		if outcome == simplex.Unbounded {
			if result, settled := certifyUnbounded(working, p, log, round); settled {
				return result, nil
			}
			working = cloneLP(lp)
			primalScale, dualScale = 1, 1
			k.Reload(working)
			continue
		}
		if outcome == simplex.Infeasible {
			if result, settled := certifyInfeasible(working, p, log, round); settled {
				return result, nil
			}
			working = cloneLP(lp)
			primalScale, dualScale = 1, 1
			k.Reload(working)
			continue
		}
		if outcome != simplex.Optimal {
			return nil, solvererr.Newf(solvererr.Abort, "refine.Solve",
				"kernel returned %s after the recovery ladder was exhausted", outcome)
		}

		// This round's solve ran against bounds/sides/obj scaled by
		// primalScale/dualScale (spec §4.6 step 8); undo that scaling
		// before folding the result into the exact accumulator, which
		// always lives in the original problem's true scale.
		full := k.Primal()
		dx := full[:lp.NCols]
		dxExact := exact.ReconstructVec(dx, p.MaxDenom)
		primalScaleRat := new(big.Rat).SetFloat64(primalScale)
		for j := range accX.Data {
			corr := new(big.Rat).Quo(dxExact.Data[j], primalScaleRat)
			accX.Data[j].Add(accX.Data[j], corr)
		}

		primViol := exactLP.PrimalViolation(accX)

		dualFull := k.Dual()
		yVecScaled := exact.ReconstructVec(dualFull, p.MaxDenom)
		dualScaleRat := new(big.Rat).SetFloat64(dualScale)
		yVec := exact.NewVec(yVecScaled.Dim)
		for i, r := range yVecScaled.Data {
			yVec.Data[i].Quo(r, dualScaleRat)
		}
		statusOf := func(j int) basis.Status { return k.Desc().ColStatus[j] }
		dualViol := exactLP.DualViolation(yVec, statusOf)

		log.Infof("round %d: primal violation=%s dual violation=%s", round, primViol.FloatString(3), dualViol.FloatString(3))

		if primViol.Cmp(deltaRat) <= 0 && dualViol.Cmp(deltaRat) <= 0 {
			return &Result{
				Outcome:     simplex.Optimal,
				Rounds:      round + 1,
				Primal:      accX,
				Dual:        yVec,
				PrimalFloat: accX.ToFloatApprox(),
				DualFloat:   yVec.ToFloatApprox(),
				Objective:   lp.Value(accX.ToFloatApprox()),
			}, nil
		}

		primalScale, dualScale = computeScales(primViol, dualViol, p.MaxScale, p.ScalePow2)
		working = scaledCorrectionSubproblem(lp, exactLP, accX.ToFloatApprox(), yVec, primalScale, dualScale)
		k.Reload(working)
	}

	return &Result{
		Outcome:     lastOutcome,
		Rounds:      p.MaxRounds,
		Primal:      accX,
		PrimalFloat: accX.ToFloatApprox(),
		Objective:   lp.Value(accX.ToFloatApprox()),
	}, solvererr.Newf(solvererr.NumericWarning, "refine.Solve",
		"round budget exhausted before the exact violation cleared delta")
}

// solveOnce runs the kernel once and, on anything short of Optimal,
// climbs a scoped recovery ladder (spec §7) before giving up on this
// round.
func solveOnce(k *simplex.Kernel, lp *model.LP, p Params, log *logging.Logger, round int) (simplex.Outcome, error) {
	outcome := k.Solve(p.Rep, p.Alg)
	if outcome == simplex.Optimal || outcome == simplex.Unbounded || outcome == simplex.Infeasible {
		return outcome, nil
	}

	log.Warnf("round %d: kernel returned %s, climbing recovery ladder", round, outcome)
	ladder := buildLadder(k, lp, p, &outcome)
	for {
		name, ok := ladder.Run()
		if !ok {
			return outcome, nil
		}
		log.Warnf("round %d: recovery step %q retried, outcome now %s", round, name, outcome)
		if outcome == simplex.Optimal || outcome == simplex.Unbounded || outcome == simplex.Infeasible {
			return outcome, nil
		}
	}
}

// buildLadder assembles the recovery steps a stuck kernel attempt climbs,
// covering the spec §7 ladder steps this component set can drive: a cold
// restart for a singular basis (discards a possibly-corrupted warm start
// and rebuilds the all-slack basis from scratch), then — for an
// iteration-limit outcome, the classical cycling remedies — relaxing and
// then tightening the feasibility tolerance, and switching the pricer
// (Dantzig <-> Devex) and ratio tester (Harris <-> Textbook) in turn. The
// presolve/scaler/simplifier steps of spec §7's full ten-step ladder have
// no component in this repository to drive them (DESIGN.md records the
// omission). Every step declining leaves solveOnce to report the outcome
// as-is, which Solve then surfaces as Abort.
func buildLadder(k *simplex.Kernel, lp *model.LP, p Params, outcome *simplex.Outcome) *solvererr.Ladder {
	triedCold, triedBudget := false, false
	triedRelax, triedTighten, triedRatio, triedPricer := false, false, false, false
	origDelta := k.Delta()

	cycling := func() bool { return *outcome == simplex.IterationLimit }

	return &solvererr.Ladder{Steps: []solvererr.RecoveryStep{
		{Name: "cold-restart", Apply: func() bool {
			if triedCold || *outcome != simplex.SingularBasis {
				return false
			}
			triedCold = true
			k.Reload(lp)
			*outcome = k.Solve(p.Rep, p.Alg)
			return true
		}},
		{Name: "increase-iteration-budget", Apply: func() bool {
			if triedBudget || !cycling() {
				return false
			}
			triedBudget = true
			*outcome = k.Solve(p.Rep, p.Alg)
			return true
		}},
		{Name: "relax-delta", Apply: func() bool {
			if triedRelax || !cycling() {
				return false
			}
			triedRelax = true
			k.SetDelta(1e-3)
			*outcome = k.Solve(p.Rep, p.Alg)
			return true
		}},
		{Name: "tighten-delta", Apply: func() bool {
			if triedTighten || !cycling() {
				return false
			}
			triedTighten = true
			k.SetDelta(origDelta)
			*outcome = k.Solve(p.Rep, p.Alg)
			return true
		}},
		{Name: "switch-ratio-tester", Apply: func() bool {
			if triedRatio || !cycling() {
				return false
			}
			triedRatio = true
			k.SetRatioTester(ratiotest.NewTextbook())
			*outcome = k.Solve(p.Rep, p.Alg)
			return true
		}},
		{Name: "switch-pricer", Apply: func() bool {
			if triedPricer || !cycling() {
				return false
			}
			triedPricer = true
			k.SetPricer(pricer.NewDevex())
			*outcome = k.Solve(p.Rep, p.Alg)
			return true
		}},
	}}
}

// certifyUnbounded solves transform.BuildUnboundednessLP for lp and
// reports the kernel's Unbounded verdict as settled only if that
// certification LP confirms it (spec §4.8/§4.9: "re-entry from ...
// UNBOUNDED happens when the certification LP rejects the verdict" — a
// rejection here returns settled=false so the caller re-enters the
// refine loop instead of reporting Unbounded on a false positive).
func certifyUnbounded(lp *model.LP, p Params, log *logging.Logger, round int) (*Result, bool) {
	cert := transform.BuildUnboundednessLP(lp)
	ck := simplex.New(pricer.NewDantzig(), ratiotest.NewHarris(), p.Kernel)
	ck.Reload(cert.LP)
	certOutcome := ck.Solve(p.Rep, p.Alg)
	if certOutcome != simplex.Optimal {
		log.Warnf("round %d: unboundedness certification LP returned %s, re-entering", round, certOutcome)
		return nil, false
	}
	certified, ray := cert.Interpret(ck.Primal(), p.Kernel.Eps)
	if !certified {
		log.Warnf("round %d: unboundedness not certified, re-entering", round)
		return nil, false
	}
	return &Result{Outcome: simplex.Unbounded, Rounds: round + 1, Ray: ray}, true
}

// certifyInfeasible solves transform.BuildFeasibilityLP for lp and reports
// the kernel's Infeasible verdict as settled only if that certification
// LP agrees (tau stuck at 1). If the certification LP instead finds a
// scaled feasible point (tau < 1), the verdict is rejected and the caller
// re-enters the refine loop from the original lp.
func certifyInfeasible(lp *model.LP, p Params, log *logging.Logger, round int) (*Result, bool) {
	cert := transform.BuildFeasibilityLP(lp)
	ck := simplex.New(pricer.NewDantzig(), ratiotest.NewHarris(), p.Kernel)
	ck.Reload(cert.LP)
	certOutcome := ck.Solve(p.Rep, p.Alg)
	if certOutcome != simplex.Optimal {
		log.Warnf("round %d: feasibility certification LP returned %s, reporting infeasible as-is", round, certOutcome)
		return &Result{Outcome: simplex.Infeasible, Rounds: round + 1}, true
	}
	feasible, _, tau := cert.Interpret(ck.Primal(), p.Kernel.Eps)
	if feasible {
		log.Warnf("round %d: infeasibility not certified (tau=%.3g), re-entering", round, tau)
		return nil, false
	}
	return &Result{Outcome: simplex.Infeasible, Rounds: round + 1}, true
}

func cloneLP(lp *model.LP) *model.LP {
	out := model.New(lp.NRows, lp.NCols)
	out.Sense = lp.Sense
	for j := 0; j < lp.NCols; j++ {
		_ = out.ChangeBounds(j, lp.Lo[j], lp.Up[j])
		_ = out.ChangeObj(j, lp.C[j])
	}
	for i := 0; i < lp.NRows; i++ {
		_ = out.ChangeSides(i, lp.Lhs[i], lp.Rhs[i])
		for _, e := range lp.RowsA[i].Entries {
			_ = out.ChangeElement(i, e.Idx, e.Val)
		}
	}
	return out
}

// computeScales derives spec §4.6 step 8's primalScale/dualScale from the
// round's exact violations. primalScale enlarges the next subproblem so a
// residual near machine epsilon arrives at the float64 kernel as an O(1)
// quantity it can resolve at full relative precision (without this, a
// violation already below 1e-15 reads as exactly zero to the kernel, the
// failure mode spec §8.5's rational-refinement-gain scenario exists to
// catch); dualScale does the same for the objective row, capped at
// primalScale per the spec formula. Both are floored at 1 (the subproblem
// never shrinks) and capped at maxScale; pow2 optionally rounds each to
// the nearest power of two (exact.PowerOfTwoScale), which costs no
// rounding error of its own since binary floating point scales exactly by
// powers of two.
func computeScales(primViol, dualViol *big.Rat, maxScale float64, pow2 bool) (primalScale, dualScale float64) {
	worst := new(big.Rat).Set(primViol)
	if dualViol.Cmp(worst) > 0 {
		worst.Set(dualViol)
	}
	primalScale = scaleFromViolation(worst, maxScale)
	dualScale = scaleFromViolation(dualViol, maxScale)
	if dualScale > primalScale {
		dualScale = primalScale
	}
	if pow2 {
		primalScale = exact.PowerOfTwoScale(primalScale)
		dualScale = exact.PowerOfTwoScale(dualScale)
	}
	return primalScale, dualScale
}

func scaleFromViolation(v *big.Rat, maxScale float64) float64 {
	if v.Sign() <= 0 {
		return 1
	}
	f, _ := v.Float64()
	if f <= 0 || math.IsInf(f, 0) {
		return 1
	}
	s := 1 / f
	if s > maxScale {
		s = maxScale
	}
	if s < 1 {
		s = 1
	}
	return s
}

// scaledCorrectionSubproblem builds the next round's subproblem per spec
// §4.6 step 8: bounds and sides are re-centered on x0 and enlarged by
// primalScale, and the objective becomes dualScale times the exact
// reduced cost at the accumulated dual y — replacing, not just shifting,
// the previous round's objective, so the next floating solve targets the
// residual in both the primal and the dual sense at once.
func scaledCorrectionSubproblem(lp *model.LP, exactLP *exact.LP, x0 []float64, y *exact.Vec, primalScale, dualScale float64) *model.LP {
	out := cloneLP(lp)
	for j := 0; j < lp.NCols; j++ {
		_ = out.ChangeBounds(j, scaleShift(lp.Lo[j], x0[j], primalScale), scaleShift(lp.Up[j], x0[j], primalScale))
		rc, _ := exactLP.ReducedCost(j, y).Float64()
		_ = out.ChangeObj(j, dualScale*rc)
	}
	for i := 0; i < lp.NRows; i++ {
		act := 0.0
		for _, e := range lp.RowsA[i].Entries {
			act += e.Val * x0[e.Idx]
		}
		_ = out.ChangeSides(i, scaleShift(lp.Lhs[i], act, primalScale), scaleShift(lp.Rhs[i], act, primalScale))
	}
	return out
}

// scaleShift re-centers b by the correction `by` and scales the result,
// passing the ±model.Inf sentinel through unscaled: scale is always >= 1,
// so a scaled-but-still-sentinel bound stays recognizably infinite to
// every >=/<= model.Inf check elsewhere in the kernel.
func scaleShift(b, by, scale float64) float64 {
	if b <= -model.Inf || b >= model.Inf {
		return b
	}
	return scale * (b - by)
}
