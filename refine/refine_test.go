package refine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-revsimplex/core/model"
	"github.com/go-revsimplex/core/simplex"
)

// textbookLP mirrors simplex.textbookLP: maximize 3x0+5x1 s.t. x0<=4,
// 2x1<=12, 3x0+2x1<=18, known optimum x=(2,6), obj=36.
func textbookLP() *model.LP {
	lp := model.New(3, 2)
	lp.Sense = model.Maximize
	lp.C[0], lp.C[1] = 3, 5
	_ = lp.ChangeBounds(0, 0, model.Inf)
	_ = lp.ChangeBounds(1, 0, model.Inf)
	_ = lp.ChangeSides(0, -model.Inf, 4)
	_ = lp.ChangeSides(1, -model.Inf, 12)
	_ = lp.ChangeSides(2, -model.Inf, 18)
	_ = lp.ChangeElement(0, 0, 1)
	_ = lp.ChangeElement(1, 1, 2)
	_ = lp.ChangeElement(2, 0, 3)
	_ = lp.ChangeElement(2, 1, 2)
	return lp
}

func TestSolveCertifiesTextbookOptimum(t *testing.T) {
	lp := textbookLP()
	params := DefaultParams()

	result, err := Solve(lp, params)
	require.NoError(t, err)
	require.Equal(t, simplex.Optimal, result.Outcome)

	assert.InDelta(t, 2.0, result.PrimalFloat[0], 1e-6)
	assert.InDelta(t, 6.0, result.PrimalFloat[1], 1e-6)
	assert.InDelta(t, 36.0, result.Objective, 1e-6)
	assert.GreaterOrEqual(t, result.Rounds, 1)
}

func TestSolveDetectsUnbounded(t *testing.T) {
	lp := model.New(1, 1)
	lp.Sense = model.Maximize
	lp.C[0] = 1
	_ = lp.ChangeBounds(0, 0, model.Inf)
	_ = lp.ChangeSides(0, -model.Inf, model.Inf)
	_ = lp.ChangeElement(0, 0, 1)

	result, err := Solve(lp, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, simplex.Unbounded, result.Outcome)
}

// TestSolveCertifiesInfeasible exercises the Farkas certification path
// (spec §8 scenario 4): x <= 0, x >= 1 has no feasible point, expressed
// as two rows rather than a single lo>up bound pair (ChangeBounds/
// ChangeSides both reject an inverted pair outright).
func TestSolveCertifiesInfeasible(t *testing.T) {
	lp := model.New(2, 1)
	lp.Sense = model.Maximize
	_ = lp.ChangeBounds(0, 0, model.Inf)
	_ = lp.ChangeSides(0, -model.Inf, 0)
	_ = lp.ChangeSides(1, 1, model.Inf)
	_ = lp.ChangeElement(0, 0, 1)
	_ = lp.ChangeElement(1, 0, 1)

	result, err := Solve(lp, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, simplex.Infeasible, result.Outcome)
}

// TestSolveRecoversFromDegenerateCycling mirrors spec §8 scenario 2: a
// classic Beale-style cycling instance that a naive Dantzig/textbook
// combination can loop on forever without the kernel's perturbation and
// the refinement loop's recovery ladder.
func TestSolveRecoversFromDegenerateCycling(t *testing.T) {
	lp := model.New(3, 4)
	lp.Sense = model.Maximize
	lp.C[0], lp.C[1], lp.C[2], lp.C[3] = 10, -57, -9, -24
	for j := 0; j < 4; j++ {
		_ = lp.ChangeBounds(j, 0, model.Inf)
	}
	_ = lp.ChangeSides(0, -model.Inf, 0)
	_ = lp.ChangeSides(1, -model.Inf, 0)
	_ = lp.ChangeSides(2, -model.Inf, 1)

	_ = lp.ChangeElement(0, 0, 0.5)
	_ = lp.ChangeElement(0, 1, -5.5)
	_ = lp.ChangeElement(0, 2, -2.5)
	_ = lp.ChangeElement(0, 3, 9)

	_ = lp.ChangeElement(1, 0, 0.5)
	_ = lp.ChangeElement(1, 1, -1.5)
	_ = lp.ChangeElement(1, 2, -0.5)
	_ = lp.ChangeElement(1, 3, 1)

	_ = lp.ChangeElement(2, 0, 1)

	result, err := Solve(lp, DefaultParams())
	require.NoError(t, err)
	require.Equal(t, simplex.Optimal, result.Outcome)
	assert.InDelta(t, 1.0, result.Objective, 1e-6)
}

// TestSolveRecoversRationallyFromSubEpsilonObjective mirrors spec §8
// scenario 5: the optimal basis is found at double precision immediately,
// but the objective coefficient is far enough below machine epsilon that
// only the scaled correction subproblem (computeScales, spec §4.6 step 8)
// makes the residual representable to the float64 kernel.
func TestSolveRecoversRationallyFromSubEpsilonObjective(t *testing.T) {
	lp := model.New(1, 1)
	lp.Sense = model.Maximize
	lp.C[0] = 1e-15
	_ = lp.ChangeBounds(0, 0, model.Inf)
	_ = lp.ChangeSides(0, -model.Inf, 1)
	_ = lp.ChangeElement(0, 0, 1)

	result, err := Solve(lp, DefaultParams())
	require.NoError(t, err)
	require.Equal(t, simplex.Optimal, result.Outcome)
	assert.LessOrEqual(t, result.Rounds, 3)
	assert.InDelta(t, 1.0, result.PrimalFloat[0], 1e-9)
	assert.InDelta(t, 1e-15, result.Objective, 1e-16)
}
