package simplex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-revsimplex/core/basis"
	"github.com/go-revsimplex/core/model"
	"github.com/go-revsimplex/core/pricer"
	"github.com/go-revsimplex/core/ratiotest"
)

// textbookLP is the classic maximize 3x0+5x1 s.t. x0<=4, 2x1<=12,
// 3x0+2x1<=18, x0,x1>=0 example, with known optimum x=(2,6), obj=36.
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

func newKernel() *Kernel {
	return New(pricer.NewDantzig(), ratiotest.NewHarris(), DefaultParams())
}

func TestPrimalSolveReachesKnownOptimum(t *testing.T) {
	lp := textbookLP()
	k := newKernel()
	k.Reload(lp)

	outcome := k.Solve(basis.Column, Enter)
	require.Equal(t, Optimal, outcome)

	x := k.Primal()
	assert.InDelta(t, 2.0, x[0], 1e-6)
	assert.InDelta(t, 6.0, x[1], 1e-6)
	assert.InDelta(t, 36.0, lp.Value(x[:2]), 1e-6)
}

func TestDualSolveReachesSameOptimum(t *testing.T) {
	lp := textbookLP()
	k := newKernel()
	k.Reload(lp)

	outcome := k.Solve(basis.Row, Leave)
	require.Equal(t, Optimal, outcome)

	x := k.Primal()
	assert.InDelta(t, 36.0, lp.Value(x[:2]), 1e-6)
}

func TestUnboundedProblemIsDetected(t *testing.T) {
	lp := model.New(1, 1)
	lp.Sense = model.Maximize
	lp.C[0] = 1
	_ = lp.ChangeBounds(0, 0, model.Inf)
	_ = lp.ChangeSides(0, -model.Inf, model.Inf)
	_ = lp.ChangeElement(0, 0, 1)

	k := newKernel()
	k.Reload(lp)
	outcome := k.Solve(basis.Column, Enter)
	assert.Equal(t, Unbounded, outcome)
}

func TestWarmReloadKeepsBasisOnSameShape(t *testing.T) {
	lp := textbookLP()
	k := newKernel()
	k.Reload(lp)
	require.Equal(t, Optimal, k.Solve(basis.Column, Enter))

	lp2 := textbookLP()
	lp2.C[0] = 6 // perturb the objective, same shape
	k.Reload(lp2)
	outcome := k.Solve(basis.Column, Enter)
	assert.Equal(t, Optimal, outcome)
}

func TestIterationsAndStabilityAreReported(t *testing.T) {
	lp := textbookLP()
	k := newKernel()
	k.Reload(lp)
	require.Equal(t, Optimal, k.Solve(basis.Column, Enter))

	assert.GreaterOrEqual(t, k.Iterations(), 0)
	assert.Greater(t, k.Stability(), 0.0)
}
