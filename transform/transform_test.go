package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-revsimplex/core/model"
)

func sampleLP() *model.LP {
	lp := model.New(2, 2)
	lp.Sense = model.Maximize
	lp.C[0], lp.C[1] = 3, 5
	_ = lp.ChangeBounds(0, 0, 4)
	_ = lp.ChangeBounds(1, 0, model.Inf)
	_ = lp.ChangeSides(0, -model.Inf, 4)
	_ = lp.ChangeSides(1, -model.Inf, 12)
	_ = lp.ChangeElement(0, 0, 1)
	_ = lp.ChangeElement(1, 0, 3)
	_ = lp.ChangeElement(1, 1, 2)
	return lp
}

func TestToEqualitySlackBoundsMatchRangedRow(t *testing.T) {
	lp := sampleLP()
	eq := ToEquality(lp)

	assert.Equal(t, lp.NCols, eq.NCols)
	assert.Equal(t, lp.NRows, eq.NRows)
	assert.Equal(t, lp.NCols+lp.NRows, eq.NVars)

	for i := 0; i < lp.NRows; i++ {
		slackID := lp.NCols + i
		assert.Equal(t, -lp.Rhs[i], eq.Lo[slackID])
		assert.Equal(t, -lp.Lhs[i], eq.Up[slackID])
	}
}

func TestIsSlackDistinguishesStructuralFromSlack(t *testing.T) {
	lp := sampleLP()
	eq := ToEquality(lp)

	isSlack, _ := eq.IsSlack(0)
	assert.False(t, isSlack)

	isSlack, row := eq.IsSlack(lp.NCols + 1)
	require.True(t, isSlack)
	assert.Equal(t, 1, row)
}

func TestUntransformEqualityDropsSlacks(t *testing.T) {
	lp := sampleLP()
	eq := ToEquality(lp)

	full := make([]float64, eq.NVars)
	full[0], full[1] = 4, 4
	x := eq.UntransformEquality(full)

	assert.Equal(t, []float64{4, 4}, x)
}

func TestLiftAndProjectRoundTrip(t *testing.T) {
	lp := sampleLP()
	eq := ToEquality(lp)
	lifted := Lift(eq, DefaultLiftParams())

	full := make([]float64, lifted.NVars)
	full[0], full[1] = 4, 4
	x := lifted.Project(full)

	assert.Equal(t, eq.NVars, len(x))
	assert.Equal(t, []float64{4, 4}, x[:2])
}
