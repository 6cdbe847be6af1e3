package exact

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-revsimplex/core/basis"
	"github.com/go-revsimplex/core/model"
)

func TestFromFloatIsLossless(t *testing.T) {
	v := FromFloat([]float64{0.5, -1.25, 3})
	assert.Equal(t, big.NewRat(1, 2), v.Data[0])
	assert.Equal(t, big.NewRat(-5, 4), v.Data[1])
	assert.Equal(t, big.NewRat(3, 1), v.Data[2])
}

func TestToFloatApproxRoundTrips(t *testing.T) {
	v := FromFloat([]float64{0.25, 7})
	assert.Equal(t, []float64{0.25, 7}, v.ToFloatApprox())
}

func sampleModel() *model.LP {
	lp := model.New(1, 2)
	lp.Sense = model.Maximize
	lp.C[0], lp.C[1] = 2, 3
	_ = lp.ChangeBounds(0, 0, 10)
	_ = lp.ChangeBounds(1, 0, 10)
	_ = lp.ChangeSides(0, -model.Inf, 12)
	_ = lp.ChangeElement(0, 0, 1)
	_ = lp.ChangeElement(0, 1, 1)
	return lp
}

func TestPrimalViolationZeroForFeasiblePoint(t *testing.T) {
	e := FromModel(sampleModel())
	x := FromFloat([]float64{6, 6})
	assert.Equal(t, 0, e.PrimalViolation(x).Sign())
}

func TestPrimalViolationDetectsRowBreach(t *testing.T) {
	e := FromModel(sampleModel())
	x := FromFloat([]float64{8, 8})
	viol := e.PrimalViolation(x)
	assert.Equal(t, big.NewRat(4, 1), viol)
}

func TestPrimalViolationDetectsBoundBreach(t *testing.T) {
	e := FromModel(sampleModel())
	x := FromFloat([]float64{-2, 0})
	viol := e.PrimalViolation(x)
	assert.Equal(t, big.NewRat(2, 1), viol)
}

func TestReducedCostAndDualViolation(t *testing.T) {
	e := FromModel(sampleModel())
	y := FromFloat([]float64{3}) // d_0 = 2-3 = -1, d_1 = 3-3 = 0
	statusOf := func(j int) basis.Status {
		if j == 0 {
			return basis.PonLower
		}
		return basis.Basic
	}
	// d_0 < 0 at PonLower is admissible when maximizing (PonLower wants
	// d<=0), so violation 0.
	assert.Equal(t, 0, e.DualViolation(y, statusOf).Sign())

	statusOf = func(j int) basis.Status {
		if j == 0 {
			return basis.PonUpper
		}
		return basis.Basic
	}
	// d_0 < 0 at PonUpper is a violation of magnitude 1.
	assert.Equal(t, big.NewRat(1, 1), e.DualViolation(y, statusOf))
}

func TestReconstructRecoversSimpleFractions(t *testing.T) {
	r := Reconstruct(1.0/3.0, 1000)
	assert.Equal(t, big.NewRat(1, 3), r)

	r = Reconstruct(-0.75, 1000)
	assert.Equal(t, big.NewRat(-3, 4), r)
}

func TestReconstructHonorsMaxDenom(t *testing.T) {
	r := Reconstruct(0.1234567, 10)
	assert.LessOrEqual(t, r.Denom().Int64(), int64(10))
}

func TestPowerOfTwoScale(t *testing.T) {
	assert.Equal(t, 8.0, PowerOfTwoScale(6))
	assert.Equal(t, 1.0, PowerOfTwoScale(0))
}
