package pricer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-revsimplex/core/basis"
)

// fakeSource is a minimal, hand-built Source for testing selection logic in
// isolation from the kernel.
type fakeSource struct {
	nonbasic  []Id
	testVals  map[Id]float64
	basicPos  []int
	fTestVals map[int]float64
}

func (f *fakeSource) Dim() int           { return len(f.basicPos) }
func (f *fakeSource) CoDim() int         { return len(f.nonbasic) }
func (f *fakeSource) Rep() basis.Rep     { return basis.Column }
func (f *fakeSource) Test(id Id) float64 { return f.testVals[id] }
func (f *fakeSource) FTest(pos int) float64 {
	return f.fTestVals[pos]
}
func (f *fakeSource) ComputeTest(id Id) float64 { return f.testVals[id] }
func (f *fakeSource) NonBasicIds() []Id         { return f.nonbasic }
func (f *fakeSource) BasicPositions() []int     { return f.basicPos }

func TestDantzigSelectEnterPicksMostNegative(t *testing.T) {
	src := &fakeSource{
		nonbasic: []Id{{Index: 0}, {Index: 1}, {Index: 2}},
		testVals: map[Id]float64{
			{Index: 0}: -0.5,
			{Index: 1}: -3.0,
			{Index: 2}: 1.0,
		},
	}
	d := NewDantzig()
	d.Load(src)

	id, ok := d.SelectEnter()
	require.True(t, ok)
	assert.Equal(t, Id{Index: 1}, id)
}

func TestDantzigSelectEnterNoneProfitable(t *testing.T) {
	src := &fakeSource{
		nonbasic: []Id{{Index: 0}},
		testVals: map[Id]float64{{Index: 0}: 2.0},
	}
	d := NewDantzig()
	d.Load(src)

	_, ok := d.SelectEnter()
	assert.False(t, ok)
}

func TestDantzigSelectLeavePicksLargestViolation(t *testing.T) {
	src := &fakeSource{
		basicPos:  []int{0, 1, 2},
		fTestVals: map[int]float64{0: 0.1, 1: 5.0, 2: 2.0},
	}
	d := NewDantzig()
	d.Load(src)

	pos, ok := d.SelectLeave()
	require.True(t, ok)
	assert.Equal(t, 1, pos)
}

func TestPartialPricerComputesOnDemand(t *testing.T) {
	src := &fakeSource{
		nonbasic: []Id{{Index: 0}, {Index: 1}},
		testVals: map[Id]float64{{Index: 0}: -1.0, {Index: 1}: -4.0},
	}
	p := NewPartialPricer()
	p.Load(src)
	assert.False(t, p.Dantzig.full)

	id, ok := p.SelectEnter()
	require.True(t, ok)
	assert.Equal(t, Id{Index: 1}, id)
}

func TestDevexEntered4ResetsWeight(t *testing.T) {
	src := &fakeSource{
		nonbasic: []Id{{Index: 0}, {Index: 1}},
		testVals: map[Id]float64{{Index: 0}: -2.0, {Index: 1}: -1.0},
	}
	d := NewDevex()
	d.Load(src)

	id, ok := d.SelectEnter()
	require.True(t, ok)
	assert.Equal(t, Id{Index: 0}, id)

	d.Entered4(id, 0)
	assert.Equal(t, 1.0, d.weight[id])
}
