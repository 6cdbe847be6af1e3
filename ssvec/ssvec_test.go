package ssvec

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-revsimplex/core/vecmath"
)

func TestNewIsClearedAndSetup(t *testing.T) {
	v := New(4, 1e-9)
	assert.True(t, v.Setup)
	assert.Equal(t, 0, len(v.Idx))
	assert.Equal(t, []float64{0, 0, 0, 0}, v.Data)
}

func TestSetupNowSnapsSubEpsToZero(t *testing.T) {
	v := New(3, 1e-6)
	v.Data[0] = 1e-9
	v.Data[1] = 5.0
	v.SetupNow()

	assert.Equal(t, 0.0, v.Data[0])
	assert.Equal(t, []int{1}, v.Idx)
}

func TestSetValueTracksIndexWhileSetup(t *testing.T) {
	v := New(3, 1e-9)
	v.SetValue(2, 7.0)
	assert.Equal(t, []int{2}, v.Idx)

	v.SetValue(2, 9.0) // same index, should not duplicate
	assert.Equal(t, []int{2}, v.Idx)
}

func TestClearIdxDropsFromIndexSet(t *testing.T) {
	v := New(3, 1e-9)
	v.SetValue(0, 1.0)
	v.SetValue(1, 2.0)
	v.ClearIdx(0)

	assert.Equal(t, 0.0, v.Data[0])
	assert.Equal(t, []int{1}, v.Idx)
}

func TestAddAssignStaysSetupWhenBothOperandsAre(t *testing.T) {
	v := New(2, 1e-9)
	v.SetValue(0, 1.0)
	o := New(2, 1e-9)
	o.SetValue(1, 2.0)

	v.AddAssign(o)
	assert.True(t, v.Setup)
	assert.Equal(t, []float64{1, 2}, v.Data)
}

func TestScaleAssignByZeroClears(t *testing.T) {
	v := New(2, 1e-9)
	v.SetValue(0, 3.0)
	v.ScaleAssign(0)
	assert.Equal(t, []float64{0, 0}, v.Data)
}

func TestMaxAbsAndLength(t *testing.T) {
	v := New(3, 1e-9)
	v.SetValue(0, -5.0)
	v.SetValue(2, 2.0)
	assert.Equal(t, 5.0, v.MaxAbs())
	assert.Equal(t, 2, v.Length())
}

func TestAssign2ProductRightSingleNonzero(t *testing.T) {
	cols := []*vecmath.SparseVec{
		sparse(3, vecmath.Entry{Idx: 0, Val: 2}, vecmath.Entry{Idx: 2, Val: 4}),
		sparse(3, vecmath.Entry{Idx: 1, Val: 1}),
	}
	y := New(2, 1e-9)
	y.SetValue(0, 3.0)

	v := New(3, 1e-9)
	v.Assign2ProductRight(cols, y, 2)

	assert.Equal(t, []float64{6, 0, 12}, v.Data)
}

func TestAssign2ProductRightMultipleNonzero(t *testing.T) {
	cols := []*vecmath.SparseVec{
		sparse(2, vecmath.Entry{Idx: 0, Val: 1}),
		sparse(2, vecmath.Entry{Idx: 1, Val: 1}),
	}
	y := New(2, 1e-9)
	y.SetValue(0, 2.0)
	y.SetValue(1, 3.0)

	v := New(2, 1e-9)
	v.Assign2ProductRight(cols, y, 2)

	assert.Equal(t, []float64{2, 3}, v.Data)
}

func sparse(dim int, entries ...vecmath.Entry) *vecmath.SparseVec {
	s := vecmath.NewSparseVec(dim, len(entries))
	s.Entries = append(s.Entries, entries...)
	return s
}
