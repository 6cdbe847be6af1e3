package lu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-revsimplex/core/vecmath"
)

func col(dim int, entries ...vecmath.Entry) *vecmath.SparseVec {
	s := vecmath.NewSparseVec(dim, len(entries))
	s.Entries = append(s.Entries, entries...)
	return s
}

// identityCols returns the columns of the 2x2 identity matrix.
func identityCols() []*vecmath.SparseVec {
	return []*vecmath.SparseVec{
		col(2, vecmath.Entry{Idx: 0, Val: 1}),
		col(2, vecmath.Entry{Idx: 1, Val: 1}),
	}
}

func TestLoadAndSolveRightIdentity(t *testing.T) {
	f := New(DefaultParams())
	require.NoError(t, f.Load(identityCols(), 2))

	x, err := f.SolveRight(&vecmath.DenseVec{Dim: 2, Data: []float64{3, 5}})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 5}, x.Data)
	assert.False(t, f.Singular())
}

func TestLoadAndSolveLeftIdentity(t *testing.T) {
	f := New(DefaultParams())
	require.NoError(t, f.Load(identityCols(), 2))

	x, err := f.SolveLeft(&vecmath.DenseVec{Dim: 2, Data: []float64{2, 7}})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 7}, x.Data)
}

func TestLoadSingularMatrixReturnsError(t *testing.T) {
	f := New(DefaultParams())
	cols := []*vecmath.SparseVec{
		col(2), // all-zero column
		col(2, vecmath.Entry{Idx: 1, Val: 1}),
	}
	err := f.Load(cols, 2)
	assert.ErrorIs(t, err, ErrSingular)
	assert.True(t, f.Singular())
}

func TestSolveRightWithNonTrivialMatrix(t *testing.T) {
	// B = [[2,0],[1,3]], solve B x = [4, 10] -> x = [2, 8/3]
	f := New(DefaultParams())
	cols := []*vecmath.SparseVec{
		col(2, vecmath.Entry{Idx: 0, Val: 2}, vecmath.Entry{Idx: 1, Val: 1}),
		col(2, vecmath.Entry{Idx: 1, Val: 3}),
	}
	require.NoError(t, f.Load(cols, 2))

	x, err := f.SolveRight(&vecmath.DenseVec{Dim: 2, Data: []float64{4, 10}})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, x.Data[0], 1e-9)
	assert.InDelta(t, 8.0/3.0, x.Data[1], 1e-9)
}

func TestUpdateLayersEtaAndSolvesAgainstIt(t *testing.T) {
	f := New(DefaultParams())
	require.NoError(t, f.Load(identityCols(), 2))

	// Replace column 0 with [1, 0] (no actual change): eta is the image of
	// the new column under the current inverse, here just [1, 0].
	require.NoError(t, f.Update(0, []float64{1, 0}))
	assert.Equal(t, 1, f.NumUpdates())

	x, err := f.SolveRight(&vecmath.DenseVec{Dim: 2, Data: []float64{5, 5}})
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 5}, x.Data)
}

func TestUpdateZeroPivotIsSingular(t *testing.T) {
	f := New(DefaultParams())
	require.NoError(t, f.Load(identityCols(), 2))

	err := f.Update(0, []float64{0, 1})
	assert.ErrorIs(t, err, ErrSingular)
	assert.True(t, f.Singular())
}

func TestClearResetsFactorization(t *testing.T) {
	f := New(DefaultParams())
	require.NoError(t, f.Load(identityCols(), 2))
	f.Clear()

	_, err := f.SolveRight(&vecmath.DenseVec{Dim: 2, Data: []float64{1, 1}})
	assert.ErrorIs(t, err, ErrSingular)
}
