package ratiotest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	delta, eps  float64
	shiftedPos  int
	shiftedSlack float64
	shiftCalls  int
}

func (f *fakeSource) Delta() float64 { return f.delta }
func (f *fakeSource) Eps() float64   { return f.eps }
func (f *fakeSource) Shift(pos int, slack float64) {
	f.shiftCalls++
	f.shiftedPos = pos
	f.shiftedSlack = slack
}

func TestTextbookSelectsSmallestStep(t *testing.T) {
	src := &fakeSource{eps: 1e-9}
	tb := NewTextbook()
	tb.Load(src)

	pos, step, ok := tb.Select([]Candidate{
		{Pos: 0, Step: 3.0, Pivot: 1.0},
		{Pos: 1, Step: 1.0, Pivot: 2.0},
		{Pos: 2, Step: 5.0, Pivot: 9.0},
	})
	require.True(t, ok)
	assert.Equal(t, 1, pos)
	assert.Equal(t, 1.0, step)
}

func TestTextbookBreaksTiesByPivotMagnitude(t *testing.T) {
	src := &fakeSource{eps: 1e-6}
	tb := NewTextbook()
	tb.Load(src)

	pos, _, ok := tb.Select([]Candidate{
		{Pos: 0, Step: 2.0, Pivot: 1.0},
		{Pos: 1, Step: 2.0, Pivot: 10.0},
	})
	require.True(t, ok)
	assert.Equal(t, 1, pos)
}

func TestTextbookEmptyCandidatesIsUnbounded(t *testing.T) {
	tb := NewTextbook()
	tb.Load(&fakeSource{})
	_, _, ok := tb.Select(nil)
	assert.False(t, ok)
}

func TestHarrisPicksLargestPivotInRelaxedBand(t *testing.T) {
	// Both candidates admit the same true step; the relaxed first pass
	// puts them both in the band, so the second pass should prefer the
	// numerically more stable (larger-pivot) one.
	src := &fakeSource{delta: 1e-6, eps: 1e-3}
	h := NewHarris()
	h.Load(src)

	pos, _, ok := h.Select([]Candidate{
		{Pos: 0, Step: 1.0, Pivot: 2.0},
		{Pos: 1, Step: 1.0, Pivot: 50.0},
	})
	require.True(t, ok)
	assert.Equal(t, 1, pos)
}

func TestHarrisShiftsWinnerWhenStepBelowDelta1(t *testing.T) {
	src := &fakeSource{delta: 0.5, eps: 1e-9}
	h := NewHarris()
	h.Load(src)

	_, _, ok := h.Select([]Candidate{
		{Pos: 3, Step: 1.0, Pivot: 2.0},
	})
	require.True(t, ok)
	assert.Equal(t, 1, src.shiftCalls)
	assert.Equal(t, 3, src.shiftedPos)
	assert.Greater(t, src.shiftedSlack, 0.0)
}
