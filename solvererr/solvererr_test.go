package solvererr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewfWrapsSeverityAndMessage(t *testing.T) {
	err := Newf(Singular, "kernel.pivot", "basis %d is singular", 3)
	assert.Equal(t, "SINGULAR: kernel.pivot: basis 3 is singular", err.Error())
	assert.Equal(t, Singular, err.Severity)
}

func TestSeverityOfReadsSolverErrorAndDefaultsToError(t *testing.T) {
	inner := Newf(Abort, "refine.Solve", "ladder exhausted")
	wrapped := errors.New("outer context") // not a SolverError at all
	assert.Equal(t, Error, SeverityOf(wrapped))
	assert.Equal(t, Abort, SeverityOf(inner))
}

func TestLadderRunsFirstApplicableStep(t *testing.T) {
	order := []string{}
	ladder := &Ladder{Steps: []RecoveryStep{
		{Name: "skip-me", Apply: func() bool { order = append(order, "skip-me"); return false }},
		{Name: "take-me", Apply: func() bool { order = append(order, "take-me"); return true }},
		{Name: "never-reached", Apply: func() bool { order = append(order, "never-reached"); return true }},
	}}

	name, ok := ladder.Run()
	assert.True(t, ok)
	assert.Equal(t, "take-me", name)
	assert.Equal(t, []string{"skip-me", "take-me"}, order)
}

func TestLadderReportsExhaustion(t *testing.T) {
	ladder := &Ladder{Steps: []RecoveryStep{
		{Name: "a", Apply: func() bool { return false }},
		{Name: "b", Apply: func() bool { return false }},
	}}
	_, ok := ladder.Run()
	assert.False(t, ok)
}

func TestSeverityStrings(t *testing.T) {
	cases := map[Severity]string{
		UserError:      "USER_ERROR",
		NumericWarning: "NUMERIC_WARNING",
		Singular:       "SINGULAR",
		Abort:          "ABORT",
		Error:          "ERROR",
	}
	for sev, want := range cases {
		assert.Equal(t, want, sev.String())
	}
}
