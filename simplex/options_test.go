package simplex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewParamsAppliesOptionsOverDefaults(t *testing.T) {
	p := NewParams(WithIterationLimit(500), WithTolerances(1e-8, 1e-5))
	assert.Equal(t, 500, p.MaxIter)
	assert.Equal(t, 1e-8, p.Eps)
	assert.Equal(t, 1e-5, p.Delta)
	assert.Equal(t, DefaultParams().RefactorEvery, p.RefactorEvery)
}
