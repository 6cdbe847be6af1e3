package refine

import (
	"github.com/go-revsimplex/core/basis"
	"github.com/go-revsimplex/core/logging"
	"github.com/go-revsimplex/core/simplex"
)

// Option mutates a Params in place, following the functional-options
// pattern of katalvlaran-lvlath/dijkstra.Option (WithMemoryMode,
// WithMaxDistance, ...), generalized here to the refinement loop's knobs
// instead of a graph search's.
type Option func(*Params)

// NewParams builds refinement Params from DefaultParams with opts applied
// in order.
func NewParams(opts ...Option) Params {
	p := DefaultParams()
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func WithMaxRounds(n int) Option {
	return func(p *Params) { p.MaxRounds = n }
}

func WithTolerance(delta float64) Option {
	return func(p *Params) { p.Delta = delta }
}

func WithMaxDenominator(maxDenom int64) Option {
	return func(p *Params) { p.MaxDenom = maxDenom }
}

func WithAlgorithm(rep basis.Rep, alg simplex.Algorithm) Option {
	return func(p *Params) { p.Rep, p.Alg = rep, alg }
}

func WithLogLevel(level logging.Level) Option {
	return func(p *Params) { p.LogLevel = level }
}

func WithKernelParams(kp simplex.Params) Option {
	return func(p *Params) { p.Kernel = kp }
}

// WithMaxScale caps the primalScale/dualScale spec §4.6 step 8 derives
// from each round's exact violations.
func WithMaxScale(maxScale float64) Option {
	return func(p *Params) { p.MaxScale = maxScale }
}

// WithPowerOfTwoScaling toggles rounding primalScale/dualScale to the
// nearest power of two (spec §6), which scales exactly in binary floating
// point at the cost of a less tightly-fitted scale factor.
func WithPowerOfTwoScaling(on bool) Option {
	return func(p *Params) { p.ScalePow2 = on }
}
