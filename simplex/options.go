package simplex

// Option mutates a Params in place (same functional-options shape as
// refine.Option, katalvlaran-lvlath/dijkstra.Option).
type Option func(*Params)

// NewParams builds kernel Params from DefaultParams with opts applied in
// order.
func NewParams(opts ...Option) Params {
	p := DefaultParams()
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func WithTolerances(eps, delta float64) Option {
	return func(p *Params) { p.Eps, p.Delta = eps, delta }
}

func WithIterationLimit(maxIter int) Option {
	return func(p *Params) { p.MaxIter = maxIter }
}

func WithRefactorEvery(n int) Option {
	return func(p *Params) { p.RefactorEvery = n }
}

func WithShiftRoundLimit(n int) Option {
	return func(p *Params) { p.MaxShiftRound = n }
}
