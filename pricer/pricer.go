// Package pricer implements the entering/leaving variable selection
// component (spec §4.5, C5): the Pricer interface plus a Dantzig
// (most-negative) and a Devex-weighted implementation, and the
// declarative partial-pricing shard interface spec.md §9's open question
// asks a future parallel implementation to re-derive from.
package pricer

import "github.com/go-revsimplex/core/basis"

// Id names a candidate entering or leaving entity: a row or a column.
type Id struct {
	IsRow bool
	Index int
}

// Source is the narrow view of the simplex kernel a Pricer needs, kept
// separate from the kernel type itself to avoid an import cycle (spec §9
// "Nested inheritance chains ... reimplement as composition").
type Source interface {
	Dim() int
	CoDim() int
	Rep() basis.Rep
	// Test returns the full-pricing violation score for a nonbasic
	// candidate; negative means profitable to enter.
	Test(id Id) float64
	// FTest returns the feasibility-vector violation at basic position
	// pos; nonzero means profitable to leave.
	FTest(pos int) float64
	// ComputeTest computes Test(id) on demand, for partial pricing where
	// the full test array is not kept up to date.
	ComputeTest(id Id) float64
	NonBasicIds() []Id
	BasicPositions() []int
}

// Pricer selects entering/leaving candidates and is informed after each
// pivot so weighted variants (Devex, steepest edge) can update scores.
type Pricer interface {
	Load(src Source)
	Clear()
	SetType(full bool)
	SetRep(rep basis.Rep)
	SelectEnter() (Id, bool)
	SelectLeave() (int, bool)
	Entered4(id Id, leavingPos int)
	Left4(leavingPos int, enteringId Id)
}

// Dantzig picks the most-negative test value, read from Test under full
// pricing and from ComputeTest under partial pricing — the textbook rule,
// and the one felipends-revised-simplex/simplex.go
// uses (it breaks on the first negative reduced cost rather than scanning
// for the most negative one; Dantzig here scans fully, which is the
// stricter classical rule spec §4.5 describes as "full pricing").
type Dantzig struct {
	src  Source
	full bool
	rep  basis.Rep
}

func NewDantzig() *Dantzig { return &Dantzig{full: true} }

func (d *Dantzig) Load(src Source) { d.src = src }
func (d *Dantzig) Clear() {}
func (d *Dantzig) SetType(full bool) { d.full = full }
func (d *Dantzig) SetRep(rep basis.Rep) { d.rep = rep }

func (d *Dantzig) SelectEnter() (Id, bool) {
	var best Id
	bestVal := -1e-9
	found := false
	for _, id := range d.src.NonBasicIds() {
		var v float64
		if d.full {
			v = d.src.Test(id)
		} else {
			v = d.src.ComputeTest(id)
		}
		if v < bestVal {
			bestVal = v
			best = id
			found = true
		}
	}
	return best, found
}

func (d *Dantzig) SelectLeave() (int, bool) {
	best := -1
	bestVal := 1e-9
	for _, pos := range d.src.BasicPositions() {
		v := d.src.FTest(pos)
		if v > bestVal {
			bestVal = v
			best = pos
		}
	}
	return best, best >= 0
}

func (d *Dantzig) Entered4(Id, int) {}
func (d *Dantzig) Left4(int, Id)    {}

// Devex keeps an approximate steepest-edge reference weight per
// candidate and selects the candidate that maximizes test(id)^2 /
// weight(id) rather than the raw test value. Weights start at 1 and
// Entered4/Left4 only reset the entering id's weight to 1; no
// multiplicative devex update is applied.
type Devex struct {
	src      Source
	full     bool
	rep      basis.Rep
	weight   map[Id]float64
	refGamma float64
}

func NewDevex() *Devex {
	return &Devex{full: true, weight: make(map[Id]float64), refGamma: 1}
}

func (d *Devex) Load(src Source) {
	d.src = src
	d.weight = make(map[Id]float64)
	d.refGamma = 1
}
func (d *Devex) Clear() { d.weight = make(map[Id]float64) }
func (d *Devex) SetType(full bool) { d.full = full }
func (d *Devex) SetRep(rep basis.Rep) { d.rep = rep }

func (d *Devex) w(id Id) float64 {
	if w, ok := d.weight[id]; ok {
		return w
	}
	return 1
}

func (d *Devex) SelectEnter() (Id, bool) {
	var best Id
	bestScore := 0.0
	found := false
	for _, id := range d.src.NonBasicIds() {
		var v float64
		if d.full {
			v = d.src.Test(id)
		} else {
			v = d.src.ComputeTest(id)
		}
		if v >= -1e-9 {
			continue
		}
		score := v * v / d.w(id)
		if score > bestScore {
			bestScore = score
			best = id
			found = true
		}
	}
	return best, found
}

func (d *Devex) SelectLeave() (int, bool) {
	best := -1
	bestScore := 0.0
	for _, pos := range d.src.BasicPositions() {
		v := d.src.FTest(pos)
		if v <= 1e-9 {
			continue
		}
		score := v * v
		if score > bestScore {
			bestScore = score
			best = pos
		}
	}
	return best, best >= 0
}

// Entered4 refreshes the reference weight of the entering id after a
// pivot: the classical devex update w_j <- max(w_j, (alpha_j/alpha_q)^2 *
// w_q), approximated here by resetting the entering id's weight to 1 (a
// conservative refresh used when the exact pivot column ratios are not
// threaded through the Pricer interface, documented as a simplification
// in DESIGN.md).
func (d *Devex) Entered4(id Id, _ int) {
	d.weight[id] = 1
}

func (d *Devex) Left4(_ int, enteringId Id) {
	d.weight[enteringId] = 1
}

// ShardSpec is the "prices per shard" declarative partition spec.md §9
// asks a future parallel implementation to derive from, instead of from
// the data layout used here. It is unused by PartialPricer's single
// goroutine today; it exists only so the shape of a future partition is
// fixed by a small data contract rather than re-derived from scratch.
type ShardSpec struct {
	Shards      int
	IdsPerShard func(shard, totalShards int, ids []Id) []Id
}

// PartialPricer computes test values on demand rather than maintaining a
// full pVec, per spec §4.5's "given partial pricing ... the pricer
// computes computeTest(i) on demand". It wraps Dantzig's selection logic
// over ComputeTest. The Shards field is carried but not consulted: every
// nonbasic id is scanned in one pass (spec.md's own non-goal excludes
// parallel execution).
type PartialPricer struct {
	Dantzig
	Shards *ShardSpec
}

func NewPartialPricer() *PartialPricer {
	p := &PartialPricer{Dantzig: Dantzig{full: false}}
	return p
}

func (p *PartialPricer) Load(src Source) {
	p.Dantzig.Load(src)
	p.Dantzig.full = false
}
