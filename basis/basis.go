// Package basis implements the basis descriptor (spec §3/§4.3, C4): the
// per-row and per-column status array, its basic-count invariant, and the
// ranged-row slack-bound table used by the four representation/algorithm
// combinations.
package basis

import "fmt"

// Status is the per-row or per-column variable status.
type Status int8

const (
	PonLower   Status = iota // primal: nonbasic at lower bound
	PonUpper                 // primal: nonbasic at upper bound
	PFixed                   // primal: nonbasic, lo == up
	PFree                    // primal: nonbasic, free (unbounded both ways)
	DonLower                 // dual: nonbasic at lower bound
	DonUpper                 // dual: nonbasic at upper bound
	DonBoth                  // dual: nonbasic, ranged row
	DUndefined               // dual: undefined (degenerate)
	DFree                    // dual: free
	Basic                    // basic in the current representation
)

func (s Status) String() string {
	switch s {
	case PonLower:
		return "P_ON_LOWER"
	case PonUpper:
		return "P_ON_UPPER"
	case PFixed:
		return "P_FIXED"
	case PFree:
		return "P_FREE"
	case DonLower:
		return "D_ON_LOWER"
	case DonUpper:
		return "D_ON_UPPER"
	case DonBoth:
		return "D_ON_BOTH"
	case DUndefined:
		return "D_UNDEFINED"
	case DFree:
		return "D_FREE"
	case Basic:
		return "BASIC"
	default:
		return fmt.Sprintf("Status(%d)", int8(s))
	}
}

// EncodedStatus is the five-value tag exposed to callers via
// getBasis/setBasis (spec §6): ON_LOWER, ON_UPPER, FIXED, ZERO, BASIC.
type EncodedStatus int8

const (
	EncOnLower EncodedStatus = iota
	EncOnUpper
	EncFixed
	EncZero
	EncBasic
)

// Encode collapses the internal nine-way status into the caller-facing
// five-way tag.
func Encode(s Status) EncodedStatus {
	switch s {
	case PonLower, DonLower:
		return EncOnLower
	case PonUpper, DonUpper:
		return EncOnUpper
	case PFixed:
		return EncFixed
	case PFree, DFree, DUndefined, DonBoth:
		return EncZero
	case Basic:
		return EncBasic
	default:
		return EncZero
	}
}

// Decode expands a caller-facing tag back to an internal status. It does
// not know the representation: ON_LOWER/ON_UPPER always resolve to the
// primal flavor, and callers driving a dual representation should remap
// via DualOf after decoding.
func Decode(e EncodedStatus) Status {
	switch e {
	case EncOnLower:
		return PonLower
	case EncOnUpper:
		return PonUpper
	case EncFixed:
		return PFixed
	case EncBasic:
		return Basic
	default:
		return PFree
	}
}

// DualOf remaps a primal nonbasic status to its dual counterpart, used
// when the descriptor is reinterpreted under the other algorithm.
func DualOf(s Status) Status {
	switch s {
	case PonLower:
		return DonLower
	case PonUpper:
		return DonUpper
	case PFixed:
		return DonBoth
	case PFree:
		return DFree
	default:
		return s
	}
}

// Rep selects which entities ("dim" many) must be basic: rows in column
// representation, columns in row representation.
type Rep int

const (
	Column Rep = iota
	Row
)

// Desc is the basis descriptor: a status per row and per column, plus the
// representation it was built under.
type Desc struct {
	Rep        Rep
	RowStatus  []Status
	ColStatus  []Status
	nRows      int
	nCols      int
}

// New builds a descriptor with every row and column nonbasic at its lower
// bound (or free, for the open question of an unbounded entity — callers
// adjust via SetStatus after construction based on actual bound data).
func New(nRows, nCols int, rep Rep) *Desc {
	d := &Desc{
		Rep:       rep,
		RowStatus: make([]Status, nRows),
		ColStatus: make([]Status, nCols),
		nRows:     nRows,
		nCols:     nCols,
	}
	for i := range d.RowStatus {
		d.RowStatus[i] = PonLower
	}
	for j := range d.ColStatus {
		d.ColStatus[j] = PonLower
	}
	return d
}

// Dim returns the number of entities that must be basic under Rep.
func (d *Desc) Dim() int {
	if d.Rep == Column {
		return d.nRows
	}
	return d.nCols
}

// Resize adjusts the descriptor to a new shape (spec §3: "its dimension is
// re-matched on every shape change; its status entries persist through
// column/row additions"). New rows/columns default to PonLower.
func (d *Desc) Resize(nRows, nCols int) {
	d.RowStatus = growStatus(d.RowStatus, nRows)
	d.ColStatus = growStatus(d.ColStatus, nCols)
	d.nRows, d.nCols = nRows, nCols
}

func growStatus(s []Status, n int) []Status {
	if n <= len(s) {
		return s[:n]
	}
	out := make([]Status, n)
	copy(out, s)
	for i := len(s); i < n; i++ {
		out[i] = PonLower
	}
	return out
}

// BasicCount returns the number of row+column entries marked Basic.
func (d *Desc) BasicCount() int {
	n := 0
	for _, s := range d.RowStatus {
		if s == Basic {
			n++
		}
	}
	for _, s := range d.ColStatus {
		if s == Basic {
			n++
		}
	}
	return n
}

// CheckInvariant reports whether exactly Dim() entries are basic.
func (d *Desc) CheckInvariant() bool {
	return d.BasicCount() == d.Dim()
}

// RangedSlackBounds implements the table in spec §4.3: given a ranged
// row's lhs/rhs (lhs <= rhs, both possibly infinite), returns the bounds
// [lo, up] the row's dual slack variable must respect under the current
// representation/algorithm combination. lhs/rhs use +/-Inf for unbounded
// sides.
func RangedSlackBounds(lhs, rhs float64) (lo, up float64) {
	const inf = 1e300
	lhsInf := lhs <= -inf
	rhsInf := rhs >= inf
	switch {
	case lhsInf && rhsInf:
		return 0, 0
	case lhsInf && !rhsInf:
		return -inf, 0
	case !lhsInf && rhsInf:
		return 0, inf
	case lhs == rhs:
		return -inf, inf
	default: // finite, lhs != rhs
		return 0, 0
	}
}

// EnterBasic marks id (a row or column index depending on which) basic,
// returning its previous status so the caller can record it for the
// leaving-variable step of the same pivot.
func (d *Desc) EnterBasic(isRow bool, id int) Status {
	var prev Status
	if isRow {
		prev = d.RowStatus[id]
		d.RowStatus[id] = Basic
	} else {
		prev = d.ColStatus[id]
		d.ColStatus[id] = Basic
	}
	return prev
}

// LeaveBasic moves a basic entity to a nonbasic status chosen from its
// bound situation (spec §4.3): atLower selects ON_LOWER (or FIXED if lo ==
// up), atUpper selects ON_UPPER (or FIXED), and free leaves to ZERO
// (modeled internally as PFree).
func (d *Desc) LeaveBasic(isRow bool, id int, atUpper, fixed, free bool) {
	var s Status
	switch {
	case free:
		s = PFree
	case fixed:
		s = PFixed
	case atUpper:
		s = PonUpper
	default:
		s = PonLower
	}
	if isRow {
		d.RowStatus[id] = s
	} else {
		d.ColStatus[id] = s
	}
}

// GetEncoded fills caller-supplied row/col status slices with the
// five-value encoding (spec §6 getBasis).
func (d *Desc) GetEncoded(rowOut, colOut []EncodedStatus) {
	for i, s := range d.RowStatus {
		rowOut[i] = Encode(s)
	}
	for j, s := range d.ColStatus {
		colOut[j] = Encode(s)
	}
}

// SetEncoded loads a basis from the five-value encoding (spec §6
// setBasis). Disambiguation between primal and dual flavors follows Rep.
func (d *Desc) SetEncoded(rowIn, colIn []EncodedStatus) {
	for i, e := range rowIn {
		d.RowStatus[i] = d.resolve(e)
	}
	for j, e := range colIn {
		d.ColStatus[j] = d.resolve(e)
	}
}

func (d *Desc) resolve(e EncodedStatus) Status {
	s := Decode(e)
	if d.Rep == Row {
		return DualOf(s)
	}
	return s
}
