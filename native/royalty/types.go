package royalty

import "math/big"

// Formula selects the rule used to combine rate, base, usage, and revenue into
// an owed amount.
type Formula uint8

const (
	// FormulaUnspecified is the zero value and never valid for a stored term.
	FormulaUnspecified Formula = iota
	// FormulaPerOccupant scales revenue by rate times the occupant count.
	FormulaPerOccupant
	// FormulaPerEnergy scales revenue by rate times energy over the term base.
	FormulaPerEnergy
	// FormulaFixed pays rate times base regardless of usage and revenue.
	FormulaFixed
)

// Valid reports whether the formula is one of the known calculation rules.
func (f Formula) Valid() bool {
	switch f {
	case FormulaPerOccupant, FormulaPerEnergy, FormulaFixed:
		return true
	default:
		return false
	}
}

func (f Formula) String() string {
	switch f {
	case FormulaPerOccupant:
		return "PER_OCCUPANT"
	case FormulaPerEnergy:
		return "PER_ENERGY"
	case FormulaFixed:
		return "FIXED"
	default:
		return "UNSPECIFIED"
	}
}

// ParseFormula maps a wire-format formula name to its Formula value. Unknown
// names map to FormulaUnspecified, which fails term validation.
func ParseFormula(s string) Formula {
	switch s {
	case "PER_OCCUPANT":
		return FormulaPerOccupant
	case "PER_ENERGY":
		return FormulaPerEnergy
	case "FIXED":
		return FormulaFixed
	default:
		return FormulaUnspecified
	}
}

// Term is the royalty contract registered for a design. A term exists in state
// only if it passed full validation at registration; it is replaced wholesale
// by a later registration, never partially updated.
type Term struct {
	Rate     uint32   `json:"rate"`
	Base     uint64   `json:"base"`
	Formula  Formula  `json:"formula"`
	Currency string   `json:"currency"`
	Creator  [20]byte `json:"creator"`
}

// Clone returns a copy of the term.
func (t *Term) Clone() *Term {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}

// Usage captures one measurement submission for a design and period. The
// timestamp is the logical clock value at submission, not wall time.
type Usage struct {
	Occupants uint64   `json:"occupants"`
	Energy    uint64   `json:"energy"`
	Timestamp uint64   `json:"timestamp"`
	Submitter [20]byte `json:"submitter"`
}

// Clone returns a copy of the usage record.
func (u *Usage) Clone() *Usage {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func cloneAmount(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
