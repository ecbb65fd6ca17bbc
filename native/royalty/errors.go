package royalty

import "errors"

// Failure codes carried on the wire by host wrappers. The numbering is part of
// the contract surface and must not change.
const (
	CodeDesignNotFound    uint32 = 100
	CodeInvalidRate       uint32 = 101
	CodeInvalidUsage      uint32 = 102
	CodeInvalidRevenue    uint32 = 103
	CodeInvalidFormula    uint32 = 104
	CodeCalculationFailed uint32 = 105
	CodeNoAuth            uint32 = 106
	CodeInvalidPeriod     uint32 = 107
)

var (
	ErrDesignNotFound    = errors.New("royalty: design not found")
	ErrInvalidRate       = errors.New("royalty: invalid rate")
	ErrInvalidUsage      = errors.New("royalty: invalid usage")
	ErrInvalidRevenue    = errors.New("royalty: invalid revenue")
	ErrInvalidFormula    = errors.New("royalty: invalid formula")
	ErrCalculationFailed = errors.New("royalty: calculation failed")
	ErrNoAuth            = errors.New("royalty: caller is not the administrator")
	ErrInvalidPeriod     = errors.New("royalty: invalid period")
)

// ErrorCode maps an engine failure to its wire code. The boolean is false for
// errors outside the royalty taxonomy, such as state backend failures.
func ErrorCode(err error) (uint32, bool) {
	switch {
	case errors.Is(err, ErrDesignNotFound):
		return CodeDesignNotFound, true
	case errors.Is(err, ErrInvalidRate):
		return CodeInvalidRate, true
	case errors.Is(err, ErrInvalidUsage):
		return CodeInvalidUsage, true
	case errors.Is(err, ErrInvalidRevenue):
		return CodeInvalidRevenue, true
	case errors.Is(err, ErrInvalidFormula):
		return CodeInvalidFormula, true
	case errors.Is(err, ErrCalculationFailed):
		return CodeCalculationFailed, true
	case errors.Is(err, ErrNoAuth):
		return CodeNoAuth, true
	case errors.Is(err, ErrInvalidPeriod):
		return CodeInvalidPeriod, true
	default:
		return 0, false
	}
}
