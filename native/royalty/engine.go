package royalty

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"royaltychain/core/events"
)

var errNilState = errors.New("royalty engine: state not configured")

const (
	maxRateBps     = 10_000
	maxCurrencyLen = 10
	// occupantScale is the fixed divisor of the PER_OCCUPANT formula.
	occupantScale = 100
)

type engineState interface {
	RoyaltyAdminGet() ([20]byte, bool, error)
	RoyaltyAdminPut(addr [20]byte) error
	RoyaltyTermGet(designID uint64) (*Term, bool, error)
	RoyaltyTermPut(designID uint64, term *Term) error
	RoyaltyUsageGet(designID uint64, period uint64) (*Usage, bool, error)
	RoyaltyUsagePut(designID uint64, period uint64, usage *Usage) error
	RoyaltyHistoryGet(designID uint64, period uint64) (*big.Int, bool, error)
	RoyaltyHistoryPut(designID uint64, period uint64, amount *big.Int) error
}

// Engine wires royalty terms, usage intake, and the calculation rules with
// persistence and event emission. Every operation is a total validation pass
// followed by at most one state write; validation failures never mutate state.
type Engine struct {
	state   engineState
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine constructs a royalty engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn: func() int64 {
			return time.Now().Unix()
		},
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the logical clock used to stamp usage submissions. The
// node installs its block height here; tests pin fixed values.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) requireAdmin(caller [20]byte) error {
	admin, ok, err := e.state.RoyaltyAdminGet()
	if err != nil {
		return err
	}
	if !ok || caller != admin {
		return ErrNoAuth
	}
	return nil
}

// RegisterTerm validates and stores the royalty term for a design. Only the
// current administrator may register; a later registration overwrites the
// stored term wholesale.
func (e *Engine) RegisterTerm(caller [20]byte, designID uint64, rate uint64, base uint64, formula Formula, currency string) (*Term, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	if rate == 0 || rate > maxRateBps {
		return nil, fmt.Errorf("%w: rate %d outside (0, %d]", ErrInvalidRate, rate, maxRateBps)
	}
	if !formula.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFormula, formula)
	}
	currency = strings.TrimSpace(currency)
	// Over-long currencies report the rate code. Clients key on that mapping,
	// so it stays.
	if len(currency) > maxCurrencyLen {
		return nil, fmt.Errorf("%w: currency %q exceeds %d characters", ErrInvalidRate, currency, maxCurrencyLen)
	}
	term := &Term{
		Rate:     uint32(rate),
		Base:     base,
		Formula:  formula,
		Currency: currency,
		Creator:  caller,
	}
	if err := e.state.RoyaltyTermPut(designID, term); err != nil {
		return nil, err
	}
	e.emit(events.RoyaltyTermRegistered{
		DesignID: designID,
		Rate:     term.Rate,
		Base:     term.Base,
		Formula:  uint8(term.Formula),
		Currency: term.Currency,
		Creator:  term.Creator,
	})
	return term.Clone(), nil
}

// SubmitUsage validates and stores a usage measurement for a design and
// period. Submission is deliberately open: any caller may report, and the
// trusted-oracle gate belongs to a layer above this engine.
func (e *Engine) SubmitUsage(caller [20]byte, designID uint64, period int64, occupants int64, energy int64) (*Usage, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if occupants < 0 || energy < 0 {
		return nil, fmt.Errorf("%w: occupants %d, energy %d", ErrInvalidUsage, occupants, energy)
	}
	if period <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPeriod, period)
	}
	usage := &Usage{
		Occupants: uint64(occupants),
		Energy:    uint64(energy),
		Timestamp: uint64(e.now()),
		Submitter: caller,
	}
	if err := e.state.RoyaltyUsagePut(designID, uint64(period), usage); err != nil {
		return nil, err
	}
	e.emit(events.RoyaltyUsageRecorded{
		DesignID:  designID,
		Period:    uint64(period),
		Occupants: usage.Occupants,
		Energy:    usage.Energy,
		Timestamp: usage.Timestamp,
		Submitter: usage.Submitter,
	})
	return usage.Clone(), nil
}

// Calculate applies the registered term to the recorded usage and the supplied
// revenue, persists the result as the historical royalty for the period, and
// returns the owed amount. Recomputation with identical inputs overwrites the
// history record with the identical value; there is no accumulation.
func (e *Engine) Calculate(designID uint64, period int64, revenue *big.Int) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	term, ok, err := e.state.RoyaltyTermGet(designID)
	if err != nil {
		return nil, err
	}
	if !ok || term == nil {
		return nil, fmt.Errorf("%w: design %d", ErrDesignNotFound, designID)
	}
	var usage *Usage
	if period > 0 {
		usage, ok, err = e.state.RoyaltyUsageGet(designID, uint64(period))
		if err != nil {
			return nil, err
		}
	} else {
		ok = false
	}
	if !ok || usage == nil {
		return nil, fmt.Errorf("%w: no usage for design %d period %d", ErrInvalidUsage, designID, period)
	}
	if revenue == nil || revenue.Sign() <= 0 {
		return nil, ErrInvalidRevenue
	}
	amount := new(big.Int)
	switch term.Formula {
	case FormulaPerOccupant:
		amount.SetUint64(usage.Occupants)
		amount.Mul(amount, big.NewInt(int64(term.Rate)))
		amount.Quo(amount, big.NewInt(occupantScale))
		amount.Mul(amount, revenue)
	case FormulaPerEnergy:
		if term.Base == 0 {
			return nil, fmt.Errorf("%w: zero base divisor", ErrCalculationFailed)
		}
		amount.SetUint64(usage.Energy)
		amount.Mul(amount, big.NewInt(int64(term.Rate)))
		amount.Quo(amount, new(big.Int).SetUint64(term.Base))
		amount.Mul(amount, revenue)
	case FormulaFixed:
		amount.SetUint64(term.Base)
		amount.Mul(amount, big.NewInt(int64(term.Rate)))
	default:
		// Unreachable through RegisterTerm, but stored data is trusted once
		// written and older schemas may hold values this build does not know.
		return nil, fmt.Errorf("%w: stored formula %d", ErrInvalidFormula, term.Formula)
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: non-positive amount %s", ErrCalculationFailed, amount)
	}
	if err := e.state.RoyaltyHistoryPut(designID, uint64(period), amount); err != nil {
		return nil, err
	}
	e.emit(events.RoyaltyCalculated{
		DesignID: designID,
		Period:   uint64(period),
		Amount:   new(big.Int).Set(amount),
		Currency: term.Currency,
		Creator:  term.Creator,
	})
	return cloneAmount(amount), nil
}

// UpdateAdmin transfers administrative authority to newAdmin. The new identity
// is accepted as-is; shape validation belongs to the identity layer above.
func (e *Engine) UpdateAdmin(caller [20]byte, newAdmin [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if err := e.state.RoyaltyAdminPut(newAdmin); err != nil {
		return err
	}
	e.emit(events.RoyaltyAdminRotated{Previous: caller, Current: newAdmin})
	return nil
}

// Term returns the stored royalty term for a design without mutating state.
func (e *Engine) Term(designID uint64) (*Term, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, errNilState
	}
	term, ok, err := e.state.RoyaltyTermGet(designID)
	if err != nil || !ok {
		return nil, false, err
	}
	return term.Clone(), true, nil
}

// UsageFor returns the stored usage record for a design and period.
func (e *Engine) UsageFor(designID uint64, period uint64) (*Usage, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, errNilState
	}
	usage, ok, err := e.state.RoyaltyUsageGet(designID, period)
	if err != nil || !ok {
		return nil, false, err
	}
	return usage.Clone(), true, nil
}

// History returns the most recent successfully calculated royalty for a design
// and period.
func (e *Engine) History(designID uint64, period uint64) (*big.Int, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, errNilState
	}
	amount, ok, err := e.state.RoyaltyHistoryGet(designID, period)
	if err != nil || !ok {
		return nil, false, err
	}
	return cloneAmount(amount), true, nil
}

// Admin returns the current administrator identity.
func (e *Engine) Admin() ([20]byte, bool, error) {
	if e == nil || e.state == nil {
		return [20]byte{}, false, errNilState
	}
	return e.state.RoyaltyAdminGet()
}
