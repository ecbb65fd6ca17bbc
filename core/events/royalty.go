package events

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"royaltychain/core/types"
)

const (
	TypeRoyaltyTermRegistered = "royalty.term.registered"
	TypeRoyaltyUsageRecorded  = "royalty.usage.recorded"
	TypeRoyaltyCalculated     = "royalty.payment.calculated"
	TypeRoyaltyAdminRotated   = "royalty.admin.rotated"
)

// RoyaltyTermRegistered is emitted when the administrator registers or
// replaces the term for a design.
type RoyaltyTermRegistered struct {
	DesignID uint64
	Rate     uint32
	Base     uint64
	Formula  uint8
	Currency string
	Creator  [20]byte
}

func (RoyaltyTermRegistered) EventType() string { return TypeRoyaltyTermRegistered }

func (e RoyaltyTermRegistered) Event() *types.Event {
	return &types.Event{
		Type: TypeRoyaltyTermRegistered,
		Attributes: map[string]string{
			"designId": strconv.FormatUint(e.DesignID, 10),
			"rate":     strconv.FormatUint(uint64(e.Rate), 10),
			"base":     strconv.FormatUint(e.Base, 10),
			"formula":  strconv.FormatUint(uint64(e.Formula), 10),
			"currency": e.Currency,
			"creator":  hexAddr(e.Creator),
		},
	}
}

// RoyaltyUsageRecorded is emitted when a usage measurement is stored for a
// design and period.
type RoyaltyUsageRecorded struct {
	DesignID  uint64
	Period    uint64
	Occupants uint64
	Energy    uint64
	Timestamp uint64
	Submitter [20]byte
}

func (RoyaltyUsageRecorded) EventType() string { return TypeRoyaltyUsageRecorded }

func (e RoyaltyUsageRecorded) Event() *types.Event {
	return &types.Event{
		Type: TypeRoyaltyUsageRecorded,
		Attributes: map[string]string{
			"designId":  strconv.FormatUint(e.DesignID, 10),
			"period":    strconv.FormatUint(e.Period, 10),
			"occupants": strconv.FormatUint(e.Occupants, 10),
			"energy":    strconv.FormatUint(e.Energy, 10),
			"timestamp": strconv.FormatUint(e.Timestamp, 10),
			"submitter": hexAddr(e.Submitter),
		},
	}
}

// RoyaltyCalculated is emitted after a successful calculation overwrites the
// historical record for a design and period.
type RoyaltyCalculated struct {
	DesignID uint64
	Period   uint64
	Amount   *big.Int
	Currency string
	Creator  [20]byte
}

func (RoyaltyCalculated) EventType() string { return TypeRoyaltyCalculated }

func (e RoyaltyCalculated) Event() *types.Event {
	return &types.Event{
		Type: TypeRoyaltyCalculated,
		Attributes: map[string]string{
			"designId": strconv.FormatUint(e.DesignID, 10),
			"period":   strconv.FormatUint(e.Period, 10),
			"amount":   formatAmount(e.Amount),
			"currency": e.Currency,
			"creator":  hexAddr(e.Creator),
		},
	}
}

// RoyaltyAdminRotated is emitted when administrative authority moves to a new
// identity.
type RoyaltyAdminRotated struct {
	Previous [20]byte
	Current  [20]byte
}

func (RoyaltyAdminRotated) EventType() string { return TypeRoyaltyAdminRotated }

func (e RoyaltyAdminRotated) Event() *types.Event {
	return &types.Event{
		Type: TypeRoyaltyAdminRotated,
		Attributes: map[string]string{
			"previous": hexAddr(e.Previous),
			"current":  hexAddr(e.Current),
		},
	}
}

func hexAddr(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
