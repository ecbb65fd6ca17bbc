package state

import (
	"math/big"

	"royaltychain/native/royalty"
)

// RoyaltyAdminGet returns the administrator address and whether one has been
// seeded yet.
func (m *Manager) RoyaltyAdminGet() ([20]byte, bool, error) {
	var addr [20]byte
	ok, err := m.KVGet(royaltyAdminKey, &addr)
	if err != nil || !ok {
		return [20]byte{}, false, err
	}
	return addr, true, nil
}

// RoyaltyAdminPut replaces the administrator address.
func (m *Manager) RoyaltyAdminPut(addr [20]byte) error {
	return m.KVPut(royaltyAdminKey, addr)
}

// RoyaltyAdminSeed stores the genesis administrator only when no admin record
// exists yet, so restarts never clobber a rotated administrator.
func (m *Manager) RoyaltyAdminSeed(addr [20]byte) error {
	if _, ok, err := m.RoyaltyAdminGet(); err != nil {
		return err
	} else if ok {
		return nil
	}
	return m.RoyaltyAdminPut(addr)
}

// RoyaltyTermGet loads the term registered for a design.
func (m *Manager) RoyaltyTermGet(designID uint64) (*royalty.Term, bool, error) {
	term := new(royalty.Term)
	ok, err := m.KVGet(designKey(royaltyTermPrefix, designID), term)
	if err != nil || !ok {
		return nil, false, err
	}
	return term, true, nil
}

// RoyaltyTermPut stores or replaces the term for a design.
func (m *Manager) RoyaltyTermPut(designID uint64, term *royalty.Term) error {
	return m.KVPut(designKey(royaltyTermPrefix, designID), term)
}

// RoyaltyUsageGet loads the usage record for a design and period.
func (m *Manager) RoyaltyUsageGet(designID uint64, period uint64) (*royalty.Usage, bool, error) {
	usage := new(royalty.Usage)
	ok, err := m.KVGet(designPeriodKey(royaltyUsagePrefix, designID, period), usage)
	if err != nil || !ok {
		return nil, false, err
	}
	return usage, true, nil
}

// RoyaltyUsagePut stores or replaces the usage record for a design and period.
func (m *Manager) RoyaltyUsagePut(designID uint64, period uint64, usage *royalty.Usage) error {
	return m.KVPut(designPeriodKey(royaltyUsagePrefix, designID, period), usage)
}

// RoyaltyHistoryGet loads the last calculated royalty for a design and period.
func (m *Manager) RoyaltyHistoryGet(designID uint64, period uint64) (*big.Int, bool, error) {
	amount := new(big.Int)
	ok, err := m.KVGet(designPeriodKey(royaltyHistoryPrefix, designID, period), amount)
	if err != nil || !ok {
		return nil, false, err
	}
	return amount, true, nil
}

// RoyaltyHistoryPut overwrites the calculated royalty for a design and period.
func (m *Manager) RoyaltyHistoryPut(designID uint64, period uint64, amount *big.Int) error {
	return m.KVPut(designPeriodKey(royaltyHistoryPrefix, designID, period), amount)
}
