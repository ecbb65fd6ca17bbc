package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"royaltychain/native/royalty"
	"royaltychain/storage"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(storage.NewMemDB())
}

func TestRoyaltyTermRoundTrip(t *testing.T) {
	m := newTestManager(t)

	_, ok, err := m.RoyaltyTermGet(7)
	require.NoError(t, err)
	require.False(t, ok)

	var creator [20]byte
	creator[19] = 0x01
	term := &royalty.Term{Rate: 500, Base: 100, Formula: royalty.FormulaPerOccupant, Currency: "USD", Creator: creator}
	require.NoError(t, m.RoyaltyTermPut(7, term))

	got, ok, err := m.RoyaltyTermGet(7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, term, got)

	replacement := &royalty.Term{Rate: 50, Base: 9, Formula: royalty.FormulaFixed, Currency: "EUR", Creator: creator}
	require.NoError(t, m.RoyaltyTermPut(7, replacement))
	got, ok, err = m.RoyaltyTermGet(7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, replacement, got)
}

func TestRoyaltyUsageRoundTrip(t *testing.T) {
	m := newTestManager(t)

	var submitter [20]byte
	submitter[0] = 0xAB
	usage := &royalty.Usage{Occupants: 200, Energy: 1500, Timestamp: 42, Submitter: submitter}
	require.NoError(t, m.RoyaltyUsagePut(7, 3, usage))

	got, ok, err := m.RoyaltyUsageGet(7, 3)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, usage, got)

	_, ok, err = m.RoyaltyUsageGet(7, 4)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRoyaltyCompositeKeysDoNotCollide(t *testing.T) {
	m := newTestManager(t)

	// String-concatenated keys would collide for (1, 11) and (11, 1); the
	// fixed-width binary layout must not.
	a := &royalty.Usage{Occupants: 1}
	b := &royalty.Usage{Occupants: 2}
	require.NoError(t, m.RoyaltyUsagePut(1, 11, a))
	require.NoError(t, m.RoyaltyUsagePut(11, 1, b))

	gotA, ok, err := m.RoyaltyUsageGet(1, 11)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(1), gotA.Occupants)

	gotB, ok, err := m.RoyaltyUsageGet(11, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(2), gotB.Occupants)
}

func TestRoyaltyHistoryOverwrites(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.RoyaltyHistoryPut(7, 1, big.NewInt(5000)))
	require.NoError(t, m.RoyaltyHistoryPut(7, 1, big.NewInt(5000)))

	amount, ok, err := m.RoyaltyHistoryGet(7, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, amount.Cmp(big.NewInt(5000)))
}

func TestRoyaltyAdminSeedIsIdempotent(t *testing.T) {
	m := newTestManager(t)

	_, ok, err := m.RoyaltyAdminGet()
	require.NoError(t, err)
	require.False(t, ok)

	var genesis, rotated [20]byte
	genesis[19] = 0x01
	rotated[19] = 0x02

	require.NoError(t, m.RoyaltyAdminSeed(genesis))
	admin, ok, err := m.RoyaltyAdminGet()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, genesis, admin)

	// A second seed after rotation must not clobber the rotated admin.
	require.NoError(t, m.RoyaltyAdminPut(rotated))
	require.NoError(t, m.RoyaltyAdminSeed(genesis))
	admin, ok, err = m.RoyaltyAdminGet()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rotated, admin)
}

func TestKVRejectsEmptyKey(t *testing.T) {
	m := newTestManager(t)
	require.Error(t, m.KVPut(nil, uint64(1)))
	_, err := m.KVGet(nil, new(uint64))
	require.Error(t, err)
}
