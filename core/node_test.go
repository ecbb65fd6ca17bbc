package core

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"royaltychain/core/events"
	"royaltychain/native/royalty"
	"royaltychain/storage"
)

func testAddr(last byte) [20]byte {
	var out [20]byte
	out[19] = last
	return out
}

func newTestNode(t *testing.T) *Node {
	t.Helper()
	node, err := NewNode(storage.NewMemDB(), testAddr(0x01))
	require.NoError(t, err)
	return node
}

func TestNodeSeedsGenesisAdminOnce(t *testing.T) {
	db := storage.NewMemDB()
	node, err := NewNode(db, testAddr(0x01))
	require.NoError(t, err)

	require.NoError(t, node.UpdateAdmin(testAddr(0x01), testAddr(0x02)))

	// A restart against the same database keeps the rotated admin.
	restarted, err := NewNode(db, testAddr(0x01))
	require.NoError(t, err)
	admin, ok, err := restarted.Admin()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, testAddr(0x02), admin)
}

func TestNodeStampsUsageWithBlockHeight(t *testing.T) {
	node := newTestNode(t)
	admin := testAddr(0x01)

	_, err := node.RegisterTerm(admin, 7, 500, 100, royalty.FormulaPerOccupant, "USD")
	require.NoError(t, err)

	usage, err := node.SubmitUsage(testAddr(0x55), 7, 1, 10, 10)
	require.NoError(t, err)
	require.Equal(t, node.Height(), usage.Timestamp)

	later, err := node.SubmitUsage(testAddr(0x55), 7, 2, 10, 10)
	require.NoError(t, err)
	require.Greater(t, later.Timestamp, usage.Timestamp)
}

func TestNodeHeightSurvivesRestart(t *testing.T) {
	db := storage.NewMemDB()
	node, err := NewNode(db, testAddr(0x01))
	require.NoError(t, err)

	_, err = node.SubmitUsage(testAddr(0x55), 7, 1, 10, 10)
	require.NoError(t, err)
	before := node.Height()

	restarted, err := NewNode(db, testAddr(0x01))
	require.NoError(t, err)
	require.Equal(t, before, restarted.Height())
}

func TestNodeSerializesOperations(t *testing.T) {
	node := newTestNode(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(period int64) {
			defer wg.Done()
			_, err := node.SubmitUsage(testAddr(0x55), 7, period, 10, 10)
			require.NoError(t, err)
		}(int64(i + 1))
	}
	wg.Wait()

	// Each mutating operation consumed exactly one height.
	require.Equal(t, uint64(16), node.Height())
	for period := uint64(1); period <= 16; period++ {
		_, ok, err := node.RoyaltyUsage(7, period)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestNodeEndToEndCalculation(t *testing.T) {
	node := newTestNode(t)
	admin := testAddr(0x01)

	_, err := node.RegisterTerm(admin, 7, 50, 100, royalty.FormulaFixed, "USD")
	require.NoError(t, err)
	_, err = node.SubmitUsage(testAddr(0x55), 7, 1, 10, 10)
	require.NoError(t, err)

	amount, err := node.CalculateRoyalty(7, 1, big.NewInt(10_000))
	require.NoError(t, err)
	require.Zero(t, amount.Cmp(big.NewInt(5000)))

	stored, ok, err := node.RoyaltyHistory(7, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, stored.Cmp(amount))
}

func TestNodeStreamsEvents(t *testing.T) {
	node := newTestNode(t)
	admin := testAddr(0x01)

	_, err := node.RegisterTerm(admin, 7, 50, 100, royalty.FormulaFixed, "USD")
	require.NoError(t, err)

	ch, cancel, backlog := node.SubscribeEvents()
	defer cancel()
	require.Len(t, backlog, 1)
	require.Equal(t, events.TypeRoyaltyTermRegistered, backlog[0].Type)

	_, err = node.SubmitUsage(testAddr(0x55), 7, 1, 10, 10)
	require.NoError(t, err)

	evt := <-ch
	require.Equal(t, events.TypeRoyaltyUsageRecorded, evt.Type)
	require.Equal(t, "7", evt.Attributes["designId"])
}
