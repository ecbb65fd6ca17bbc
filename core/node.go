package core

import (
	"errors"
	"math/big"
	"sync"

	"royaltychain/core/events"
	"royaltychain/core/state"
	"royaltychain/core/types"
	"royaltychain/native/royalty"
	"royaltychain/storage"
)

var errNilDatabase = errors.New("core: nil database")

// eventBufferLimit bounds the replay buffer handed to new stream subscribers.
const eventBufferLimit = 256

// Node owns the database, state manager, and royalty engine. Every operation
// runs under a single mutex, so each one is an atomic transition over shared
// state and never observes a partially applied write from another.
type Node struct {
	mu     sync.Mutex
	db     storage.Database
	state  *state.Manager
	engine *royalty.Engine
	height uint64

	subMu   sync.Mutex
	buffer  []*types.Event
	subs    map[uint64]chan *types.Event
	nextSub uint64
}

// NewNode opens the state on the provided database and seeds the genesis
// administrator if no admin record exists yet.
func NewNode(db storage.Database, genesisAdmin [20]byte) (*Node, error) {
	if db == nil {
		return nil, errNilDatabase
	}
	manager := state.NewManager(db)
	if err := manager.RoyaltyAdminSeed(genesisAdmin); err != nil {
		return nil, err
	}
	height, _, err := manager.ChainHeightGet()
	if err != nil {
		return nil, err
	}
	node := &Node{
		db:     db,
		state:  manager,
		height: height,
		subs:   make(map[uint64]chan *types.Event),
	}
	engine := royalty.NewEngine()
	engine.SetState(manager)
	engine.SetEmitter(node)
	engine.SetNowFunc(func() int64 { return int64(node.height) })
	node.engine = engine
	return node, nil
}

// advanceHeight opens the next logical block. Failed operations still consume
// a height, the same way a failed transaction still occupies its block.
func (n *Node) advanceHeight() error {
	n.height++
	return n.state.ChainHeightPut(n.height)
}

// Height returns the current logical block height.
func (n *Node) Height() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.height
}

// RegisterTerm records the royalty term for a design on behalf of caller.
func (n *Node) RegisterTerm(caller [20]byte, designID uint64, rate uint64, base uint64, formula royalty.Formula, currency string) (*royalty.Term, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.advanceHeight(); err != nil {
		return nil, err
	}
	return n.engine.RegisterTerm(caller, designID, rate, base, formula, currency)
}

// SubmitUsage records a usage measurement on behalf of caller.
func (n *Node) SubmitUsage(caller [20]byte, designID uint64, period int64, occupants int64, energy int64) (*royalty.Usage, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.advanceHeight(); err != nil {
		return nil, err
	}
	return n.engine.SubmitUsage(caller, designID, period, occupants, energy)
}

// CalculateRoyalty computes and persists the royalty owed for a design and
// period given the reported revenue.
func (n *Node) CalculateRoyalty(designID uint64, period int64, revenue *big.Int) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.advanceHeight(); err != nil {
		return nil, err
	}
	return n.engine.Calculate(designID, period, revenue)
}

// UpdateAdmin transfers administrative authority to newAdmin.
func (n *Node) UpdateAdmin(caller [20]byte, newAdmin [20]byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.advanceHeight(); err != nil {
		return err
	}
	return n.engine.UpdateAdmin(caller, newAdmin)
}

// RoyaltyTerm returns the registered term for a design, if any.
func (n *Node) RoyaltyTerm(designID uint64) (*royalty.Term, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.Term(designID)
}

// RoyaltyUsage returns the recorded usage for a design and period, if any.
func (n *Node) RoyaltyUsage(designID uint64, period uint64) (*royalty.Usage, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.UsageFor(designID, period)
}

// RoyaltyHistory returns the last calculated royalty for a design and period.
func (n *Node) RoyaltyHistory(designID uint64, period uint64) (*big.Int, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.History(designID, period)
}

// Admin returns the current administrator identity.
func (n *Node) Admin() ([20]byte, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.Admin()
}

// WithState runs fn against the state manager under the node lock.
func (n *Node) WithState(fn func(*state.Manager) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return fn(n.state)
}

// Emit implements events.Emitter. Payloads are buffered for replay and fanned
// out to stream subscribers without blocking the emitting operation.
func (n *Node) Emit(evt events.Event) {
	payload := eventPayload(evt)
	if payload == nil {
		return
	}
	n.subMu.Lock()
	defer n.subMu.Unlock()
	n.buffer = append(n.buffer, payload)
	if len(n.buffer) > eventBufferLimit {
		n.buffer = n.buffer[len(n.buffer)-eventBufferLimit:]
	}
	for _, ch := range n.subs {
		select {
		case ch <- payload:
		default:
		}
	}
}

// SubscribeEvents registers a stream subscriber. It returns the live channel,
// a cancel function, and a snapshot of the replay buffer.
func (n *Node) SubscribeEvents() (<-chan *types.Event, func(), []*types.Event) {
	n.subMu.Lock()
	defer n.subMu.Unlock()
	id := n.nextSub
	n.nextSub++
	ch := make(chan *types.Event, eventBufferLimit)
	n.subs[id] = ch
	backlog := make([]*types.Event, len(n.buffer))
	copy(backlog, n.buffer)
	cancel := func() {
		n.subMu.Lock()
		defer n.subMu.Unlock()
		if existing, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(existing)
		}
	}
	return ch, cancel, backlog
}

func eventPayload(evt events.Event) *types.Event {
	if evt == nil {
		return nil
	}
	if carrier, ok := evt.(interface{ Event() *types.Event }); ok {
		return carrier.Event()
	}
	return &types.Event{Type: evt.EventType()}
}
