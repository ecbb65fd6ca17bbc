package state

var chainHeightKey = []byte("royalty/height")

// ChainHeightGet returns the persisted logical block height. The boolean is
// false on a fresh database.
func (m *Manager) ChainHeightGet() (uint64, bool, error) {
	var height uint64
	ok, err := m.KVGet(chainHeightKey, &height)
	if err != nil || !ok {
		return 0, false, err
	}
	return height, true, nil
}

// ChainHeightPut persists the logical block height.
func (m *Manager) ChainHeightPut(height uint64) error {
	return m.KVPut(chainHeightKey, height)
}
