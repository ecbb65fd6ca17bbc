package state

import "encoding/binary"

// Raw key layout before hashing:
//
//	royalty/admin                     -> administrator address
//	royalty/term/<design>             -> Term
//	royalty/usage/<design>/<period>   -> Usage
//	royalty/history/<design>/<period> -> calculated amount
//
// Design and period render as fixed-width big-endian words, keeping the
// composite key collision-free without string concatenation.
var (
	royaltyAdminKey      = []byte("royalty/admin")
	royaltyTermPrefix    = []byte("royalty/term/")
	royaltyUsagePrefix   = []byte("royalty/usage/")
	royaltyHistoryPrefix = []byte("royalty/history/")
)

func designKey(prefix []byte, designID uint64) []byte {
	buf := make([]byte, len(prefix)+8)
	copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[len(prefix):], designID)
	return buf
}

func designPeriodKey(prefix []byte, designID uint64, period uint64) []byte {
	buf := make([]byte, len(prefix)+16)
	copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[len(prefix):], designID)
	binary.BigEndian.PutUint64(buf[len(prefix)+8:], period)
	return buf
}
