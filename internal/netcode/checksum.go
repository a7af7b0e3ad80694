// Package netcode implements client-side rollback networking on top of
// the blocks engine: one engine per participant, a windowed history of
// per-frame inputs and snapshots, and predict/confirm/rollback/resimulate.
package netcode

import (
	"hash/fnv"

	"github.com/vovakirdan/tui-blocks/internal/core"
)

// FrameChecksum mixes every player's id hash with their packed input bits
// and XOR-accumulates the result, making it independent of iteration
// order by construction. It is a cheap desync diagnostic, not an
// authoritative guarantee: it covers inputs only, not resulting board
// state.
func FrameChecksum(inputs map[core.PlayerID]core.Input) uint32 {
	var sum uint32
	for id, in := range inputs {
		h := hashPlayerID(id) ^ uint32(in.Pack())
		// One xorshift mixing step per player.
		h ^= h << 13
		h ^= h >> 17
		h ^= h << 5
		sum ^= h
	}
	return sum
}

func hashPlayerID(id core.PlayerID) uint32 {
	h := fnv.New32a()
	h.Write([]byte(id))
	return h.Sum32()
}
