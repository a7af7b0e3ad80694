package blocks

import "github.com/vovakirdan/tui-blocks/internal/core"

// refillBag returns a fresh permutation of all seven piece types,
// Fisher-Yates shuffled with the engine's RNG. Drawing bag by bag gives
// the guideline 7-bag property: in any 7 consecutive pieces from one bag,
// each type appears exactly once.
func refillBag(rng *core.SeededRNG) []PieceType {
	bag := []PieceType{PieceI, PieceO, PieceT, PieceS, PieceZ, PieceJ, PieceL}
	for i := len(bag) - 1; i > 0; i-- {
		j := rng.NextInt(i + 1)
		bag[i], bag[j] = bag[j], bag[i]
	}
	return bag
}

// drawPiece pops the next type from the bag, refilling it when empty.
func (e *Engine) drawPiece() PieceType {
	if len(e.bag) == 0 {
		e.bag = refillBag(e.rng)
	}
	t := e.bag[0]
	e.bag = e.bag[1:]
	return t
}

// nextFromQueue shifts one type out of the lookahead queue, topping the
// queue back up from the bag so it always holds QueueLength entries.
func (e *Engine) nextFromQueue() PieceType {
	t := e.queue[0]
	copy(e.queue, e.queue[1:])
	e.queue[len(e.queue)-1] = e.drawPiece()
	return t
}
