package blocks

import (
	"testing"

	"github.com/vovakirdan/tui-blocks/internal/core"
)

func TestBagIsPermutation(t *testing.T) {
	rng := core.NewSeededRNG(1)

	for draw := 0; draw < 100; draw++ {
		bag := refillBag(rng)
		if len(bag) != 7 {
			t.Fatalf("Bag %d has %d pieces, want 7", draw, len(bag))
		}
		seen := make(map[PieceType]int)
		for _, p := range bag {
			seen[p]++
		}
		for p := PieceType(0); p < pieceCount; p++ {
			if seen[p] != 1 {
				t.Errorf("Bag %d contains %s %d times, want exactly once", draw, p, seen[p])
			}
		}
	}
}

func TestSevenBagPropertyThroughEngine(t *testing.T) {
	e := New("guideline", 777)

	// Drain the remainder of the first bag so we start on a boundary.
	for len(e.bag) > 0 {
		e.drawPiece()
	}

	// Every subsequent window of 7 draws must contain each type once.
	for window := 0; window < 20; window++ {
		seen := make(map[PieceType]int)
		for i := 0; i < 7; i++ {
			seen[e.drawPiece()]++
		}
		for p := PieceType(0); p < pieceCount; p++ {
			if seen[p] != 1 {
				t.Fatalf("Window %d: %s drawn %d times, want exactly once", window, p, seen[p])
			}
		}
	}
}

func TestQueueAlwaysFull(t *testing.T) {
	e := New("guideline", 5)
	for i := 0; i < 50; i++ {
		if len(e.queue) != QueueLength {
			t.Fatalf("Queue length %d after %d draws, want %d", len(e.queue), i, QueueLength)
		}
		e.nextFromQueue()
	}
}
