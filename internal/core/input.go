package core

// PlayerID identifies a participant in a match. Player IDs are opaque
// strings chosen by the host layer (session IDs, "p1"/"p2", etc.).
type PlayerID string

// Input represents the button state for a single player during one
// simulation tick. Left, Right and SoftDrop are level-triggered (held
// state); HardDrop, Rotate and Hold are edge-triggered and must be
// de-duplicated by the input layer so a held key does not repeat the
// action every frame.
type Input struct {
	Left     bool
	Right    bool
	SoftDrop bool
	HardDrop bool
	Rotate   bool
	Hold     bool
}

// NeutralInput returns an input with no buttons pressed. This is what the
// rollback layer assumes for frames where a player's real input has not
// arrived yet.
func NeutralInput() Input {
	return Input{}
}

// IsNeutral returns true if no buttons are pressed.
func (in Input) IsNeutral() bool {
	return in == Input{}
}

// Pack encodes the six flags into the low bits of a byte, one bit per
// button in field order. Used by the frame checksum and the wire format.
func (in Input) Pack() uint8 {
	var b uint8
	if in.Left {
		b |= 1 << 0
	}
	if in.Right {
		b |= 1 << 1
	}
	if in.SoftDrop {
		b |= 1 << 2
	}
	if in.HardDrop {
		b |= 1 << 3
	}
	if in.Rotate {
		b |= 1 << 4
	}
	if in.Hold {
		b |= 1 << 5
	}
	return b
}

// UnpackInput decodes a byte produced by Pack.
func UnpackInput(b uint8) Input {
	return Input{
		Left:     b&(1<<0) != 0,
		Right:    b&(1<<1) != 0,
		SoftDrop: b&(1<<2) != 0,
		HardDrop: b&(1<<3) != 0,
		Rotate:   b&(1<<4) != 0,
		Hold:     b&(1<<5) != 0,
	}
}
