package core

import "testing"

func TestPackRoundTrip(t *testing.T) {
	in := Input{Left: true, SoftDrop: true, Rotate: true}
	if got := UnpackInput(in.Pack()); got != in {
		t.Fatalf("round trip changed the input: %+v -> %+v", in, got)
	}

	all := Input{Left: true, Right: true, SoftDrop: true, HardDrop: true, Rotate: true, Hold: true}
	if got := UnpackInput(all.Pack()); got != all {
		t.Fatalf("round trip dropped bits: %+v", got)
	}
}

func TestNeutralInput(t *testing.T) {
	if !NeutralInput().IsNeutral() {
		t.Fatal("NeutralInput must be neutral")
	}
	if NeutralInput().Pack() != 0 {
		t.Fatal("neutral input must pack to zero")
	}
	if (Input{Hold: true}).IsNeutral() {
		t.Fatal("an input with a pressed action is not neutral")
	}
}

func TestPackDistinguishesActions(t *testing.T) {
	seen := map[uint8]bool{}
	singles := []Input{
		{Left: true}, {Right: true}, {SoftDrop: true},
		{HardDrop: true}, {Rotate: true}, {Hold: true},
	}
	for _, in := range singles {
		b := in.Pack()
		if seen[b] {
			t.Fatalf("two actions share packed value %08b", b)
		}
		seen[b] = true
	}
}
