/* xvcd - Xilinx Virtual Cable server, backed by an XPCU USB JTAG cable
 *
 * TAP tracker tests
 */

package main

import "testing"

func TestStepResetFromAnywhere(t *testing.T) {
	// Five consecutive TMS=1 edges always land in Test-Logic-Reset,
	// regardless of starting state
	for start := TestLogicReset; start <= UpdateIR; start++ {
		s := start
		for i := 0; i < 5; i++ {
			s = step(s, true)
		}
		if s != TestLogicReset {
			t.Errorf("starting from %s, five TMS=1 steps landed in %s, want Test-Logic-Reset", start, s)
		}
	}
}

func TestStepIdleHoldsOnTMS0(t *testing.T) {
	if s := step(RunTestIdle, false); s != RunTestIdle {
		t.Errorf("Run-Test/Idle with TMS=0 went to %s", s)
	}
}

func TestAdvanceQuiescence(t *testing.T) {
	tap := NewTapTracker()

	// Five TMS=1 bits (packed LSB-first in one byte) resets the TAP
	tap.Advance([]byte{0x1F}, 5)
	if tap.State != TestLogicReset {
		t.Fatalf("expected Test-Logic-Reset, got %s", tap.State)
	}
	if !tap.seenTLR {
		t.Fatalf("expected seenTLR to be set after Test-Logic-Reset")
	}

	// One TMS=0 bit moves to Run-Test/Idle; tracker should now report
	// quiescent
	tap.Advance([]byte{0x00}, 1)
	if !tap.Quiescent() {
		t.Fatalf("expected tracker to be quiescent in Run-Test/Idle after TLR")
	}
}

func TestAdvanceCaptureClearsSeenTLR(t *testing.T) {
	tap := NewTapTracker()
	tap.Advance([]byte{0x1F}, 5) // -> TLR, seenTLR=true
	tap.Advance([]byte{0x00}, 1) // -> RTI

	// Select-DR-Scan, Capture-DR: TMS=1,0
	tap.Advance([]byte{0b01}, 2)
	if tap.State != CaptureDR {
		t.Fatalf("expected Capture-DR, got %s", tap.State)
	}
	if tap.seenTLR {
		t.Fatalf("seenTLR should clear once Capture-DR is passed through")
	}
	if tap.Quiescent() {
		t.Fatalf("tracker must not report quiescent right after Capture-DR")
	}
}

func TestBogusMovementIR(t *testing.T) {
	tap := NewTapTracker()
	tap.State = Exit1IR

	if !tap.BogusMovement(5, []byte{0x17}) {
		t.Fatalf("expected Exit1-IR/len=5/0x17 to be flagged as bogus movement")
	}
	if tap.BogusMovement(4, []byte{0x17}) {
		t.Fatalf("wrong length must not be flagged")
	}
	if tap.BogusMovement(5, []byte{0x18}) {
		t.Fatalf("wrong TMS pattern must not be flagged")
	}
}

func TestBogusMovementDR(t *testing.T) {
	tap := NewTapTracker()
	tap.State = Exit1DR

	if !tap.BogusMovement(4, []byte{0x0B}) {
		t.Fatalf("expected Exit1-DR/len=4/0x0B to be flagged as bogus movement")
	}
	if tap.BogusMovement(5, []byte{0x0B}) {
		t.Fatalf("wrong length must not be flagged")
	}
}

func TestBogusMovementWrongState(t *testing.T) {
	tap := NewTapTracker()
	tap.State = ShiftDR

	if tap.BogusMovement(4, []byte{0x0B}) {
		t.Fatalf("bogus movement filter must not trigger outside Exit1-DR/Exit1-IR")
	}
}
