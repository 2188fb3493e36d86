/* xvcd - Xilinx Virtual Cable server, backed by an XPCU USB JTAG cable
 *
 * JTAG TAP state tracker (C5): the IEEE 1149.1 state machine, the
 * quiescence gate, and the bogus-movement filter for a known Xilinx
 * tool quirk
 */

package main

// TapState is one of the sixteen IEEE 1149.1 TAP controller states
type TapState int

// TAP states, numbered and named exactly as the JTAG standard does
const (
	TestLogicReset TapState = iota
	RunTestIdle
	SelectDRScan
	CaptureDR
	ShiftDR
	Exit1DR
	PauseDR
	Exit2DR
	UpdateDR
	SelectIRScan
	CaptureIR
	ShiftIR
	Exit1IR
	PauseIR
	Exit2IR
	UpdateIR
)

var tapStateNames = [...]string{
	"Test-Logic-Reset", "Run-Test/Idle",
	"Select-DR-Scan", "Capture-DR", "Shift-DR", "Exit1-DR", "Pause-DR", "Exit2-DR", "Update-DR",
	"Select-IR-Scan", "Capture-IR", "Shift-IR", "Exit1-IR", "Pause-IR", "Exit2-IR", "Update-IR",
}

// String returns the standard IEEE 1149.1 name for the state
func (s TapState) String() string {
	if s < 0 || int(s) >= len(tapStateNames) {
		return "Unknown"
	}
	return tapStateNames[s]
}

// tapNextState[state][tms] is the IEEE 1149.1 transition table
var tapNextState = [16][2]TapState{
	TestLogicReset: {RunTestIdle, TestLogicReset},
	RunTestIdle:    {RunTestIdle, SelectDRScan},

	SelectDRScan: {CaptureDR, SelectIRScan},
	CaptureDR:    {ShiftDR, Exit1DR},
	ShiftDR:      {ShiftDR, Exit1DR},
	Exit1DR:      {PauseDR, UpdateDR},
	PauseDR:      {PauseDR, Exit2DR},
	Exit2DR:      {ShiftDR, UpdateDR},
	UpdateDR:     {RunTestIdle, SelectDRScan},

	SelectIRScan: {CaptureIR, TestLogicReset},
	CaptureIR:    {ShiftIR, Exit1IR},
	ShiftIR:      {ShiftIR, Exit1IR},
	Exit1IR:      {PauseIR, UpdateIR},
	PauseIR:      {PauseIR, Exit2IR},
	Exit2IR:      {ShiftIR, UpdateIR},
	UpdateIR:     {RunTestIdle, SelectDRScan},
}

// step advances the TAP by one TCK edge with the given TMS value
func step(state TapState, tms bool) TapState {
	idx := 0
	if tms {
		idx = 1
	}
	return tapNextState[state][idx]
}

// TapTracker is the per-connection JTAG state: current TAP state and
// whether Test-Logic-Reset has been observed since the last time the
// tracker passed through a DR/IR capture state. Never shared between
// connections (spec.md §5)
type TapTracker struct {
	State  TapState
	seenTLR bool
}

// NewTapTracker returns a tracker in the TAP's power-on state
func NewTapTracker() *TapTracker {
	return &TapTracker{State: TestLogicReset, seenTLR: true}
}

// Advance steps the TAP through len TMS bits (LSB-first within tms,
// same bit order the shift: frame uses) and updates the quiescence
// flag after each step
func (t *TapTracker) Advance(tms []byte, nBits int) {
	for i := 0; i < nBits; i++ {
		bit := tms[i/8]&(1<<uint(i%8)) != 0
		t.State = step(t.State, bit)

		t.seenTLR = (t.seenTLR || t.State == TestLogicReset) &&
			t.State != CaptureDR && t.State != CaptureIR
	}
}

// Quiescent reports whether the session may safely close: TLR has been
// seen and the TAP is resting in Run-Test/Idle
func (t *TapTracker) Quiescent() bool {
	return t.seenTLR && t.State == RunTestIdle
}

// BogusMovement detects a known Xilinx tool quirk: certain short,
// specific TMS sequences issued from Exit1-IR/Exit1-DR are movement the
// tool never intended to have an electrical effect, and must be
// acknowledged without touching the USB cable at all
func (t *TapTracker) BogusMovement(nBits int, tms []byte) bool {
	if len(tms) == 0 {
		return false
	}
	first := tms[0]

	if t.State == Exit1IR && nBits == 5 && first == 0x17 {
		return true
	}
	if t.State == Exit1DR && nBits == 4 && first == 0x0B {
		return true
	}
	return false
}
