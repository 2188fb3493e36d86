/* xvcd - Xilinx Virtual Cable server, backed by an XPCU USB JTAG cable
 *
 * Shift engine packing/unpacking tests
 */

package main

import "testing"

func TestAddBitPacksFourSlotsPerWord(t *testing.T) {
	c := &CableHandle{settings: cableSettings{Chunk: DefaultChunk}}
	b := newShiftBurst(c)

	b.addBit(true, false, false, true)  // slot 0: tdi=1
	b.addBit(false, true, false, true)  // slot 1: tms=1
	b.addBit(true, true, true, true)    // slot 2: tdi=1,tms=1,read=1
	b.addBit(false, false, false, true) // slot 3

	if len(b.words) != 1 {
		t.Fatalf("expected one packed word, got %d", len(b.words))
	}

	w := b.words[0]
	wantTDI := uint16(1<<0 | 1<<2)
	wantTMS := uint16(1<<(4+1) | 1<<(4+2))
	wantClock := uint16(1<<8 | 1<<9 | 1<<10 | 1<<11)
	wantRead := uint16(1 << (12 + 2))

	if w&0x000F != wantTDI {
		t.Errorf("tdi nibble = %#x, want %#x", w&0x000F, wantTDI)
	}
	if w&0x00F0 != wantTMS {
		t.Errorf("tms nibble = %#x, want %#x", w&0x00F0, wantTMS)
	}
	if w&0x0F00 != wantClock {
		t.Errorf("clock nibble = %#x, want %#x", w&0x0F00, wantClock)
	}
	if w&0xF000 != wantRead {
		t.Errorf("read nibble = %#x, want %#x", w&0xF000, wantRead)
	}
}

func TestAddBitDummyPadSlotIsAllZero(t *testing.T) {
	c := &CableHandle{settings: cableSettings{Chunk: DefaultChunk}}
	b := newShiftBurst(c)

	b.addBit(true, true, true, true) // slot 0: a real, fully-set bit
	b.addBit(false, false, false, false) // slot 1: dummy pad

	w := b.words[0]
	if w&(1<<1|1<<5) != 0 {
		t.Errorf("dummy slot set a tdi/tms bit: word = %#x", w)
	}
	if w&(1<<9) != 0 {
		t.Errorf("dummy slot set its clock flag: word = %#x", w)
	}
	if w&(1<<13) != 0 {
		t.Errorf("dummy slot set its read flag: word = %#x", w)
	}
	if !b.reads[0] || b.reads[1] {
		t.Errorf("reads = %v, want [true false]", b.reads)
	}
}

func TestMaxSlotsNeverMultipleOfFour(t *testing.T) {
	c := &CableHandle{settings: cableSettings{Chunk: 4}}
	b := newShiftBurst(c)

	if max := b.maxSlots(); max%4 == 0 {
		t.Fatalf("maxSlots() = %d must never be a multiple of 4", max)
	}
}

func TestUnpackTDOFullWords(t *testing.T) {
	// word = 0x0001: only bit 0 set. Ascending extraction (mask=1
	// upward) must report bit 0 as true and every other bit false
	resp := []byte{0x01, 0x00}
	bits := unpackTDO(resp, 16)

	if len(bits) != 16 {
		t.Fatalf("got %d bits, want 16", len(bits))
	}
	for i, bit := range bits {
		want := i == 0
		if bit != want {
			t.Errorf("bit %d = %v, want %v", i, bit, want)
		}
	}
}

func TestUnpackTDOPartialWord(t *testing.T) {
	// Reading only 5 bits from the tail word starts at bit 11
	// (16-5). word = 0x0800 sets only that bit, so ascending
	// extraction must report sample 0 as true and the rest false
	resp := []byte{0x00, 0x08} // word = 0x0800, bit 11
	bits := unpackTDO(resp, 5)

	if len(bits) != 5 {
		t.Fatalf("got %d bits, want 5", len(bits))
	}
	for i, bit := range bits {
		want := i == 0
		if bit != want {
			t.Errorf("bit %d = %v, want %v", i, bit, want)
		}
	}
}

func TestUnpackTDOZero(t *testing.T) {
	resp := []byte{0x00, 0x00}
	bits := unpackTDO(resp, 3)
	if len(bits) != 3 {
		t.Fatalf("got %d bits, want 3", len(bits))
	}
	for _, bit := range bits {
		if bit {
			t.Fatalf("expected all-zero bits")
		}
	}
}
