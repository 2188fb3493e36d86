/* xvcd - Xilinx Virtual Cable server, backed by an XPCU USB JTAG cable
 *
 * Shift engine (C3): packs TDI/TMS into A6 burst words, drives the
 * control+bulk transfer pair, and unpacks TDO from the bulk response
 */

package main

import (
	"context"

	"github.com/google/gousb"
)

// a6 burst word layout, 16 bits, up to 4 bit-slots per word:
//
//	bit  0-3:  TDI, one bit per slot
//	bit  4-7:  TMS, one bit per slot
//	bit  8-11: clock enable, one bit per slot (always set for a valid slot)
//	bit 12-15: read enable, one bit per slot
const (
	a6SlotsPerWord = 4
	a6TdiShift     = 0
	a6TmsShift     = 4
	a6ClockShift   = 8
	a6ReadShift    = 12
)

// shiftBurst accumulates bit-slots for one A6 control+bulk transfer.
// Its word buffer is sized Chunk*2 bytes, matching the firmware's burst
// window
type shiftBurst struct {
	c      *CableHandle
	words  []uint16 // pending command words, one being filled at words[len-1]
	slot   int       // next free slot (0..3) in the word being filled
	nSlots int       // total slots queued in this burst so far
	reads  []bool    // read-enable flag, one per queued slot, in order
}

func newShiftBurst(c *CableHandle) *shiftBurst {
	return &shiftBurst{c: c}
}

// maxSlots is the largest burst this cable's Chunk setting allows before
// the firmware's "never an exact multiple of 4" constraint forces a flush
func (b *shiftBurst) maxSlots() int {
	return a6SlotsPerWord*b.c.settings.chunk() - 1
}

// addBit queues one TDI/TMS/read-enable triple. real distinguishes a
// genuine shifting slot from the inert dummy pad slot emit() appends to
// break a multiple-of-4 burst: a dummy slot clears all four flag bits
// and does not toggle TCK. The caller must flush (via emit) before the
// burst would exceed maxSlots
func (b *shiftBurst) addBit(tdi, tms, read, real bool) {
	if b.slot == 0 {
		b.words = append(b.words, 0)
	}
	w := &b.words[len(b.words)-1]

	if real {
		if tdi {
			*w |= 1 << uint(a6TdiShift+b.slot)
		}
		if tms {
			*w |= 1 << uint(a6TmsShift+b.slot)
		}
		*w |= 1 << uint(a6ClockShift+b.slot)
		if read {
			*w |= 1 << uint(a6ReadShift+b.slot)
		}
	}

	b.reads = append(b.reads, real && read)
	b.nSlots++
	b.slot = (b.slot + 1) % a6SlotsPerWord
}

// emit flushes the queued bits over the wire and returns the TDO bits
// captured for read-enabled slots, MSB order matching the slot order
// they were queued in. It is a no-op if nothing is queued
func (b *shiftBurst) emit(ctx context.Context) ([]bool, error) {
	if b.nSlots == 0 {
		return nil, nil
	}

	n := b.nSlots

	// The firmware corrupts bursts whose slot count is an exact
	// multiple of 4; pad with one inert, non-reading dummy slot
	if n%a6SlotsPerWord == 0 {
		b.addBit(false, false, false, false)
		n = b.nSlots
	}

	buf := make([]byte, len(b.words)*2)
	for i, w := range b.words {
		buf[2*i] = byte(w)
		buf[2*i+1] = byte(w >> 8)
	}

	if LogTraceUSB&Log.level != 0 {
		Log.Begin().Add("usb: a6 burst n=%d", n).HexDump(buf).Commit(LogTraceUSB)
	}

	rType := gousb.ControlOut | gousb.ControlVendor | gousb.ControlDevice
	if _, err := b.c.dev.Control(rType, reqShift, uint16(n), 0, nil); err != nil {
		return nil, &CableError{"shift control", UsbTransport, err}
	}

	wctx, cancel := context.WithTimeout(ctx, BulkTimeout)
	_, err := b.c.out.WriteContext(wctx, buf)
	cancel()
	if err != nil {
		return nil, &CableError{"shift bulk write", UsbTransport, err}
	}

	nRead := 0
	for _, r := range b.reads {
		if r {
			nRead++
		}
	}

	var tdo []bool
	if nRead > 0 {
		respWords := (nRead + 15) / 16
		if respWords == 0 {
			respWords = 1
		}
		resp := make([]byte, respWords*2)

		rctx, rcancel := context.WithTimeout(ctx, BulkTimeout)
		nn, err := b.c.in.ReadContext(rctx, resp)
		rcancel()
		if err != nil {
			return nil, &CableError{"shift bulk read", UsbTransport, err}
		}
		resp = resp[:nn]

		if LogTraceUSB&Log.level != 0 {
			Log.Begin().Add("usb: a6 tdo n=%d", n).HexDump(resp).Commit(LogTraceUSB)
		}

		// The firmware returns one sample per read-enabled slot, in
		// slot order; non-reading slots contribute nothing
		tdo = unpackTDO(resp, nRead)
	}

	b.words = b.words[:0]
	b.reads = b.reads[:0]
	b.slot = 0
	b.nSlots = 0

	return tdo, nil
}

// unpackTDO extracts n bits from the bulk response. Each 16-bit
// little-endian word is decoded starting at mask=1 (or mask=1<<(16-R)
// for a tail word carrying only R<16 samples) and shifting the mask
// left one position per consumed sample, per the ascending bit order
// the firmware returns samples in
func unpackTDO(resp []byte, n int) []bool {
	bits := make([]bool, 0, n)

	fullWords := n / 16
	rem := n % 16

	readWord := func(i int) uint16 {
		return uint16(resp[2*i]) | uint16(resp[2*i+1])<<8
	}

	idx := 0
	for ; idx < fullWords; idx++ {
		w := readWord(idx)
		for mask := uint16(1); mask != 0; mask <<= 1 {
			bits = append(bits, w&mask != 0)
		}
	}

	if rem > 0 {
		w := readWord(idx)
		for mask := uint16(1) << uint(16-rem); mask != 0; mask <<= 1 {
			bits = append(bits, w&mask != 0)
		}
	}

	return bits
}

// chunk returns the configured burst size in words, defaulting if unset
func (s *cableSettings) chunk() int {
	if s.Chunk <= 0 {
		return DefaultChunk
	}
	return s.Chunk
}

// Scan drives nBits JTAG clocks through the cable: TDI and TMS are
// packed LSB-first per input byte, bit 0 of tdi[0]/tms[0] first. If
// tdoOut is non-nil it receives the captured TDO, packed the same way.
// This is the only entry point C7 (session loop) calls into C3
func (c *CableHandle) Scan(tdi, tms []byte, tdoOut []byte, nBits int) error {
	burst := newShiftBurst(c)
	ctx := context.Background()

	var tdoBits []bool
	read := tdoOut != nil

	flush := func() error {
		bits, err := burst.emit(ctx)
		if err != nil {
			return err
		}
		tdoBits = append(tdoBits, bits...)
		return nil
	}

	for i := 0; i < nBits; i++ {
		byteIdx := i / 8
		bitIdx := uint(i % 8)

		tdiBit := byteIdx < len(tdi) && tdi[byteIdx]&(1<<bitIdx) != 0
		tmsBit := byteIdx < len(tms) && tms[byteIdx]&(1<<bitIdx) != 0

		burst.addBit(tdiBit, tmsBit, read, true)

		if burst.nSlots >= burst.maxSlots() {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if err := flush(); err != nil {
		return err
	}

	if read {
		for i, bit := range tdoBits {
			byteIdx := i / 8
			bitIdx := uint(i % 8)
			if byteIdx >= len(tdoOut) {
				break
			}
			if bit {
				tdoOut[byteIdx] |= 1 << bitIdx
			} else {
				tdoOut[byteIdx] &^= 1 << bitIdx
			}
		}
	}

	return nil
}
