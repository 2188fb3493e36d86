/* xvcd - Xilinx Virtual Cable server, backed by an XPCU USB JTAG cable
 *
 * XVC framing tests
 */

package main

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

func TestReadGetInfo(t *testing.T) {
	r := bytes.NewBufferString("getinfo:")

	frame, err := ReadXvcFrame(r)
	if err != nil {
		t.Fatalf("ReadXvcFrame: %s", err)
	}
	if frame.cmd != cmdGetInfo {
		t.Fatalf("expected cmdGetInfo, got %v", frame.cmd)
	}
}

func TestWriteGetInfoReply(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGetInfoReply(&buf); err != nil {
		t.Fatalf("WriteGetInfoReply: %s", err)
	}
	if buf.String() != xvcInfoString {
		t.Fatalf("got %q, want %q", buf.String(), xvcInfoString)
	}
}

func TestReadSetTCK(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("settck:")
	binary.Write(&buf, binary.LittleEndian, uint32(100000))

	frame, err := ReadXvcFrame(&buf)
	if err != nil {
		t.Fatalf("ReadXvcFrame: %s", err)
	}
	if frame.cmd != cmdSetTCK {
		t.Fatalf("expected cmdSetTCK, got %v", frame.cmd)
	}
	if frame.period != 100000 {
		t.Fatalf("got period %d, want 100000", frame.period)
	}
}

func TestWriteSetTCKEchoesPeriod(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSetTCKReply(&buf, 123456); err != nil {
		t.Fatalf("WriteSetTCKReply: %s", err)
	}

	got := binary.LittleEndian.Uint32(buf.Bytes())
	if got != 123456 {
		t.Fatalf("got %d, want 123456", got)
	}
}

func TestReadShift(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("shift:")
	binary.Write(&buf, binary.LittleEndian, uint32(8)) // 8 bits: one byte of tms, one of tdi
	buf.Write([]byte{0xAA})                            // tms
	buf.Write([]byte{0x55})                            // tdi

	frame, err := ReadXvcFrame(&buf)
	if err != nil {
		t.Fatalf("ReadXvcFrame: %s", err)
	}
	if frame.cmd != cmdShift {
		t.Fatalf("expected cmdShift, got %v", frame.cmd)
	}
	if frame.nBits != 8 {
		t.Fatalf("got nBits %d, want 8", frame.nBits)
	}
	if !bytes.Equal(frame.tms, []byte{0xAA}) {
		t.Fatalf("tms mismatch: %x", frame.tms)
	}
	if !bytes.Equal(frame.tdi, []byte{0x55}) {
		t.Fatalf("tdi mismatch: %x", frame.tdi)
	}
}

func TestReadShiftRejectsOversize(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("shift:")
	binary.Write(&buf, binary.LittleEndian, uint32(SessionMaxBits+1))

	_, err := ReadXvcFrame(&buf)
	if err == nil {
		t.Fatalf("expected an error for an oversize shift: frame")
	}
}

func TestReadUnknownCommand(t *testing.T) {
	r := bytes.NewBufferString("xx:??????")
	_, err := ReadXvcFrame(r)
	if err == nil {
		t.Fatalf("expected an error for an unknown command")
	}
}

func TestReadEOFOnCleanClose(t *testing.T) {
	r := bytes.NewBuffer(nil)
	_, err := ReadXvcFrame(r)
	if err != io.EOF {
		t.Fatalf("expected io.EOF on an empty connection, got %v", err)
	}
}
