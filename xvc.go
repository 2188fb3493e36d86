/* xvcd - Xilinx Virtual Cable server, backed by an XPCU USB JTAG cable
 *
 * XVC wire framing (C6): parses the three Xilinx Virtual Cable commands
 * off a connection and renders their replies
 */

package main

import (
	"encoding/binary"
	"io"
)

// xvcCmd identifies which of the three XVC commands a frame carries
type xvcCmd int

const (
	cmdGetInfo xvcCmd = iota
	cmdSetTCK
	cmdShift
)

// xvcFrame is one fully-read client request
type xvcFrame struct {
	cmd    xvcCmd
	period uint32 // settck: requested period, nanoseconds
	nBits  int    // shift: bit count
	tms    []byte // shift: TMS bytes
	tdi    []byte // shift: TDI bytes
}

// readFull reads exactly len(buf) bytes or returns the read error
// (io.EOF if nothing was read, io.ErrUnexpectedEOF if the stream ended
// part way), mirroring the blocking read-until-full helper every XVC server needs
// since TCP never guarantees a command arrives in one read()
func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}

// ReadXvcFrame reads and parses the next command from r. A clean
// io.EOF on the first byte means the client closed the connection; any
// other short read is a protocol error
func ReadXvcFrame(r io.Reader) (*xvcFrame, error) {
	prefix := make([]byte, 2)
	if _, err := io.ReadFull(r, prefix); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, &ProtocolError{ProtocolParse, "short command prefix"}
	}

	switch {
	case prefix[0] == 'g' && prefix[1] == 'e':
		// "getinfo:"
		rest := make([]byte, 6)
		if err := readFull(r, rest); err != nil {
			return nil, &ProtocolError{ProtocolParse, "short getinfo: command"}
		}
		return &xvcFrame{cmd: cmdGetInfo}, nil

	case prefix[0] == 's' && prefix[1] == 'e':
		// "settck:" + 4-byte period
		rest := make([]byte, 5+4)
		if err := readFull(r, rest); err != nil {
			return nil, &ProtocolError{ProtocolParse, "short settck: command"}
		}
		period := binary.LittleEndian.Uint32(rest[5:9])
		return &xvcFrame{cmd: cmdSetTCK, period: period}, nil

	case prefix[0] == 's' && prefix[1] == 'h':
		// "shift:" + 4-byte bit count + 2*ceil(nBits/8) byte payload
		rest := make([]byte, 4+4)
		if err := readFull(r, rest); err != nil {
			return nil, &ProtocolError{ProtocolParse, "short shift: command"}
		}
		nBits := binary.LittleEndian.Uint32(rest[4:8])
		if nBits > SessionMaxBits {
			return nil, &ProtocolError{ProtocolParse, "shift: length exceeds session maximum"}
		}
		nBytes := (nBits + 7) / 8

		payload := make([]byte, 2*nBytes)
		if err := readFull(r, payload); err != nil {
			return nil, &ProtocolError{ProtocolParse, "short shift: payload"}
		}

		return &xvcFrame{
			cmd:   cmdShift,
			nBits: int(nBits),
			tms:   payload[:nBytes],
			tdi:   payload[nBytes:],
		}, nil
	}

	return nil, &ProtocolError{ProtocolParse, "unknown command"}
}

// WriteGetInfoReply writes the fixed getinfo: reply
func WriteGetInfoReply(w io.Writer) error {
	_, err := io.WriteString(w, xvcInfoString)
	return err
}

// WriteSetTCKReply echoes back the period the client requested; xvcd
// never actually reprograms any hardware clock divider (open question
// (b) in SPEC_FULL.md)
func WriteSetTCKReply(w io.Writer, period uint32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, period)
	_, err := w.Write(buf)
	return err
}

// WriteShiftReply writes all of the captured TDO bytes in tdo
func WriteShiftReply(w io.Writer, tdo []byte) error {
	_, err := w.Write(tdo)
	return err
}
