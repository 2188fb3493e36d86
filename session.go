/* xvcd - Xilinx Virtual Cable server, backed by an XPCU USB JTAG cable
 *
 * Session loop (C7): one goroutine per accepted connection, driving the
 * XVC command stream against the TAP tracker and the cable
 */

package main

import (
	"io"
	"net"
	"sync"
)

// cableScanner is the part of *CableHandle a session needs; it lets
// tests drive the session loop against a fake that never touches USB
type cableScanner interface {
	Scan(tdi, tms []byte, tdoOut []byte, nBits int) error
}

// Session drives one client connection from accept to close
type Session struct {
	conn   net.Conn
	cable  cableScanner
	lock   *sync.Mutex // shared across all sessions; guards cable.Scan
	tap    *TapTracker
}

// NewSession wraps an accepted connection. lock must be the single
// mutex shared by every session talking to this cable (spec.md §5)
func NewSession(conn net.Conn, cable cableScanner, lock *sync.Mutex) *Session {
	return &Session{
		conn:  conn,
		cable: cable,
		lock:  lock,
		tap:   NewTapTracker(),
	}
}

// Serve reads and answers commands until the client disconnects, an
// error ends the connection, or a shift: leaves the TAP quiescent. It
// closes the connection on return and reports nothing to the caller
func (s *Session) Serve() {
	defer s.conn.Close()

	addr := s.conn.RemoteAddr()
	Log.Info("session: %s: connected", addr)

	for {
		frame, err := ReadXvcFrame(s.conn)
		if err == io.EOF {
			Log.Info("session: %s: closed by peer", addr)
			return
		}
		if err != nil {
			Log.Error("session: %s: %s", addr, err)
			return
		}

		if err := s.dispatch(frame); err != nil {
			Log.Error("session: %s: %s", addr, err)
			return
		}

		if frame.cmd == cmdShift && s.tap.Quiescent() {
			// Safe to yield the cable: the client has traversed TLR
			// and settled back in Run-Test/Idle
			Log.Info("session: %s: tap quiescent, closing", addr)
			return
		}
	}
}

func (s *Session) dispatch(frame *xvcFrame) error {
	switch frame.cmd {
	case cmdGetInfo:
		Log.Begin().Add("xvc: getinfo:").Commit(LogTraceProtocol)
		return WriteGetInfoReply(s.conn)

	case cmdSetTCK:
		Log.Begin().Add("xvc: settck: period %d", frame.period).Commit(LogTraceProtocol)
		return WriteSetTCKReply(s.conn, frame.period)

	case cmdShift:
		from := s.tap.State
		err := s.shift(frame)
		Log.Begin().Add("xvc: shift: %d bits, tap %s -> %s", frame.nBits, from, s.tap.State).Commit(LogTraceProtocol)
		return err
	}
	return &ProtocolError{ProtocolParse, "unhandled command"}
}

// shift runs one shift: frame: the bogus-movement filter first, then
// (if not bogus) the actual USB transfer, in both cases finishing by
// advancing the TAP tracker
func (s *Session) shift(frame *xvcFrame) error {
	tdo := make([]byte, len(frame.tdi))

	if s.tap.BogusMovement(frame.nBits, frame.tms) {
		Log.Debug("session: bogus movement filtered, %d bits from %s", frame.nBits, s.tap.State)
		// zeros already in tdo; no cable traffic
	} else {
		s.lock.Lock()
		err := s.cable.Scan(frame.tdi, frame.tms, tdo, frame.nBits)
		s.lock.Unlock()

		if err != nil {
			return err
		}
	}

	s.tap.Advance(frame.tms, frame.nBits)

	return WriteShiftReply(s.conn, tdo)
}
