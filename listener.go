/* xvcd - Xilinx Virtual Cable server, backed by an XPCU USB JTAG cable
 *
 * TCP listener
 */

package main

import (
	"net"
	"strconv"
	"time"
)

// Listener wraps net.Listener to apply TCP keepalive to every accepted
// connection, the same way the teacher's HTTP listener does
type Listener struct {
	net.Listener
}

// NewListener creates a tcp4 listener on the given port
func NewListener(port int) (net.Listener, error) {
	addr := ":" + strconv.Itoa(port)

	nl, err := net.Listen("tcp4", addr)
	if err != nil {
		return nil, &CableError{"listen", SocketIo, err}
	}

	return Listener{nl}, nil
}

// Accept returns the next connection with TCP keepalive enabled
func (l Listener) Accept() (net.Conn, error) {
	for {
		conn, err := l.Listener.Accept()
		if err != nil {
			return nil, err
		}

		tcpconn, ok := conn.(*net.TCPConn)
		if !ok {
			conn.Close()
			continue
		}

		tcpconn.SetKeepAlive(true)
		tcpconn.SetKeepAlivePeriod(20 * time.Second)

		return tcpconn, nil
	}
}
