/* xvcd - Xilinx Virtual Cable server, backed by an XPCU USB JTAG cable
 *
 * Logging
 */

package main

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"time"
)

// LogLevel enumerates possible log levels
type LogLevel int

// Log level bits
const (
	LogError LogLevel = 1 << iota
	LogInfo
	LogDebug
	LogTraceProtocol
	LogTraceUSB

	LogTraceAll = LogTraceProtocol | LogTraceUSB
	LogAll      = LogError | LogInfo | LogDebug | LogTraceAll
)

// loggerMode enumerates possible Logger output modes
type loggerMode int

const (
	loggerNowhere loggerMode = iota // Discard everything
	loggerConsole                   // Log goes to console
)

// Standard loggers. Log is where the server writes everything it
// knows about; Console is where operator-facing lines go when
// running attached to a terminal
var (
	Log     = NewLogger().ToConsole()
	Console = NewLogger().ToConsole()
)

// Logger implements logging facilities
type Logger struct {
	level LogLevel   // Enabled level bits
	mode  loggerMode // Output mode
	lock  sync.Mutex // Write lock
	out   *os.File   // Output stream
	color bool       // Use ANSI colors
}

// NewLogger creates a new Logger. Output starts discarded until a
// mode is selected
func NewLogger() *Logger {
	return &Logger{mode: loggerNowhere, level: LogAll}
}

// ToConsole redirects the logger to stdout
func (l *Logger) ToConsole() *Logger {
	l.mode = loggerConsole
	l.out = os.Stdout
	return l
}

// ToNowhere discards everything written to the logger
func (l *Logger) ToNowhere() *Logger {
	l.mode = loggerNowhere
	return l
}

// SetLevel sets the enabled level bitmask
func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
}

// SetColor enables or disables ANSI coloring of console output
func (l *Logger) SetColor(color bool) {
	l.color = color && logIsAtty(os.Stdout)
}

// Begin starts a new, atomically-flushed log message
func (l *Logger) Begin() *LogMessage {
	return &LogMessage{logger: l}
}

// enabled reports whether any of the requested bits are active
func (l *Logger) enabled(level LogLevel) bool {
	return l.level&level != 0
}

// write emits one already-formatted line
func (l *Logger) write(level LogLevel, line string) {
	if l.mode == loggerNowhere || !l.enabled(level) {
		return
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	now := time.Now()
	prefix := fmt.Sprintf("%02d:%02d:%02d ", now.Hour(), now.Minute(), now.Second())

	if l.color {
		logColorConsoleWrite(l.out, level, prefix+line)
	} else {
		fmt.Fprintln(l.out, prefix+line)
	}
}

// Error logs a LogError-level line
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(LogError, fmt.Sprintf(format, args...))
}

// Info logs a LogInfo-level line
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(LogInfo, fmt.Sprintf(format, args...))
}

// Debug logs a LogDebug-level line
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write(LogDebug, fmt.Sprintf(format, args...))
}

// Exit logs a LogError-level line and terminates the process
func (l *Logger) Exit(format string, args ...interface{}) {
	l.write(LogError, fmt.Sprintf(format, args...))
	os.Exit(1)
}

// Check calls Exit, if err is not nil
func (l *Logger) Check(err error) {
	if err != nil {
		l.Exit("%s", err)
	}
}

// LogMessage accumulates a multi-line message that will be flushed to
// the log atomically, so one goroutine's trace dump is never
// interleaved with another's
type LogMessage struct {
	logger *Logger
	lines  []string
}

// Add appends a formatted line to the message
func (msg *LogMessage) Add(format string, args ...interface{}) *LogMessage {
	msg.lines = append(msg.lines, fmt.Sprintf(format, args...))
	return msg
}

// HexDump appends a hex+ASCII dump of data to the message, 16 bytes
// per line, grouped in 4-byte clusters -- same layout the teacher's
// log_dump/HexDump use. Rows are rendered into one buffer and split
// back into message lines through a LineWriter, the same helper the
// teacher uses to turn an arbitrary byte stream into discrete lines
func (msg *LogMessage) HexDump(data []byte) *LogMessage {
	hex := new(bytes.Buffer)
	chr := new(bytes.Buffer)
	render := new(bytes.Buffer)
	lw := &LineWriter{Callback: func(line []byte) {
		msg.lines = append(msg.lines, string(bytes.TrimRight(line, "\n")))
	}}

	off := 0
	for len(data) > 0 {
		hex.Reset()
		chr.Reset()

		sz := len(data)
		if sz > 16 {
			sz = 16
		}

		i := 0
		for ; i < sz; i++ {
			c := data[i]
			fmt.Fprintf(hex, "%2.2x", c)
			if i%4 == 3 {
				hex.WriteByte(':')
			} else {
				hex.WriteByte(' ')
			}

			if 0x20 <= c && c < 0x80 {
				chr.WriteByte(c)
			} else {
				chr.WriteByte('.')
			}
		}

		for ; i < 16; i++ {
			hex.WriteString("   ")
		}

		fmt.Fprintf(render, "%4.4x: %s %s\n", off, hex.String(), chr.String())

		off += sz
		data = data[sz:]
	}

	lw.Write(render.Bytes())
	lw.Close()

	return msg
}

// Commit flushes the message to the logger's output, one output line
// per added line, under a single lock acquisition so the lines stay
// contiguous. Unlike write(), it adds no timestamp prefix
func (msg *LogMessage) Commit(level LogLevel) {
	if msg.logger.mode == loggerNowhere || !msg.logger.enabled(level) || len(msg.lines) == 0 {
		return
	}

	msg.logger.lock.Lock()
	defer msg.logger.lock.Unlock()

	for _, line := range msg.lines {
		if msg.logger.color {
			logColorConsoleWrite(msg.logger.out, level, line)
		} else {
			fmt.Fprintln(msg.logger.out, line)
		}
	}
}
