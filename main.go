/* xvcd - Xilinx Virtual Cable server, backed by an XPCU USB JTAG cable
 *
 * The main function
 */

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
)

// RunParameters holds the parsed CLI flags, per SPEC_FULL.md §4.12
type RunParameters struct {
	Verbose int    // -v, repeatable
	Trace   int    // -t, repeatable
	TraceUSB bool  // -T
	Vendor  uint16 // -V
	Product uint16 // -P
	Port    int    // -p
}

type countFlag int

func (c *countFlag) String() string { return strconv.Itoa(int(*c)) }
func (c *countFlag) Set(string) error {
	*c++
	return nil
}
func (c *countFlag) IsBoolFlag() bool { return true }

// parseHexFlag parses a CLI value the way the original's getopt +
// strtoul(optarg, NULL, 0) did: base is auto-detected from a 0x/0
// prefix, decimal otherwise
func parseHexFlag(s string, fallback uint16) uint16 {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		Log.Error("invalid numeric argument %q: %s", s, err)
		return fallback
	}
	return uint16(v)
}

// parseArgv parses os.Args into RunParameters
func parseArgv() RunParameters {
	params := RunParameters{
		Vendor:  Conf.Vendor,
		Product: Conf.Product,
		Port:    Conf.Port,
	}

	var verbose, trace countFlag
	var traceUSB bool
	var vendorStr, productStr string

	flag.Var(&verbose, "v", "increase log verbosity (repeatable)")
	flag.Var(&trace, "t", "trace XVC protocol commands (repeatable)")
	flag.BoolVar(&traceUSB, "T", false, "trace USB control/bulk transfers")
	flag.StringVar(&vendorStr, "V", "", "USB vendor ID (hex/octal/decimal)")
	flag.StringVar(&productStr, "P", "", "USB product ID (hex/octal/decimal)")
	flag.IntVar(&params.Port, "p", Conf.Port, "TCP port to listen on")
	flag.Parse()

	params.Verbose = int(verbose)
	params.Trace = int(trace)
	params.TraceUSB = traceUSB

	if vendorStr != "" {
		params.Vendor = parseHexFlag(vendorStr, Conf.Vendor)
	}
	if productStr != "" {
		params.Product = parseHexFlag(productStr, Conf.Product)
	}

	return params
}

// applyLogLevels wires -v/-t/-T into the Log level mask
func applyLogLevels(params RunParameters) {
	level := LogError | LogInfo
	if params.Verbose > 0 {
		level |= LogDebug
	}
	if params.Trace > 0 {
		level |= LogTraceProtocol
	}
	if params.TraceUSB {
		level |= LogTraceUSB
	}

	Log.SetLevel(level)
}

func main() {
	Log.Check(ConfLoad())

	params := parseArgv()
	applyLogLevels(params)

	Conf.Vendor = params.Vendor
	Conf.Product = params.Product
	Conf.Port = params.Port

	lockFile, err := AcquireInstanceLock()
	if err == ErrLockIsBusy {
		Log.Exit("another xvcd instance is already running")
	}
	Log.Check(err)
	defer lockFile.Close()

	cable, err := OpenCable(Conf.Vendor, Conf.Product)
	Log.Check(err)
	defer cable.Close()

	if Conf.Chunk > 0 {
		cable.settings.Chunk = Conf.Chunk
	}
	cable.settings.ExternalGPIO = Conf.ExternalGPIO
	if quirks, err := LoadQuirks(QuirksDirPath); err == nil {
		if q, ok := quirks.Lookup(Conf.Vendor, Conf.Product); ok {
			cable.Apply(q)
		}
	}

	Log.Check(cable.Init())

	listener, err := NewListener(Conf.Port)
	Log.Check(err)

	Log.Info("xvcd: listening on port %d for %04x:%04x", Conf.Port, Conf.Vendor, Conf.Product)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		Log.Info("xvcd: signal received, shutting down")
		listener.Close()
	}()

	var scanLock sync.Mutex

	for {
		conn, err := listener.Accept()
		if err != nil {
			break
		}

		sess := NewSession(conn, cable, &scanLock)
		go sess.Serve()
	}

	fmt.Fprintln(os.Stderr, "xvcd: exiting")
}
