/* xvcd - Xilinx Virtual Cable server, backed by an XPCU USB JTAG cable
 *
 * Configuration constants
 */

package main

import "time"

const (
	// DefaultVendor is the XPCU USB vendor ID
	DefaultVendor = 0x03FD

	// DefaultProduct is the XPCU USB product ID
	DefaultProduct = 0x0008

	// DefaultPort is the XVC server's default TCP listen port
	DefaultPort = 2542

	// DefaultChunk is the A6 burst size, in 16-bit words, used unless
	// the config file or a quirk file overrides it. Values above 4 are known to corrupt
	// data on this firmware; 13 causes serious failures. See open
	// question (a) in SPEC_FULL.md.
	DefaultChunk = 4

	// ControlTimeout bounds every USB control transfer
	ControlTimeout = 1 * time.Second

	// BulkTimeout bounds every USB bulk transfer
	BulkTimeout = 1 * time.Second

	// EndpointOut is the bulk OUT endpoint address used by A6 bursts
	EndpointOut = 0x02

	// EndpointIn is the bulk IN endpoint address used by A6 bursts
	EndpointIn = 0x86

	// reqVendorRequest is the shared control-endpoint request code for
	// all C2 cable commands (output-enable, request-0x28, write-gpio,
	// read-firmware-version, read-cpld-version, select-gpio)
	reqVendorRequest = 0xB0

	// reqShift is the control request that opens an A6 burst
	reqShift = 0xA6

	// SessionMaxBytes bounds the size of the TMS (equivalently TDI)
	// half of one shift: frame request of the 16384-bit type
	SessionMaxBytes = 2048

	// SessionMaxBits is SessionMaxBytes in bits -- the largest "len"
	// a single shift: frame may declare
	SessionMaxBits = SessionMaxBytes * 8

	// xvcInfoString is the fixed getinfo: reply
	xvcInfoString = "xvcServer_v1.0:2048\n"
)
