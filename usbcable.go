/* xvcd - Xilinx Virtual Cable server, backed by an XPCU USB JTAG cable
 *
 * USB transport (C1): enumeration, open, claim, teardown
 */

package main

import (
	"fmt"
	"time"

	"github.com/google/gousb"
)

// CableHandle owns the process-wide, exclusive connection to one XPCU
// cable. Every C2/C3 operation goes through it
type CableHandle struct {
	ctx   *gousb.Context
	dev   *gousb.Device
	cfg   *gousb.Config
	intf  *gousb.Interface
	out   *gousb.OutEndpoint
	in    *gousb.InEndpoint

	settings cableSettings // effective Chunk/ExternalGPIO/ControlTimeout
}

// cableSettings holds the resolved (non-optional) form of a Quirk, after
// defaults, config file and CLI overrides have all been merged
type cableSettings struct {
	Chunk          int
	ExternalGPIO   bool
	ControlTimeout time.Duration
}

// OpenCable enumerates USB devices for vendor:product, resets it, claims
// interface 0 and opens the two bulk endpoints the A6 shift engine uses.
// Only one CableHandle may exist per process (spec.md §3: the cable is a
// process-wide exclusive resource)
func OpenCable(vendor, product uint16) (*CableHandle, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vendor), gousb.ID(product))
	if err != nil {
		ctx.Close()
		return nil, &CableError{"open", UsbEnumeration, err}
	}
	if dev == nil {
		ctx.Close()
		return nil, &CableError{"open", UsbEnumeration,
			fmt.Errorf("no device matching %04x:%04x", vendor, product)}
	}

	if err := dev.Reset(); err != nil {
		dev.Close()
		ctx.Close()
		return nil, &CableError{"reset", UsbEnumeration, err}
	}

	dev.SetAutoDetach(true)

	cfg, err := dev.Config(1)
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, &CableError{"config", UsbEnumeration, err}
	}

	intf, err := cfg.Interface(0, 0)
	if err != nil {
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, &CableError{"claim interface", UsbEnumeration, err}
	}

	out, err := intf.OutEndpoint(EndpointOut)
	if err != nil {
		intf.Close()
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, &CableError{"open out endpoint", UsbEnumeration, err}
	}

	in, err := intf.InEndpoint(EndpointIn)
	if err != nil {
		intf.Close()
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, &CableError{"open in endpoint", UsbEnumeration, err}
	}

	c := &CableHandle{
		ctx:  ctx,
		dev:  dev,
		cfg:  cfg,
		intf: intf,
		out:  out,
		in:   in,
		settings: cableSettings{
			Chunk:          DefaultChunk,
			ExternalGPIO:   true,
			ControlTimeout: ControlTimeout,
		},
	}

	Log.Debug("usb: opened %04x:%04x", vendor, product)

	return c, nil
}

// Close releases the interface and tears down the USB context. Safe to
// call more than once
func (c *CableHandle) Close() {
	if c.intf != nil {
		c.intf.Close()
		c.intf = nil
	}
	if c.cfg != nil {
		c.cfg.Close()
		c.cfg = nil
	}
	if c.dev != nil {
		c.dev.Close()
		c.dev = nil
	}
	if c.ctx != nil {
		c.ctx.Close()
		c.ctx = nil
	}
}
