/* xvcd - Xilinx Virtual Cable server, backed by an XPCU USB JTAG cable
 *
 * Cable init sequence (C4)
 */

package main

// Init brings a freshly opened cable into a known, scannable state. The
// ordering here is fixed by the firmware and must not be reordered:
// request28(0x11) -> write gpio(8) -> read firmware version (informational)
// -> read cpld version (fatal if zero) -> GPIO source selection
func (c *CableHandle) Init() error {
	// Every control transfer from here on is bounded by the effective
	// ControlTimeout setting
	c.dev.ControlTimeout = c.settings.ControlTimeout

	if err := c.Request28(0x11); err != nil {
		return err
	}
	if err := c.WriteGPIO(8); err != nil {
		return err
	}

	if fw, err := c.ReadFirmwareVersion(); err != nil {
		Log.Debug("cable: firmware version read failed: %s", err)
	} else {
		Log.Info("cable: firmware version %04x", fw)
	}

	cpld, err := c.ReadCPLDVersion()
	if err != nil {
		return err
	}
	Log.Info("cable: cpld version %04x", cpld)

	if c.settings.ExternalGPIO {
		return c.initExternalGPIO()
	}
	return c.SelectGPIO(0)
}

// initExternalGPIO runs the external-GPIO bring-up path: disable
// outputs, re-issue request28(0x11), re-enable outputs, push a 2-bit
// dummy all-zero shift to settle the cable state machine, then
// request28(0x12)
func (c *CableHandle) initExternalGPIO() error {
	if err := c.OutputEnable(false); err != nil {
		return err
	}
	if err := c.Request28(0x11); err != nil {
		return err
	}
	if err := c.OutputEnable(true); err != nil {
		return err
	}

	dummyTDI := []byte{0}
	dummyTMS := []byte{0}
	if err := c.Scan(dummyTDI, dummyTMS, nil, 2); err != nil {
		return err
	}

	return c.Request28(0x12)
}
