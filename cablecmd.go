/* xvcd - Xilinx Virtual Cable server, backed by an XPCU USB JTAG cable
 *
 * Cable command set (C2): the fixed vendor control requests the XPCU
 * firmware understands, one Go method per request
 */

package main

import "github.com/google/gousb"

// control issues one control-endpoint vendor request with no data stage
func (c *CableHandle) control(op string, value, index uint16) error {
	_, err := c.dev.Control(
		gousb.ControlOut|gousb.ControlVendor|gousb.ControlDevice,
		reqVendorRequest, value, index, nil,
	)
	if err != nil {
		return &CableError{op, UsbTransport, err}
	}
	return nil
}

// controlIn issues the same request but reads data back from the device
func (c *CableHandle) controlIn(op string, value, index uint16, data []byte) error {
	_, err := c.dev.Control(
		gousb.ControlIn|gousb.ControlVendor|gousb.ControlDevice,
		reqVendorRequest, value, index, data,
	)
	if err != nil {
		return &CableError{op, UsbTransport, err}
	}
	return nil
}

// OutputEnable toggles the cable's output drivers. Used only on the
// external-GPIO init path (§4.4)
func (c *CableHandle) OutputEnable(enable bool) error {
	v := uint16(0x0010)
	if enable {
		v = 0x0018
	}
	return c.control("output enable", v, 0)
}

// Request28 issues the 0x28-indexed request the XPCU firmware requires
// at two fixed points of the init sequence (values 0x11 and 0x12)
func (c *CableHandle) Request28(value uint8) error {
	return c.control("request 0x28", 0x0028, uint16(value))
}

// WriteGPIO sets the cable's GPIO output bits
func (c *CableHandle) WriteGPIO(bits uint8) error {
	return c.control("write gpio", 0x0030, uint16(bits))
}

// ReadFirmwareVersion reads the cable's firmware version. Informational
// only; never gates init success
func (c *CableHandle) ReadFirmwareVersion() (uint16, error) {
	buf := make([]byte, 2)
	if err := c.controlIn("read firmware version", 0x0050, 0x0000, buf); err != nil {
		return 0, err
	}
	return uint16(buf[0]) | uint16(buf[1])<<8, nil
}

// ReadCPLDVersion reads back the CPLD version. A value of 0 means the
// CPLD never loaded, which is fatal for init (spec.md §4.4)
func (c *CableHandle) ReadCPLDVersion() (uint16, error) {
	buf := make([]byte, 2)
	if err := c.controlIn("read cpld version", 0x0050, 0x0001, buf); err != nil {
		return 0, err
	}
	v := uint16(buf[0]) | uint16(buf[1])<<8
	if v == 0 {
		return 0, &CableError{"read cpld version", CableNotReady, nil}
	}
	return v, nil
}

// SelectGPIO chooses between the cable's internal and external GPIO
// sourcing modes. Used only on the internal-GPIO init path
func (c *CableHandle) SelectGPIO(mode uint8) error {
	return c.control("select gpio", 0x0052, uint16(mode))
}
