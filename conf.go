/* xvcd - Xilinx Virtual Cable server, backed by an XPCU USB JTAG cable
 *
 * Program configuration (C9)
 */

package main

import (
	"os"
	"time"

	"gopkg.in/ini.v1"
)

// ConfFilePath is the optional on-disk configuration file. Its absence
// is not an error (same tolerance as the teacher's confLoadInternal)
const ConfFilePath = "/etc/xvcd/xvcd.conf"

// QuirksDirPath is where per-cable quirk stanzas live
const QuirksDirPath = "/etc/xvcd/quirks.d"

// Configuration represents the program's effective settings, after the
// config file and CLI flags have both been applied
type Configuration struct {
	Vendor         uint16
	Product        uint16
	Port           int
	Chunk          int
	ExternalGPIO   bool
	LogLevels      LogLevel
	ControlTimeout time.Duration
}

// Conf holds the global, effective configuration
var Conf = Configuration{
	Vendor:         DefaultVendor,
	Product:        DefaultProduct,
	Port:           DefaultPort,
	Chunk:          DefaultChunk,
	ExternalGPIO:   true,
	LogLevels:      LogError | LogInfo,
	ControlTimeout: ControlTimeout,
}

// ConfLoad reads ConfFilePath into Conf. CLI flags, applied afterwards
// by main(), always win over whatever the file sets
func ConfLoad() error {
	if _, err := os.Stat(ConfFilePath); os.IsNotExist(err) {
		return nil
	}

	f, err := ini.Load(ConfFilePath)
	if err != nil {
		return err
	}

	usb := f.Section("usb")
	if k := usb.Key("vendor"); k.String() != "" {
		if v, err := k.Uint(); err == nil {
			Conf.Vendor = uint16(v)
		}
	}
	if k := usb.Key("product"); k.String() != "" {
		if v, err := k.Uint(); err == nil {
			Conf.Product = uint16(v)
		}
	}

	server := f.Section("server")
	if k := server.Key("port"); k.String() != "" {
		if v, err := k.Int(); err == nil {
			Conf.Port = v
		}
	}

	engine := f.Section("engine")
	if k := engine.Key("chunk"); k.String() != "" {
		if v, err := k.Int(); err == nil {
			Conf.Chunk = v
		}
	}
	if k := engine.Key("external-gpio"); k.String() != "" {
		if v, err := k.Bool(); err == nil {
			Conf.ExternalGPIO = v
		}
	}

	return nil
}
