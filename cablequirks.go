/* xvcd - Xilinx Virtual Cable server, backed by an XPCU USB JTAG cable
 *
 * Cable quirks (C10): per vendor:product overrides of chunk size, GPIO
 * init path and control transfer timeout
 */

package main

import (
	"fmt"
	"path/filepath"
	"time"

	"gopkg.in/ini.v1"
)

// Quirk carries the overridable per-cable settings. Zero values mean
// "not overridden"; CableHandle.Init and the shift engine fall back to
// package defaults when a field is unset
type Quirk struct {
	Chunk          int
	ExternalGPIO   *bool
	ControlTimeout time.Duration
	Comment        string
}

// Quirks is a set of Quirk, keyed by "vendor:product" in lowercase hex,
// e.g. "03fd:0008"
type Quirks map[string]Quirk

// LoadQuirks reads every *.conf file under dir and merges their
// [vid:pid] stanzas into a Quirks set. A missing or empty directory is
// not an error -- quirk files are entirely optional
func LoadQuirks(dir string) (Quirks, error) {
	q := make(Quirks)

	files, err := filepath.Glob(filepath.Join(dir, "*.conf"))
	if err != nil {
		return q, nil
	}

	for _, path := range files {
		f, err := ini.Load(path)
		if err != nil {
			Log.Error("quirks: %s: %s", path, err)
			continue
		}

		for _, sec := range f.Sections() {
			name := sec.Name()
			if name == ini.DefaultSection {
				continue
			}

			quirk := q[name]

			if k := sec.Key("chunk"); k.String() != "" {
				if v, err := k.Int(); err == nil {
					quirk.Chunk = v
				}
			}
			if k := sec.Key("external-gpio"); k.String() != "" {
				if v, err := k.Bool(); err == nil {
					quirk.ExternalGPIO = &v
				}
			}
			if k := sec.Key("control-timeout-ms"); k.String() != "" {
				if v, err := k.Int(); err == nil {
					quirk.ControlTimeout = time.Duration(v) * time.Millisecond
				}
			}
			if k := sec.Key("comment"); k.String() != "" {
				quirk.Comment = k.String()
			}

			q[name] = quirk
		}
	}

	return q, nil
}

// Lookup finds the quirk stanza for a vendor:product pair, if any
func (q Quirks) Lookup(vendor, product uint16) (Quirk, bool) {
	key := fmt.Sprintf("%04x:%04x", vendor, product)
	quirk, ok := q[key]
	return quirk, ok
}

// Apply merges a quirk into the cable's effective configuration. Quirk
// settings win over the config-file values already in the handle; a
// zero quirk field leaves the existing value untouched. None of these
// fields has a CLI flag
func (c *CableHandle) Apply(quirk Quirk) {
	if quirk.Chunk > 0 {
		c.settings.Chunk = quirk.Chunk
	}
	if quirk.ControlTimeout > 0 {
		c.settings.ControlTimeout = quirk.ControlTimeout
	}
	if quirk.ExternalGPIO != nil {
		c.settings.ExternalGPIO = *quirk.ExternalGPIO
	}
	if quirk.Comment != "" {
		Log.Info("cable: quirk applied: %s", quirk.Comment)
	}
}
