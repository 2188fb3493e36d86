/* xvcd - Xilinx Virtual Cable server, backed by an XPCU USB JTAG cable
 *
 * Single-instance lock (C11)
 */

package main

import (
	"os"
	"path/filepath"
)

// LockFilePath is the advisory lock every xvcd process contends for
// before it ever touches the USB cable
var LockFilePath = "/var/run/xvcd.lock"

// AcquireInstanceLock opens (creating if necessary) and locks the
// single-instance lock file, non-blocking. The returned file must be
// kept open for the life of the process; closing it releases the lock
func AcquireInstanceLock() (*os.File, error) {
	path := LockFilePath

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if os.IsPermission(err) {
		path = filepath.Join(os.TempDir(), filepath.Base(path))
		f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	}
	if err != nil {
		return nil, err
	}

	if err := FileLock(f, true, false); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}
