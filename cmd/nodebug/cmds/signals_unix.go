//go:build !windows

package cmds

import (
	"os"
	"syscall"
)

// stopSignals cancel the session. SIGHUP arrives when the terminal closes.
var stopSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}
