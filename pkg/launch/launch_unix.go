//go:build !windows

package launch

import (
	"errors"
	"os"
	"syscall"

	sys "golang.org/x/sys/unix"
)

// detachedSysProcAttr puts the child in its own process group, so that
// the terminal's SIGINT only reaches the debuggee.
func detachedSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true, Pgid: 0}
}

// procGroup is a launched process and, when detached, the process group it
// leads.
type procGroup struct {
	p        *os.Process
	detached bool
}

func newProcGroup(p *os.Process, detached bool) (*procGroup, error) {
	return &procGroup{p: p, detached: detached}, nil
}

func (g *procGroup) terminate() error {
	if !g.detached {
		return g.p.Signal(sys.SIGTERM)
	}
	// Browsers spawn helper processes, signal the whole group.
	err := sys.Kill(-g.p.Pid, sys.SIGTERM)
	if errors.Is(err, sys.ESRCH) {
		return os.ErrProcessDone
	}
	return err
}

func (g *procGroup) release() {}
