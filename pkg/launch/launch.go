// Package launch starts the external processes of a debugging session and
// tracks them until they exit.
package launch

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/nodebug/nodebug/pkg/logflags"
)

// IOMode selects how a launched process is attached to standard I/O.
type IOMode int

const (
	// Inherited processes share nodebug's stdin, stdout and stderr.
	Inherited IOMode = iota
	// Detached processes have no I/O and, where the platform allows it,
	// run in their own process group.
	Detached
)

func (m IOMode) String() string {
	if m == Detached {
		return "detached"
	}
	return "inherited"
}

// ExitUnknown is the exit code reported for processes killed by a signal
// or whose exit status could not be determined.
const ExitUnknown = -1

// Spec describes a process to launch.
type Spec struct {
	Path string
	Args []string
	IO   IOMode
}

// Handle is a launched process.
type Handle interface {
	// Pid returns the operating system process id.
	Pid() int
	// Terminate asks the process to exit. It returns nil if the process
	// already exited or was already terminated.
	Terminate() error
	// Done is closed once the process has exited.
	Done() <-chan struct{}
	// ExitCode returns the exit code of the process, valid once Done is
	// closed.
	ExitCode() int
}

// LaunchError is returned when a process could not be started.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("could not launch %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Launcher starts processes.
type Launcher struct{}

// NewLauncher returns a Launcher for the host operating system.
func NewLauncher() *Launcher {
	return &Launcher{}
}

// Launch starts the process described by spec. It does not wait for the
// process to be ready; the returned handle's Done channel reports its exit.
func (l *Launcher) Launch(spec Spec) (Handle, error) {
	logger := logflags.LauncherLogger()

	if _, err := os.Stat(spec.Path); err != nil {
		return nil, &LaunchError{Path: spec.Path, Err: err}
	}

	cmd := exec.Command(spec.Path, spec.Args...)
	switch spec.IO {
	case Inherited:
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	case Detached:
		cmd.SysProcAttr = detachedSysProcAttr()
	}
	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Path: spec.Path, Err: err}
	}

	group, err := newProcGroup(cmd.Process, spec.IO == Detached)
	if err != nil {
		logger.WithError(err).Warnf("could not track the children of %s, only the process itself will be terminated", spec.Path)
	}

	p := &process{
		cmd:      cmd,
		group:    group,
		done:     make(chan struct{}),
		exitCode: ExitUnknown,
	}
	if logflags.Launcher() {
		logger.WithFields(logflags.Fields{"pid": p.Pid(), "io": spec.IO}).Debugf("launched %s %q", spec.Path, spec.Args)
	}
	go p.wait()
	return p, nil
}

type process struct {
	cmd   *exec.Cmd
	group *procGroup

	done     chan struct{}
	exitCode int

	mu         sync.Mutex
	terminated bool
}

func (p *process) Pid() int {
	return p.cmd.Process.Pid
}

func (p *process) Done() <-chan struct{} {
	return p.done
}

func (p *process) ExitCode() int {
	select {
	case <-p.done:
		return p.exitCode
	default:
		return ExitUnknown
	}
}

func (p *process) Terminate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.terminated {
		return nil
	}
	select {
	case <-p.done:
		return nil
	default:
	}
	p.terminated = true

	err := p.group.terminate()
	if errors.Is(err, os.ErrProcessDone) {
		err = nil
	}
	if logflags.Launcher() {
		logflags.LauncherLogger().WithField("pid", p.Pid()).Debugf("terminate %s: %v", p.cmd.Path, err)
	}
	return err
}

func (p *process) wait() {
	err := p.cmd.Wait()
	p.exitCode = exitCode(p.cmd, err)
	p.mu.Lock()
	p.group.release()
	p.mu.Unlock()
	if logflags.Launcher() {
		logflags.LauncherLogger().WithField("pid", p.Pid()).Debugf("%s exited with code %d", p.cmd.Path, p.exitCode)
	}
	close(p.done)
}

func exitCode(cmd *exec.Cmd, err error) int {
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return cmd.ProcessState.ExitCode()
	case errors.As(err, &exitErr):
		// ExitCode is already -1 for processes killed by a signal.
		return exitErr.ExitCode()
	default:
		return ExitUnknown
	}
}
