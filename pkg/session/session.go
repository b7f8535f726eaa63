// Package session runs a debugging session: a script under the Node.js
// debugger, node-inspector serving the debugger UI and a browser pointed at
// that UI.
//
// The debuggee is launched first so that its debug port is open before
// anything connects to it. node-inspector and the browser are started
// without waiting for them to become ready; a browser that loads the page
// before node-inspector listens shows an error and must be reloaded. Only
// the debuggee's exit is awaited, and its exit code becomes the session's.
package session

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/nodebug/nodebug/pkg/launch"
	"github.com/nodebug/nodebug/pkg/logflags"
	"github.com/nodebug/nodebug/pkg/resolve"
)

// Launcher starts processes, see launch.Launcher.
type Launcher interface {
	Launch(spec launch.Spec) (launch.Handle, error)
}

// Session is a single debugging session.
type Session struct {
	config   Config
	launcher Launcher
	resolver *resolve.Resolver

	goos   string
	getenv resolve.Getenv
	log    logflags.Logger
}

// New returns a session for config that starts processes with launcher and
// finds executables with resolver.
func New(config Config, launcher Launcher, resolver *resolve.Resolver) *Session {
	return &Session{
		config:   config,
		launcher: launcher,
		resolver: resolver,
		goos:     runtime.GOOS,
		getenv:   os.Getenv,
		log:      logflags.SessionLogger(),
	}
}

type executables struct {
	node, inspector, browser string
}

// Run starts the session and returns once the debuggee has exited. The
// returned code is the debuggee's exit code, or 1 if the session could
// not be started, in which case the error says why.
//
// Cancelling ctx terminates the debuggee; Run still waits for it to exit.
func (s *Session) Run(ctx context.Context) (int, error) {
	if err := s.config.Validate(); err != nil {
		return 1, err
	}

	exes, err := s.resolveExecutables()
	if err != nil {
		return 1, err
	}

	hook := &exitHook{keepAlive: s.config.KeepAlive, log: s.log}
	defer hook.run()

	debuggee, err := s.start("debuggee", s.config.DebuggeeSpec(exes.node))
	if err != nil {
		return 1, err
	}
	hook.debuggee = debuggee

	inspector, err := s.start("inspector", s.config.InspectorSpec(exes.inspector))
	if err != nil {
		hook.aborted = true
		return 1, err
	}
	hook.dependents = append(hook.dependents, inspector)

	browser, err := s.start("browser", s.config.BrowserSpec(exes.browser))
	if err != nil {
		hook.aborted = true
		return 1, err
	}
	hook.dependents = append(hook.dependents, browser)

	return s.wait(ctx, debuggee), nil
}

func (s *Session) start(role string, spec launch.Spec) (launch.Handle, error) {
	h, err := s.launcher.Launch(spec)
	if err != nil {
		return nil, fmt.Errorf("could not start %s: %w", role, err)
	}
	if logflags.Session() {
		s.log.WithFields(logflags.Fields{"role": role, "pid": h.Pid()}).Debugf("started %s", spec.Path)
	}
	return h, nil
}

func (s *Session) wait(ctx context.Context, debuggee launch.Handle) int {
	select {
	case <-debuggee.Done():
	case <-ctx.Done():
		if logflags.Session() {
			s.log.Debugf("interrupted, terminating debuggee %d", debuggee.Pid())
		}
		if err := debuggee.Terminate(); err != nil {
			s.log.WithError(err).Warnf("could not terminate debuggee %d", debuggee.Pid())
		}
		<-debuggee.Done()
	}
	code := debuggee.ExitCode()
	if logflags.Session() {
		s.log.Debugf("debuggee exited with code %d", code)
	}
	if code < 0 {
		return 1
	}
	return code
}

func (s *Session) resolveExecutables() (executables, error) {
	var exes executables
	platform := resolve.PlatformOf(s.goos)

	candidates := []string{s.config.InspectorPath}
	if s.config.InspectorPath == "" {
		var ok bool
		candidates, ok = resolve.InspectorCandidates(platform, s.config.InstallRoot, s.getenv)
		if !ok {
			return exes, &resolve.UnsupportedPlatformError{Platform: s.goos, What: "node-inspector"}
		}
	}
	path, err := s.resolver.Resolve(candidates)
	if err != nil {
		return exes, err
	}
	exes.inspector = path

	builtin, ok := resolve.BrowserCandidates(platform, s.getenv)
	if !ok && len(s.config.BrowserPaths) == 0 {
		return exes, &resolve.UnsupportedPlatformError{Platform: s.goos, What: "browser"}
	}
	candidates = append(append([]string(nil), s.config.BrowserPaths...), builtin...)
	if exes.browser, err = s.resolver.Resolve(candidates); err != nil {
		return exes, err
	}

	candidates = []string{s.config.NodePath}
	if s.config.NodePath == "" {
		candidates = resolve.InterpreterCandidates(platform, "node", s.getenv)
	}
	if exes.node, err = s.resolver.Resolve(candidates); err != nil {
		return exes, err
	}

	if logflags.Session() {
		s.log.WithFields(logflags.Fields{
			"node":      exes.node,
			"inspector": exes.inspector,
			"browser":   exes.browser,
		}).Debug("resolved executables")
	}
	return exes, nil
}

// exitHook terminates the processes of a session when Run returns. It is
// the only place session processes are terminated from, except for the
// debuggee on cancellation.
type exitHook struct {
	keepAlive bool
	log       logflags.Logger

	// debuggee is terminated only if the session was aborted after it
	// started.
	debuggee   launch.Handle
	aborted    bool
	dependents []launch.Handle

	once sync.Once
}

func (h *exitHook) run() {
	h.once.Do(func() {
		if h.keepAlive {
			if logflags.Session() && len(h.dependents) > 0 {
				h.log.Debugf("keep-alive set, leaving %d processes running", len(h.dependents))
			}
			return
		}
		handles := h.dependents
		if h.aborted && h.debuggee != nil {
			handles = append([]launch.Handle{h.debuggee}, handles...)
		}
		for _, p := range handles {
			if err := p.Terminate(); err != nil {
				h.log.WithError(err).Warnf("could not terminate process %d", p.Pid())
			}
		}
	})
}
