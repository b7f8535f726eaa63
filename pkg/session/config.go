package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nodebug/nodebug/pkg/launch"
)

// ErrScriptRequired is returned when no script to debug was given.
var ErrScriptRequired = errors.New("script required")

const (
	// ProtocolLegacy selects the --debug and --debug-brk interpreter flags.
	ProtocolLegacy = "legacy"
	// ProtocolInspect selects the --inspect and --inspect-brk interpreter flags.
	ProtocolInspect = "inspect"
)

// ProfileDirName is the browser profile directory, relative to the install
// root. The browser owns its contents.
const ProfileDirName = "ChromeProfile"

// Config describes a debugging session. It is built once from the command
// line and the config file and not modified afterwards.
type Config struct {
	// DebugPort is the port the debuggee listens on for a debugger.
	DebugPort int
	// WebHost and WebPort are where node-inspector serves its UI.
	WebHost string
	WebPort int
	// BreakOnStart stops the debuggee on its first line.
	BreakOnStart bool
	// KeepAlive leaves node-inspector and the browser running after the
	// debuggee exits.
	KeepAlive bool
	// Script is the path of the script followed by its arguments.
	Script []string

	// Protocol is ProtocolLegacy or ProtocolInspect. Empty means legacy.
	Protocol string
	// NodePath is the interpreter to use. Empty means search PATH.
	NodePath string
	// NodeArgs are extra interpreter arguments.
	NodeArgs []string
	// InspectorPath skips node-inspector discovery when set.
	InspectorPath string
	// BrowserPaths are tried before the built-in browser locations.
	BrowserPaths []string
	// BrowserArgs are appended to the browser command line.
	BrowserArgs []string
	// InstallRoot holds node_modules and the browser profile directory.
	InstallRoot string
}

// Validate checks that the configuration describes a session that can be
// started.
func (c *Config) Validate() error {
	if len(c.Script) == 0 || c.Script[0] == "" {
		return ErrScriptRequired
	}
	switch c.Protocol {
	case "", ProtocolLegacy, ProtocolInspect:
	default:
		return fmt.Errorf("unknown protocol %q (must be %s or %s)", c.Protocol, ProtocolLegacy, ProtocolInspect)
	}
	if c.DebugPort <= 0 || c.DebugPort > 65535 {
		return fmt.Errorf("invalid debug port %d", c.DebugPort)
	}
	if c.WebPort <= 0 || c.WebPort > 65535 {
		return fmt.Errorf("invalid web port %d", c.WebPort)
	}
	return nil
}

// DebugFlag returns the interpreter flag enabling the debugger on
// DebugPort.
func (c *Config) DebugFlag() string {
	port := strconv.Itoa(c.DebugPort)
	switch {
	case c.Protocol == ProtocolInspect && c.BreakOnStart:
		return "--inspect-brk=" + port
	case c.Protocol == ProtocolInspect:
		return "--inspect=" + port
	case c.BreakOnStart:
		return "--debug-brk=" + port
	default:
		return "--debug=" + port
	}
}

// BrowserURL is the node-inspector page debugging DebugPort.
func (c *Config) BrowserURL() string {
	return fmt.Sprintf("http://%s:%d/debug?port=%d", c.WebHost, c.WebPort, c.DebugPort)
}

// ProfileDir is the isolated browser profile directory.
func (c *Config) ProfileDir() string {
	return filepath.Join(c.InstallRoot, ProfileDirName)
}

// DebuggeeSpec runs the script under the interpreter at node.
func (c *Config) DebuggeeSpec(node string) launch.Spec {
	args := make([]string, 0, 1+len(c.NodeArgs)+len(c.Script))
	args = append(args, c.DebugFlag())
	args = append(args, c.NodeArgs...)
	args = append(args, c.Script...)
	return launch.Spec{Path: node, Args: args, IO: launch.Inherited}
}

// InspectorSpec runs node-inspector at path.
func (c *Config) InspectorSpec(path string) launch.Spec {
	return launch.Spec{
		Path: path,
		Args: []string{
			"--web-host=" + c.WebHost,
			"--web-port=" + strconv.Itoa(c.WebPort),
			"--debug-port=" + strconv.Itoa(c.DebugPort),
		},
		IO: launch.Detached,
	}
}

// BrowserSpec opens BrowserURL in the browser at path.
func (c *Config) BrowserSpec(path string) launch.Spec {
	args := []string{c.BrowserURL(), "--user-data-dir=" + c.ProfileDir()}
	args = append(args, c.BrowserArgs...)
	return launch.Spec{Path: path, Args: args, IO: launch.Detached}
}

// DefaultInstallRoot returns $NODEBUG_ROOT if set, otherwise the parent of
// the directory containing the running executable.
func DefaultInstallRoot(getenv func(string) string) (string, error) {
	if root := getenv("NODEBUG_ROOT"); root != "" {
		return filepath.Abs(root)
	}
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(filepath.Dir(exe)), nil
}
