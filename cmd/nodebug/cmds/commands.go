package cmds

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/cosiner/argv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nodebug/nodebug/pkg/config"
	"github.com/nodebug/nodebug/pkg/launch"
	"github.com/nodebug/nodebug/pkg/logflags"
	"github.com/nodebug/nodebug/pkg/resolve"
	"github.com/nodebug/nodebug/pkg/session"
	"github.com/nodebug/nodebug/pkg/version"
)

var (
	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should produce debug output.
	logOutput string
	// logDest is the file path or file descriptor where logs should go.
	logDest string

	// debugPort is the port the debuggee listens on.
	debugPort int
	// webHost is the host node-inspector serves its UI on.
	webHost string
	// webPort is the port node-inspector serves its UI on.
	webPort int
	// debugBrk is whether to stop on the first line of the script.
	debugBrk bool
	// keepAlive leaves node-inspector and the browser running after the script exits.
	keepAlive bool

	// protocol selects the debug flags passed to node.
	protocol string
	// nodePath is the node executable to use.
	nodePath string
	// nodeArgs are extra arguments for node, as a single string.
	nodeArgs string

	// rootCommand is the root of the command tree.
	rootCommand *cobra.Command
)

const nodebugCommandLongDesc = `nodebug runs a Node.js script under the debugger and opens node-inspector
in Chrome, pointed at the script.

The script is started first, then node-inspector, then the browser. When the
script exits nodebug exits with the same code and stops node-inspector and the
browser, unless --keep-alive is given.

Flags after the script name are passed to the script:

	nodebug --web-port=9090 server.js --port 3000

Logging can be enabled with --log. --log-output selects the components that
produce logs, a comma separated list of:

	session		Log session startup and shutdown
	launcher	Log process launches and terminations
	resolver	Log executable discovery

--log-dest writes logs to the given file or, if the argument is a number, file
descriptor.`

// loadConfig and newSession are replaced in tests.
var loadConfig = config.LoadConfig

var newSession = func(conf session.Config) interface {
	Run(context.Context) (int, error)
} {
	return session.New(conf, launch.NewLauncher(), resolve.New())
}

// New returns an initialized command tree.
func New() *cobra.Command {
	rootCommand = &cobra.Command{
		Use:     "nodebug [flags] script.js [arguments]",
		Short:   "Debug a Node.js script with node-inspector.",
		Long:    nodebugCommandLongDesc,
		Version: version.NodebugVersion.String() + "\n" + version.BuildInfo(),
		Args:    cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(execute(cmd, args))
		},
		SilenceUsage: true,
	}

	flags := rootCommand.Flags()
	flags.SetInterspersed(false)
	flags.SetNormalizeFunc(aliasNormalizeFunc)

	flags.IntVar(&debugPort, "debug-port", 5858, "Debug port used by node.")
	flags.StringVar(&webHost, "web-host", "127.0.0.1", "Web host used by node-inspector.")
	flags.IntVar(&webPort, "web-port", 8080, "Web port used by node-inspector.")
	flags.BoolVar(&debugBrk, "debug-brk", true, "Break on the first line of the script.")
	flags.BoolVar(&keepAlive, "keep-alive", false, "Keep node-inspector and the browser running after the script exits (alias --keep).")

	flags.StringVar(&protocol, "protocol", "", `Debug flags understood by node, "legacy" (--debug-brk) or "inspect" (--inspect-brk).`)
	flags.StringVar(&nodePath, "node", "", "Path of the node executable, searched in PATH by default.")
	flags.StringVar(&nodeArgs, "node-args", "", "Extra arguments for node, placed before the script.")

	flags.BoolVar(&log, "log", false, "Enable logging.")
	flags.StringVar(&logOutput, "log-output", "", "Comma separated list of components that should produce logs.")
	flags.StringVar(&logDest, "log-dest", "", "Writes logs to the specified file or file descriptor.")

	rootCommand.SetVersionTemplate("nodebug\n{{.Version}}\n")
	rootCommand.DisableAutoGenTag = true

	return rootCommand
}

func aliasNormalizeFunc(f *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "keep":
		name = "keep-alive"
	}
	return pflag.NormalizedName(name)
}

func execute(cmd *cobra.Command, args []string) int {
	if len(args) == 0 {
		showError(cmd, session.ErrScriptRequired, true)
		return 1
	}

	if err := logflags.Setup(log, logOutput, logDest); err != nil {
		showError(cmd, err, false)
		return 1
	}
	defer logflags.Close()

	conf, err := buildConfig(loadConfig(), args)
	if err != nil {
		showError(cmd, err, false)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), stopSignals...)
	defer stop()

	status, err := newSession(conf).Run(ctx)
	if err != nil {
		showError(cmd, err, errors.Is(err, session.ErrScriptRequired))
	}
	return status
}

// buildConfig merges the command line flags with the config file.
func buildConfig(fileConf *config.Config, args []string) (session.Config, error) {
	conf := session.Config{
		DebugPort:     debugPort,
		WebHost:       webHost,
		WebPort:       webPort,
		BreakOnStart:  debugBrk,
		KeepAlive:     keepAlive,
		Script:        args,
		Protocol:      firstNonEmpty(protocol, fileConf.Protocol),
		NodePath:      firstNonEmpty(nodePath, fileConf.NodePath),
		InspectorPath: fileConf.InspectorPath,
		BrowserPaths:  fileConf.BrowserPaths,
		BrowserArgs:   fileConf.BrowserArgs,
		InstallRoot:   fileConf.InstallRoot,
	}

	var err error
	conf.NodeArgs, err = parseNodeArgs(firstNonEmpty(nodeArgs, fileConf.NodeArgs))
	if err != nil {
		return conf, err
	}

	if conf.InstallRoot == "" {
		conf.InstallRoot, err = session.DefaultInstallRoot(os.Getenv)
		if err != nil {
			return conf, fmt.Errorf("could not determine installation directory: %v", err)
		}
	}
	return conf, nil
}

func parseNodeArgs(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	v, err := argv.Argv(s,
		func(s string) (string, error) {
			return "", fmt.Errorf("backtick not supported in '%s'", s)
		},
		nil)
	if err != nil {
		return nil, err
	}
	if len(v) != 1 {
		return nil, fmt.Errorf("illegal node arguments '%s'", s)
	}
	return v[0], nil
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}

func showError(cmd *cobra.Command, err error, includeUsage bool) {
	w := cmd.ErrOrStderr()
	if includeUsage {
		fmt.Fprintf(w, "Error: %v\n%s", err, cmd.UsageString())
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
