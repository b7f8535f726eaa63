package cmds

import (
	"bytes"
	"context"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodebug/nodebug/pkg/config"
	"github.com/nodebug/nodebug/pkg/resolve"
	"github.com/nodebug/nodebug/pkg/session"
)

type fakeSession struct {
	conf   session.Config
	status int
	err    error
}

func (s *fakeSession) Run(context.Context) (int, error) {
	return s.status, s.err
}

func stubSession(t *testing.T, status int, err error) *fakeSession {
	t.Helper()
	fake := &fakeSession{status: status, err: err}
	oldSession, oldConfig := newSession, loadConfig
	newSession = func(conf session.Config) interface {
		Run(context.Context) (int, error)
	} {
		fake.conf = conf
		return fake
	}
	loadConfig = func() *config.Config {
		return &config.Config{InstallRoot: "/usr/local/nodebug"}
	}
	t.Cleanup(func() {
		newSession, loadConfig = oldSession, oldConfig
	})
	return fake
}

func parse(t *testing.T, args ...string) []string {
	t.Helper()
	cmd := New()
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd.Flags().Args()
}

func TestDefaults(t *testing.T) {
	args := parse(t, "app.js")
	assert.Equal(t, []string{"app.js"}, args)
	assert.Equal(t, 5858, debugPort)
	assert.Equal(t, "127.0.0.1", webHost)
	assert.Equal(t, 8080, webPort)
	assert.True(t, debugBrk)
	assert.False(t, keepAlive)
}

func TestFlagsStopAtScript(t *testing.T) {
	args := parse(t, "--web-port=9090", "--debug-brk=false", "app.js", "--web-port", "3000")
	assert.Equal(t, []string{"app.js", "--web-port", "3000"}, args)
	assert.Equal(t, 9090, webPort)
	assert.False(t, debugBrk)
}

func TestKeepAlias(t *testing.T) {
	parse(t, "--keep", "app.js")
	assert.True(t, keepAlive)

	parse(t, "--keep-alive", "app.js")
	assert.True(t, keepAlive)
}

func TestParseNodeArgs(t *testing.T) {
	var parseNodeArgsTests = []struct {
		in   string
		want []string
		err  bool
	}{
		{"", nil, false},
		{"--harmony", []string{"--harmony"}, false},
		{`--harmony --title="my app"`, []string{"--harmony", "--title=my app"}, false},
		{"--expose-gc | cat", nil, true},
		{"--title=`whoami`", nil, true},
	}
	for _, tt := range parseNodeArgsTests {
		got, err := parseNodeArgs(tt.in)
		if tt.err {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestBuildConfig(t *testing.T) {
	args := parse(t, "--node-args=--harmony", "--protocol=inspect", "app.js", "one")
	fileConf := &config.Config{
		NodePath:     "/opt/node/bin/node",
		NodeArgs:     "--ignored",
		Protocol:     "legacy",
		BrowserPaths: []string{"/snap/bin/chromium"},
		InstallRoot:  "/usr/local/nodebug",
	}

	conf, err := buildConfig(fileConf, args)
	require.NoError(t, err)
	assert.Equal(t, []string{"app.js", "one"}, conf.Script)
	assert.Equal(t, []string{"--harmony"}, conf.NodeArgs)
	assert.Equal(t, "inspect", conf.Protocol)
	assert.Equal(t, "/opt/node/bin/node", conf.NodePath)
	assert.Equal(t, []string{"/snap/bin/chromium"}, conf.BrowserPaths)
	assert.Equal(t, "/usr/local/nodebug", conf.InstallRoot)
	assert.Equal(t, 5858, conf.DebugPort)
	assert.True(t, conf.BreakOnStart)
}

func TestExecuteMissingScript(t *testing.T) {
	stubSession(t, 0, nil)
	newSession = func(session.Config) interface {
		Run(context.Context) (int, error)
	} {
		t.Fatal("session created without a script")
		return nil
	}

	cmd := New()
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)

	assert.Equal(t, 1, execute(cmd, nil))
	assert.True(t, strings.HasPrefix(stderr.String(), "Error: script required\n"))
	assert.Contains(t, stderr.String(), "Usage:")
}

func TestExecutePropagatesStatus(t *testing.T) {
	fake := stubSession(t, 42, nil)

	cmd := New()
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	require.NoError(t, cmd.Flags().Parse([]string{"--keep", "app.js"}))

	assert.Equal(t, 42, execute(cmd, cmd.Flags().Args()))
	assert.Empty(t, stderr.String())
	assert.True(t, fake.conf.KeepAlive)
	assert.Equal(t, []string{"app.js"}, fake.conf.Script)
}

func TestExecuteSessionError(t *testing.T) {
	stubSession(t, 1, &resolve.NotFoundError{Name: "google-chrome"})

	cmd := New()
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)

	assert.Equal(t, 1, execute(cmd, []string{"app.js"}))
	assert.Equal(t, "Error: google-chrome not found\n", stderr.String())
}

// sessionFunc adapts a function to the session returned by newSession.
type sessionFunc func(context.Context) (int, error)

func (f sessionFunc) Run(ctx context.Context) (int, error) {
	return f(ctx)
}

func TestVersion(t *testing.T) {
	cmd := New()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	out := stdout.String()
	assert.True(t, strings.HasPrefix(out, "nodebug\nVersion: "), "got %q", out)
	assert.Contains(t, out, runtime.Version())
}
