package session

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodebug/nodebug/pkg/launch"
)

func TestDebuggeeSpec(t *testing.T) {
	cfg := testConfig()
	cfg.Script = []string{"app.js"}

	spec := cfg.DebuggeeSpec(testNode)
	assert.Equal(t, testNode, spec.Path)
	assert.Equal(t, []string{"--debug-brk=5858", "app.js"}, spec.Args)
	assert.Equal(t, launch.Inherited, spec.IO)

	cfg.NodeArgs = []string{"--harmony"}
	cfg.Script = []string{"app.js", "--verbose"}
	spec = cfg.DebuggeeSpec(testNode)
	assert.Equal(t, []string{"--debug-brk=5858", "--harmony", "app.js", "--verbose"}, spec.Args)
}

func TestDebugFlag(t *testing.T) {
	var debugFlagTests = []struct {
		protocol     string
		breakOnStart bool
		want         string
	}{
		{"", true, "--debug-brk=9229"},
		{ProtocolLegacy, false, "--debug=9229"},
		{ProtocolInspect, true, "--inspect-brk=9229"},
		{ProtocolInspect, false, "--inspect=9229"},
	}
	for _, tt := range debugFlagTests {
		cfg := Config{DebugPort: 9229, Protocol: tt.protocol, BreakOnStart: tt.breakOnStart}
		assert.Equal(t, tt.want, cfg.DebugFlag())
	}
}

func TestInspectorSpec(t *testing.T) {
	cfg := testConfig()
	spec := cfg.InspectorSpec(testInspector)
	assert.Equal(t, testInspector, spec.Path)
	assert.Equal(t, []string{"--web-host=127.0.0.1", "--web-port=8080", "--debug-port=5858"}, spec.Args)
	assert.Equal(t, launch.Detached, spec.IO)
}

func TestBrowserSpec(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, "http://127.0.0.1:8080/debug?port=5858", cfg.BrowserURL())

	cfg.BrowserArgs = []string{"--no-first-run"}
	spec := cfg.BrowserSpec(testBrowser)
	assert.Equal(t, testBrowser, spec.Path)
	assert.Equal(t, []string{
		"http://127.0.0.1:8080/debug?port=5858",
		"--user-data-dir=" + filepath.Join(testRoot, "ChromeProfile"),
		"--no-first-run",
	}, spec.Args)
	assert.Equal(t, launch.Detached, spec.IO)
}

func TestValidate(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, cfg.Validate())

	cfg.Script = []string{""}
	assert.True(t, errors.Is(cfg.Validate(), ErrScriptRequired))

	cfg = testConfig()
	cfg.Protocol = "v8"
	assert.Error(t, cfg.Validate())

	cfg = testConfig()
	cfg.WebPort = 70000
	assert.Error(t, cfg.Validate())
}

func TestDefaultInstallRoot(t *testing.T) {
	dir := t.TempDir()
	root, err := DefaultInstallRoot(func(key string) string {
		if key == "NODEBUG_ROOT" {
			return dir
		}
		return ""
	})
	require.NoError(t, err)
	assert.Equal(t, dir, root)

	root, err = DefaultInstallRoot(func(string) string { return "" })
	require.NoError(t, err)
	assert.NotEmpty(t, root)
}
