package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/home/dev/.nodebug/config.yml"

	conf, err := Load(fs, path)
	require.NoError(t, err)
	assert.Empty(t, conf.NodePath)
	assert.Empty(t, conf.BrowserPaths)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, defaultConfig, string(data))
}

func TestLoadValues(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/home/dev/.nodebug/config.yml"
	require.NoError(t, afero.WriteFile(fs, path, []byte(`
node-path: /opt/node/bin/node
node-args: "--harmony --max-old-space-size=512"
protocol: inspect
browser-paths:
  - /usr/bin/chromium-browser
  - /snap/bin/chromium
browser-args: ["--no-first-run"]
install-root: /usr/local/lib/nodebug
`), 0o600))

	conf, err := Load(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/node/bin/node", conf.NodePath)
	assert.Equal(t, "--harmony --max-old-space-size=512", conf.NodeArgs)
	assert.Equal(t, "inspect", conf.Protocol)
	assert.Equal(t, []string{"/usr/bin/chromium-browser", "/snap/bin/chromium"}, conf.BrowserPaths)
	assert.Equal(t, []string{"--no-first-run"}, conf.BrowserArgs)
	assert.Equal(t, "/usr/local/lib/nodebug", conf.InstallRoot)
}

func TestLoadInvalid(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/config.yml"
	require.NoError(t, afero.WriteFile(fs, path, []byte("browser-paths: {"), 0o600))

	_, err := Load(fs, path)
	assert.Error(t, err)
}
