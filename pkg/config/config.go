package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

const (
	configDir  string = ".nodebug"
	configFile string = "config.yml"
)

// Config defines all configuration options available to be set through the config file.
type Config struct {
	// NodePath is the Node.js interpreter used to run the debuggee. When
	// empty node is searched in PATH.
	NodePath string `yaml:"node-path,omitempty"`
	// NodeArgs are passed to the interpreter before the debug flag, as a
	// single shell-quoted string.
	NodeArgs string `yaml:"node-args,omitempty"`

	// InspectorPath overrides discovery of node-inspector.
	InspectorPath string `yaml:"inspector-path,omitempty"`

	// BrowserPaths are tried, in order, before the built-in browser
	// locations.
	BrowserPaths []string `yaml:"browser-paths"`
	// BrowserArgs are appended to the browser command line.
	BrowserArgs []string `yaml:"browser-args"`

	// InstallRoot is the directory holding node_modules and the
	// ChromeProfile directory. Defaults to the parent of the directory
	// containing the nodebug executable.
	InstallRoot string `yaml:"install-root,omitempty"`

	// Protocol selects the interpreter's debug flags, "legacy" or "inspect".
	Protocol string `yaml:"protocol,omitempty"`
}

// LoadConfig attempts to populate a Config object from the config.yml file.
func LoadConfig() *Config {
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to get config file path: %v.\n", err)
		return &Config{}
	}
	conf, err := Load(afero.NewOsFs(), fullConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return &Config{}
	}
	return conf
}

// Load reads the configuration at path from fs, writing a default
// configuration file there first if none exists.
func Load(fs afero.Fs, path string) (*Config, error) {
	if _, err := fs.Stat(path); os.IsNotExist(err) {
		if err := createDefaultConfig(fs, path); err != nil {
			return nil, err
		}
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config data: %v", err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unable to decode config file: %v", err)
	}
	return &c, nil
}

func createDefaultConfig(fs afero.Fs, path string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("could not create config directory: %v", err)
	}
	if err := afero.WriteFile(fs, path, []byte(defaultConfig), 0o600); err != nil {
		return fmt.Errorf("unable to write default configuration: %v", err)
	}
	return nil
}

const defaultConfig = `# Configuration file for nodebug.

# This is the default configuration file. Available options are provided, but disabled.
# Delete the leading hash mark to enable an item.

# Node.js interpreter running the script. Searched in PATH when unset.
# node-path: /usr/local/bin/node

# Extra interpreter arguments, placed before the debug flag.
# node-args: "--harmony --stack-size=2048"

# Debug flags understood by the interpreter: legacy (--debug, --debug-brk)
# or inspect (--inspect, --inspect-brk).
# protocol: legacy

# Location of node-inspector, skipping discovery.
# inspector-path: /usr/local/lib/node_modules/.bin/node-inspector

# Browser executables tried before the built-in Chrome locations.
browser-paths:
  # - /usr/bin/chromium-browser

# Extra browser arguments.
browser-args:
  # - --no-first-run

# Directory containing node_modules and ChromeProfile.
# install-root: /usr/local/lib/nodebug
`

// GetConfigFilePath gets the full path to the given config file name.
func GetConfigFilePath(file string) (string, error) {
	userHomeDir := "."
	usr, err := user.Current()
	if err == nil {
		userHomeDir = usr.HomeDir
	}
	return filepath.Join(userHomeDir, configDir, file), nil
}
