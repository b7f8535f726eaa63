package resolve

import (
	"fmt"
	"path/filepath"
)

// Platform is a class of operating systems sharing executable locations.
type Platform int

const (
	Unknown Platform = iota
	Windows
	Posix
	Darwin
)

func (p Platform) String() string {
	switch p {
	case Windows:
		return "windows"
	case Posix:
		return "posix"
	case Darwin:
		return "darwin"
	default:
		return "unknown"
	}
}

// PlatformOf maps a GOOS value to its platform class.
func PlatformOf(goos string) Platform {
	switch goos {
	case "windows":
		return Windows
	case "darwin":
		return Darwin
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly", "solaris", "illumos", "aix":
		return Posix
	}
	return Unknown
}

// UnsupportedPlatformError is returned when a platform has no candidate
// table for an executable. It is a resolution failure: it wraps ErrNotFound.
type UnsupportedPlatformError struct {
	Platform string
	What     string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform %s: no known %s locations", e.Platform, e.What)
}

func (e *UnsupportedPlatformError) Unwrap() error {
	return ErrNotFound
}

// Getenv looks up an environment variable, os.Getenv in production.
type Getenv func(key string) string

// CandidatesFunc builds the ordered candidate list for one platform.
// root is the installation root of nodebug.
type CandidatesFunc func(root string, getenv Getenv) []string

const (
	inspectorDir = "node_modules/.bin"
	chromeSuffix = `Google\Chrome\Application\chrome.exe`
)

var inspectorTable = map[Platform]CandidatesFunc{
	Windows: func(root string, _ Getenv) []string {
		return []string{filepath.Join(root, filepath.FromSlash(inspectorDir), "node-inspector.cmd")}
	},
	Posix:  posixInspector,
	Darwin: posixInspector,
}

func posixInspector(root string, _ Getenv) []string {
	return []string{filepath.Join(root, filepath.FromSlash(inspectorDir), "node-inspector")}
}

var browserTable = map[Platform]CandidatesFunc{
	Windows: func(_ string, getenv Getenv) []string {
		var r []string
		for _, key := range []string{"LocalAppData", "ProgramFiles", "ProgramFiles(x86)"} {
			if dir := getenv(key); dir != "" {
				r = append(r, filepath.Join(dir, chromeSuffix))
			}
		}
		return r
	},
	Darwin: func(string, Getenv) []string {
		return []string{"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"}
	},
	Posix: func(string, Getenv) []string {
		return []string{
			"/opt/google/chrome/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
		}
	},
}

// InspectorCandidates returns the node-inspector locations for platform p,
// relative to the installation root. The second return value is false if
// the platform has no table entry.
func InspectorCandidates(p Platform, root string, getenv Getenv) ([]string, bool) {
	fn, ok := inspectorTable[p]
	if !ok {
		return nil, false
	}
	return fn(root, getenv), true
}

// BrowserCandidates returns the browser locations for platform p. The
// second return value is false if the platform has no table entry.
func BrowserCandidates(p Platform, getenv Getenv) ([]string, bool) {
	fn, ok := browserTable[p]
	if !ok {
		return nil, false
	}
	return fn("", getenv), true
}

// InterpreterCandidates returns one candidate per entry of the PATH list,
// each joined with the interpreter's executable name.
func InterpreterCandidates(p Platform, name string, getenv Getenv) []string {
	if p == Windows && filepath.Ext(name) == "" {
		name += ".exe"
	}
	var r []string
	for _, dir := range filepath.SplitList(getenv("PATH")) {
		if dir == "" {
			continue
		}
		r = append(r, filepath.Join(dir, name))
	}
	return r
}
