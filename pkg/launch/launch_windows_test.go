package launch

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"
)

const stillActive = 259

func processRunning(pid int) bool {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(h)
	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return false
	}
	return code == stillActive
}

func TestTerminateDetachedChildren(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "child.pid")
	h, err := NewLauncher().Launch(helperSpec(t, Detached, "spawn", pidFile))
	require.NoError(t, err)

	var childPid int
	deadline := time.Now().Add(10 * time.Second)
	for childPid == 0 {
		if time.Now().After(deadline) {
			h.Terminate()
			t.Fatal("child pid was not written")
		}
		if buf, err := os.ReadFile(pidFile); err == nil && len(buf) > 0 {
			childPid, _ = strconv.Atoi(string(buf))
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, processRunning(childPid))

	require.NoError(t, h.Terminate())
	waitDone(t, h)

	deadline = time.Now().Add(10 * time.Second)
	for processRunning(childPid) {
		if time.Now().After(deadline) {
			t.Fatalf("child %d survived the termination of its parent", childPid)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
