package launch

import (
	"os"
	"syscall"

	"golang.org/x/sys/windows"
)

func detachedSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: windows.CREATE_NEW_PROCESS_GROUP}
}

// procGroup is a launched process and, when detached, a job object holding
// it and every process it starts afterwards. Windows has no process group
// signal, so the job stands in for the unix process group: node-inspector
// runs under cmd.exe and the browser starts helper processes, and killing
// only the top-level process would leave those running.
//
// Children started between process creation and job assignment escape the
// job.
type procGroup struct {
	p   *os.Process
	job windows.Handle
}

func newProcGroup(p *os.Process, detached bool) (*procGroup, error) {
	g := &procGroup{p: p}
	if !detached {
		return g, nil
	}
	job, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return g, err
	}
	ph, err := windows.OpenProcess(windows.PROCESS_SET_QUOTA|windows.PROCESS_TERMINATE, false, uint32(p.Pid))
	if err != nil {
		windows.CloseHandle(job)
		return g, err
	}
	defer windows.CloseHandle(ph)
	if err := windows.AssignProcessToJobObject(job, ph); err != nil {
		windows.CloseHandle(job)
		return g, err
	}
	g.job = job
	return g, nil
}

func (g *procGroup) terminate() error {
	if g.job == 0 {
		return g.p.Kill()
	}
	return windows.TerminateJobObject(g.job, 1)
}

// release closes the job handle. The job has no kill-on-close limit, so
// processes still in it keep running.
func (g *procGroup) release() {
	if g.job != 0 {
		windows.CloseHandle(g.job)
		g.job = 0
	}
}
