package engine

import (
	"testing"

	"github.com/happy-sdk/happy/pkg/devel/testutils"
	"github.com/hearthkit/automation/program"
)

// Invariant 5 — PID law: GeneratePid returns a value strictly greater than
// every existing Address and >= USER_SPACE_BASE.
func TestManagerGeneratePidLaw(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	testutils.Equal(t, program.USER_SPACE_BASE, mgr.GeneratePid())

	p1 := mustProgram(t, mgr.GeneratePid(), "p1", program.OnTrue)
	mgr.Add(p1)
	testutils.Equal(t, program.USER_SPACE_BASE+1, mgr.GeneratePid())

	p2 := mustProgram(t, mgr.GeneratePid(), "p2", program.OnTrue)
	mgr.Add(p2)
	testutils.Equal(t, program.USER_SPACE_BASE+2, mgr.GeneratePid())

	mgr.Remove(p1)
	// removing the lower address never lowers the next allocation below
	// the remaining maximum + 1.
	testutils.Equal(t, program.USER_SPACE_BASE+2, mgr.GeneratePid())
}

func TestManagerAddPublishesIdleAndRemoveDisables(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	p := mustProgram(t, mgr.GeneratePid(), "p", program.OnTrue)
	p.SetEnabled(true)

	mgr.Add(p)
	testutils.Equal(t, program.StatusIdle, p.Status())

	mgr.Remove(p)
	testutils.False(t, p.Enabled())
	_, found := mgr.reg.Get(p.Address)
	testutils.False(t, found)
}

func TestManagerStopAllFlipsEngineRunning(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	testutils.True(t, mgr.IsRunning())
	mgr.StopAll()
	testutils.False(t, mgr.IsRunning())
}

// Invariant 2 — a disabled program's hooks/body are never invoked.
func TestManagerDisabledProgramNeverRuns(t *testing.T) {
	mgr, host, _ := newTestManager(t)
	p := mustProgram(t, mgr.GeneratePid(), "p", program.OnTrue)
	// left disabled
	var ran bool
	host.SetCondition(p.Address, func() (bool, error) { return true, nil })
	host.SetBody(p.Address, func(string, <-chan struct{}) (any, error) {
		ran = true
		return nil, nil
	})
	mgr.Add(p)

	testutils.False(t, mgr.eval.ShouldRun(p))
	testutils.False(t, ran)
}
