package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/happy-sdk/happy/pkg/devel/testutils"
	"github.com/happy-sdk/happy/pkg/vars"
	"github.com/hearthkit/automation/internal/demo"
	"github.com/hearthkit/automation/modulebus"
	"github.com/hearthkit/automation/program"
)

func newTestRouter(t *testing.T, poolSize int) (*router, *registry, *demo.ScriptedHost) {
	t.Helper()
	reg := newRegistry()
	host := demo.NewScriptedHost()
	eval := newEvaluator(host, nil, nil)
	run := newRunner(host, nil, nil, func() bool { return true })
	rt := newRouter(reg, eval, run, nil, nil, func() bool { return true }, poolSize)
	return rt, reg, host
}

func mustValue(t *testing.T, v any) vars.Value {
	t.Helper()
	val, err := vars.NewValue(v)
	testutils.NoError(t, err)
	return val
}

// Scenario C — pre-change veto: P2's post-change hook is not called and
// P2's body is not dispatched.
func TestRouterPreChangeVeto(t *testing.T) {
	rt, reg, host := newTestRouter(t, 4)

	p1 := mustProgram(t, program.USER_SPACE_BASE, "p1", program.OnTrue)
	p1.SetEnabled(true)
	p1.Hooks.PreChange = func(string, *modulebus.Parameter) bool { return false }

	p2 := mustProgram(t, program.USER_SPACE_BASE+1, "p2", program.OnTrue)
	p2.SetEnabled(true)
	var postChangeCalls int32
	p2.Hooks.PostChange = func(string, *modulebus.Parameter) bool {
		atomic.AddInt32(&postChangeCalls, 1)
		return true
	}
	var bodyRuns int32
	host.SetCondition(p2.Address, func() (bool, error) { return true, nil })
	host.SetBody(p2.Address, func(string, <-chan struct{}) (any, error) {
		atomic.AddInt32(&bodyRuns, 1)
		return nil, nil
	})

	reg.Add(p1)
	reg.Add(p2)

	rt.Deliver(modulebus.PropertyChange{
		SenderAddress: -1,
		Module:        "lighting/1",
		Parameter:     modulebus.Parameter{Name: "X", Value: mustValue(t, 1)},
	})

	time.Sleep(50 * time.Millisecond)
	testutils.Equal(t, int32(0), atomic.LoadInt32(&postChangeCalls))
	testutils.Equal(t, int32(0), atomic.LoadInt32(&bodyRuns))
}

// Scenario D — parameter mutation in the pre-change hook halts propagation;
// P2 never observes the post-change stage for this event.
func TestRouterPreChangeMutationHalts(t *testing.T) {
	rt, reg, _ := newTestRouter(t, 4)

	p1 := mustProgram(t, program.USER_SPACE_BASE, "p1", program.OnTrue)
	p1.SetEnabled(true)
	p1.Hooks.PreChange = func(_ string, param *modulebus.Parameter) bool {
		param.Value = mustValue(t, 2)
		return true
	}

	p2 := mustProgram(t, program.USER_SPACE_BASE+1, "p2", program.OnTrue)
	p2.SetEnabled(true)
	var postChangeCalls int32
	p2.Hooks.PostChange = func(string, *modulebus.Parameter) bool {
		atomic.AddInt32(&postChangeCalls, 1)
		return true
	}

	reg.Add(p1)
	reg.Add(p2)

	rt.Deliver(modulebus.PropertyChange{
		SenderAddress: -1,
		Module:        "lighting/1",
		Parameter:     modulebus.Parameter{Name: "X", Value: mustValue(t, 1)},
	})

	time.Sleep(50 * time.Millisecond)
	testutils.Equal(t, int32(0), atomic.LoadInt32(&postChangeCalls))
}

// Invariant 4 — every pre-change observation completes before any
// post-change observation of the same event begins.
func TestRouterPreChangeBeforePostChange(t *testing.T) {
	rt, reg, _ := newTestRouter(t, 4)

	var order []string
	p1 := mustProgram(t, program.USER_SPACE_BASE, "p1", program.OnTrue)
	p1.SetEnabled(true)
	p1.Hooks.PreChange = func(string, *modulebus.Parameter) bool {
		order = append(order, "pre")
		return true
	}
	p1.Hooks.PostChange = func(string, *modulebus.Parameter) bool {
		order = append(order, "post")
		return true
	}
	reg.Add(p1)

	rt.Deliver(modulebus.PropertyChange{
		SenderAddress: -1,
		Module:        "lighting/1",
		Parameter:     modulebus.Parameter{Name: "X", Value: mustValue(t, 1)},
	})

	time.Sleep(50 * time.Millisecond)
	testutils.Equal(t, 2, len(order))
	testutils.Equal(t, "pre", order[0])
	testutils.Equal(t, "post", order[1])
}
