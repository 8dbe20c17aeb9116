package engine

import (
	"testing"

	"github.com/happy-sdk/happy/pkg/devel/testutils"
	"github.com/hearthkit/automation/internal/demo"
	"github.com/hearthkit/automation/program"
)

// Scenario B / invariant 7 — OnSwitchTrue fires exactly on transitions
// false->true of the raw condition, relative to the previous evaluation.
func TestEvaluatorEdgeTrigger(t *testing.T) {
	host := demo.NewScriptedHost()
	eval := newEvaluator(host, nil, nil)

	p, err := program.New(program.USER_SPACE_BASE, "edge-prog", "test", program.OnSwitchTrue)
	testutils.NoError(t, err)
	p.SetEnabled(true)

	sequence := []int{0, 1, 1, 0, 1}
	var x int
	host.SetCondition(p.Address, func() (bool, error) { return x == 1, nil })

	var fired []bool
	for _, v := range sequence {
		x = v
		fired = append(fired, eval.ShouldRun(p))
	}

	testutils.Equal(t, 5, len(fired))
	testutils.False(t, fired[0])
	testutils.True(t, fired[1])
	testutils.False(t, fired[2])
	testutils.False(t, fired[3])
	testutils.True(t, fired[4])
}

func TestEvaluatorConditionFaultAutoDisables(t *testing.T) {
	host := demo.NewScriptedHost()
	eval := newEvaluator(host, nil, nil)

	p, err := program.New(program.USER_SPACE_BASE+1, "fault-prog", "test", program.OnTrue)
	testutils.NoError(t, err)
	p.SetEnabled(true)

	host.SetCondition(p.Address, func() (bool, error) { return false, errBoom })

	testutils.False(t, eval.ShouldRun(p))
	testutils.False(t, p.Enabled())
	errs := p.ScriptErrors()
	testutils.Equal(t, 1, len(errs))
	testutils.Equal(t, program.CodeBlockCondition, errs[0].CodeBlock)
}

func TestEvaluatorOnFalseMode(t *testing.T) {
	host := demo.NewScriptedHost()
	eval := newEvaluator(host, nil, nil)

	p, err := program.New(program.USER_SPACE_BASE+2, "onfalse-prog", "test", program.OnFalse)
	testutils.NoError(t, err)
	p.SetEnabled(true)

	host.SetCondition(p.Address, func() (bool, error) { return false, nil })
	testutils.True(t, eval.ShouldRun(p))

	host.SetCondition(p.Address, func() (bool, error) { return true, nil })
	testutils.False(t, eval.ShouldRun(p))
}
