package engine

import (
	"log/slog"
	"time"

	"github.com/happy-sdk/happy/pkg/logging"
	"github.com/hearthkit/automation/modulebus"
	"github.com/hearthkit/automation/program"
	"github.com/hearthkit/automation/scripthost"
)

// Evaluator is ConditionEvaluator (§4.4): applies a program's trigger mode
// over the raw ScriptHost condition result, serialized by the program's
// OperationLock.
//
// Grounded on sdk/services/container.go's Tick/Tock pairing: evaluate, then
// clean up, under the same lock that also guards admission into the runner.
type Evaluator struct {
	host scripthost.Host
	bus  modulebus.Bus
	log  logging.Logger
}

func newEvaluator(host scripthost.Host, bus modulebus.Bus, log logging.Logger) *Evaluator {
	return &Evaluator{host: host, bus: bus, log: log}
}

// ShouldRun implements the §4.4 algorithm and reports whether the program
// should now be dispatched to the runner.
func (e *Evaluator) ShouldRun(p *program.Record) bool {
	p.OperationLock.Lock()
	defer p.OperationLock.Unlock()

	cr, err := scripthost.Guard(func() (scripthost.ConditionResult, error) {
		return e.host.EvaluateCondition(p)
	})

	var raw bool
	if err != nil && scripthost.Classify(err) != scripthost.FaultBenign {
		msg := scripthost.RuntimeErrorMessage(string(program.CodeBlockCondition), err.Error())
		p.AddScriptError(program.Error{
			Message:   err.Error(),
			CodeBlock: program.CodeBlockCondition,
			At:        time.Now(),
		})
		p.SetEnabled(false)
		if e.log != nil {
			e.log.Error("program condition fault", slog.Int("address", p.Address), slog.String("message", msg))
		}
		if e.bus != nil {
			e.bus.RaiseEvent(p.Address, p.Domain, modulebus.MirrorAddress(p.Domain, p.Address), modulebus.Source, modulebus.PropRuntimeError, msg)
		}
		raw = false
	} else if err == nil && !cr.Null {
		raw = cr.Value
	}

	prev := p.LastConditionResult()
	p.SetLastConditionResult(raw)

	var result bool
	switch p.ConditionType() {
	case program.OnTrue, program.Once:
		result = raw
	case program.OnFalse:
		result = !raw
	case program.OnSwitchTrue:
		result = raw && raw != prev
	case program.OnSwitchFalse:
		result = !raw && raw != prev
	}

	return result && p.Enabled()
}
