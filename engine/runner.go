package engine

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/happy-sdk/happy/pkg/logging"
	"github.com/hearthkit/automation/modulebus"
	"github.com/hearthkit/automation/program"
	"github.com/hearthkit/automation/scripthost"
)

// Runner is ProgramRunner (§4.2): starts a program's action body at most
// once, with at-most-one-active-body and fault containment.
//
// Grounded on sdk/services/container.go's Start/Stop/ForceShutdown: a lock
// around admission, a fresh cancelable context per run, retry/error
// bookkeeping collapsed here into the single auto-disable-on-fault rule.
type Runner struct {
	host scripthost.Host
	bus  modulebus.Bus
	log  logging.Logger
	// engineEnabled reports the manager's engine-wide enabled flag; a
	// false value does not block Start directly (callers already check it
	// before invoking the runner per §4.1), it is only consulted as log
	// context when a body fault is logged.
	engineEnabled func() bool
}

func newRunner(host scripthost.Host, bus modulebus.Bus, log logging.Logger, engineEnabled func() bool) *Runner {
	return &Runner{host: host, bus: bus, log: log, engineEnabled: engineEnabled}
}

// Start implements the §4.2 algorithm. It never blocks past admission: the
// body itself always runs on a fresh goroutine.
func (rn *Runner) Start(p *program.Record) {
	p.OperationLock.Lock()
	if p.Running() {
		p.OperationLock.Unlock()
		return
	}
	// A leftover worker reference from a forced termination that hasn't
	// cleared itself yet: ask it to stop before starting a new one.
	p.StopBody()

	p.SetRunning(true)
	p.SetTriggerTime(time.Now())
	rn.publishStatus(p, program.StatusRunning)

	if p.ConditionType() == program.Once {
		p.SetEnabled(false)
	}
	p.OperationLock.Unlock()

	stopped := make(chan struct{})
	var interrupted atomic.Bool
	p.SetBodyStop(func() {
		interrupted.Store(true)
		rn.host.Stop(p)
		<-stopped
	})

	go rn.runBody(p, stopped, &interrupted)
}

func (rn *Runner) runBody(p *program.Record, stopped chan struct{}, interrupted *atomic.Bool) {
	defer close(stopped)
	defer func() {
		p.SetBodyStop(nil)
		p.SetRunning(false)
		rn.publishStatus(p, program.StatusIdle)
	}()

	_, err := scripthost.Guard(func() (scripthost.RunResult, error) {
		return rn.host.Run(p, p.Options)
	})

	if err != nil {
		switch scripthost.Classify(err) {
		case scripthost.FaultBenign:
			// no user-visible meaning: ignored by design.
		default:
			msg := scripthost.RuntimeErrorMessage(string(program.CodeBlockBody), err.Error())
			p.AddScriptError(program.Error{
				Message:   err.Error(),
				CodeBlock: program.CodeBlockBody,
				At:        time.Now(),
			})
			p.SetEnabled(false)
			rn.publishRuntimeError(p, msg)
		}
	}

	if interrupted != nil && interrupted.Load() {
		rn.publishStatus(p, program.StatusInterrupted)
	}
}

func (rn *Runner) publishStatus(p *program.Record, status program.Status) {
	p.SetStatus(status)
	if rn.bus == nil {
		return
	}
	rn.bus.RaiseEvent(p.Address, p.Domain, modulebus.MirrorAddress(p.Domain, p.Address), modulebus.Source, modulebus.PropProgramStatus, string(status))
}

func (rn *Runner) publishRuntimeError(p *program.Record, msg string) {
	if rn.log != nil {
		rn.log.Error("program runtime fault", slog.Int("address", p.Address), slog.String("message", msg), slog.Bool("engine_enabled", rn.engineEnabled()))
	}
	if rn.bus == nil {
		return
	}
	rn.bus.RaiseEvent(p.Address, p.Domain, modulebus.MirrorAddress(p.Domain, p.Address), modulebus.Source, modulebus.PropRuntimeError, msg)
}
