package engine

import (
	"context"

	"github.com/happy-sdk/happy/pkg/logging"
	"golang.org/x/sync/semaphore"

	"github.com/hearthkit/automation/modulebus"
	"github.com/hearthkit/automation/program"
)

// router is EventRouter (§4.5): delivers one PropertyChange through the
// synchronous pre-change stage, then — if propagation survives — fans the
// post-change stage out to a bounded worker pool.
//
// Grounded on sdk/services/container.go's HandleEvent (listener dispatch
// over a registry, in order) for the hook-invocation shape. The
// post-change worker pool is golang.org/x/sync/semaphore.Weighted, per
// design note 9 ("any bounded-concurrency task dispatch... tasks run
// eventually and do not block the caller of PropertyChange").
type router struct {
	reg  *registry
	eval *Evaluator
	run  *Runner
	log  logging.Logger
	bus  modulebus.Bus

	engineEnabled func() bool

	sem *semaphore.Weighted
}

func newRouter(reg *registry, eval *Evaluator, run *Runner, bus modulebus.Bus, log logging.Logger, engineEnabled func() bool, poolSize int) *router {
	return &router{
		reg:           reg,
		eval:          eval,
		run:           run,
		log:           log,
		bus:           bus,
		engineEnabled: engineEnabled,
		sem:           semaphore.NewWeighted(int64(poolSize)),
	}
}

// Deliver implements data-flow steps 2-3: it runs the pre-change stage on
// the caller's goroutine and, if propagation survives, schedules the whole
// post-change stage as one task on the shared pool without blocking the
// caller further.
func (rt *router) Deliver(change modulebus.PropertyChange) {
	if !rt.preChange(change) {
		return
	}
	go func() {
		if err := rt.sem.Acquire(context.Background(), 1); err != nil {
			return
		}
		defer rt.sem.Release(1)
		rt.postChange(change)
	}()
}

// preChange runs synchronously, in registry order, over every enabled
// program whose Address does not equal the change's sender. It returns
// whether propagation survives to the post-change stage.
func (rt *router) preChange(change modulebus.PropertyChange) bool {
	original := change.Parameter.Value
	for _, p := range rt.reg.Snapshot() {
		if !p.Enabled() {
			continue
		}
		if p.Address == change.SenderAddress {
			continue
		}
		hook := p.Hooks.PreChange
		if hook == nil {
			continue
		}
		param := change.Parameter
		cont := hook(change.Module, &param)
		if !cont {
			return false
		}
		if param.Value.String() != original.String() || param.Value.Kind() != original.Kind() {
			return false
		}
	}
	return true
}

// postChange runs the second stage's program iteration in registry order.
// For each program it independently fires the trigger re-evaluation/run
// dispatch on its own goroutine (per the open question in design note 9:
// preserved as concurrent with, and unordered against, the hook call) and
// then — in order — invokes the program's post-change hook, if any; a
// hook returning halt or mutating the value stops the hook chain for the
// remaining programs in this event.
func (rt *router) postChange(change modulebus.PropertyChange) {
	original := change.Parameter.Value
	for _, p := range rt.reg.Snapshot() {
		if !p.Enabled() {
			continue
		}
		if change.SenderID != nil && p == change.SenderID {
			continue
		}

		rt.dispatchEvaluation(p)

		hook := p.Hooks.PostChange
		if hook == nil {
			continue
		}
		param := change.Parameter
		cont := hook(change.Module, &param)
		if !cont {
			return
		}
		if param.Value.String() != original.String() || param.Value.Kind() != original.Kind() {
			return
		}
	}
}

// dispatchEvaluation is the "independently triggers trigger re-evaluation"
// half of the post-change stage: not currently running, and both engine
// and program enabled, it consults the evaluator and possibly starts the
// runner, on its own goroutine so it never delays the hook chain above.
func (rt *router) dispatchEvaluation(p *program.Record) {
	if p.Running() || !rt.engineEnabled() {
		return
	}
	go func() {
		if rt.eval.ShouldRun(p) {
			rt.run.Start(p)
		}
	}()
}
