package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/happy-sdk/happy/pkg/logging"
	"github.com/happy-sdk/happy/pkg/scheduling/cron"
	"github.com/hearthkit/automation/program"
)

// tickSchedule is the minute-boundary cadence every program's scheduler
// worker runs on. Parsed once at package init rather than per-worker.
var tickSchedule, tickScheduleErr = cron.ParseStandard("* * * * *")

// scheduler is TickScheduler (§4.3): one long-lived worker per enabled
// program, sleeping until the next wall-clock minute boundary.
//
// Grounded on happy/x/service/cron.go's per-service Cron wrapper shape
// (one scheduler object per owner, Start/Stop), re-pointed at
// pkg/scheduling/cron's Schedule.Next for the minute-boundary computation
// instead of a full cron expression. The interruptible sleep and
// join-then-force-terminate stop protocol follow
// sdk/services/container.go's context.CancelCauseFunc discipline: Go
// cannot forcibly kill a goroutine, so "force-terminate" here means the
// context is canceled and the stop call returns without waiting further,
// logging that the worker did not exit within its deadline.
type scheduler struct {
	p      *program.Record
	eval   *Evaluator
	runner *Runner
	log    logging.Logger

	engineRunning func() bool
	engineEnabled func() bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newScheduler(p *program.Record, eval *Evaluator, runner *Runner, log logging.Logger, engineRunning, engineEnabled func() bool) *scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &scheduler{
		p:             p,
		eval:          eval,
		runner:        runner,
		log:           log,
		engineRunning: engineRunning,
		engineEnabled: engineEnabled,
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}
}

func (s *scheduler) start() {
	go s.loop()
}

func (s *scheduler) loop() {
	defer close(s.done)
	for {
		if !s.engineRunning() || !s.p.Enabled() {
			return
		}

		next := time.Now().Add(time.Minute)
		if tickScheduleErr == nil && tickSchedule != nil {
			next = tickSchedule.Next(time.Now())
		}
		timer := time.NewTimer(time.Until(next))
		select {
		case <-timer.C:
		case <-s.ctx.Done():
			timer.Stop()
			return
		}

		if !s.engineRunning() || !s.p.Enabled() {
			return
		}
		if s.p.Running() || !s.engineEnabled() {
			continue
		}
		if s.eval.ShouldRun(s.p) {
			s.runner.Start(s.p)
		}
	}
}

// stop requests the worker to exit and joins it with joinMs deadline; past
// that it cancels the context (already done) and returns, logging that the
// worker outlived its deadline.
func (s *scheduler) stop(joinMs int) {
	s.cancel()
	select {
	case <-s.done:
	case <-time.After(time.Duration(joinMs) * time.Millisecond):
		if s.log != nil {
			s.log.Warn("tick scheduler did not stop within deadline", slog.Int("address", s.p.Address))
		}
	}
}
