// Package engine implements the automation program manager core: the
// program registry, its tick scheduler, condition evaluator, event router,
// and the program-execution runner, wired together behind Manager.
package engine

import (
	"context"
	"os"
	"sync"
	"sync/atomic"

	"github.com/happy-sdk/happy/pkg/logging"
	"github.com/hearthkit/automation/apiregistry"
	"github.com/hearthkit/automation/modulebus"
	"github.com/hearthkit/automation/program"
	"github.com/hearthkit/automation/scripthost"
)

// Manager is the ProgramManager façade (§4.1).
//
// Grounded on sdk/addon/manager.go (register/validate/collect pattern) and
// sdk/services/services.go's Settings-carrying facade; the per-program
// schedulers are new bookkeeping this domain needs that the teacher keeps
// implicitly inside each service's Container instead of in the facade.
type Manager struct {
	log  logging.Logger
	cfg  *Config
	host scripthost.Host
	bus  modulebus.Bus

	reg  *registry
	apis *apiregistry.Registry
	eval *Evaluator
	run  *Runner
	rt   *router

	artifactRoot string

	mu         sync.Mutex
	schedulers map[int]*scheduler

	engineRunning atomic.Bool
	engineEnabled atomic.Bool
}

// NewManager wires a Manager over the given ScriptHost and ModuleBus
// implementations. log may be nil, in which case a default text logger
// writing to stderr is used, matching logging.NewTextLogger's role as the
// teacher's own zero-value logger.
func NewManager(host scripthost.Host, bus modulebus.Bus, log logging.Logger, cfg *Config, artifactRoot string) *Manager {
	if log == nil {
		log = logging.NewTextLogger(context.Background(), os.Stderr, logging.DefaultOptions())
	}
	if cfg == nil {
		cfg, _ = NewConfig(nil)
	}

	m := &Manager{
		log:          log,
		cfg:          cfg,
		host:         host,
		bus:          bus,
		reg:          newRegistry(),
		apis:         apiregistry.New(),
		artifactRoot: artifactRoot,
		schedulers:   make(map[int]*scheduler),
	}
	m.engineRunning.Store(true)
	m.engineEnabled.Store(true)

	m.eval = newEvaluator(host, bus, log)
	m.run = newRunner(host, bus, log, m.IsEnabled)
	m.rt = newRouter(m.reg, m.eval, m.run, bus, log, m.IsEnabled, cfg.PoolSize())
	return m
}

// APIs exposes the manager's DynamicApiRegistry so callers can register
// command handlers for programs they add.
func (m *Manager) APIs() *apiregistry.Registry { return m.apis }

// IsRunning reports the engine-running flag (distinct from engine-Enabled):
// StopAll sets it false exactly once.
func (m *Manager) IsRunning() bool { return m.engineRunning.Load() }

// IsEnabled reports the engine-wide Enabled flag: false suppresses body
// dispatch in post-change routing and tick evaluation, but registrations
// still succeed.
func (m *Manager) IsEnabled() bool { return m.engineEnabled.Load() }

// SetEnabled flips the engine-wide Enabled flag.
func (m *Manager) SetEnabled(v bool) { m.engineEnabled.Store(v) }

// Add appends program to the registry, publishes its initial Idle status,
// and — if the program is enabled — starts its tick scheduler.
func (m *Manager) Add(p *program.Record) {
	m.reg.Add(p)
	m.run.publishStatus(p, program.StatusIdle)
	if p.Enabled() {
		m.startScheduler(p)
	}
}

// Remove disables p, stops its body and scheduler, removes it from the
// registry, and best-effort deletes its compiled artifacts. All failures
// from the underlying stop/delete calls are swallowed by design (§4.1).
func (m *Manager) Remove(p *program.Record) {
	p.SetEnabled(false)
	m.stopScheduler(p.Address)
	p.StopBody()
	m.reg.Remove(p.Address)

	if m.artifactRoot != "" {
		paths := program.Artifacts(m.artifactRoot, p.Address)
		_ = os.Remove(paths.Compiled)
		_ = os.RemoveAll(paths.Arduino)
	}
}

// GeneratePid returns 1 + the highest existing Address, floored at the
// configured address floor (PID law, §8 invariant 5).
func (m *Manager) GeneratePid() int {
	floor := program.USER_SPACE_BASE
	if m.cfg != nil {
		floor = m.cfg.AddressFloor()
	}
	next := m.reg.MaxAddress() + 1
	if next < floor {
		next = floor
	}
	return next
}

// StopAll flips engine-running to false, stops every program's tick
// scheduler, and requests every active body to stop.
func (m *Manager) StopAll() {
	m.engineRunning.Store(false)
	for _, p := range m.reg.Snapshot() {
		m.stopScheduler(p.Address)
		p.StopBody()
	}
}

// Deliver routes one inbound PropertyChange through the event router
// (§4.5), running the pre-change stage on the caller's goroutine.
func (m *Manager) Deliver(change modulebus.PropertyChange) {
	m.rt.Deliver(change)
}

// SetProgramEnabled toggles a program's Enabled flag and starts or stops
// its tick scheduler to match, matching §3's "toggling it is observable
// and drives scheduler start/stop".
func (m *Manager) SetProgramEnabled(p *program.Record, enabled bool) {
	p.SetEnabled(enabled)
	if enabled {
		m.startScheduler(p)
	} else {
		m.stopScheduler(p.Address)
	}
}

func (m *Manager) startScheduler(p *program.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.schedulers[p.Address]; exists {
		return
	}
	s := newScheduler(p, m.eval, m.run, m.log, m.IsRunning, m.IsEnabled)
	m.schedulers[p.Address] = s
	s.start()
}

func (m *Manager) stopScheduler(address int) {
	m.mu.Lock()
	s, exists := m.schedulers[address]
	if exists {
		delete(m.schedulers, address)
	}
	m.mu.Unlock()
	if !exists {
		return
	}
	joinMs := 1000
	if m.cfg != nil {
		joinMs = m.cfg.StopJoinMs()
	}
	s.stop(joinMs)
}
