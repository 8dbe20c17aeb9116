package demo

import (
	"sync"

	"github.com/hearthkit/automation/program"
	"github.com/hearthkit/automation/scripthost"
)

// ConditionFunc evaluates one program's trigger condition.
type ConditionFunc func() (bool, error)

// BodyFunc runs one program's action body. stop is closed when the runner
// requests termination; a long-running body should select on it.
type BodyFunc func(options string, stop <-chan struct{}) (any, error)

// ScriptedHost is a scripthost.Host backed by plain Go closures, registered
// per program Address. It is meant for tests and for cmd/automationd's
// demo wiring, not as a real scripting runtime.
type ScriptedHost struct {
	mu         sync.Mutex
	conditions map[int]ConditionFunc
	bodies     map[int]BodyFunc
	stops      map[int]chan struct{}
}

// NewScriptedHost returns an empty ScriptedHost.
func NewScriptedHost() *ScriptedHost {
	return &ScriptedHost{
		conditions: make(map[int]ConditionFunc),
		bodies:     make(map[int]BodyFunc),
		stops:      make(map[int]chan struct{}),
	}
}

// SetCondition registers the trigger evaluator for address.
func (h *ScriptedHost) SetCondition(address int, fn ConditionFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conditions[address] = fn
}

// SetBody registers the action body for address.
func (h *ScriptedHost) SetBody(address int, fn BodyFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bodies[address] = fn
}

func (h *ScriptedHost) Compile(p *program.Record) ([]program.Error, error) {
	return nil, nil
}

func (h *ScriptedHost) EvaluateCondition(p *program.Record) (scripthost.ConditionResult, error) {
	h.mu.Lock()
	fn, ok := h.conditions[p.Address]
	h.mu.Unlock()
	if !ok {
		return scripthost.ConditionResult{Null: true}, nil
	}
	v, err := fn()
	if err != nil {
		return scripthost.ConditionResult{}, scripthost.WrapCondition(err)
	}
	return scripthost.ConditionResult{Value: v}, nil
}

func (h *ScriptedHost) Run(p *program.Record, options string) (scripthost.RunResult, error) {
	h.mu.Lock()
	fn, ok := h.bodies[p.Address]
	stop := make(chan struct{})
	h.stops[p.Address] = stop
	h.mu.Unlock()
	if !ok {
		return scripthost.RunResult{}, nil
	}
	rv, err := fn(options, stop)
	if err != nil {
		return scripthost.RunResult{}, scripthost.WrapBody(err)
	}
	return scripthost.RunResult{ReturnValue: rv}, nil
}

func (h *ScriptedHost) Stop(p *program.Record) {
	h.mu.Lock()
	stop, ok := h.stops[p.Address]
	delete(h.stops, p.Address)
	h.mu.Unlock()
	if ok {
		select {
		case <-stop:
		default:
			close(stop)
		}
	}
}
