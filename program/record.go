// Package program holds the in-memory representation of one automation
// program: its identity, trigger configuration, and last-known status.
package program

import (
	"fmt"
	"sync"
	"time"

	"github.com/happy-sdk/happy/pkg/strings/slug"
	"github.com/hearthkit/automation/modulebus"
)

// USER_SPACE_BASE is the lowest Address a user-authored program may occupy.
// Addresses below it are reserved.
const USER_SPACE_BASE = 1000

// ConditionType selects how a program's trigger condition is turned into a
// run decision by the condition evaluator.
type ConditionType uint8

const (
	// OnTrue runs whenever the raw condition evaluates true.
	OnTrue ConditionType = iota
	// OnFalse runs whenever the raw condition evaluates false.
	OnFalse
	// OnSwitchTrue runs only on a false->true transition (rising edge).
	OnSwitchTrue
	// OnSwitchFalse runs only on a true->false transition (falling edge).
	OnSwitchFalse
	// Once behaves like OnTrue but disables the program the first time it fires.
	Once
)

func (c ConditionType) String() string {
	switch c {
	case OnTrue:
		return "OnTrue"
	case OnFalse:
		return "OnFalse"
	case OnSwitchTrue:
		return "OnSwitchTrue"
	case OnSwitchFalse:
		return "OnSwitchFalse"
	case Once:
		return "Once"
	default:
		return "Unknown"
	}
}

// Status is the set of values a program's ProgramStatus published property
// may take.
type Status string

const (
	StatusIdle        Status = "Idle"
	StatusRunning     Status = "Running"
	StatusInterrupted Status = "Interrupted"
	StatusEnabled     Status = "Enabled"
	StatusDisabled    Status = "Disabled"
)

// CodeBlock names which half of a program faulted.
type CodeBlock string

const (
	CodeBlockCondition CodeBlock = "TC"
	CodeBlockBody      CodeBlock = "CR"
)

// Error is one serialized fault produced by compiling or running a program.
type Error struct {
	Line      int
	Column    int
	Message   string
	Number    int
	CodeBlock CodeBlock
	At        time.Time
}

// Handles are opaque references a ScriptHost hands back after compiling a
// program's condition and body. The manager never inspects them, only
// threads them back into later ScriptHost calls.
type Handles struct {
	Condition any
	Body      any
}

// Hooks are the optional per-program callbacks the router invokes around a
// module property change. A nil hook is simply skipped. The hook receives
// the parameter by pointer so it may mutate Value in place; the router
// treats that mutation as terminal for the current propagation.
type Hooks struct {
	PreChange  func(moduleAddr string, param *modulebus.Parameter) (cont bool)
	PostChange func(moduleAddr string, param *modulebus.Parameter) (cont bool)
}

// Record is one program's full in-memory state. All mutation goes through
// its methods so Running/LastConditionResult/ScriptErrors stay consistent
// with OperationLock.
type Record struct {
	Address int
	Name    string
	Domain  string
	Options string

	Handles Handles
	Hooks   Hooks

	// OperationLock serializes condition evaluation and body entry for this
	// program; it does not cover the body's own runtime.
	OperationLock sync.Mutex

	mu                  sync.RWMutex
	enabled             bool
	conditionType       ConditionType
	lastConditionResult bool
	running             bool
	triggerTime         time.Time
	status              Status
	scriptErrors        []Error
	bodyStop            func()
}

// New constructs a Record, validating Name and Domain the way a registrant
// identifier is validated before admission elsewhere in this stack.
func New(address int, name, domain string, ct ConditionType) (*Record, error) {
	if address < USER_SPACE_BASE {
		return nil, fmt.Errorf("program: address %d is below USER_SPACE_BASE (%d)", address, USER_SPACE_BASE)
	}
	if !slug.IsValid(name) {
		return nil, fmt.Errorf("program: invalid name %q", name)
	}
	if !slug.IsValid(domain) {
		return nil, fmt.Errorf("program: invalid domain %q", domain)
	}
	return &Record{
		Address:       address,
		Name:          name,
		Domain:        domain,
		conditionType: ct,
		status:        StatusIdle,
	}, nil
}

func (r *Record) ConditionType() ConditionType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conditionType
}

func (r *Record) Enabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// SetEnabled is how the manager, a fault, or a user toggles the program's
// enable flag. Disabling does not by itself stop a running body; callers
// that need that do it through the runner/scheduler.
func (r *Record) SetEnabled(v bool) {
	r.mu.Lock()
	r.enabled = v
	r.mu.Unlock()
}

func (r *Record) Running() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

func (r *Record) SetRunning(v bool) {
	r.mu.Lock()
	r.running = v
	r.mu.Unlock()
}

func (r *Record) LastConditionResult() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastConditionResult
}

func (r *Record) SetLastConditionResult(v bool) {
	r.mu.Lock()
	r.lastConditionResult = v
	r.mu.Unlock()
}

func (r *Record) TriggerTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.triggerTime
}

func (r *Record) SetTriggerTime(t time.Time) {
	r.mu.Lock()
	r.triggerTime = t
	r.mu.Unlock()
}

func (r *Record) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

func (r *Record) SetStatus(s Status) {
	r.mu.Lock()
	r.status = s
	r.mu.Unlock()
}

func (r *Record) ScriptErrors() []Error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Error, len(r.scriptErrors))
	copy(out, r.scriptErrors)
	return out
}

// AddScriptError appends one serialized fault record.
func (r *Record) AddScriptError(e Error) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	r.mu.Lock()
	r.scriptErrors = append(r.scriptErrors, e)
	r.mu.Unlock()
}

// SetBodyStop records how to interrupt the currently dispatched body
// worker, replacing whatever the previous run left behind. Passing nil
// just clears it once a run has finished on its own.
func (r *Record) SetBodyStop(stop func()) {
	r.mu.Lock()
	r.bodyStop = stop
	r.mu.Unlock()
}

// StopBody requests termination of the active body worker, if any, and
// reports whether one was found.
func (r *Record) StopBody() bool {
	r.mu.Lock()
	stop := r.bodyStop
	r.mu.Unlock()
	if stop == nil {
		return false
	}
	stop()
	return true
}
