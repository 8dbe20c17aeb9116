// Package scripthost declares the contract the program manager consumes
// from whatever scripting-language runtime actually compiles and evaluates
// program code. No implementation lives here; the manager is exercised
// against test doubles of this interface.
package scripthost

import "github.com/hearthkit/automation/program"

// ConditionResult is the outcome of evaluating one program's trigger.
type ConditionResult struct {
	Value bool
	// Null mirrors the source contract's {value: bool | null, exception?}
	// shape: a host may decline to produce a value at all without that
	// being a fault.
	Null bool
}

// RunResult is the outcome of one body execution.
type RunResult struct {
	ReturnValue any
}

// Host is the external scripting-language runtime. Compile, EvaluateCondition
// and Run may return a wrapped fault; callers classify it with Classify
// before deciding whether to auto-disable.
//
// The optional ModuleIsChangingHandler/ModuleChangedHandler callbacks named
// in the consumed contract are not part of this interface: per design note
// 9 ("dynamic dispatch of hooks... map to an optional handler pair per
// program held inside the ProgramRecord"), they are held on program.Record
// itself (program.Hooks) rather than looked up through the host on every
// event.
type Host interface {
	Compile(p *program.Record) ([]program.Error, error)
	EvaluateCondition(p *program.Record) (ConditionResult, error)
	Run(p *program.Record, options string) (RunResult, error)
	// Stop requests termination of any active body worker for p. It does
	// not block until the worker has actually exited.
	Stop(p *program.Record)
}
