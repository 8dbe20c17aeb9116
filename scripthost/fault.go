package scripthost

import (
	"errors"
	"fmt"
	"strings"
)

// Fault classifies an error coming back across the Host boundary into the
// closed set this stack acts on. Everything above this boundary switches on
// Fault; nothing re-inspects the underlying error.
type Fault uint8

const (
	// FaultNone means the call returned cleanly.
	FaultNone Fault = iota
	// FaultBenign is a reflective-dispatch wrapper with no user-visible
	// meaning: ignored, no disable, no publication.
	FaultBenign
	// FaultCondition is a user-visible fault during trigger evaluation.
	FaultCondition
	// FaultBody is a user-visible fault during body execution.
	FaultBody
)

var (
	// ErrBenignFault wraps a fault that carries no user-visible meaning
	// (a reflective-dispatch wrapper around the real, swallowed cause).
	ErrBenignFault = errors.New("scripthost: benign fault")
	// ErrConditionFault wraps a user-visible fault raised while evaluating
	// a trigger condition.
	ErrConditionFault = errors.New("scripthost: condition fault")
	// ErrBodyFault wraps a user-visible fault raised while running a body.
	ErrBodyFault = errors.New("scripthost: body fault")
)

// WrapCondition marks err as a condition-evaluation fault.
func WrapCondition(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrConditionFault, err)
}

// WrapBody marks err as a body-execution fault.
func WrapBody(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrBodyFault, err)
}

// WrapBenign marks err as a benign reflective-target fault.
func WrapBenign(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrBenignFault, err)
}

// Classify returns the Fault kind carried by err, or FaultNone for a nil
// error and FaultBody for an unmarked error (fail closed: an un-classified
// fault during body execution is treated as user-visible rather than
// silently swallowed).
func Classify(err error) Fault {
	switch {
	case err == nil:
		return FaultNone
	case errors.Is(err, ErrBenignFault):
		return FaultBenign
	case errors.Is(err, ErrConditionFault):
		return FaultCondition
	case errors.Is(err, ErrBodyFault):
		return FaultBody
	default:
		return FaultBody
	}
}

// Sanitize replaces newlines and carriage returns with spaces, the
// transform applied to every message before it is published as
// RuntimeError.
func Sanitize(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", " ")
	msg = strings.ReplaceAll(msg, "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	return msg
}

// RuntimeErrorMessage builds the published RuntimeError value for a fault
// of the given code block, sanitizing msg with Sanitize first.
func RuntimeErrorMessage(block string, msg string) string {
	return block + ": " + Sanitize(msg)
}

// Guard calls fn and recovers any panic into a FaultBody-classified error,
// so a misbehaving host implementation can never unwind into the router or
// scheduler goroutine that called it.
func Guard[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = WrapBody(fmt.Errorf("panic: %v", rec))
		}
	}()
	return fn()
}
