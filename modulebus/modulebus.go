// Package modulebus declares the contract the program manager consumes
// from the hub-wide module registry and event bus: inbound property
// changes and outbound published-property events. No transport is
// implemented here.
package modulebus

import (
	"strconv"

	"github.com/happy-sdk/happy/pkg/vars"
)

// Parameter is one module property carried on a PropertyChange. Value is a
// vars.Value rather than a bare any so "did the pre-change hook mutate the
// value" is a real kind-aware comparison, not a naive interface ==.
type Parameter struct {
	Name  string
	Value vars.Value
}

// PropertyChange is what the bus delivers to the router for one property
// mutation on a module.
//
// Sender carries two representations of "is this the program's own echo?":
// SenderAddress (an Address) is what pre-change compares against, SenderID
// (the sending program's *program.Record, compared by pointer identity; nil
// for a change no program sent) is what post-change compares against. Both must be supplied consistently
// by the bus implementation — this mismatch is deliberate, see DESIGN.md.
type PropertyChange struct {
	SenderAddress int
	SenderID      any
	Module        string
	Parameter     Parameter
}

// Source is the fixed value RaiseEvent's "source" field carries for every
// event this stack publishes.
const Source = "Automation Program"

// PublishedProperty names the observable properties the manager publishes
// through RaiseEvent.
type PublishedProperty string

const (
	PropProgramStatus PublishedProperty = "ProgramStatus"
	PropRuntimeError  PublishedProperty = "RuntimeError"
)

// Bus is the hub-wide module registry and event bus, consumed by the
// manager to publish program lifecycle and fault events and to set
// parameters on a program's mirror module.
type Bus interface {
	// RaiseEvent publishes one property value on behalf of address/domain.
	RaiseEvent(address int, domain string, moduleAddress string, source string, property PublishedProperty, value string)
	// SetMirrorParameter sets a parameter on the program's own mirror
	// module (domain/address), the side effect named alongside RaiseEvent.
	SetMirrorParameter(address int, domain string, name string, value vars.Value)
}

// MirrorAddress is the modulebus-side identity of a program as a module:
// domain/address. It replaces a networking/address type this stack does
// not depend on (see DESIGN.md) with the plain string form the bus
// contract already names.
func MirrorAddress(domain string, address int) string {
	return domain + "/" + strconv.Itoa(address)
}
