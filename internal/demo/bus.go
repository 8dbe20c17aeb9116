// Package demo holds minimal in-memory ScriptHost and ModuleBus
// implementations used to exercise the engine without a real scripting
// runtime or hub-wide module bus present, and to back cmd/automationd's
// demo wiring.
package demo

import (
	"log/slog"
	"sync"

	"github.com/happy-sdk/happy/pkg/logging"
	"github.com/happy-sdk/happy/pkg/vars"
	"github.com/hearthkit/automation/modulebus"
)

// MemoryBus is a modulebus.Bus that logs every published event and keeps
// the last value set on each program's mirror module in memory.
type MemoryBus struct {
	log logging.Logger

	mu      sync.Mutex
	mirrors map[string]map[string]vars.Value
}

// NewMemoryBus returns a MemoryBus that logs through log.
func NewMemoryBus(log logging.Logger) *MemoryBus {
	return &MemoryBus{log: log, mirrors: make(map[string]map[string]vars.Value)}
}

func (b *MemoryBus) RaiseEvent(address int, domain string, moduleAddress string, source string, property modulebus.PublishedProperty, value string) {
	if b.log != nil {
		b.log.Info("module bus event",
			slog.Int("address", address),
			slog.String("domain", domain),
			slog.String("module", moduleAddress),
			slog.String("source", source),
			slog.String("property", string(property)),
			slog.String("value", value),
		)
	}
}

func (b *MemoryBus) SetMirrorParameter(address int, domain string, name string, value vars.Value) {
	key := modulebus.MirrorAddress(domain, address)
	b.mu.Lock()
	defer b.mu.Unlock()
	params, ok := b.mirrors[key]
	if !ok {
		params = make(map[string]vars.Value)
		b.mirrors[key] = params
	}
	params[name] = value
}

// MirrorParameter returns the last value SetMirrorParameter stored for
// name on the given mirror module, if any.
func (b *MemoryBus) MirrorParameter(domain string, address int, name string) (vars.Value, bool) {
	key := modulebus.MirrorAddress(domain, address)
	b.mu.Lock()
	defer b.mu.Unlock()
	params, ok := b.mirrors[key]
	if !ok {
		return vars.Value{}, false
	}
	v, ok := params[name]
	return v, ok
}
