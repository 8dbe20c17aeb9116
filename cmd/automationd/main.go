// Command automationd is a thin runnable wiring of the program manager
// over the in-memory demo ScriptHost and ModuleBus, for local exercise.
// It is not the hub's CLI framework — see DESIGN.md for why that was not
// adapted here.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/happy-sdk/happy/pkg/logging"
	"github.com/hearthkit/automation/engine"
	"github.com/hearthkit/automation/internal/demo"
	"github.com/hearthkit/automation/internal/obs"
	"github.com/hearthkit/automation/program"
)

func main() {
	log := obs.New(os.Stderr, logging.LevelInfo)

	cfg, err := engine.NewConfig(nil)
	if err != nil {
		log.Error("config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	bus := demo.NewMemoryBus(log)
	host := demo.NewScriptedHost()
	mgr := engine.NewManager(host, bus, log, cfg, "")

	p, err := program.New(mgr.GeneratePid(), "porch-light", "lighting", program.OnSwitchTrue)
	if err != nil {
		log.Error("program", slog.String("err", err.Error()))
		os.Exit(1)
	}
	p.SetEnabled(true)

	var motionDetected bool
	host.SetCondition(p.Address, func() (bool, error) { return motionDetected, nil })
	host.SetBody(p.Address, func(options string, stop <-chan struct{}) (any, error) {
		log.Ok("turning on the porch light", slog.String("options", options))
		return nil, nil
	})

	mgr.Add(p)
	log.Info("automation program manager started", slog.Int("address", p.Address))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down")
	mgr.StopAll()
	time.Sleep(50 * time.Millisecond)
}
