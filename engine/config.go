package engine

import (
	"github.com/happy-sdk/happy/pkg/options"
)

// Config is the engine-wide typed configuration surface: worker pool size
// for post-change dispatch, the tick-stop join deadline, and the address
// floor programs are allocated above. Grounded on sdk/addon/manager.go's
// per-addon options.New(slug, specs) use, generalized to one options set
// for the whole engine rather than one per addon.
type Config struct {
	opts *options.Options
}

// NewConfig seals a Config with the given overrides applied over defaults.
// Accepted keys: "engine.pool_size" (int, default 8), "engine.address_floor"
// (int, default program.USER_SPACE_BASE), "engine.stop_join_ms" (int,
// default 1000).
func NewConfig(overrides map[string]any) (*Config, error) {
	specs := []options.Spec{
		options.NewOption("engine.pool_size", 8, "post-change worker pool size", options.KindConfig, nil),
		options.NewOption("engine.address_floor", 1000, "lowest Address GeneratePid may allocate", options.KindConfig, nil),
		options.NewOption("engine.stop_join_ms", 1000, "scheduler stop join deadline in milliseconds", options.KindConfig, nil),
	}
	opts, err := options.New("automation.engine", specs)
	if err != nil {
		return nil, err
	}
	for k, v := range overrides {
		if err := opts.Set(k, v); err != nil {
			return nil, err
		}
	}
	if err := opts.Seal(); err != nil {
		return nil, err
	}
	return &Config{opts: opts}, nil
}

func (c *Config) PoolSize() int     { return c.opts.Get("engine.pool_size").Int() }
func (c *Config) AddressFloor() int { return c.opts.Get("engine.address_floor").Int() }
func (c *Config) StopJoinMs() int   { return c.opts.Get("engine.stop_join_ms").Int() }
