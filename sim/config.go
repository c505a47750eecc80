package sim

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every Config.Validate failure.
var ErrInvalidConfig = errors.New("invalid simulation config")

// TurnaroundMode selects how a seated customer's turnaround is measured.
type TurnaroundMode string

const (
	// TurnaroundElapsed measures seating tick minus arrival tick.
	TurnaroundElapsed TurnaroundMode = "elapsed"
	// TurnaroundAbsolute records the tick at seating, matching the legacy
	// ticket seller report.
	TurnaroundAbsolute TurnaroundMode = "absolute"
)

// IsValidTurnaroundMode returns true if mode names a known turnaround measurement.
func IsValidTurnaroundMode(mode string) bool {
	switch TurnaroundMode(mode) {
	case TurnaroundElapsed, TurnaroundAbsolute:
		return true
	}
	return false
}

// TickRange is an inclusive [Min, Max] service duration in ticks.
type TickRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// DefaultServiceTicks are the per-class service duration ranges.
var DefaultServiceTicks = map[Class]TickRange{
	High:   {Min: 1, Max: 2},
	Medium: {Min: 2, Max: 4},
	Low:    {Min: 4, Max: 7},
}

// Config groups every run parameter of a sale simulation.
type Config struct {
	HighAgents        int                 // agents selling High-priority seats
	MediumAgents      int                 // agents selling Medium-priority seats
	LowAgents         int                 // agents selling Low-priority seats
	Rows              int                 // seat grid rows (must be > 0)
	Cols              int                 // seat grid columns (must be > 0)
	Duration          int                 // sale length in ticks (must be > 0)
	CustomersPerAgent int                 // arrivals generated for each agent (>= 0)
	Seed              int64               // master seed for all RNG partitions
	Turnaround        TurnaroundMode      // turnaround measurement, "" means elapsed
	Deterministic     bool                // order seat commits by agent slot within a tick
	ServiceTicks      map[Class]TickRange // per-class overrides of DefaultServiceTicks (optional)
}

// DefaultConfig returns the configuration of the classic concert sale:
// 1 High, 3 Medium and 6 Low agents, a 10x10 hall and a 60 tick sale.
func DefaultConfig() Config {
	return Config{
		HighAgents:        1,
		MediumAgents:      3,
		LowAgents:         6,
		Rows:              10,
		Cols:              10,
		Duration:          60,
		CustomersPerAgent: 10,
		Seed:              42,
		Turnaround:        TurnaroundElapsed,
		Deterministic:     true,
	}
}

// TotalAgents is the sum of all class sizes.
func (c Config) TotalAgents() int {
	return c.HighAgents + c.MediumAgents + c.LowAgents
}

// AgentsOf returns the configured number of agents for class.
func (c Config) AgentsOf(class Class) int {
	switch class {
	case High:
		return c.HighAgents
	case Medium:
		return c.MediumAgents
	case Low:
		return c.LowAgents
	}
	return 0
}

// ServiceRange returns the service duration range for class, honoring overrides.
func (c Config) ServiceRange(class Class) TickRange {
	if r, ok := c.ServiceTicks[class]; ok {
		return r
	}
	return DefaultServiceTicks[class]
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.HighAgents < 0 || c.MediumAgents < 0 || c.LowAgents < 0:
		return fmt.Errorf("%w: agent counts must be >= 0 (H=%d M=%d L=%d)",
			ErrInvalidConfig, c.HighAgents, c.MediumAgents, c.LowAgents)
	case c.TotalAgents() == 0:
		return fmt.Errorf("%w: at least one agent is required", ErrInvalidConfig)
	case c.Rows <= 0 || c.Cols <= 0:
		return fmt.Errorf("%w: seat grid must be at least 1x1, got %dx%d", ErrInvalidConfig, c.Rows, c.Cols)
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration must be > 0, got %d", ErrInvalidConfig, c.Duration)
	case c.CustomersPerAgent < 0:
		return fmt.Errorf("%w: customers per agent must be >= 0, got %d", ErrInvalidConfig, c.CustomersPerAgent)
	case c.Turnaround != "" && !IsValidTurnaroundMode(string(c.Turnaround)):
		return fmt.Errorf("%w: unknown turnaround mode %q", ErrInvalidConfig, c.Turnaround)
	}
	for class, r := range c.ServiceTicks {
		if !class.Valid() {
			return fmt.Errorf("%w: service ticks for unknown class %q", ErrInvalidConfig, string(class))
		}
		if r.Min < 0 || r.Max < r.Min {
			return fmt.Errorf("%w: service ticks for %s must satisfy 0 <= min <= max, got [%d,%d]",
				ErrInvalidConfig, class, r.Min, r.Max)
		}
	}
	return nil
}
