package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	sim "github.com/ticket-sim/ticket-sim/sim"
)

// FileConfig mirrors a ticket-sim YAML file. Every field is optional; only
// keys present in the file override the defaults.
// All sections must be listed to satisfy KnownFields(true) strict parsing.
type FileConfig struct {
	Agents            *AgentCounts             `yaml:"agents"`
	Hall              *HallSize                `yaml:"hall"`
	Duration          *int                     `yaml:"duration"`
	CustomersPerAgent *int                     `yaml:"customers_per_agent"`
	Seed              *int64                   `yaml:"seed"`
	Turnaround        *string                  `yaml:"turnaround"`
	Deterministic     *bool                    `yaml:"deterministic"`
	ServiceTicks      map[string]sim.TickRange `yaml:"service_ticks"`
	TraceLevel        *string                  `yaml:"trace_level"`
}

// AgentCounts is the agents section.
type AgentCounts struct {
	High   *int `yaml:"high"`
	Medium *int `yaml:"medium"`
	Low    *int `yaml:"low"`
}

// HallSize is the hall section.
type HallSize struct {
	Rows *int `yaml:"rows"`
	Cols *int `yaml:"cols"`
}

// loadFileConfig parses path with strict field checking: typos must cause errors.
func loadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var fc FileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&fc); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &fc, nil
}

// apply overlays the keys present in fc onto cfg and returns the trace level
// if the file set one.
func (fc *FileConfig) apply(cfg *sim.Config) (traceLevel string, err error) {
	if a := fc.Agents; a != nil {
		setInt(&cfg.HighAgents, a.High)
		setInt(&cfg.MediumAgents, a.Medium)
		setInt(&cfg.LowAgents, a.Low)
	}
	if h := fc.Hall; h != nil {
		setInt(&cfg.Rows, h.Rows)
		setInt(&cfg.Cols, h.Cols)
	}
	setInt(&cfg.Duration, fc.Duration)
	setInt(&cfg.CustomersPerAgent, fc.CustomersPerAgent)
	if fc.Seed != nil {
		cfg.Seed = *fc.Seed
	}
	if fc.Turnaround != nil {
		cfg.Turnaround = sim.TurnaroundMode(*fc.Turnaround)
	}
	if fc.Deterministic != nil {
		cfg.Deterministic = *fc.Deterministic
	}
	if len(fc.ServiceTicks) > 0 {
		ticks := make(map[sim.Class]sim.TickRange, len(fc.ServiceTicks))
		for name, r := range fc.ServiceTicks {
			class := sim.Class(name)
			if !class.Valid() {
				return "", fmt.Errorf("service_ticks: unknown class %q (want H, M or L)", name)
			}
			ticks[class] = r
		}
		cfg.ServiceTicks = ticks
	}
	if fc.TraceLevel != nil {
		traceLevel = *fc.TraceLevel
	}
	return traceLevel, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
