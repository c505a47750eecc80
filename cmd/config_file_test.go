package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/ticket-sim/ticket-sim/sim"
)

func TestLoadFileConfig_FullFile_AppliesEveryKey(t *testing.T) {
	// GIVEN a config file setting every section
	path := writeFile(t, "sale.yaml", `
agents:
  high: 2
  medium: 1
  low: 0
hall:
  rows: 3
  cols: 5
duration: 25
customers_per_agent: 4
seed: 99
turnaround: absolute
deterministic: false
service_ticks:
  H: {min: 1, max: 1}
  L: {min: 2, max: 3}
trace_level: sales
`)

	// WHEN it is loaded and applied over the defaults
	fc, err := loadFileConfig(path)
	require.NoError(t, err)
	cfg := sim.DefaultConfig()
	tl, err := fc.apply(&cfg)

	// THEN every field comes from the file
	require.NoError(t, err)
	assert.Equal(t, "sales", tl)
	assert.Equal(t, 2, cfg.HighAgents)
	assert.Equal(t, 1, cfg.MediumAgents)
	assert.Equal(t, 0, cfg.LowAgents)
	assert.Equal(t, 3, cfg.Rows)
	assert.Equal(t, 5, cfg.Cols)
	assert.Equal(t, 25, cfg.Duration)
	assert.Equal(t, 4, cfg.CustomersPerAgent)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, sim.TurnaroundAbsolute, cfg.Turnaround)
	assert.False(t, cfg.Deterministic)
	assert.Equal(t, sim.TickRange{Min: 1, Max: 1}, cfg.ServiceRange(sim.High))
	assert.Equal(t, sim.DefaultServiceTicks[sim.Medium], cfg.ServiceRange(sim.Medium))
	assert.Equal(t, sim.TickRange{Min: 2, Max: 3}, cfg.ServiceRange(sim.Low))
	require.NoError(t, cfg.Validate())
}

func TestLoadFileConfig_PartialFile_KeepsDefaults(t *testing.T) {
	// GIVEN a file that only sets the low agent count
	path := writeFile(t, "sale.yaml", "agents:\n  low: 2\n")

	fc, err := loadFileConfig(path)
	require.NoError(t, err)
	cfg := sim.DefaultConfig()
	tl, err := fc.apply(&cfg)

	// THEN only that field changes
	require.NoError(t, err)
	assert.Empty(t, tl)
	want := sim.DefaultConfig()
	want.LowAgents = 2
	assert.Equal(t, want, cfg)
}

func TestLoadFileConfig_ZeroValue_IsStillApplied(t *testing.T) {
	// GIVEN a file explicitly setting high agents to zero
	path := writeFile(t, "sale.yaml", "agents:\n  high: 0\n")

	fc, err := loadFileConfig(path)
	require.NoError(t, err)
	cfg := sim.DefaultConfig()
	_, err = fc.apply(&cfg)

	// THEN zero overrides the default of one
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.HighAgents)
}

func TestLoadFileConfig_UnknownKey_Rejected(t *testing.T) {
	// GIVEN a file with a misspelled key
	path := writeFile(t, "sale.yaml", "hall:\n  row: 4\n")

	// WHEN it is loaded
	_, err := loadFileConfig(path)

	// THEN strict parsing reports the typo
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row")
}

func TestFileConfig_UnknownServiceClass_ReturnsError(t *testing.T) {
	path := writeFile(t, "sale.yaml", "service_ticks:\n  X: {min: 1, max: 2}\n")

	fc, err := loadFileConfig(path)
	require.NoError(t, err)
	cfg := sim.DefaultConfig()
	_, err = fc.apply(&cfg)

	assert.ErrorContains(t, err, `unknown class "X"`)
}
