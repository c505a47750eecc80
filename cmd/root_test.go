package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/ticket-sim/ticket-sim/sim"
	"github.com/ticket-sim/ticket-sim/sim/trace"
)

var envNames = []string{
	"HIGH", "MEDIUM", "LOW", "ROWS", "COLS", "DURATION", "CUSTOMERS",
	"SEED", "TURNAROUND", "DETERMINISTIC", "TRACE_LEVEL",
}

// resetRunFlags restores every run flag to its default, clears Changed, and
// isolates the test from the caller's TICKETSIM_* environment and .env file.
func resetRunFlags(t *testing.T) *pflag.FlagSet {
	t.Helper()
	flags := runCmd.Flags()
	reset := func() {
		flags.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
		configPath = ""
	}
	reset()
	t.Cleanup(reset)

	for _, name := range envNames {
		t.Setenv(EnvPrefix+name, "")
	}
	envFile = filepath.Join(t.TempDir(), "missing.env")
	return flags
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveConfig_NoSources_ReturnsDefaults(t *testing.T) {
	// GIVEN no config file, no environment and no changed flags
	flags := resetRunFlags(t)

	// WHEN the config is resolved
	cfg, tl, err := resolveConfig(flags, nil)

	// THEN it equals the classic sale defaults with tracing off
	require.NoError(t, err)
	assert.Equal(t, sim.DefaultConfig(), cfg)
	assert.Equal(t, sim.TraceLevel(trace.TraceLevelNone), tl)
}

func TestResolveConfig_PositionalArg_SetsCustomersPerAgent(t *testing.T) {
	flags := resetRunFlags(t)

	cfg, _, err := resolveConfig(flags, []string{"15"})

	require.NoError(t, err)
	assert.Equal(t, 15, cfg.CustomersPerAgent)
}

func TestResolveConfig_NonNumericArg_ReturnsError(t *testing.T) {
	flags := resetRunFlags(t)

	_, _, err := resolveConfig(flags, []string{"lots"})

	assert.ErrorContains(t, err, "customers-per-agent")
}

func TestResolveConfig_NegativeCustomers_FailsValidation(t *testing.T) {
	flags := resetRunFlags(t)

	_, _, err := resolveConfig(flags, []string{"-1"})

	assert.ErrorIs(t, err, sim.ErrInvalidConfig)
}

func TestResolveConfig_ChangedFlags_OverrideDefaults(t *testing.T) {
	// GIVEN flags explicitly set on the command line
	flags := resetRunFlags(t)
	require.NoError(t, flags.Set("rows", "2"))
	require.NoError(t, flags.Set("cols", "3"))
	require.NoError(t, flags.Set("high", "0"))
	require.NoError(t, flags.Set("seed", "7"))
	require.NoError(t, flags.Set("turnaround", "absolute"))
	require.NoError(t, flags.Set("deterministic", "false"))
	require.NoError(t, flags.Set("trace-level", "sales"))

	// WHEN the config is resolved
	cfg, tl, err := resolveConfig(flags, nil)

	// THEN each changed flag wins and untouched fields keep their defaults
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Rows)
	assert.Equal(t, 3, cfg.Cols)
	assert.Equal(t, 0, cfg.HighAgents)
	assert.Equal(t, 3, cfg.MediumAgents)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, sim.TurnaroundAbsolute, cfg.Turnaround)
	assert.False(t, cfg.Deterministic)
	assert.Equal(t, sim.TraceLevel(trace.TraceLevelSales), tl)
}

func TestResolveConfig_Layering_FlagBeatsEnvBeatsFile(t *testing.T) {
	// GIVEN a YAML file, an environment override and a changed flag
	flags := resetRunFlags(t)
	configPath = writeFile(t, "sale.yaml", `
hall:
  rows: 4
  cols: 4
duration: 30
seed: 1
`)
	t.Setenv(EnvPrefix+"DURATION", "20")
	t.Setenv(EnvPrefix+"SEED", "2")
	require.NoError(t, flags.Set("seed", "3"))

	// WHEN the config is resolved
	cfg, _, err := resolveConfig(flags, nil)

	// THEN the file sets the hall, the env beats the file's duration,
	// and the flag beats both for the seed
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Rows)
	assert.Equal(t, 4, cfg.Cols)
	assert.Equal(t, 20, cfg.Duration)
	assert.Equal(t, int64(3), cfg.Seed)
}

func TestResolveConfig_UnsetFlag_DoesNotClobberFile(t *testing.T) {
	// GIVEN a file that sets rows while --rows keeps its default value
	flags := resetRunFlags(t)
	configPath = writeFile(t, "sale.yaml", "hall:\n  rows: 6\n")

	cfg, _, err := resolveConfig(flags, nil)

	// THEN the default flag value does not overwrite the file
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Rows)
}

func TestResolveConfig_MissingConfigFile_ReturnsError(t *testing.T) {
	flags := resetRunFlags(t)
	configPath = filepath.Join(t.TempDir(), "absent.yaml")

	_, _, err := resolveConfig(flags, nil)

	assert.ErrorContains(t, err, "reading config file")
}

func TestResolveConfig_UnknownTraceLevel_ReturnsError(t *testing.T) {
	flags := resetRunFlags(t)
	require.NoError(t, flags.Set("trace-level", "verbose"))

	_, _, err := resolveConfig(flags, nil)

	assert.ErrorContains(t, err, "unknown trace level")
}

func TestResolveConfig_ExplicitMissingEnvFile_ReturnsError(t *testing.T) {
	// GIVEN --env-file naming a file that does not exist
	flags := resetRunFlags(t)
	require.NoError(t, flags.Set("env-file", filepath.Join(t.TempDir(), "nope.env")))

	_, _, err := resolveConfig(flags, nil)

	// THEN the explicit request is honored with an error
	assert.ErrorContains(t, err, "reading env file")
}

func TestRunCmd_RegisteredOnRoot(t *testing.T) {
	found, _, err := rootCmd.Find([]string{"run"})

	require.NoError(t, err)
	assert.Equal(t, runCmd, found)
	for _, name := range []string{"seed", "duration", "rows", "cols", "high", "medium", "low",
		"turnaround", "deterministic", "verbose", "log", "config", "env-file", "metrics-file", "trace-level"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), "flag --%s must be registered", name)
	}
}
