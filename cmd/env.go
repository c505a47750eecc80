package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	sim "github.com/ticket-sim/ticket-sim/sim"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TICKETSIM_"

// envLookup resolves one TICKETSIM_* key. A non-empty process environment
// value wins over the dotenv file; an empty one falls through to the file.
type envLookup struct {
	file map[string]string
}

// newEnvLookup reads envFile if it exists. A missing default file is not an
// error; a missing file the user named explicitly is.
func newEnvLookup(envFile string, explicit bool) (*envLookup, error) {
	l := &envLookup{file: map[string]string{}}
	if envFile == "" {
		return l, nil
	}
	vars, err := godotenv.Read(envFile)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			logrus.Debugf("no env file at %s", envFile)
			return l, nil
		}
		return nil, fmt.Errorf("reading env file: %w", err)
	}
	l.file = vars
	return l, nil
}

func (l *envLookup) get(name string) (string, bool) {
	key := EnvPrefix + name
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v, true
	}
	v, ok := l.file[key]
	return v, ok
}

func (l *envLookup) intVar(name string, dst *int) error {
	v, ok := l.get(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
	}
	*dst = n
	return nil
}

// apply overlays every TICKETSIM_* value onto cfg and returns the trace level
// if one was set.
func (l *envLookup) apply(cfg *sim.Config) (traceLevel string, err error) {
	ints := []struct {
		name string
		dst  *int
	}{
		{"HIGH", &cfg.HighAgents},
		{"MEDIUM", &cfg.MediumAgents},
		{"LOW", &cfg.LowAgents},
		{"ROWS", &cfg.Rows},
		{"COLS", &cfg.Cols},
		{"DURATION", &cfg.Duration},
		{"CUSTOMERS", &cfg.CustomersPerAgent},
	}
	for _, iv := range ints {
		if err := l.intVar(iv.name, iv.dst); err != nil {
			return "", err
		}
	}

	if v, ok := l.get("SEED"); ok && v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return "", fmt.Errorf("%sSEED: %w", EnvPrefix, err)
		}
		cfg.Seed = seed
	}
	if v, ok := l.get("TURNAROUND"); ok && v != "" {
		cfg.Turnaround = sim.TurnaroundMode(v)
	}
	if v, ok := l.get("DETERMINISTIC"); ok && v != "" {
		det, err := strconv.ParseBool(v)
		if err != nil {
			return "", fmt.Errorf("%sDETERMINISTIC: %w", EnvPrefix, err)
		}
		cfg.Deterministic = det
	}
	if v, ok := l.get("TRACE_LEVEL"); ok {
		traceLevel = v
	}
	return traceLevel, nil
}
