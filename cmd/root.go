package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	sim "github.com/ticket-sim/ticket-sim/sim"
	"github.com/ticket-sim/ticket-sim/sim/trace"
)

var (
	// Sale parameters
	seed          int64  // Master seed for arrivals and service durations
	duration      int    // Sale length in ticks
	rows          int    // Seat grid rows
	cols          int    // Seat grid columns
	highAgents    int    // Number of High-priority agents
	mediumAgents  int    // Number of Medium-priority agents
	lowAgents     int    // Number of Low-priority agents
	turnaround    string // Turnaround measurement (elapsed, absolute)
	deterministic bool   // Commit seats in agent order within a tick

	// Output and configuration sources
	logLevel    string // Log verbosity level
	verbose     bool   // Per-tick diagnostics, forces debug level
	configPath  string // YAML config file
	envFile     string // dotenv file with TICKETSIM_* overrides
	metricsFile string // Prometheus text exposition written at exit
	traceLevel  string // Sale trace verbosity (none, sales)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "ticket-sim",
	Short: "Discrete-time simulator for a concurrent concert ticket sale",
}

// runCmd executes one ticket sale
var runCmd = &cobra.Command{
	Use:   "run [customers-per-agent]",
	Short: "Run a ticket sale simulation",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		if verbose {
			level = logrus.DebugLevel
		}
		logrus.SetLevel(level)

		cfg, tl, err := resolveConfig(cmd.Flags(), args)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		logrus.Infof("Sale config: agents H=%d M=%d L=%d, hall %dx%d, %d ticks, %d customers/agent, seed %d",
			cfg.HighAgents, cfg.MediumAgents, cfg.LowAgents, cfg.Rows, cfg.Cols, cfg.Duration, cfg.CustomersPerAgent, cfg.Seed)

		reg := prometheus.NewRegistry()
		s, err := sim.NewSimulator(cfg, tl, os.Stdout, reg)
		if err != nil {
			logrus.Fatalf("Failed to create simulator: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		res, err := s.Run(ctx)
		if err != nil {
			logrus.Fatalf("Sale failed: %v", err)
		}
		if res.Canceled {
			logrus.Warnf("Sale interrupted at tick %d of %d", res.EndTick, cfg.Duration)
		}

		fmt.Println()
		res.Print(os.Stdout)
		if res.Trace != nil {
			printTraceSummary(os.Stdout, trace.Summarize(res.Trace))
		}

		if metricsFile != "" {
			if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
				logrus.Fatalf("Failed to write metrics file: %v", err)
			}
			logrus.Infof("Metrics written to: %s", metricsFile)
		}
	},
}

// resolveConfig layers defaults < YAML file < env file and TICKETSIM_*
// environment < explicitly changed flags < positional customers-per-agent.
func resolveConfig(flags *pflag.FlagSet, args []string) (sim.Config, sim.TraceLevel, error) {
	cfg := sim.DefaultConfig()
	tl := traceLevel

	if configPath != "" {
		fc, err := loadFileConfig(configPath)
		if err != nil {
			return cfg, "", err
		}
		fileTrace, err := fc.apply(&cfg)
		if err != nil {
			return cfg, "", err
		}
		if fileTrace != "" {
			tl = fileTrace
		}
	}

	env, err := newEnvLookup(envFile, flags.Changed("env-file"))
	if err != nil {
		return cfg, "", err
	}
	envTrace, err := env.apply(&cfg)
	if err != nil {
		return cfg, "", err
	}
	if envTrace != "" {
		tl = envTrace
	}

	// Flags override only when the user set them.
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("duration") {
		cfg.Duration = duration
	}
	if flags.Changed("rows") {
		cfg.Rows = rows
	}
	if flags.Changed("cols") {
		cfg.Cols = cols
	}
	if flags.Changed("high") {
		cfg.HighAgents = highAgents
	}
	if flags.Changed("medium") {
		cfg.MediumAgents = mediumAgents
	}
	if flags.Changed("low") {
		cfg.LowAgents = lowAgents
	}
	if flags.Changed("turnaround") {
		cfg.Turnaround = sim.TurnaroundMode(turnaround)
	}
	if flags.Changed("deterministic") {
		cfg.Deterministic = deterministic
	}
	if flags.Changed("trace-level") {
		tl = traceLevel
	}

	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return cfg, "", fmt.Errorf("customers-per-agent must be an integer, got %q", args[0])
		}
		cfg.CustomersPerAgent = n
	}

	if err := cfg.Validate(); err != nil {
		return cfg, "", err
	}
	if !trace.IsValidTraceLevel(tl) {
		return cfg, "", fmt.Errorf("unknown trace level %q (want none or sales)", tl)
	}
	return cfg, sim.TraceLevel(tl), nil
}

func printTraceSummary(w io.Writer, summary *trace.TraceSummary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Sale Trace Summary ===")
	fmt.Fprintf(w, "Customers traced: %d\n", summary.TotalCustomers)
	fmt.Fprintf(w, "Duplicate seats: %d\n", summary.DuplicateSeats)
	classes := make([]string, 0, len(summary.ByClass))
	for class := range summary.ByClass {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	for _, class := range classes {
		cs := summary.ByClass[class]
		fmt.Fprintf(w, "  %s: %d customers, %d served, %d seated, %d sold out, %d left\n",
			class, cs.Customers, cs.Served, cs.Seated, cs.SoldOut, cs.Left)
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	defaults := sim.DefaultConfig()

	runCmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Seed for arrivals and service durations")
	runCmd.Flags().IntVar(&duration, "duration", defaults.Duration, "Sale length (in ticks)")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().BoolVar(&verbose, "verbose", false, "Per-tick diagnostics (sets log level to debug)")

	// Hall and agents
	runCmd.Flags().IntVar(&rows, "rows", defaults.Rows, "Seat grid rows")
	runCmd.Flags().IntVar(&cols, "cols", defaults.Cols, "Seat grid columns")
	runCmd.Flags().IntVar(&highAgents, "high", defaults.HighAgents, "Number of High-priority agents")
	runCmd.Flags().IntVar(&mediumAgents, "medium", defaults.MediumAgents, "Number of Medium-priority agents")
	runCmd.Flags().IntVar(&lowAgents, "low", defaults.LowAgents, "Number of Low-priority agents")
	runCmd.Flags().StringVar(&turnaround, "turnaround", string(defaults.Turnaround), "Turnaround measurement: elapsed (seat tick - arrival) or absolute (seat tick)")
	runCmd.Flags().BoolVar(&deterministic, "deterministic", defaults.Deterministic, "Commit seats in agent order within a tick")

	// Configuration sources and outputs
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to YAML sale configuration")
	runCmd.Flags().StringVar(&envFile, "env-file", ".env", "Path to dotenv file with "+EnvPrefix+"* overrides")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus sale counters to this file at exit")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", string(trace.TraceLevelNone), "Sale trace verbosity (none, sales)")

	rootCmd.AddCommand(runCmd)
}
