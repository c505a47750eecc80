// sim/simulator.go
package sim

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ticket-sim/ticket-sim/sim/trace"
)

// TraceLevel re-exports the sale trace verbosity for NewSimulator callers.
type TraceLevel = trace.TraceLevel

// Result is everything a finished sale reports.
type Result struct {
	RunID    uuid.UUID
	Config   Config
	Seats    [][]Occupant
	Seated   map[Class]int // taken seats per class, counted on the final grid
	Stats    map[Class]ClassStats
	EndTick  int
	Trace    *trace.SaleTrace // nil unless tracing was enabled
	Canceled bool             // the context ended the sale before its duration
}

// Simulator is the tick coordinator: it owns the clock barrier, spawns one
// goroutine per selling agent and drives them through every tick.
type Simulator struct {
	RunID   uuid.UUID
	Config  Config
	Grid    *SeatGrid
	Metrics *Metrics
	Agents  []*Agent

	floor  *saleFloor
	hasRun bool
}

// NewSimulator validates cfg, builds the seat grid and every agent with its
// arrival schedule. Activity lines go to activity (nil discards them) and
// sale counters are registered with reg (nil skips registration).
func NewSimulator(cfg Config, traceLevel TraceLevel, activity io.Writer, reg prometheus.Registerer) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !trace.IsValidTraceLevel(string(traceLevel)) {
		return nil, fmt.Errorf("%w: unknown trace level %q", ErrInvalidConfig, traceLevel)
	}
	if cfg.Turnaround == "" {
		cfg.Turnaround = TurnaroundElapsed
	}

	floor := &saleFloor{
		cfg:      cfg,
		barrier:  NewTickBarrier(cfg.Duration),
		grid:     NewSeatGrid(cfg.Rows, cfg.Cols),
		metrics:  NewMetrics(reg),
		activity: NewActivityLog(activity),
		trace:    trace.NewSaleTrace(traceLevel),
	}
	if cfg.Deterministic {
		floor.turnstile = NewTurnstile(cfg.TotalAgents())
	}

	s := &Simulator{
		RunID:   uuid.New(),
		Config:  cfg,
		Grid:    floor.grid,
		Metrics: floor.metrics,
		floor:   floor,
	}

	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	slot := 0
	for _, class := range Classes {
		for ordinal := 1; ordinal <= cfg.AgentsOf(class); ordinal++ {
			arrivals := GenerateArrivals(rng.ForSubsystem(SubsystemArrivals(slot)), cfg.CustomersPerAgent, cfg.Duration)
			a := newAgent(class, ordinal, slot, arrivals, rng.ForSubsystem(SubsystemService(slot)), floor)
			floor.metrics.AddOffered(class, arrivals.Len())
			logrus.WithField("agent", a.Name()).Debugf("creating agent, slot %d, queue %s", slot, arrivals)
			s.Agents = append(s.Agents, a)
			slot++
		}
	}
	return s, nil
}

// Run executes the sale: Idle(t) -> Broadcasting(t) -> Awaiting(t) -> Idle(t+1)
// until the clock reaches the duration, then one final broadcast and a
// drain of every agent. ctx is checked between ticks only.
// Panics if called more than once.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if s.hasRun {
		panic("Simulator.Run() called more than once")
	}
	s.hasRun = true

	b := s.floor.barrier
	log := logrus.WithField("run", s.RunID.String())
	log.Infof("starting sale: %d agents, %dx%d seats, %d ticks", len(s.Agents), s.Config.Rows, s.Config.Cols, s.Config.Duration)

	s.floor.activity.Header()
	b.Register(len(s.Agents))
	var g errgroup.Group
	for _, a := range s.Agents {
		g.Go(a.Run)
	}

	canceled := false
	b.AwaitArrivals()
	s.broadcast(log)
	for b.Now() < s.Config.Duration {
		b.AwaitArrivals()
		if err := ctx.Err(); err != nil {
			log.Warnf("[tick %02d] sale interrupted: %v", b.Now(), err)
			canceled = true
			break
		}
		if b.Advance() < s.Config.Duration {
			s.broadcast(log)
		}
	}

	log.Debugf("[tick %02d] broadcasting close", b.Now())
	b.Close()
	b.AwaitDrain()
	err := g.Wait()
	s.floor.activity.Rule()
	log.Infof("[tick %02d] sale ended", b.Now())

	return &Result{
		RunID:    s.RunID,
		Config:   s.Config,
		Seats:    s.Grid.Snapshot(),
		Seated:   s.Grid.CountByClass(),
		Stats:    s.Metrics.Snapshot(),
		EndTick:  b.Now(),
		Trace:    s.floor.trace,
		Canceled: canceled,
	}, err
}

func (s *Simulator) broadcast(log *logrus.Entry) {
	if s.floor.turnstile != nil {
		s.floor.turnstile.Reset()
	}
	log.Debugf("[tick %02d] broadcasting clock tick", s.floor.barrier.Now())
	s.floor.barrier.Release()
}
