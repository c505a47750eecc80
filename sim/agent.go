package sim

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/ticket-sim/ticket-sim/sim/trace"
)

// ErrStaleTick is returned by Agent.Run when the barrier wakes an agent on
// any tick other than the one after its last.
var ErrStaleTick = errors.New("agent woke on a stale tick")

// saleFloor is the state every agent shares with the coordinator.
type saleFloor struct {
	cfg       Config
	barrier   *TickBarrier
	turnstile *Turnstile // nil when seat commits are not ordered
	grid      *SeatGrid
	metrics   *Metrics
	activity  *ActivityLog
	trace     *trace.SaleTrace
}

// Agent is one selling agent. All fields are owned by the agent's goroutine
// once Run starts.
type Agent struct {
	Class   Class
	Ordinal int // 1-based within the class
	Slot    int // 0-based across all agents, fixes commit order

	arrivals  *CustomerQueue // time-sorted, drained monotonically
	line      *CustomerQueue // admitted, waiting for service
	current   *Customer
	remaining int // service ticks left for current
	rng       *rand.Rand
	floor     *saleFloor
	lastTick  int
}

func newAgent(class Class, ordinal, slot int, arrivals *CustomerQueue, rng *rand.Rand, floor *saleFloor) *Agent {
	return &Agent{
		Class:    class,
		Ordinal:  ordinal,
		Slot:     slot,
		arrivals: arrivals,
		line:     &CustomerQueue{},
		rng:      rng,
		floor:    floor,
		lastTick: -1,
	}
}

// Name returns the agent label, e.g. "M2".
func (a *Agent) Name() string {
	return fmt.Sprintf("%s%d", a.Class, a.Ordinal)
}

// Arrivals returns the agent's pending arrival queue.
func (a *Agent) Arrivals() *CustomerQueue {
	return a.arrivals
}

func (a *Agent) label(c *Customer) string {
	return fmt.Sprintf("%s%02d", a.Name(), c.ID)
}

// Run is the agent's goroutine body: one step per barrier release until the
// barrier closes, then drain whatever is left.
func (a *Agent) Run() error {
	b := a.floor.barrier
	defer b.Leave()
	if a.floor.turnstile != nil {
		defer a.floor.turnstile.Retire(a.Slot)
	}

	log := logrus.WithField("agent", a.Name())
	var err error
	var gen uint64
	for {
		log.Debugf("[tick %02d] waiting for the next clock tick", b.Now())
		tick, next, open := b.Await(gen)
		if !open {
			break
		}
		gen = next
		log.Debugf("[tick %02d] received clock tick", tick)

		if tick != a.lastTick+1 {
			err = fmt.Errorf("%w: %s expected tick %d, woke at %d", ErrStaleTick, a.Name(), a.lastTick+1, tick)
			break
		}
		a.lastTick = tick
		a.step(tick)
	}

	a.drain(b.Now())
	return err
}

// step performs one tick of work: admission, dispatch, progression.
// The seat commit goes through the turnstile when one is configured.
func (a *Agent) step(tick int) {
	a.admit(tick)
	a.dispatch(tick)
	due := a.progress()

	if a.floor.turnstile == nil {
		if due {
			a.sell(tick)
		}
		return
	}
	var commit func()
	if due {
		commit = func() { a.sell(tick) }
	}
	a.floor.turnstile.Commit(a.Slot, commit)
}

// admit moves every customer that has arrived by tick into the service line.
func (a *Agent) admit(tick int) {
	for a.arrivals.Len() > 0 && a.arrivals.Peek().ArrivalTick <= tick {
		c := a.arrivals.Dequeue()
		c.State = StateQueued
		a.line.Enqueue(c)
		a.floor.activity.Arrived(tick, a.Name(), a.label(c))
	}
}

// dispatch starts serving the head of the line when the agent is idle.
func (a *Agent) dispatch(tick int) {
	if a.current != nil || a.line.Len() == 0 {
		return
	}
	c := a.line.Dequeue()
	c.State = StateServing
	c.ServiceStart = tick
	c.ResponseTicks = tick - c.ArrivalTick
	a.current = c

	r := a.floor.cfg.ServiceRange(a.Class)
	a.remaining = r.Min + a.rng.Intn(r.Max-r.Min+1)

	a.floor.metrics.RecordResponse(a.Class, c.ResponseTicks)
	a.floor.activity.Serving(tick, a.Name(), a.label(c), c.ResponseTicks)
}

// progress advances the current service by one tick and reports whether the
// customer is ready for a seat this tick.
func (a *Agent) progress() bool {
	if a.current == nil {
		return false
	}
	if a.remaining == 0 {
		return true
	}
	a.remaining--
	return false
}

// sell tries to seat the current customer. A sold-out customer is not retried.
func (a *Agent) sell(tick int) {
	c := a.current
	a.current = nil

	rec := trace.SaleRecord{
		Class:    a.Class.String(),
		Agent:    a.Name(),
		Customer: c.ID,
		Arrival:  c.ArrivalTick,
		Served:   true,
		Response: c.ResponseTicks,
		Tick:     tick,
	}

	seat, err := a.floor.grid.Reserve(Occupant{Class: a.Class, Agent: a.Ordinal, Customer: c.ID})
	if errors.Is(err, ErrSoldOut) {
		c.State = StateSoldOut
		a.floor.metrics.RecordSoldOut(a.Class)
		a.floor.activity.SoldOut(tick, a.Name(), a.label(c))
		rec.Outcome = trace.OutcomeSoldOut
		a.floor.trace.Record(rec)
		return
	}

	c.State = StateSeated
	c.Seat = seat
	c.TurnaroundTicks = a.turnaround(tick, c)
	a.floor.metrics.RecordSeated(a.Class, c.TurnaroundTicks)
	a.floor.activity.Seated(tick, a.Name(), a.label(c), seat, c.TurnaroundTicks)

	rec.Turnaround = c.TurnaroundTicks
	rec.Row, rec.Col = seat.Row, seat.Col
	rec.Outcome = trace.OutcomeSeated
	a.floor.trace.Record(rec)
}

func (a *Agent) turnaround(tick int, c *Customer) int {
	if a.floor.cfg.Turnaround == TurnaroundAbsolute {
		return tick
	}
	return tick - c.ArrivalTick
}

// drain turns away everyone still with the agent when sales close: the
// customer in service, the line, and arrivals never admitted.
func (a *Agent) drain(tick int) {
	left := 0
	if a.current != nil {
		a.leave(tick, a.current, true)
		a.current = nil
		left++
	}
	for a.line.Len() > 0 {
		a.leave(tick, a.line.Dequeue(), false)
		left++
	}
	for a.arrivals.Len() > 0 {
		c := a.arrivals.Dequeue()
		logrus.WithField("agent", a.Name()).Debugf("[tick %02d] customer %s never arrived before close", tick, a.label(c))
		a.leave(tick, c, false)
		left++
	}
	a.floor.metrics.RecordLeft(a.Class, left)
}

func (a *Agent) leave(tick int, c *Customer, served bool) {
	c.State = StateLeft
	a.floor.activity.Left(tick, a.Name(), a.label(c))
	a.floor.trace.Record(trace.SaleRecord{
		Class:    a.Class.String(),
		Agent:    a.Name(),
		Customer: c.ID,
		Arrival:  c.ArrivalTick,
		Served:   served,
		Response: c.ResponseTicks,
		Tick:     tick,
		Outcome:  trace.OutcomeLeft,
	})
}
