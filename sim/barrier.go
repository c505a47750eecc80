package sim

import (
	"fmt"
	"sync"
)

// TickBarrier is the reusable clock barrier shared by the coordinator and
// every selling agent.
//
// One cycle per tick:
//
//	agents:      Await(gen)  ->  work for tick t  ->  Await(gen') ...
//	coordinator: AwaitArrivals  ->  Advance  ->  Release ...
//
// Await counts the caller as arrived and blocks until the coordinator
// releases a new generation, so an agent wakes exactly once per tick and can
// never run ahead of the clock. The coordinator only releases after every
// active agent has arrived. Close is the final broadcast; agents then drain,
// Leave, and the coordinator waits in AwaitDrain for the last of them.
type TickBarrier struct {
	mu       sync.Mutex
	released *sync.Cond // agents wait here for the next generation
	settled  *sync.Cond // coordinator waits here for arrivals and departures

	duration int
	tick     int
	gen      uint64
	closed   bool
	active   int
	arrived  int
}

// NewTickBarrier creates a barrier whose clock runs from 0 to duration.
// Panics if duration <= 0.
func NewTickBarrier(duration int) *TickBarrier {
	if duration <= 0 {
		panic(fmt.Sprintf("NewTickBarrier: duration must be > 0, got %d", duration))
	}
	b := &TickBarrier{duration: duration}
	b.released = sync.NewCond(&b.mu)
	b.settled = sync.NewCond(&b.mu)
	return b
}

// Register adds n agents to the active set. Call before the agents start.
func (b *TickBarrier) Register(n int) {
	if n < 0 {
		panic(fmt.Sprintf("TickBarrier.Register: n must be >= 0, got %d", n))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active += n
}

// Await marks the calling agent as done with generation seen and blocks
// until the coordinator releases the next one. It returns the tick to work
// on, the new generation, and false once the barrier is closed.
func (b *TickBarrier) Await(seen uint64) (tick int, gen uint64, open bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return b.tick, b.gen, false
	}
	b.arrived++
	if b.arrived > b.active {
		panic(fmt.Sprintf("TickBarrier.Await: %d arrivals for %d active agents", b.arrived, b.active))
	}
	b.settled.Broadcast()
	for b.gen == seen && !b.closed {
		b.released.Wait()
	}
	return b.tick, b.gen, !b.closed
}

// AwaitArrivals blocks until every active agent has arrived, then resets the
// arrival count for the next tick.
func (b *TickBarrier) AwaitArrivals() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.arrived < b.active {
		b.settled.Wait()
	}
	b.arrived = 0
}

// Advance moves the clock one tick forward.
// Panics if the clock is already at duration.
func (b *TickBarrier) Advance() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tick >= b.duration {
		panic(fmt.Sprintf("TickBarrier.Advance: clock already at duration %d", b.duration))
	}
	b.tick++
	return b.tick
}

// Release wakes every waiting agent for the current tick.
func (b *TickBarrier) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic("TickBarrier.Release: barrier is closed")
	}
	b.gen++
	b.released.Broadcast()
}

// Close performs the final broadcast. Waiting agents return from Await with
// open == false; later Await calls return immediately. Idempotent.
func (b *TickBarrier) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.gen++
	b.released.Broadcast()
}

// Leave removes the calling agent from the active set.
func (b *TickBarrier) Leave() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == 0 {
		panic("TickBarrier.Leave: no active agents")
	}
	b.active--
	b.settled.Broadcast()
}

// AwaitDrain blocks until every agent has left.
func (b *TickBarrier) AwaitDrain() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.active > 0 {
		b.settled.Wait()
	}
}

// Now returns the current tick.
func (b *TickBarrier) Now() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tick
}

// Active returns the number of agents still registered.
func (b *TickBarrier) Active() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// Turnstile serializes one commit per agent per tick in slot order, so
// contention for the seat grid resolves the same way on every run.
// Every live slot must call Commit exactly once per tick; a slot that stops
// participating must Retire so later slots are not held up.
type Turnstile struct {
	mu      sync.Mutex
	turn    *sync.Cond
	next    int
	retired []bool
}

// NewTurnstile creates a turnstile for slots 0..slots-1.
func NewTurnstile(slots int) *Turnstile {
	if slots < 0 {
		panic(fmt.Sprintf("NewTurnstile: slots must be >= 0, got %d", slots))
	}
	t := &Turnstile{retired: make([]bool, slots)}
	t.turn = sync.NewCond(&t.mu)
	return t
}

// Commit blocks until it is slot's turn, runs fn (which may be nil) and
// passes the turn on.
func (t *Turnstile) Commit(slot int, fn func()) {
	if slot < 0 || slot >= len(t.retired) {
		panic(fmt.Sprintf("Turnstile.Commit: slot %d out of range [0,%d)", slot, len(t.retired)))
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for t.next != slot {
		t.turn.Wait()
	}
	if fn != nil {
		fn()
	}
	t.next++
	t.skipRetired()
	t.turn.Broadcast()
}

// Reset starts a new round at slot 0. Call between ticks only.
func (t *Turnstile) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next = 0
	t.skipRetired()
}

// Retire drops slot from every later round.
func (t *Turnstile) Retire(slot int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.retired[slot] = true
	t.skipRetired()
	t.turn.Broadcast()
}

func (t *Turnstile) skipRetired() {
	for t.next < len(t.retired) && t.retired[t.next] {
		t.next++
	}
}
