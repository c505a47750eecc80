package sim

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// driveBarrier runs the coordinator side of the protocol for duration ticks.
func driveBarrier(b *TickBarrier, duration int) {
	b.AwaitArrivals()
	b.Release()
	for b.Now() < duration {
		b.AwaitArrivals()
		if b.Advance() < duration {
			b.Release()
		}
	}
	b.Close()
	b.AwaitDrain()
}

func TestTickBarrier_EveryAgentSeesEveryTickOnce(t *testing.T) {
	// GIVEN 12 agents on a 25 tick barrier
	const agents, duration = 12, 25
	b := NewTickBarrier(duration)
	b.Register(agents)

	inside := make([]int64, duration)
	seen := make([][]int, agents)
	var violations atomic.Int64
	var wg sync.WaitGroup

	// WHEN each agent records the ticks it wakes on
	for i := 0; i < agents; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer b.Leave()
			var gen uint64
			for {
				tick, next, open := b.Await(gen)
				if !open {
					return
				}
				gen = next
				atomic.AddInt64(&inside[tick], 1)
				seen[i] = append(seen[i], tick)
				// no agent may observe the clock moving while it works
				if b.Now() != tick {
					violations.Add(1)
				}
			}
		}(i)
	}
	driveBarrier(b, duration)
	wg.Wait()

	// THEN each tick was worked by exactly the live agents, in order, once each
	assert.Zero(t, violations.Load(), "clock advanced while agents were working")
	for tick, n := range inside {
		assert.Equal(t, int64(agents), n, "agents inside tick %d", tick)
	}
	for i, ticks := range seen {
		require.Len(t, ticks, duration, "agent %d", i)
		for k, tick := range ticks {
			assert.Equal(t, k, tick, "agent %d skipped or repeated a tick", i)
		}
	}
	assert.Equal(t, 0, b.Active())
	assert.Equal(t, duration, b.Now())
}

func TestTickBarrier_AwaitAfterClose_ReturnsClosed(t *testing.T) {
	b := NewTickBarrier(3)
	b.Close()
	b.Close() // idempotent

	_, _, open := b.Await(0)
	assert.False(t, open)
}

func TestTickBarrier_NoAgents_DrivesToDuration(t *testing.T) {
	b := NewTickBarrier(4)
	done := make(chan struct{})
	go func() {
		driveBarrier(b, 4)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("coordinator hung with zero agents")
	}
	assert.Equal(t, 4, b.Now())
}

func TestTickBarrier_CoordinatorWaitsForSlowAgent(t *testing.T) {
	// GIVEN two agents, one of which has not arrived yet
	b := NewTickBarrier(2)
	b.Register(2)
	go func() {
		_, _, _ = b.Await(0)
	}()

	arrivalsDone := make(chan struct{})
	go func() {
		b.AwaitArrivals()
		close(arrivalsDone)
	}()

	// THEN the coordinator stays blocked
	select {
	case <-arrivalsDone:
		t.Fatal("AwaitArrivals returned before every agent arrived")
	case <-time.After(50 * time.Millisecond):
	}

	// WHEN the second agent arrives, the coordinator proceeds
	go func() {
		_, _, _ = b.Await(0)
	}()
	select {
	case <-arrivalsDone:
	case <-time.After(5 * time.Second):
		t.Fatal("AwaitArrivals never returned")
	}
	b.Close()
}

func TestTickBarrier_InvariantViolations_Panic(t *testing.T) {
	assert.Panics(t, func() { NewTickBarrier(0) })

	b := NewTickBarrier(1)
	assert.Panics(t, func() { b.Register(-1) })
	assert.Panics(t, func() { b.Leave() })

	b.Advance()
	assert.Panics(t, func() { b.Advance() })

	b.Close()
	assert.Panics(t, func() { b.Release() })
}

func TestTurnstile_CommitsInSlotOrder(t *testing.T) {
	// GIVEN 8 slots started in reverse order
	const slots = 8
	ts := NewTurnstile(slots)
	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	// WHEN every slot commits once per round for 3 rounds
	for round := 0; round < 3; round++ {
		ts.Reset()
		for s := slots - 1; s >= 0; s-- {
			wg.Add(1)
			go func(s int) {
				defer wg.Done()
				ts.Commit(s, func() {
					mu.Lock()
					order = append(order, s)
					mu.Unlock()
				})
			}(s)
		}
		wg.Wait()
	}

	// THEN each round ran 0..7
	require.Len(t, order, 3*slots)
	for i, s := range order {
		assert.Equal(t, i%slots, s)
	}
}

func TestTurnstile_RetiredSlotIsSkipped(t *testing.T) {
	// GIVEN slot 1 of 3 retired
	ts := NewTurnstile(3)
	ts.Retire(1)
	ts.Reset()

	// WHEN slots 0 and 2 commit
	done := make(chan struct{})
	go func() {
		ts.Commit(2, nil)
		close(done)
	}()
	ts.Commit(0, nil)

	// THEN slot 2 is not held up by slot 1
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("slot 2 waited on retired slot 1")
	}
}

func TestTurnstile_RetireMidRound_ReleasesWaiters(t *testing.T) {
	ts := NewTurnstile(2)
	done := make(chan struct{})
	go func() {
		ts.Commit(1, nil)
		close(done)
	}()
	ts.Retire(0)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("slot 1 still waiting after slot 0 retired")
	}
}

func TestTurnstile_OutOfRange_Panics(t *testing.T) {
	ts := NewTurnstile(2)
	assert.Panics(t, func() { ts.Commit(2, nil) })
	assert.Panics(t, func() { ts.Commit(-1, nil) })
	assert.Panics(t, func() { NewTurnstile(-1) })
}
