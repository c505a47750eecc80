// Package sim provides the discrete-time engine for the concert ticket sale.
//
// # Reading Guide
//
// Start with these files to understand the sale kernel:
//   - barrier.go: TickBarrier (the clock) and Turnstile (ordered seat commits)
//   - agent.go: the per-agent admit/dispatch/serve/sell state machine
//   - seat.go: the shared SeatGrid and the High/Medium/Low search policies
//   - simulator.go: the coordinator loop that drives every tick
//
// # Concurrency
//
// Every selling agent runs on its own goroutine. The only shared mutable
// state is the SeatGrid, the Metrics aggregator, the ActivityLog and the
// optional sale trace, each guarded by its own mutex, plus the barrier
// counters. Agents block only inside TickBarrier.Await and Turnstile.Commit.
//
// # Determinism
//
// Arrival schedules and service durations come from a PartitionedRNG keyed
// by the run seed and the agent slot. With Config.Deterministic set, seat
// commits within a tick are taken in slot order, so a fixed seed also fixes
// the final seating.
package sim
