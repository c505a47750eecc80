package sim

import (
	"math/rand"
)

// GenerateArrivals builds one agent's private arrival queue: n customers with
// arrival ticks drawn uniformly from [0, duration), inserted in arrival order
// (ties keep generation order) and numbered 1..n so the ID is the arrival rank.
// Panics if duration <= 0 or n < 0.
func GenerateArrivals(rng *rand.Rand, n, duration int) *CustomerQueue {
	if duration <= 0 {
		panic("GenerateArrivals: duration must be > 0")
	}
	if n < 0 {
		panic("GenerateArrivals: n must be >= 0")
	}

	q := &CustomerQueue{}
	for i := 0; i < n; i++ {
		q.InsertSorted(&Customer{
			ID:          i,
			ArrivalTick: rng.Intn(duration),
			State:       StateArriving,
		}, ByArrival)
	}
	for i, c := range q.Items() {
		c.ID = i + 1
	}
	return q
}
