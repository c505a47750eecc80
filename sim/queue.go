// Implements the CustomerQueue, the FIFO line in front of a selling agent.
// Each agent owns two: the arrival queue filled once at startup and the
// service queue of customers admitted but not yet served.

package sim

import (
	"fmt"
	"strings"
)

// CustomerQueue represents a FIFO queue of customers.
// It is owned by exactly one agent and is not safe for concurrent use.
type CustomerQueue struct {
	queue []*Customer
}

// Enqueue adds a customer to the back of the queue.
func (cq *CustomerQueue) Enqueue(c *Customer) {
	if c == nil {
		panic("Enqueue: customer must not be nil")
	}
	cq.queue = append(cq.queue, c)
}

func (cq *CustomerQueue) String() string {
	var sb strings.Builder
	for _, val := range cq.queue {
		sb.WriteString(fmt.Sprint(val))
	}
	return sb.String()
}

// Len returns the number of customers in the queue.
func (cq *CustomerQueue) Len() int {
	return len(cq.queue)
}

// Peek returns the customer at the front of the queue without removing it.
// Returns nil if the queue is empty.
func (cq *CustomerQueue) Peek() *Customer {
	if len(cq.queue) == 0 {
		return nil
	}
	return cq.queue[0]
}

// Dequeue removes and returns the customer at the front of the queue.
// Returns nil if the queue is empty.
func (cq *CustomerQueue) Dequeue() *Customer {
	if len(cq.queue) == 0 {
		return nil
	}
	c := cq.queue[0]
	cq.queue[0] = nil
	cq.queue = cq.queue[1:]
	return c
}

// InsertSorted places c after every queued customer that does not sort
// after it, so equal keys keep insertion order.
func (cq *CustomerQueue) InsertSorted(c *Customer, less func(a, b *Customer) bool) {
	if c == nil {
		panic("InsertSorted: customer must not be nil")
	}
	if less == nil {
		panic("InsertSorted: less must not be nil")
	}
	i := len(cq.queue)
	for i > 0 && less(c, cq.queue[i-1]) {
		i--
	}
	cq.queue = append(cq.queue, nil)
	copy(cq.queue[i+1:], cq.queue[i:])
	cq.queue[i] = c
}

// Items returns the queue contents for iteration.
// The returned slice is the queue's internal storage; callers may read it
// but MUST NOT append to or reslice it.
func (cq *CustomerQueue) Items() []*Customer {
	return cq.queue
}

// ByArrival orders customers by arrival tick.
func ByArrival(a, b *Customer) bool {
	return a.ArrivalTick < b.ArrivalTick
}
