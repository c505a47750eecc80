// Defines the Customer struct that models one ticket buyer in the simulation.
// Tracks arrival tick, response and turnaround, and the final disposition.

package sim

import (
	"fmt"
)

// CustomerState represents the lifecycle state of a customer.
type CustomerState string

const (
	StateArriving CustomerState = "arriving" // in the agent's arrival queue
	StateQueued   CustomerState = "queued"   // admitted, waiting for the agent
	StateServing  CustomerState = "serving"  // being served
	StateSeated   CustomerState = "seated"   // holds a seat
	StateSoldOut  CustomerState = "sold-out" // served, no seat left
	StateLeft     CustomerState = "left"     // sales closed before seating
)

// Customer models a single buyer's lifecycle.
// Identity and ArrivalTick are fixed by the generator; ResponseTicks and
// TurnaroundTicks are each written once by the owning agent.
type Customer struct {
	ID          int // 1-based rank within the originating agent's arrival queue
	ArrivalTick int // tick at which the customer joins the agent's line

	State           CustomerState
	ServiceStart    int // tick at which service began (valid once served)
	ResponseTicks   int // ServiceStart - ArrivalTick
	TurnaroundTicks int // set on seating; see TurnaroundMode
	Seat            Seat
}

// This method returns a human-readable string representation of a Customer.
func (c Customer) String() string {
	return fmt.Sprintf("[%d,%d]", c.ID, c.ArrivalTick)
}
