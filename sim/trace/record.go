// Package trace provides per-customer sale recording for auditing a run.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// Outcome is a customer's final disposition.
type Outcome string

const (
	OutcomeSeated  Outcome = "seated"
	OutcomeSoldOut Outcome = "sold-out"
	OutcomeLeft    Outcome = "left"
)

// SaleRecord captures one customer's path through a selling agent.
type SaleRecord struct {
	Class      string // agent class letter
	Agent      string // agent label, e.g. "M2"
	Customer   int    // customer ID within the agent
	Arrival    int    // arrival tick
	Served     bool   // true once service started
	Response   int    // ticks from arrival to service start (valid when Served)
	Turnaround int    // turnaround statistic (valid when Outcome == OutcomeSeated)
	Tick       int    // tick of the disposition
	Row        int    // seat row (valid when Outcome == OutcomeSeated)
	Col        int    // seat column (valid when Outcome == OutcomeSeated)
	Outcome    Outcome
}
