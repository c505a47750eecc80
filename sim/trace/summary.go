package trace

import "strconv"

// ClassSummary aggregates the records of one agent class.
type ClassSummary struct {
	Customers     int
	Served        int
	Seated        int
	SoldOut       int
	Left          int
	ResponseSum   int64
	TurnaroundSum int64
}

// TraceSummary aggregates statistics from a SaleTrace.
type TraceSummary struct {
	TotalCustomers int
	ByClass        map[string]*ClassSummary // class letter -> summary
	SeatOwners     map[[2]int]string        // (row, col) -> "<agent>/<customer>"
	DuplicateSeats int                      // seated records sharing a seat
}

// Summarize computes aggregate statistics from a SaleTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SaleTrace) *TraceSummary {
	summary := &TraceSummary{
		ByClass:    make(map[string]*ClassSummary),
		SeatOwners: make(map[[2]int]string),
	}
	for _, r := range st.Records() {
		summary.TotalCustomers++
		cs, ok := summary.ByClass[r.Class]
		if !ok {
			cs = &ClassSummary{}
			summary.ByClass[r.Class] = cs
		}
		cs.Customers++
		if r.Served {
			cs.Served++
			cs.ResponseSum += int64(r.Response)
		}
		switch r.Outcome {
		case OutcomeSeated:
			cs.Seated++
			cs.TurnaroundSum += int64(r.Turnaround)
			key := [2]int{r.Row, r.Col}
			if _, taken := summary.SeatOwners[key]; taken {
				summary.DuplicateSeats++
			}
			summary.SeatOwners[key] = r.Agent + "/" + strconv.Itoa(r.Customer)
		case OutcomeSoldOut:
			cs.SoldOut++
		case OutcomeLeft:
			cs.Left++
		}
	}
	return summary
}
