package sim

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// PrintSeatingChart writes the final grid, one row per line.
func PrintSeatingChart(w io.Writer, seats [][]Occupant) {
	fmt.Fprintln(w, "=== Final Concert Seating Chart ===")
	for _, row := range seats {
		labels := make([]string, len(row))
		for c, occ := range row {
			labels[c] = fmt.Sprintf("%5s", occ.Label())
		}
		fmt.Fprintln(w, strings.Join(labels, " "))
	}
	fmt.Fprintln(w)
}

// Print displays the seating chart and per-class summary at the end of the sale.
// The Seated column is counted from the final grid.
func (r *Result) Print(w io.Writer) {
	PrintSeatingChart(w, r.Seats)

	fmt.Fprintln(w, "=== Ticket Sale Summary ===")
	fmt.Fprintf(w, "Run ID               : %s\n", r.RunID)
	fmt.Fprintf(w, "Customers per agent  : %d\n", r.Config.CustomersPerAgent)
	fmt.Fprintf(w, "Sale duration        : %d ticks (ended at %d)\n", r.Config.Duration, r.EndTick)
	fmt.Fprintf(w, "Turnaround           : %s\n", r.Config.Turnaround)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "|%2s| %9s | %8s | %8s | %8s | %8s | %10s |\n",
		"S", "Customers", "Seated", "SoldOut", "Left", "Unseated", "Throughput")
	for _, class := range Classes {
		s := r.Stats[class]
		seated := r.Seated[class]
		if seated != s.Seated {
			logrus.Warnf("class %s: %d seats on the grid but %d sales recorded", class, seated, s.Seated)
		}
		fmt.Fprintf(w, "|%2s| %9d | %8d | %8d | %8d | %8d | %10.2f |\n",
			class, s.Offered, seated, s.SoldOut, s.Left, s.Unseated(), s.Throughput(r.Config.Duration))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "|%2s| %21s | %23s |\n", "S", "Average Response Time", "Average Turnaround Time")
	for _, class := range Classes {
		s := r.Stats[class]
		fmt.Fprintf(w, "|%2s| %21.2f | %23.2f |\n", class, s.MeanResponse(), s.MeanTurnaround())
	}
}
