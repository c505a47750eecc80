package sim

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// ActivityLog writes the tick-by-tick sale log in a fixed column layout.
// Agents write concurrently; each line is written whole.
type ActivityLog struct {
	mu sync.Mutex
	w  io.Writer
}

// NewActivityLog returns a log writing to w; a nil w discards everything.
func NewActivityLog(w io.Writer) *ActivityLog {
	if w == nil {
		w = io.Discard
	}
	return &ActivityLog{w: w}
}

const activityRule = "*--------------------------------------------------------------------------------------*"

// Header prints the column titles.
func (l *ActivityLog) Header() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, activityRule)
	fmt.Fprintf(l.w, "%-5s |%-5s|%-7s|%-40s|%9s|%11s\n", "Time", "Agent", "Cust", "Activity", "Response", "Turnaround")
	fmt.Fprintln(l.w, activityRule)
}

// ClockLabel renders a tick as hh:mm of sale time.
func ClockLabel(tick int) string {
	return fmt.Sprintf("%02d:%02d", tick/60, tick%60)
}

func (l *ActivityLog) line(tick int, agent, customer, activity string, response, turnaround int) {
	resp, tat := "", ""
	if response >= 0 {
		resp = strconv.Itoa(response)
	}
	if turnaround >= 0 {
		tat = strconv.Itoa(turnaround)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%-5s |%-5s|%-7s|%-40s|%9s|%11s\n", ClockLabel(tick), agent, customer, activity, resp, tat)
}

// Arrived logs a customer joining an agent's line.
func (l *ActivityLog) Arrived(tick int, agent, customer string) {
	l.line(tick, agent, customer, "arrived", -1, -1)
}

// Serving logs the start of service with the customer's response ticks.
func (l *ActivityLog) Serving(tick int, agent, customer string, response int) {
	l.line(tick, agent, customer, "serving", response, -1)
}

// Seated logs a sold seat with the customer's turnaround.
func (l *ActivityLog) Seated(tick int, agent, customer string, seat Seat, turnaround int) {
	l.line(tick, agent, customer, "seat "+seat.String(), -1, turnaround)
}

// SoldOut logs a customer told the concert is sold out.
func (l *ActivityLog) SoldOut(tick int, agent, customer string) {
	l.line(tick, agent, customer, "told the concert is sold out", -1, -1)
}

// Left logs a customer leaving when ticket sales close.
func (l *ActivityLog) Left(tick int, agent, customer string) {
	l.line(tick, agent, customer, "ticket sales closed, leaves", -1, -1)
}

// Rule prints a separator line.
func (l *ActivityLog) Rule() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, strings.Repeat("-", len(activityRule)))
}
