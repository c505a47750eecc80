package sim

import (
	"errors"
	"fmt"
	"sync"
)

// ErrSoldOut is returned by SeatGrid.Reserve when no seat satisfies the
// class's allocation policy.
var ErrSoldOut = errors.New("concert is sold out")

// Class is a selling agent's priority tier.
type Class string

const (
	High   Class = "H"
	Medium Class = "M"
	Low    Class = "L"
)

// Classes lists every class in agent-creation order.
var Classes = []Class{High, Medium, Low}

// Valid reports whether c is one of High, Medium or Low.
func (c Class) Valid() bool {
	return c == High || c == Medium || c == Low
}

func (c Class) String() string {
	return string(c)
}

// Seat addresses one slot of the grid.
type Seat struct {
	Row int
	Col int
}

func (s Seat) String() string {
	return fmt.Sprintf("%d,%d", s.Row, s.Col)
}

// Occupant labels a taken seat. The zero value is an empty seat.
type Occupant struct {
	Class    Class
	Agent    int // agent ordinal within its class, 1-based
	Customer int // customer ID within that agent
}

// Taken reports whether the occupant record holds a customer.
func (o Occupant) Taken() bool {
	return o.Class != ""
}

// Label renders the occupant as printed in the seating chart, e.g. "M203".
// Empty seats render as "-".
func (o Occupant) Label() string {
	if !o.Taken() {
		return "-"
	}
	return fmt.Sprintf("%s%d%02d", o.Class, o.Agent, o.Customer)
}

// SeatGrid is the shared R x C hall. Seats only ever move from empty to
// taken; every read and write goes through mu.
type SeatGrid struct {
	mu    sync.Mutex
	rows  int
	cols  int
	seats [][]Occupant
}

// NewSeatGrid creates an empty rows x cols grid.
// Panics if either dimension is not positive.
func NewSeatGrid(rows, cols int) *SeatGrid {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("NewSeatGrid: dimensions must be positive, got %dx%d", rows, cols))
	}
	seats := make([][]Occupant, rows)
	for r := range seats {
		seats[r] = make([]Occupant, cols)
	}
	return &SeatGrid{rows: rows, cols: cols, seats: seats}
}

// Rows returns the number of rows.
func (g *SeatGrid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *SeatGrid) Cols() int { return g.cols }

// Reserve finds the first free seat under occ.Class's policy and claims it
// for occ in one critical section.
func (g *SeatGrid) Reserve(occ Occupant) (Seat, error) {
	if !occ.Taken() {
		panic("Reserve: occupant must carry a class")
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	seat, ok := g.find(occ.Class)
	if !ok {
		return Seat{}, ErrSoldOut
	}
	g.seats[seat.Row][seat.Col] = occ
	return seat, nil
}

// FindSeat returns the seat Reserve would claim for class right now,
// without claiming it.
func (g *SeatGrid) FindSeat(class Class) (Seat, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.find(class)
}

// At returns the occupant of seat.
func (g *SeatGrid) At(seat Seat) Occupant {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seats[seat.Row][seat.Col]
}

// Snapshot returns a copy of the grid.
func (g *SeatGrid) Snapshot() [][]Occupant {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([][]Occupant, g.rows)
	for r := range out {
		out[r] = append([]Occupant(nil), g.seats[r]...)
	}
	return out
}

// Occupied returns the number of taken seats.
func (g *SeatGrid) Occupied() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, row := range g.seats {
		for _, occ := range row {
			if occ.Taken() {
				n++
			}
		}
	}
	return n
}

// CountByClass returns the number of taken seats per class.
func (g *SeatGrid) CountByClass() map[Class]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	counts := make(map[Class]int, len(Classes))
	for _, row := range g.seats {
		for _, occ := range row {
			if occ.Taken() {
				counts[occ.Class]++
			}
		}
	}
	return counts
}

// find must be called with mu held.
func (g *SeatGrid) find(class Class) (Seat, bool) {
	switch class {
	case High:
		return g.findFront()
	case Medium:
		return g.findMiddleOut()
	case Low:
		return g.findBack()
	}
	panic(fmt.Sprintf("SeatGrid: unknown class %q", string(class)))
}

// findFront scans row-major from (0,0).
func (g *SeatGrid) findFront() (Seat, bool) {
	for r := 0; r < g.rows; r++ {
		if seat, ok := g.firstFreeInRow(r); ok {
			return seat, true
		}
	}
	return Seat{}, false
}

// findMiddleOut scans rows mid, mid+1, mid-1, mid+2, mid-2, ...
func (g *SeatGrid) findMiddleOut() (Seat, bool) {
	mid := g.rows / 2
	for jump := 0; mid+jump < g.rows || mid-jump >= 0; jump++ {
		if r := mid + jump; r < g.rows {
			if seat, ok := g.firstFreeInRow(r); ok {
				return seat, true
			}
		}
		if jump == 0 {
			continue
		}
		if r := mid - jump; r >= 0 {
			if seat, ok := g.firstFreeInRow(r); ok {
				return seat, true
			}
		}
	}
	return Seat{}, false
}

// findBack scans reverse row-major from the last seat.
func (g *SeatGrid) findBack() (Seat, bool) {
	for r := g.rows - 1; r >= 0; r-- {
		for c := g.cols - 1; c >= 0; c-- {
			if !g.seats[r][c].Taken() {
				return Seat{Row: r, Col: c}, true
			}
		}
	}
	return Seat{}, false
}

func (g *SeatGrid) firstFreeInRow(r int) (Seat, bool) {
	for c := 0; c < g.cols; c++ {
		if !g.seats[r][c].Taken() {
			return Seat{Row: r, Col: c}, true
		}
	}
	return Seat{}, false
}
