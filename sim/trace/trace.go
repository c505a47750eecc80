package trace

import (
	"sort"
	"sync"
)

// TraceLevel controls the verbosity of sale tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelSales captures one record per customer disposition.
	TraceLevelSales TraceLevel = "sales"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelSales: true,
	"":              true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// SaleTrace collects sale records from concurrently running agents.
// A nil *SaleTrace is valid and records nothing.
type SaleTrace struct {
	Level TraceLevel

	mu      sync.Mutex
	records []SaleRecord
}

// NewSaleTrace creates a SaleTrace ready for recording, or nil when level
// disables tracing.
func NewSaleTrace(level TraceLevel) *SaleTrace {
	if level == "" || level == TraceLevelNone {
		return nil
	}
	return &SaleTrace{Level: level, records: make([]SaleRecord, 0)}
}

// Record appends a sale record. Safe for concurrent use.
func (st *SaleTrace) Record(record SaleRecord) {
	if st == nil {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.records = append(st.records, record)
}

// Records returns a copy of the records ordered by tick, then agent, then
// customer, so the result does not depend on goroutine scheduling.
func (st *SaleTrace) Records() []SaleRecord {
	if st == nil {
		return nil
	}
	st.mu.Lock()
	out := append([]SaleRecord(nil), st.records...)
	st.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Tick != b.Tick {
			return a.Tick < b.Tick
		}
		if a.Agent != b.Agent {
			return a.Agent < b.Agent
		}
		return a.Customer < b.Customer
	})
	return out
}

// Len returns the number of recorded customers.
func (st *SaleTrace) Len() int {
	if st == nil {
		return 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.records)
}
