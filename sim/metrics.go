// Tracks per-class sale statistics: customers offered, seated, turned away,
// and the response/turnaround sums behind the final report.

package sim

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// ClassStats is the aggregate for one agent class.
type ClassStats struct {
	Offered       int   // customers generated for agents of this class
	Served        int   // customers whose service started
	Seated        int   // customers holding a seat
	SoldOut       int   // served but no seat was left
	Left          int   // still waiting or in service when sales closed
	ResponseSum   int64 // sum of response ticks over served customers
	TurnaroundSum int64 // sum of turnaround ticks over seated customers
}

// Unseated returns the customers of this class without a seat.
func (s ClassStats) Unseated() int {
	return s.SoldOut + s.Left
}

// Throughput returns seats sold per tick over a sale of duration ticks.
func (s ClassStats) Throughput(duration int) float64 {
	if duration <= 0 {
		return 0
	}
	return float64(s.Seated) / float64(duration)
}

// MeanResponse returns the average response over served customers.
func (s ClassStats) MeanResponse() float64 {
	if s.Served == 0 {
		return 0
	}
	return float64(s.ResponseSum) / float64(s.Served)
}

// MeanTurnaround returns the average turnaround over seated customers.
func (s ClassStats) MeanTurnaround() float64 {
	if s.Seated == 0 {
		return 0
	}
	return float64(s.TurnaroundSum) / float64(s.Seated)
}

// Metrics aggregates statistics about the sale for final reporting.
// Agents update it concurrently; every update is one critical section.
// Each update is mirrored to Prometheus collectors.
type Metrics struct {
	mu      sync.Mutex
	classes map[Class]*ClassStats

	customers *prometheus.CounterVec
	response  *prometheus.HistogramVec
}

// NewMetrics creates an empty aggregator. The Prometheus collectors are
// registered with reg when it is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		classes: make(map[Class]*ClassStats, len(Classes)),
		customers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketsim_customers_total",
				Help: "Customers by agent class and outcome",
			},
			[]string{"class", "outcome"}, // offered|seated|sold_out|left
		),
		response: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ticketsim_response_ticks",
				Help:    "Ticks between a customer's arrival and the start of service",
				Buckets: prometheus.LinearBuckets(0, 5, 12),
			},
			[]string{"class"},
		),
	}
	for _, c := range Classes {
		m.classes[c] = &ClassStats{}
	}
	if reg != nil {
		reg.MustRegister(m.customers, m.response)
	}
	return m
}

// AddOffered records n generated customers for class.
func (m *Metrics) AddOffered(class Class, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classes[class].Offered += n
	m.customers.WithLabelValues(class.String(), "offered").Add(float64(n))
}

// RecordResponse records the start of a customer's service.
func (m *Metrics) RecordResponse(class Class, ticks int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.classes[class]
	s.Served++
	s.ResponseSum += int64(ticks)
	m.response.WithLabelValues(class.String()).Observe(float64(ticks))
}

// RecordSeated records a sold seat and its turnaround.
func (m *Metrics) RecordSeated(class Class, turnaround int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.classes[class]
	s.Seated++
	s.TurnaroundSum += int64(turnaround)
	m.customers.WithLabelValues(class.String(), "seated").Inc()
}

// RecordSoldOut records a customer turned away for lack of seats.
func (m *Metrics) RecordSoldOut(class Class) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classes[class].SoldOut++
	m.customers.WithLabelValues(class.String(), "sold_out").Inc()
}

// RecordLeft records n customers still unserved when sales closed.
func (m *Metrics) RecordLeft(class Class, n int) {
	if n == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classes[class].Left += n
	m.customers.WithLabelValues(class.String(), "left").Add(float64(n))
}

// Stats returns a copy of the aggregate for class.
func (m *Metrics) Stats(class Class) ClassStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.classes[class]; ok {
		return *s
	}
	return ClassStats{}
}

// Snapshot returns a copy of every class aggregate.
func (m *Metrics) Snapshot() map[Class]ClassStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[Class]ClassStats, len(m.classes))
	for c, s := range m.classes {
		out[c] = *s
	}
	return out
}
