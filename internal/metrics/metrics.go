package metrics

import (
	"math"
	"sync"
	"time"
)

// Counter names
const (
	CounterLotsCreated          = "lots_created_total"
	CounterLotsCompleted        = "lots_completed_total"
	CounterLotsDeleted          = "lots_deleted_total"
	CounterSingleOrdersCreated  = "single_orders_created_total"
	CounterSingleOrdersDone     = "single_orders_completed_total"
	CounterSealsAccepted        = "seals_accepted_total"
	CounterSealsRejected        = "seals_rejected_total"
	CounterXPPosted             = "xp_posted_total"
	CounterTasksLogged          = "tasks_logged_total"
	CounterMessagesReceived     = "messages_received_total"
	CounterMessagesFailed       = "messages_failed_total"
	CounterEventsIndexed        = "activity_events_indexed_total"
	CounterNotificationsDropped = "notifications_dropped_total"
)

// Gauge names; lot status gauges are GaugeLotsPrefix + status
const (
	GaugeLotsPrefix   = "lots_status_"
	GaugePendingIndex = "activity_events_pending"
	GaugeGoroutines   = "goroutines"
)

// Timer names
const (
	TimerHTTPRequest  = "http_request"
	TimerLotComplete  = "lot_complete"
	TimerSeal         = "seal"
	TimerReconcileRun = "reconcile_run"
)

// Database query types recorded by the gorm callbacks
const (
	DBQuerySelect = "select"
	DBQueryInsert = "insert"
	DBQueryUpdate = "update"
	DBQueryDelete = "delete"
)

// TimerMetric captures timing information
type TimerMetric struct {
	Count         int64   `json:"count"`
	TotalTimeMs   int64   `json:"total_time_ms"`
	AverageTimeMs float64 `json:"average_time_ms"`
	MinTimeMs     int64   `json:"min_time_ms"`
	MaxTimeMs     int64   `json:"max_time_ms"`
}

// ErrorRateMetric captures error rates
type ErrorRateMetric struct {
	Total     int64   `json:"total"`
	Errors    int64   `json:"errors"`
	ErrorRate float64 `json:"error_rate"`
}

// Metrics is an in-process metrics collector
type Metrics struct {
	mu           sync.RWMutex
	counters     map[string]int64
	gauges       map[string]int64
	timers       map[string]*TimerMetric
	errorRates   map[string]*ErrorRateMetric
	healthChecks map[string]bool
	startTime    time.Time
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Default returns the process-wide collector used by hooks that cannot receive one
func Default() *Metrics {
	once.Do(func() {
		defaultMetrics = NewMetrics()
	})
	return defaultMetrics
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		counters:     make(map[string]int64),
		gauges:       make(map[string]int64),
		timers:       make(map[string]*TimerMetric),
		errorRates:   make(map[string]*ErrorRateMetric),
		healthChecks: make(map[string]bool),
		startTime:    time.Now(),
	}
}

// IncrementCounter increments a counter by 1
func (m *Metrics) IncrementCounter(name string) {
	m.IncrementCounterBy(name, 1)
}

// IncrementCounterBy increments a counter by the specified value
func (m *Metrics) IncrementCounterBy(name string, value int64) {
	m.mu.Lock()
	m.counters[name] += value
	m.mu.Unlock()
}

// SetGauge sets a gauge to a specific value
func (m *Metrics) SetGauge(name string, value int64) {
	m.mu.Lock()
	m.gauges[name] = value
	m.mu.Unlock()
}

// RecordTimer records a timing measurement
func (m *Metrics) RecordTimer(name string, d time.Duration) {
	ms := d.Milliseconds()

	m.mu.Lock()
	defer m.mu.Unlock()

	timer, ok := m.timers[name]
	if !ok {
		timer = &TimerMetric{MinTimeMs: math.MaxInt64}
		m.timers[name] = timer
	}
	timer.Count++
	timer.TotalTimeMs += ms
	if ms < timer.MinTimeMs {
		timer.MinTimeMs = ms
	}
	if ms > timer.MaxTimeMs {
		timer.MaxTimeMs = ms
	}
}

// RecordResult records the outcome of an operation for error rate tracking
func (m *Metrics) RecordResult(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rate, ok := m.errorRates[name]
	if !ok {
		rate = &ErrorRateMetric{}
		m.errorRates[name] = rate
	}
	rate.Total++
	if err != nil {
		rate.Errors++
	}
}

// RecordDatabaseQuery records a query issued through gorm
func (m *Metrics) RecordDatabaseQuery(queryType string, err error, d time.Duration) {
	m.RecordTimer("db_"+queryType, d)
	m.RecordResult("db_"+queryType, err)
}

// SetHealth sets the health status of a component
func (m *Metrics) SetHealth(component string, healthy bool) {
	m.mu.Lock()
	m.healthChecks[component] = healthy
	m.mu.Unlock()
}

// GetCounters returns all counters
func (m *Metrics) GetCounters() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counters := make(map[string]int64, len(m.counters))
	for name, v := range m.counters {
		counters[name] = v
	}
	return counters
}

// GetCounter returns a single counter value
func (m *Metrics) GetCounter(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[name]
}

// GetGauges returns all gauges
func (m *Metrics) GetGauges() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	gauges := make(map[string]int64, len(m.gauges))
	for name, v := range m.gauges {
		gauges[name] = v
	}
	return gauges
}

// GetTimers returns all timers
func (m *Metrics) GetTimers() map[string]TimerMetric {
	m.mu.RLock()
	defer m.mu.RUnlock()

	timers := make(map[string]TimerMetric, len(m.timers))
	for name, t := range m.timers {
		snapshot := *t
		if snapshot.Count > 0 {
			snapshot.AverageTimeMs = float64(snapshot.TotalTimeMs) / float64(snapshot.Count)
		}
		timers[name] = snapshot
	}
	return timers
}

// GetErrorRates returns all error rates
func (m *Metrics) GetErrorRates() map[string]ErrorRateMetric {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rates := make(map[string]ErrorRateMetric, len(m.errorRates))
	for name, r := range m.errorRates {
		snapshot := *r
		if snapshot.Total > 0 {
			snapshot.ErrorRate = float64(snapshot.Errors) / float64(snapshot.Total) * 100.0
		}
		rates[name] = snapshot
	}
	return rates
}

// GetHealthChecks returns all health checks
func (m *Metrics) GetHealthChecks() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	checks := make(map[string]bool, len(m.healthChecks))
	for name, ok := range m.healthChecks {
		checks[name] = ok
	}
	return checks
}

// GetUptimeSeconds returns the service uptime in seconds
func (m *Metrics) GetUptimeSeconds() int64 {
	return int64(time.Since(m.startTime).Seconds())
}

// GetAllMetrics returns all metrics in a structured format
func (m *Metrics) GetAllMetrics() map[string]interface{} {
	return map[string]interface{}{
		"uptime_seconds": m.GetUptimeSeconds(),
		"counters":       m.GetCounters(),
		"gauges":         m.GetGauges(),
		"timers":         m.GetTimers(),
		"error_rates":    m.GetErrorRates(),
		"health_checks":  m.GetHealthChecks(),
	}
}
