package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters: request outcomes plus
// inventory activity (stock mutations applied, alerts emitted, live
// alert subscriptions).
type Metrics struct {
	mu                  sync.Mutex
	requestCount        map[string]int64
	errorCount          map[string]int64
	stockMutations      int64
	alertsEmitted       int64
	activeSubscriptions int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordStockMutation counts one successfully applied stock update.
func (m *Metrics) RecordStockMutation() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stockMutations++
}

// RecordAlert counts one emitted low-stock alert.
func (m *Metrics) RecordAlert() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alertsEmitted++
}

// SubscriptionStarted tracks a new alert subscription.
func (m *Metrics) SubscriptionStarted() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeSubscriptions++
}

// SubscriptionEnded tracks a finished alert subscription.
func (m *Metrics) SubscriptionEnded() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeSubscriptions--
}

// InventoryCounts returns the current inventory counters.
func (m *Metrics) InventoryCounts() (stockMutations, alertsEmitted, activeSubscriptions int64) {
	if m == nil {
		return 0, 0, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stockMutations, m.alertsEmitted, m.activeSubscriptions
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
