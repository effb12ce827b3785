// internal/infrastructure/transport/event_bus/metrics.go
package events

import (
	"sync"
	"time"
)

// Metrics - метрики EventBus
type Metrics struct {
	mu               sync.RWMutex
	eventsPublished  int64
	eventsProcessed  int64
	eventsFailed     int64
	eventsDropped    int64
	processingTime   time.Duration
	subscribersCount map[EventType]int
}

// MetricsSnapshot - копия метрик для чтения
type MetricsSnapshot struct {
	EventsPublished  int64             `json:"events_published"`
	EventsProcessed  int64             `json:"events_processed"`
	EventsFailed     int64             `json:"events_failed"`
	EventsDropped    int64             `json:"events_dropped"`
	ProcessingTime   time.Duration     `json:"processing_time"`
	SubscribersCount map[EventType]int `json:"subscribers_count"`
}

func newMetrics() *Metrics {
	return &Metrics{subscribersCount: make(map[EventType]int)}
}

func (m *Metrics) incPublished() {
	m.mu.Lock()
	m.eventsPublished++
	m.mu.Unlock()
}

func (m *Metrics) incProcessed() {
	m.mu.Lock()
	m.eventsProcessed++
	m.mu.Unlock()
}

func (m *Metrics) incFailed() {
	m.mu.Lock()
	m.eventsFailed++
	m.mu.Unlock()
}

func (m *Metrics) incDropped() {
	m.mu.Lock()
	m.eventsDropped++
	m.mu.Unlock()
}

func (m *Metrics) addProcessingTime(d time.Duration) {
	m.mu.Lock()
	m.processingTime += d
	m.mu.Unlock()
}

func (m *Metrics) setSubscribers(eventType EventType, count int) {
	m.mu.Lock()
	m.subscribersCount[eventType] = count
	m.mu.Unlock()
}

func (m *Metrics) snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[EventType]int, len(m.subscribersCount))
	for k, v := range m.subscribersCount {
		counts[k] = v
	}
	return MetricsSnapshot{
		EventsPublished:  m.eventsPublished,
		EventsProcessed:  m.eventsProcessed,
		EventsFailed:     m.eventsFailed,
		EventsDropped:    m.eventsDropped,
		ProcessingTime:   m.processingTime,
		SubscribersCount: counts,
	}
}
