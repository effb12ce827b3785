// internal/infrastructure/transport/event_bus/event.go
package events

import "time"

// EventType - тип события
type EventType string

const (
	// События gateway Discord (имена совпадают с полем t)
	EventReady             EventType = "READY"
	EventResumed           EventType = "RESUMED"
	EventInteractionCreate EventType = "INTERACTION_CREATE"

	// События системы
	EventCritical EventType = "critical"
	EventError    EventType = "error"
)

// Event - структура события
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// EventSubscriber - интерфейс подписчика
type EventSubscriber interface {
	HandleEvent(event Event) error
	GetName() string
	GetSubscribedEvents() []EventType
}

// Middleware - промежуточное ПО для обработки событий
type Middleware interface {
	Process(event Event, next HandlerFunc) error
}

// HandlerFunc - функция обработки события
type HandlerFunc func(event Event) error
