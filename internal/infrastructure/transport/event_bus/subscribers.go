// internal/infrastructure/transport/event_bus/subscribers.go
package events

import "github.com/TAG-Epic/shitpost/pkg/logger"

// BaseSubscriber - базовая реализация подписчика
type BaseSubscriber struct {
	name             string
	subscribedEvents []EventType
	handler          func(Event) error
}

// NewBaseSubscriber создает нового подписчика
func NewBaseSubscriber(name string, events []EventType, handler func(Event) error) *BaseSubscriber {
	return &BaseSubscriber{
		name:             name,
		subscribedEvents: events,
		handler:          handler,
	}
}

// HandleEvent обрабатывает событие
func (s *BaseSubscriber) HandleEvent(event Event) error {
	return s.handler(event)
}

// GetName возвращает имя подписчика
func (s *BaseSubscriber) GetName() string {
	return s.name
}

// GetSubscribedEvents возвращает типы событий
func (s *BaseSubscriber) GetSubscribedEvents() []EventType {
	return s.subscribedEvents
}

// NewConsoleLoggerSubscriber пишет в лог служебные события gateway
func NewConsoleLoggerSubscriber() *BaseSubscriber {
	return NewBaseSubscriber(
		"console_logger",
		[]EventType{EventReady, EventResumed, EventError, EventCritical},
		func(event Event) error {
			switch event.Type {
			case EventReady:
				logger.Info("🟢 Gateway готов: %v", event.Data)
			case EventResumed:
				logger.Info("🔁 Сессия gateway восстановлена")
			case EventError:
				logger.Warn("❌ Ошибка: %v", event.Data)
			case EventCritical:
				logger.Error("💥 Критическая ошибка транспорта: %v", event.Data)
			}
			return nil
		},
	)
}
