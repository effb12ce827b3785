// internal/infrastructure/transport/event_bus/factory.go
package events

import (
	"strings"
	"time"

	"github.com/TAG-Epic/shitpost/internal/infrastructure/config"
)

// Factory - фабрика для создания EventBus
type Factory struct{}

// NewEventBusFromConfig создает EventBus из конфигурации
func (f *Factory) NewEventBusFromConfig(cfg *config.Config) *EventBus {
	busConfig := EventBusConfig{
		BufferSize:    cfg.EventBus.BufferSize,
		WorkerCount:   cfg.EventBus.WorkerCount,
		EnableLogging: cfg.EventBus.EnableLogging,
	}
	if cfg.EventBus.EnableMetrics {
		busConfig.MetricsInterval = time.Duration(cfg.EventBus.MetricsIntervalSec) * time.Second
	}

	bus := NewEventBus(busConfig)

	if strings.EqualFold(cfg.LogLevel, "debug") {
		bus.AddMiddleware(&LoggingMiddleware{})
	}
	bus.AddMiddleware(&ValidationMiddleware{})
	bus.AddMiddleware(&MetricsMiddleware{metrics: bus.metrics})

	return bus
}

// RegisterDefaultSubscribers регистрирует стандартных подписчиков
func (f *Factory) RegisterDefaultSubscribers(bus *EventBus) {
	bus.SubscribeAll(NewConsoleLoggerSubscriber())
}
