// internal/infrastructure/transport/event_bus/middleware.go
package events

import (
	"fmt"
	"time"

	"github.com/TAG-Epic/shitpost/pkg/logger"
)

// LoggingMiddleware - middleware для логирования
type LoggingMiddleware struct{}

func (m *LoggingMiddleware) Process(event Event, next HandlerFunc) error {
	start := time.Now()

	err := next(event)

	duration := time.Since(start)
	if err != nil {
		logger.Debug("❌ [LoggingMiddleware] Ошибка обработки %s (%s) за %v: %v",
			event.Type, event.ID, duration, err)
	} else {
		logger.Debug("✅ [LoggingMiddleware] %s (%s) обработан за %v",
			event.Type, event.ID, duration)
	}

	return err
}

// MetricsMiddleware - middleware для сбора времени обработки
type MetricsMiddleware struct {
	metrics *Metrics
}

func (m *MetricsMiddleware) Process(event Event, next HandlerFunc) error {
	start := time.Now()
	err := next(event)
	m.metrics.addProcessingTime(time.Since(start))
	return err
}

// ValidationMiddleware - middleware для валидации событий
type ValidationMiddleware struct{}

func (m *ValidationMiddleware) Process(event Event, next HandlerFunc) error {
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}
	if event.Source == "" {
		return fmt.Errorf("event source is required")
	}
	if event.Timestamp.IsZero() {
		return fmt.Errorf("event timestamp is required")
	}
	return next(event)
}
