// internal/infrastructure/transport/event_bus/event_bus.go
package events

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/TAG-Epic/shitpost/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrNotRunning = errors.New("event bus is not running")
	ErrBufferFull = errors.New("event buffer is full")
)

// EventBus - центральная шина событий
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]EventSubscriber
	middlewares []Middleware
	waiters     map[EventType][]chan Event
	eventBuffer chan Event
	metrics     *Metrics
	config      EventBusConfig
	running     bool
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// EventBusConfig - конфигурация EventBus
type EventBusConfig struct {
	BufferSize      int           `json:"buffer_size"`
	WorkerCount     int           `json:"worker_count"`
	MetricsInterval time.Duration `json:"metrics_interval"`
	EnableLogging   bool          `json:"enable_logging"`
}

// DefaultConfig - конфигурация по умолчанию
var DefaultConfig = EventBusConfig{
	BufferSize:      1000,
	WorkerCount:     10,
	MetricsInterval: 0,
	EnableLogging:   true,
}

// NewEventBus создает новую шину событий
func NewEventBus(config ...EventBusConfig) *EventBus {
	cfg := DefaultConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig.BufferSize
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}

	return &EventBus{
		subscribers: make(map[EventType][]EventSubscriber),
		waiters:     make(map[EventType][]chan Event),
		eventBuffer: make(chan Event, cfg.BufferSize),
		metrics:     newMetrics(),
		config:      cfg,
	}
}

// Start запускает EventBus
func (b *EventBus) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return
	}
	b.running = true
	b.stopChan = make(chan struct{})

	for i := 0; i < b.config.WorkerCount; i++ {
		b.wg.Add(1)
		go b.eventWorker(i, b.stopChan)
	}

	if b.config.MetricsInterval > 0 {
		b.wg.Add(1)
		go b.metricsLoop(b.config.MetricsInterval, b.stopChan)
	}

	if b.config.EnableLogging {
		logger.Info("🚀 EventBus запущен с %d обработчиками", b.config.WorkerCount)
	}
}

// Stop останавливает EventBus. События, оставшиеся в буфере, отбрасываются.
func (b *EventBus) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	close(b.stopChan)
	b.mu.Unlock()

	b.wg.Wait()

	if b.config.EnableLogging {
		logger.Info("🛑 EventBus остановлен")
	}
}

// Subscribe подписывает обработчик на тип события
func (b *EventBus) Subscribe(eventType EventType, subscriber EventSubscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	found := false
	for _, et := range subscriber.GetSubscribedEvents() {
		if et == eventType {
			found = true
			break
		}
	}
	if !found {
		logger.Warn("⚠️ Подписчик %s не подписан на событие %s", subscriber.GetName(), eventType)
		return
	}

	b.subscribers[eventType] = append(b.subscribers[eventType], subscriber)
	b.metrics.setSubscribers(eventType, len(b.subscribers[eventType]))

	if b.config.EnableLogging {
		logger.Info("✅ %s подписался на %s", subscriber.GetName(), eventType)
	}
}

// SubscribeAll подписывает обработчик на все его типы событий
func (b *EventBus) SubscribeAll(subscriber EventSubscriber) {
	for _, et := range subscriber.GetSubscribedEvents() {
		b.Subscribe(et, subscriber)
	}
}

// Unsubscribe отписывает обработчик от типа события
func (b *EventBus) Unsubscribe(eventType EventType, subscriber EventSubscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subscribers := b.subscribers[eventType]
	for i, sub := range subscribers {
		if sub != subscriber {
			continue
		}
		updated := make([]EventSubscriber, 0, len(subscribers)-1)
		updated = append(updated, subscribers[:i]...)
		updated = append(updated, subscribers[i+1:]...)
		b.subscribers[eventType] = updated
		b.metrics.setSubscribers(eventType, len(updated))

		if b.config.EnableLogging {
			logger.Info("❌ %s отписался от %s", subscriber.GetName(), eventType)
		}
		return
	}
}

// Publish публикует событие в буфер.
// Ожидающие WaitFor получают событие сразу, даже если буфер полон.
func (b *EventBus) Publish(event Event) error {
	b.mu.RLock()
	running := b.running
	b.mu.RUnlock()
	if !running {
		return ErrNotRunning
	}

	event = b.prepare(event)
	b.notifyWaiters(event)

	select {
	case b.eventBuffer <- event:
		b.metrics.incPublished()
		logger.Debug("📤 Опубликовано событие: %s от %s", event.Type, event.Source)
		return nil
	default:
		b.metrics.incDropped()
		logger.Warn("⚠️ Буфер событий полон, событие отброшено: %s", event.Type)
		return ErrBufferFull
	}
}

// PublishSync обрабатывает событие в вызывающей горутине
func (b *EventBus) PublishSync(event Event) error {
	event = b.prepare(event)
	b.notifyWaiters(event)
	b.metrics.incPublished()
	return b.processEvent(event)
}

// WaitFor блокируется до первого события заданного типа или отмены ctx
func (b *EventBus) WaitFor(ctx context.Context, eventType EventType) (Event, error) {
	ch, cancel := b.Waiter(eventType)

	select {
	case event := <-ch:
		return event, nil
	case <-ctx.Done():
		cancel()
		return Event{}, ctx.Err()
	}
}

// Waiter регистрирует одноразовое ожидание события сразу, до начала ожидания.
// Канал получит первое событие типа; cancel снимает регистрацию.
func (b *EventBus) Waiter(eventType EventType) (<-chan Event, func()) {
	ch := make(chan Event, 1)

	b.mu.Lock()
	b.waiters[eventType] = append(b.waiters[eventType], ch)
	b.mu.Unlock()

	return ch, func() { b.removeWaiter(eventType, ch) }
}

func (b *EventBus) removeWaiter(eventType EventType, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	waiters := b.waiters[eventType]
	for i, w := range waiters {
		if w == ch {
			b.waiters[eventType] = append(waiters[:i:i], waiters[i+1:]...)
			return
		}
	}
}

func (b *EventBus) notifyWaiters(event Event) {
	b.mu.Lock()
	waiters := b.waiters[event.Type]
	delete(b.waiters, event.Type)
	b.mu.Unlock()

	for _, ch := range waiters {
		ch <- event
	}
}

func (b *EventBus) prepare(event Event) Event {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return event
}

// AddMiddleware добавляет middleware
func (b *EventBus) AddMiddleware(middleware Middleware) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.middlewares = append(b.middlewares, middleware)

	if b.config.EnableLogging {
		logger.Debug("➕ Добавлен middleware: %T", middleware)
	}
}

// eventWorker - обработчик событий
func (b *EventBus) eventWorker(id int, stop <-chan struct{}) {
	defer b.wg.Done()

	logger.Debug("🔍 [EventWorker %d] Запущен", id)

	for {
		select {
		case event := <-b.eventBuffer:
			_ = b.processEvent(event)
		case <-stop:
			logger.Debug("🔍 [EventWorker %d] Остановлен", id)
			return
		}
	}
}

// processEvent обрабатывает одно событие
func (b *EventBus) processEvent(event Event) error {
	defer b.metrics.incProcessed()

	b.mu.RLock()
	subscribers := b.subscribers[event.Type]
	middlewares := b.middlewares[:len(b.middlewares):len(b.middlewares)]
	b.mu.RUnlock()

	if len(subscribers) == 0 {
		logger.Debug("Нет подписчиков для события: %s", event.Type)
		return nil
	}

	return b.executeWithMiddleware(event, middlewares, b.createHandlerChain(subscribers))
}

// createHandlerChain вызывает всех подписчиков, ошибка одного не мешает остальным
func (b *EventBus) createHandlerChain(subscribers []EventSubscriber) HandlerFunc {
	return func(event Event) error {
		var lastError error

		for _, subscriber := range subscribers {
			if err := b.handleEvent(event, subscriber); err != nil {
				lastError = err
				logger.Error("❌ Ошибка обработки события %s подписчиком %s: %v",
					event.Type, subscriber.GetName(), err)
			}
		}

		return lastError
	}
}

// handleEvent вызывает подписчика с перехватом паники
func (b *EventBus) handleEvent(event Event, subscriber EventSubscriber) (err error) {
	b.safeExecute(subscriber.GetName(), func() {
		err = subscriber.HandleEvent(event)
	}, &err)

	if err != nil {
		b.metrics.incFailed()
	}
	return err
}

// executeWithMiddleware выполняет обработку через цепочку middleware
func (b *EventBus) executeWithMiddleware(event Event, middlewares []Middleware, handler HandlerFunc) error {
	chain := handler
	for i := len(middlewares) - 1; i >= 0; i-- {
		mw := middlewares[i]
		next := chain
		chain = func(event Event) error {
			return mw.Process(event, next)
		}
	}
	return chain(event)
}

// safeExecute безопасно выполняет функцию с обработкой паники
func (b *EventBus) safeExecute(name string, fn func(), errp *error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("⚠️ Паника восстановлена в подписчике %s: %v\n%s", name, r, debug.Stack())
			*errp = fmt.Errorf("паника в подписчике %s: %v", name, r)
		}
	}()

	fn()
}

func (b *EventBus) metricsLoop(interval time.Duration, stop <-chan struct{}) {
	defer b.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.logMetrics()
		case <-stop:
			return
		}
	}
}

// logMetrics логирует метрики
func (b *EventBus) logMetrics() {
	metrics := b.GetMetrics()

	stats := map[string]string{
		"Опубликовано": fmt.Sprintf("%d", metrics.EventsPublished),
		"Обработано":   fmt.Sprintf("%d", metrics.EventsProcessed),
		"Ошибок":       fmt.Sprintf("%d", metrics.EventsFailed),
		"Отброшено":    fmt.Sprintf("%d", metrics.EventsDropped),
	}
	if metrics.EventsProcessed > 0 {
		stats["Среднее время"] = (metrics.ProcessingTime / time.Duration(metrics.EventsProcessed)).String()
	}
	for eventType, count := range metrics.SubscribersCount {
		stats[string(eventType)] = fmt.Sprintf("%d подписчиков", count)
	}

	logger.GetLogger().Status("EventBus метрики", stats)
}

// GetMetrics возвращает метрики
func (b *EventBus) GetMetrics() MetricsSnapshot {
	return b.metrics.snapshot()
}

// GetSubscriberCount возвращает количество подписчиков
func (b *EventBus) GetSubscriberCount(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subscribers[eventType])
}

// IsRunning возвращает true если EventBus запущен
func (b *EventBus) IsRunning() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.running
}

// Name возвращает имя сервиса
func (b *EventBus) Name() string {
	return "EventBus"
}

// HealthCheck проверяет здоровье сервиса
func (b *EventBus) HealthCheck() bool {
	return b.IsRunning()
}

// GetMetricsMap возвращает метрики в виде map (для /health)
func (b *EventBus) GetMetricsMap() map[string]interface{} {
	metrics := b.GetMetrics()
	return map[string]interface{}{
		"events_published": metrics.EventsPublished,
		"events_processed": metrics.EventsProcessed,
		"events_failed":    metrics.EventsFailed,
		"events_dropped":   metrics.EventsDropped,
		"processing_time":  metrics.ProcessingTime.String(),
		"subscribers":      metrics.SubscribersCount,
	}
}
