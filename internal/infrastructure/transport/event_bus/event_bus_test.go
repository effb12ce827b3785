// internal/infrastructure/transport/event_bus/event_bus_test.go
package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func newTestBus(t *testing.T, workers int) *EventBus {
	t.Helper()
	bus := NewEventBus(EventBusConfig{BufferSize: 16, WorkerCount: workers})
	bus.AddMiddleware(&ValidationMiddleware{})
	bus.AddMiddleware(&MetricsMiddleware{metrics: bus.metrics})
	bus.Start()
	t.Cleanup(bus.Stop)
	return bus
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus := newTestBus(t, 2)

	got := make(chan Event, 1)
	bus.Subscribe(EventInteractionCreate, NewBaseSubscriber("test", []EventType{EventInteractionCreate}, func(e Event) error {
		got <- e
		return nil
	}))

	if err := bus.Publish(Event{Type: EventInteractionCreate, Source: "gateway", Data: "payload"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case e := <-got:
		if e.ID == "" || e.Timestamp.IsZero() || e.Data != "payload" {
			t.Fatalf("event not prepared: %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestSubscribeRejectsForeignEventType(t *testing.T) {
	bus := NewEventBus()
	bus.Subscribe(EventReady, NewBaseSubscriber("x", []EventType{EventInteractionCreate}, func(Event) error { return nil }))
	if bus.GetSubscriberCount(EventReady) != 0 {
		t.Fatal("subscriber registered for an event it does not declare")
	}
}

func TestPublishWhenStopped(t *testing.T) {
	bus := NewEventBus()
	if err := bus.Publish(Event{Type: EventReady, Source: "t"}); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("err = %v", err)
	}
}

func TestSubscriberPanicIsIsolated(t *testing.T) {
	bus := NewEventBus()

	var calls atomic.Int32
	bus.Subscribe(EventInteractionCreate, NewBaseSubscriber("boom", []EventType{EventInteractionCreate}, func(Event) error {
		panic("boom")
	}))
	bus.Subscribe(EventInteractionCreate, NewBaseSubscriber("ok", []EventType{EventInteractionCreate}, func(Event) error {
		calls.Add(1)
		return nil
	}))

	err := bus.PublishSync(Event{Type: EventInteractionCreate, Source: "t"})
	if err == nil {
		t.Fatal("panic must surface as error from PublishSync")
	}
	if calls.Load() != 1 {
		t.Fatal("second subscriber was not called")
	}
	if m := bus.GetMetrics(); m.EventsFailed != 1 || m.EventsProcessed != 1 {
		t.Fatalf("metrics = %+v", m)
	}
}

func TestValidationMiddlewareRejectsMissingSource(t *testing.T) {
	bus := NewEventBus()
	bus.AddMiddleware(&ValidationMiddleware{})

	called := false
	bus.Subscribe(EventReady, NewBaseSubscriber("x", []EventType{EventReady}, func(Event) error {
		called = true
		return nil
	}))

	if err := bus.PublishSync(Event{Type: EventReady}); err == nil {
		t.Fatal("expected validation error")
	}
	if called {
		t.Fatal("subscriber must not run for invalid event")
	}
}

func TestWaitForCritical(t *testing.T) {
	bus := newTestBus(t, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan Event, 1)
	go func() {
		e, err := bus.WaitFor(ctx, EventCritical)
		if err != nil {
			t.Errorf("WaitFor: %v", err)
		}
		done <- e
	}()
	// ждем регистрации ожидающего
	deadline := time.Now().Add(time.Second)
	for {
		bus.mu.RLock()
		n := len(bus.waiters[EventCritical])
		bus.mu.RUnlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	cause := errors.New("authentication failed")
	_ = bus.Publish(Event{Type: EventCritical, Source: "gateway", Data: cause})

	select {
	case e := <-done:
		if e.Data != cause {
			t.Fatalf("data = %v", e.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitFor did not return")
	}
}

func TestWaitForHonoursContext(t *testing.T) {
	bus := NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := bus.WaitFor(ctx, EventCritical); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if len(bus.waiters[EventCritical]) != 0 {
		t.Fatal("waiter leaked")
	}
}

func TestWaitForSeesEventWhenBufferFull(t *testing.T) {
	bus := NewEventBus(EventBusConfig{BufferSize: 1, WorkerCount: 1})
	bus.mu.Lock()
	bus.running = true // воркеры не запущены, буфер не разбирается
	bus.stopChan = make(chan struct{})
	bus.mu.Unlock()

	_ = bus.Publish(Event{Type: EventError, Source: "t"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		_, err := bus.WaitFor(ctx, EventCritical)
		result <- err
	}()

	for {
		bus.mu.RLock()
		n := len(bus.waiters[EventCritical])
		bus.mu.RUnlock()
		if n > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if err := bus.Publish(Event{Type: EventCritical, Source: "t"}); !errors.Is(err, ErrBufferFull) {
		t.Fatalf("expected full buffer, got %v", err)
	}
	if err := <-result; err != nil {
		t.Fatalf("WaitFor: %v", err)
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	sub := NewBaseSubscriber("x", []EventType{EventReady}, func(Event) error { return nil })
	bus.Subscribe(EventReady, sub)
	bus.Unsubscribe(EventReady, sub)

	if bus.GetSubscriberCount(EventReady) != 0 {
		t.Fatal("subscriber not removed")
	}
	if m := bus.GetMetrics(); m.SubscribersCount[EventReady] != 0 {
		t.Fatalf("metrics = %+v", m.SubscribersCount)
	}
}

func TestWaiterRegisteredBeforePublish(t *testing.T) {
	bus := newTestBus(t, 1)

	ch, cancel := bus.Waiter(EventCritical)
	defer cancel()

	if err := bus.Publish(Event{Type: EventCritical, Source: "gateway", Data: "boom"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case e := <-ch:
		if e.Data != "boom" {
			t.Fatalf("event = %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter did not receive event")
	}
}

func TestWaiterCancel(t *testing.T) {
	bus := NewEventBus()
	_, cancel := bus.Waiter(EventCritical)
	cancel()

	if len(bus.waiters[EventCritical]) != 0 {
		t.Fatal("waiter not removed")
	}
}
