// internal/infrastructure/persistence/in_memory_storage/storage.go
package storage

import (
	"context"
	"sync"
	"time"
)

const defaultCleanupInterval = time.Minute

// InMemoryDeduplicator хранит идентификаторы обработанных взаимодействий в памяти процесса.
// Используется, когда Redis выключен.
type InMemoryDeduplicator struct {
	mu      sync.RWMutex
	seen    map[string]time.Time // id -> момент истечения
	now     func() time.Time
	stopCh  chan struct{}
	stopped sync.Once
	wg      sync.WaitGroup
}

// NewInMemoryDeduplicator создает хранилище и запускает очистку просроченных записей
func NewInMemoryDeduplicator(cleanupInterval time.Duration) *InMemoryDeduplicator {
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	}

	d := &InMemoryDeduplicator{
		seen:   make(map[string]time.Time),
		now:    time.Now,
		stopCh: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.startCleanupRoutine(cleanupInterval)

	return d
}

// MarkInteraction true, если взаимодействие встречается впервые за ttl
func (d *InMemoryDeduplicator) MarkInteraction(_ context.Context, interactionID string, ttl time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if expires, ok := d.seen[interactionID]; ok && now.Before(expires) {
		return false, nil
	}
	d.seen[interactionID] = now.Add(ttl)
	return true, nil
}

// Len количество хранимых идентификаторов
func (d *InMemoryDeduplicator) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.seen)
}

// CleanOldData удаляет просроченные записи
func (d *InMemoryDeduplicator) CleanOldData() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	removed := 0
	for id, expires := range d.seen {
		if !now.Before(expires) {
			delete(d.seen, id)
			removed++
		}
	}
	return removed
}

// Stop останавливает очистку
func (d *InMemoryDeduplicator) Stop() {
	d.stopped.Do(func() { close(d.stopCh) })
	d.wg.Wait()
}

func (d *InMemoryDeduplicator) startCleanupRoutine(interval time.Duration) {
	defer d.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.CleanOldData()
		case <-d.stopCh:
			return
		}
	}
}
