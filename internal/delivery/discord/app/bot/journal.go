// internal/delivery/discord/app/bot/journal.go
package bot

import (
	"context"
	"sync"
	"time"

	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/handlers/router"
	"github.com/TAG-Epic/shitpost/internal/infrastructure/persistence/postgres/models"
	"github.com/TAG-Epic/shitpost/internal/infrastructure/persistence/postgres/repository/interaction_log"
	"github.com/TAG-Epic/shitpost/pkg/logger"
)

const (
	journalBufferSize   = 256
	journalWriteTimeout = 5 * time.Second
	journalRecentLimit  = 5
)

// InteractionJournal наблюдатель роутера, пишущий итоги маршрутизации в PostgreSQL.
// Запись идет в отдельной горутине; при переполнении буфера записи отбрасываются.
type InteractionJournal struct {
	repo      interaction_log.InteractionLogRepository
	entries   chan *models.InteractionLog
	startedAt time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu      sync.Mutex
	written int64
	dropped int64
	failed  int64
}

// NewInteractionJournal создает журнал поверх репозитория
func NewInteractionJournal(repo interaction_log.InteractionLogRepository) *InteractionJournal {
	return &InteractionJournal{
		repo:      repo,
		entries:   make(chan *models.InteractionLog, journalBufferSize),
		startedAt: time.Now(),
		stopCh:    make(chan struct{}),
	}
}

// Start запускает writer
func (j *InteractionJournal) Start() {
	j.wg.Add(1)
	go j.writer()
}

// Stop дописывает буфер и останавливает writer
func (j *InteractionJournal) Stop() {
	j.stopOnce.Do(func() { close(j.stopCh) })
	j.wg.Wait()
}

// OnDispatch реализует router.Observer
func (j *InteractionJournal) OnDispatch(_ context.Context, result router.Result) {
	entry := newLogEntry(result)

	select {
	case j.entries <- entry:
	default:
		j.mu.Lock()
		j.dropped++
		j.mu.Unlock()
		logger.Warn("⚠️ Журнал взаимодействий переполнен, запись %s отброшена", result.DispatchID)
	}
}

func (j *InteractionJournal) writer() {
	defer j.wg.Done()

	for {
		select {
		case entry := <-j.entries:
			j.write(entry)
		case <-j.stopCh:
			for {
				select {
				case entry := <-j.entries:
					j.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (j *InteractionJournal) write(entry *models.InteractionLog) {
	ctx, cancel := context.WithTimeout(context.Background(), journalWriteTimeout)
	defer cancel()

	if err := j.repo.Create(ctx, entry); err != nil {
		j.mu.Lock()
		j.failed++
		j.mu.Unlock()
		logger.Warn("⚠️ Не удалось записать взаимодействие %s в журнал: %v", entry.DispatchID, err)
		return
	}

	j.mu.Lock()
	j.written++
	j.mu.Unlock()
}

// GetStats статистика журнала
func (j *InteractionJournal) GetStats() map[string]int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return map[string]int64{
		"written": j.written,
		"dropped": j.dropped,
		"failed":  j.failed,
	}
}

// Summary итоги из PostgreSQL с момента запуска и последние записи.
// Ошибки чтения попадают в поле "error", счетчики журнала есть всегда.
func (j *InteractionJournal) Summary(ctx context.Context) map[string]interface{} {
	summary := map[string]interface{}{"journal": j.GetStats()}

	counts, err := j.repo.CountByOutcome(ctx, j.startedAt)
	if err != nil {
		summary["error"] = err.Error()
		return summary
	}
	outcomes := make(map[string]int64, len(counts))
	for outcome, n := range counts {
		outcomes[string(outcome)] = n
	}
	summary["outcomes_since_start"] = outcomes

	recent, err := j.repo.FindRecent(ctx, journalRecentLimit)
	if err != nil {
		summary["error"] = err.Error()
		return summary
	}
	last := make([]map[string]interface{}, 0, len(recent))
	for _, entry := range recent {
		last = append(last, map[string]interface{}{
			"identifier": entry.Identifier,
			"handler":    entry.HandlerName,
			"outcome":    entry.Outcome,
			"at":         entry.CreatedAt.Format(time.RFC3339),
		})
	}
	summary["recent"] = last
	return summary
}

func newLogEntry(result router.Result) *models.InteractionLog {
	entry := &models.InteractionLog{
		DispatchID:    result.DispatchID,
		InteractionID: result.InteractionID,
		Kind:          result.Kind.String(),
		Identifier:    result.Identifier,
		HandlerName:   result.HandlerName,
		Pattern:       result.Pattern,
		DurationMs:    float64(result.Duration.Microseconds()) / 1000,
	}

	switch {
	case !result.Matched:
		entry.Outcome = models.OutcomeUnmatched
	case result.Err != nil:
		entry.Outcome = models.OutcomeFailed
		entry.ErrorMessage = result.Err.Error()
	default:
		entry.Outcome = models.OutcomeHandled
	}

	if err := entry.SetParams(result.Params); err != nil {
		logger.Debug("Журнал: параметры %s не сериализованы: %v", result.DispatchID, err)
	}
	return entry
}
