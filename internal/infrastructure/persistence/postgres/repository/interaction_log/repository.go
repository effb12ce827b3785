// internal/infrastructure/persistence/postgres/repository/interaction_log/repository.go
package interaction_log

import (
	"context"
	"fmt"
	"time"

	"github.com/TAG-Epic/shitpost/internal/infrastructure/persistence/postgres/models"

	"github.com/jmoiron/sqlx"
)

const defaultRecentLimit = 50

// InteractionLogRepository интерфейс журнала взаимодействий
type InteractionLogRepository interface {
	Create(ctx context.Context, entry *models.InteractionLog) error
	FindRecent(ctx context.Context, limit int) ([]*models.InteractionLog, error)
	CountByOutcome(ctx context.Context, since time.Time) (map[models.Outcome]int64, error)
}

// interactionLogRepositoryImpl реализация на sqlx
type interactionLogRepositoryImpl struct {
	db *sqlx.DB
}

// NewInteractionLogRepository создает новый репозиторий
func NewInteractionLogRepository(db *sqlx.DB) InteractionLogRepository {
	return &interactionLogRepositoryImpl{db: db}
}

// Create сохраняет запись и заполняет ID и CreatedAt
func (r *interactionLogRepositoryImpl) Create(ctx context.Context, entry *models.InteractionLog) error {
	if len(entry.Params) == 0 {
		if err := entry.SetParams(nil); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO interaction_log (
			dispatch_id, interaction_id, kind, identifier, handler_name,
			pattern, params, outcome, error_message, duration_ms
		) VALUES (
			:dispatch_id, :interaction_id, :kind, :identifier, :handler_name,
			:pattern, :params, :outcome, :error_message, :duration_ms
		) RETURNING id, created_at`

	rows, err := r.db.NamedQueryContext(ctx, query, entry)
	if err != nil {
		return fmt.Errorf("failed to insert interaction log: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&entry.ID, &entry.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan interaction log id: %w", err)
		}
	}
	return rows.Err()
}

// FindRecent возвращает последние записи, новые первыми
func (r *interactionLogRepositoryImpl) FindRecent(ctx context.Context, limit int) ([]*models.InteractionLog, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	query := `
		SELECT id, dispatch_id, interaction_id, kind, identifier, handler_name,
		       pattern, params, outcome, error_message, duration_ms, created_at
		FROM interaction_log
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	var entries []*models.InteractionLog
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query interaction log: %w", err)
	}
	return entries, nil
}

// CountByOutcome считает записи по итогам начиная с since
func (r *interactionLogRepositoryImpl) CountByOutcome(ctx context.Context, since time.Time) (map[models.Outcome]int64, error) {
	query := `
		SELECT outcome, COUNT(*) AS total
		FROM interaction_log
		WHERE created_at >= $1
		GROUP BY outcome`

	var rows []struct {
		Outcome models.Outcome `db:"outcome"`
		Total   int64          `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, fmt.Errorf("failed to count interaction log: %w", err)
	}

	counts := make(map[models.Outcome]int64, len(rows))
	for _, row := range rows {
		counts[row.Outcome] = row.Total
	}
	return counts, nil
}
