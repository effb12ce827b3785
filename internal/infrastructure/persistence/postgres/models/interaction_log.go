// internal/infrastructure/persistence/postgres/models/interaction_log.go
package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Outcome итог маршрутизации взаимодействия
type Outcome string

const (
	OutcomeHandled   Outcome = "handled"
	OutcomeFailed    Outcome = "failed"
	OutcomeUnmatched Outcome = "unmatched"
)

// InteractionLog запись журнала маршрутизации
type InteractionLog struct {
	ID            int64          `db:"id" json:"id"`
	DispatchID    string         `db:"dispatch_id" json:"dispatch_id"`
	InteractionID string         `db:"interaction_id" json:"interaction_id"`
	Kind          string         `db:"kind" json:"kind"`
	Identifier    string         `db:"identifier" json:"identifier"`
	HandlerName   string         `db:"handler_name" json:"handler_name"`
	Pattern       string         `db:"pattern" json:"pattern"`
	Params        types.JSONText `db:"params" json:"params"`
	Outcome       Outcome        `db:"outcome" json:"outcome"`
	ErrorMessage  string         `db:"error_message" json:"error_message"`
	DurationMs    float64        `db:"duration_ms" json:"duration_ms"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// SetParams сериализует параметры шаблона в JSONB
func (l *InteractionLog) SetParams(params map[string]string) error {
	if params == nil {
		params = map[string]string{}
	}
	data, err := json.Marshal(params)
	if err != nil {
		return err
	}
	l.Params = types.JSONText(data)
	return nil
}

// GetParams возвращает параметры шаблона
func (l *InteractionLog) GetParams() (map[string]string, error) {
	params := map[string]string{}
	if len(l.Params) == 0 {
		return params, nil
	}
	if err := l.Params.Unmarshal(&params); err != nil {
		return nil, err
	}
	return params, nil
}
