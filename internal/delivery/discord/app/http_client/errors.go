// internal/delivery/discord/app/http_client/errors.go
package http_client

import "fmt"

// RemoteRejectionError Discord отклонил запрос (4xx, кроме 429)
type RemoteRejectionError struct {
	Route   string
	Status  int
	Code    int
	Message string
	Body    []byte
}

func (e *RemoteRejectionError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("Discord отклонил %s: HTTP %d, код %d: %s", e.Route, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("Discord отклонил %s: HTTP %d: %s", e.Route, e.Status, e.Message)
}

// ServerError ошибка на стороне Discord (5xx)
type ServerError struct {
	Route  string
	Status int
	Body   []byte
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("ошибка сервера Discord на %s: HTTP %d", e.Route, e.Status)
}

// RateLimitError лимит не снят после повторной попытки
type RateLimitError struct {
	Route      string
	RetryAfter float64
	Global     bool
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("превышен лимит запросов %s (global=%v), повтор через %.2fs", e.Route, e.Global, e.RetryAfter)
}
