// internal/delivery/discord/app/bot/errors.go
package bot

import "fmt"

// CriticalTransportError фатальный отказ транспорта: бот не может продолжать работу.
// Публикуется в шину как событие critical и завершает процесс.
type CriticalTransportError struct {
	Code   int // код закрытия gateway, 0 если неприменимо
	Reason string
	Err    error
}

func (e *CriticalTransportError) Error() string {
	msg := "critical transport error"
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (close code %d)", msg, e.Code)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CriticalTransportError) Unwrap() error {
	return e.Err
}
