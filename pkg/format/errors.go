// pkg/format/errors.go
package format

import (
	"errors"
	"fmt"
)

var errMissing = errors.New("параметр отсутствует")

// MalformedPatternError ошибка разбора шаблона.
// Возникает только на этапе регистрации хэндлеров и должна прерывать запуск.
type MalformedPatternError struct {
	Format string // исходный шаблон
	Pos    int    // байтовая позиция проблемы
	Reason string
}

func (e *MalformedPatternError) Error() string {
	return fmt.Sprintf("некорректный шаблон %q (позиция %d): %s", e.Format, e.Pos, e.Reason)
}

// ParameterTypeError ошибка приведения извлеченного параметра к нужному типу
type ParameterTypeError struct {
	Name  string
	Value string
	Type  string
	Err   error
}

func (e *ParameterTypeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("параметр %s=%q не является %s", e.Name, e.Value, e.Type)
	}
	return fmt.Sprintf("параметр %s=%q не является %s: %v", e.Name, e.Value, e.Type, e.Err)
}

func (e *ParameterTypeError) Unwrap() error {
	return e.Err
}
