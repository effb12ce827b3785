// internal/delivery/discord/app/bot/handlers/types.go
package handlers

import (
	"context"

	"github.com/TAG-Epic/shitpost/internal/delivery/discord"
	"github.com/TAG-Epic/shitpost/pkg/format"
)

// HandlerType тип хэндлера
type HandlerType string

const (
	TypeCommand   HandlerType = "command"
	TypeComponent HandlerType = "component"
	TypeModal     HandlerType = "modal"
)

// Handler интерфейс для всех хэндлеров взаимодействий
type Handler interface {
	Execute(ctx context.Context, params HandlerParams) (HandlerResult, error)
	GetName() string
	GetFormat() string // шаблон: имя команды или custom_id с плейсхолдерами
	GetType() HandlerType
}

// HandlerParams параметры вызова хэндлера
type HandlerParams struct {
	Interaction *discord.Interaction
	Args        format.Params // значения плейсхолдеров из шаблона
	RoutingID   string
	DispatchID  string
}

// HandlerResult результат хэндлера.
// Response == nil означает, что хэндлер ответил сам (или ответ не нужен).
type HandlerResult struct {
	Response *discord.InteractionResponse
	Metadata map[string]interface{}
}

// HandlerFunc адаптер обычной функции к Handler
type HandlerFunc func(ctx context.Context, params HandlerParams) (HandlerResult, error)

// Func оборачивает функцию в Handler с заданным именем.
// Шаблона у такого хэндлера нет: его добавляют через AddHandler, RegisterHandler его отклонит.
func Func(name string, handlerType HandlerType, fn HandlerFunc) Handler {
	return &funcHandler{name: name, handlerType: handlerType, fn: fn}
}

type funcHandler struct {
	name        string
	handlerType HandlerType
	fn          HandlerFunc
}

func (h *funcHandler) Execute(ctx context.Context, params HandlerParams) (HandlerResult, error) {
	return h.fn(ctx, params)
}

func (h *funcHandler) GetName() string      { return h.name }
func (h *funcHandler) GetFormat() string    { return "" }
func (h *funcHandler) GetType() HandlerType { return h.handlerType }
