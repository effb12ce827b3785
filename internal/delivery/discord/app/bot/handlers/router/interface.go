// internal/delivery/discord/app/bot/handlers/router/interface.go
package router

import (
	"context"

	"github.com/TAG-Epic/shitpost/internal/delivery/discord"
	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/handlers"
	"github.com/TAG-Epic/shitpost/pkg/format"
)

// Router интерфейс маршрутизатора взаимодействий
type Router interface {
	Add(pattern *format.Pattern, handler handlers.Handler)          // регистрация по готовому шаблону
	AddHandler(formatString string, handler handlers.Handler) error // регистрация по строке шаблона
	RegisterHandler(handler handlers.Handler) error                 // шаблон берется из GetFormat()
	Use(mw Middleware)
	Observe(observer Observer)
	Dispatch(ctx context.Context, interaction *discord.Interaction) Result
	Entries() []Entry
	Stats() Stats
}

// Middleware оборачивает вызов хэндлера (логирование, тайминги и т.п.)
type Middleware func(ctx context.Context, handler handlers.Handler, params handlers.HandlerParams, next handlers.HandlerFunc) (handlers.HandlerResult, error)

// Observer получает итог каждой маршрутизации, включая несовпадения
type Observer interface {
	OnDispatch(ctx context.Context, result Result)
}

// ObserverFunc адаптер функции к Observer
type ObserverFunc func(ctx context.Context, result Result)

func (f ObserverFunc) OnDispatch(ctx context.Context, result Result) {
	f(ctx, result)
}
