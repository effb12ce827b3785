// internal/delivery/discord/app/bot/handlers/router/router.go
package router

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TAG-Epic/shitpost/internal/delivery/discord"
	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/handlers"
	"github.com/TAG-Epic/shitpost/pkg/format"
	"github.com/TAG-Epic/shitpost/pkg/logger"

	"github.com/google/uuid"
)

// Entry пара шаблон -> хэндлер
type Entry struct {
	Pattern *format.Pattern
	Handler handlers.Handler
}

// Result итог одной маршрутизации
type Result struct {
	DispatchID    string
	InteractionID string
	Kind          discord.InteractionType
	Identifier    string
	Matched       bool
	HandlerName   string
	Pattern       string
	Params        format.Params
	Response      *discord.InteractionResponse
	Err           error
	Duration      time.Duration
}

// Stats счетчики роутера
type Stats struct {
	Handlers   int
	Dispatched int64
	Matched    int64
	Unmatched  int64
	Failed     int64
	Panicked   int64
}

// ErrEmptyFormat хэндлер не объявил шаблон (например, handlers.Func)
var ErrEmptyFormat = errors.New("у хэндлера пустой шаблон")

// PanicError паника внутри хэндлера, перехваченная роутером
type PanicError struct {
	Handler string
	Value   interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("паника в хэндлере %s: %v", e.Handler, e.Value)
}

// routerImpl реализация Router.
// Порядок регистрации значим: побеждает первый совпавший шаблон.
type routerImpl struct {
	mu          sync.RWMutex
	entries     []Entry
	middlewares []Middleware
	observers   []Observer

	dispatched atomic.Int64
	matched    atomic.Int64
	unmatched  atomic.Int64
	failed     atomic.Int64
	panicked   atomic.Int64
}

// NewRouter создает новый роутер
func NewRouter() Router {
	return &routerImpl{}
}

// Add добавляет хэндлер в конец списка
func (r *routerImpl) Add(pattern *format.Pattern, handler handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Предупреждение о перекрытии эвристическое: проверяется только один образец
	// нового шаблона, поэтому частичные пересечения ({a}:1 и {b}:{c}) оно пропустит.
	// Порядок маршрутизации от этого не зависит.
	sample := pattern.Sample("0")
	for _, e := range r.entries {
		if _, ok := e.Pattern.Match(sample); ok {
			logger.Warn("⚠️ Шаблон %q (%s) перекрывается ранее зарегистрированным %q (%s): %q уйдет первому",
				pattern.String(), handler.GetName(), e.Pattern.String(), e.Handler.GetName(), sample)
			break
		}
	}

	r.entries = append(r.entries, Entry{Pattern: pattern, Handler: handler})
	logger.Debug("Зарегистрирован хэндлер: %s для %s: %s",
		handler.GetName(), handler.GetType(), pattern.String())
}

// AddHandler компилирует шаблон и регистрирует хэндлер
func (r *routerImpl) AddHandler(formatString string, handler handlers.Handler) error {
	pattern, err := format.Compile(formatString)
	if err != nil {
		logger.Error("❌ Не удалось зарегистрировать %s: %v", handler.GetName(), err)
		return err
	}
	r.Add(pattern, handler)
	return nil
}

// RegisterHandler регистрирует хэндлер по его собственному шаблону.
// Пустой шаблон отклоняется: он совпал бы только с пустым идентификатором.
func (r *routerImpl) RegisterHandler(handler handlers.Handler) error {
	if handler.GetFormat() == "" {
		logger.Error("❌ Не удалось зарегистрировать %s: %v", handler.GetName(), ErrEmptyFormat)
		return fmt.Errorf("%s: %w", handler.GetName(), ErrEmptyFormat)
	}
	return r.AddHandler(handler.GetFormat(), handler)
}

// Use добавляет middleware; применяются в порядке добавления (первый - внешний)
func (r *routerImpl) Use(mw Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// Observe добавляет наблюдателя итогов маршрутизации
func (r *routerImpl) Observe(observer Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, observer)
}

// snapshot копирует состояние под read-lock, чтобы регистрация
// не мешала идущим маршрутизациям
func (r *routerImpl) snapshot() ([]Entry, []Middleware, []Observer) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[:len(r.entries):len(r.entries)],
		r.middlewares[:len(r.middlewares):len(r.middlewares)],
		r.observers[:len(r.observers):len(r.observers)]
}

// Dispatch находит первый совпавший хэндлер и вызывает его.
// Ошибки и паники хэндлера остаются в Result и наружу не выходят.
func (r *routerImpl) Dispatch(ctx context.Context, interaction *discord.Interaction) (res Result) {
	startTime := time.Now()
	r.dispatched.Add(1)

	res = Result{DispatchID: uuid.NewString()}
	if interaction != nil {
		res.InteractionID = interaction.ID
		res.Kind = interaction.Type
	}

	entries, middlewares, observers := r.snapshot()
	defer func() {
		res.Duration = time.Since(startTime)
		r.notify(ctx, observers, res)
	}()

	identifier, ok := interaction.RoutingID()
	if !ok {
		r.unmatched.Add(1)
		logger.Warn("⚠️ Взаимодействие %s (%s) без идентификатора маршрутизации, пропущено",
			res.InteractionID, res.Kind)
		return res
	}
	res.Identifier = identifier

	for _, e := range entries {
		args, ok := e.Pattern.Match(identifier)
		if !ok {
			continue
		}

		res.Matched = true
		res.HandlerName = e.Handler.GetName()
		res.Pattern = e.Pattern.String()
		res.Params = args

		params := handlers.HandlerParams{
			Interaction: interaction,
			Args:        args,
			RoutingID:   identifier,
			DispatchID:  res.DispatchID,
		}

		result, err := r.executeHandler(ctx, e.Handler, params, middlewares)
		res.Response = result.Response
		res.Err = err
		break
	}

	if !res.Matched {
		r.unmatched.Add(1)
		logger.Warn("⚠️ Хэндлер для '%s' не найден (%s, взаимодействие %s)",
			identifier, res.Kind, res.InteractionID)
		return res
	}

	r.matched.Add(1)
	if res.Err != nil {
		r.failed.Add(1)
		var pte *format.ParameterTypeError
		if errors.As(res.Err, &pte) {
			logger.Error("❌ Неверный параметр в хэндлере %s для %s: %v",
				res.HandlerName, identifier, res.Err)
		} else {
			logger.Error("❌ Ошибка в хэндлере %s для %s: %v",
				res.HandlerName, identifier, res.Err)
		}
	}

	return res
}

// executeHandler выполняет хэндлер через цепочку middleware с перехватом паники
func (r *routerImpl) executeHandler(
	ctx context.Context,
	handler handlers.Handler,
	params handlers.HandlerParams,
	middlewares []Middleware,
) (result handlers.HandlerResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.panicked.Add(1)
			logger.Error("⚠️ Паника восстановлена в хэндлере %s: %v\n%s",
				handler.GetName(), rec, debug.Stack())
			result = handlers.HandlerResult{}
			err = &PanicError{Handler: handler.GetName(), Value: rec}
		}
	}()

	logger.Debug("Вызов хэндлера: %s для: %s", handler.GetName(), params.RoutingID)

	chain := handlers.HandlerFunc(handler.Execute)
	for i := len(middlewares) - 1; i >= 0; i-- {
		mw := middlewares[i]
		next := chain
		chain = func(ctx context.Context, p handlers.HandlerParams) (handlers.HandlerResult, error) {
			return mw(ctx, handler, p, next)
		}
	}

	return chain(ctx, params)
}

// notify уведомляет наблюдателей; паника наблюдателя не должна ронять маршрутизацию
func (r *routerImpl) notify(ctx context.Context, observers []Observer, res Result) {
	for _, obs := range observers {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("⚠️ Паника в наблюдателе %T: %v", obs, rec)
				}
			}()
			obs.OnDispatch(ctx, res)
		}()
	}
}

// Entries возвращает копию списка зарегистрированных хэндлеров
func (r *routerImpl) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// Stats возвращает счетчики роутера
func (r *routerImpl) Stats() Stats {
	r.mu.RLock()
	count := len(r.entries)
	r.mu.RUnlock()

	return Stats{
		Handlers:   count,
		Dispatched: r.dispatched.Load(),
		Matched:    r.matched.Load(),
		Unmatched:  r.unmatched.Load(),
		Failed:     r.failed.Load(),
		Panicked:   r.panicked.Load(),
	}
}

var _ Router = (*routerImpl)(nil)
