// internal/delivery/discord/app/http_client/route.go
package http_client

import (
	"fmt"
	"net/url"

	"github.com/TAG-Epic/shitpost/pkg/format"
)

// Route запрос к Discord API: метод и путь с подставленными параметрами.
// Template сохраняется для логов и лимитов.
type Route struct {
	Method   string
	Template string
	Path     string
	Params   format.Params
}

// NewRoute собирает маршрут из шаблона вида /interactions/{interaction_id}/{interaction_token}/callback.
// kv - пары имя, значение. Значения экранируются для пути.
func NewRoute(method, template string, kv ...string) (Route, error) {
	if len(kv)%2 != 0 {
		return Route{}, fmt.Errorf("нечетное число параметров маршрута %s: %d", template, len(kv))
	}

	pattern, err := format.Compile(template)
	if err != nil {
		return Route{}, fmt.Errorf("неверный шаблон маршрута: %w", err)
	}

	params := make(format.Params, len(kv)/2)
	escaped := make(format.Params, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		params[kv[i]] = kv[i+1]
		escaped[kv[i]] = url.PathEscape(kv[i+1])
	}

	path, err := pattern.Build(escaped)
	if err != nil {
		return Route{}, fmt.Errorf("не удалось собрать маршрут %s: %w", template, err)
	}

	return Route{
		Method:   method,
		Template: template,
		Path:     path,
		Params:   params,
	}, nil
}

// String для логов: без секретов из пути (токены взаимодействий)
func (r Route) String() string {
	return r.Method + " " + r.Template
}
