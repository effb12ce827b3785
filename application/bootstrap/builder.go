// application/bootstrap/builder.go
package bootstrap

import (
	"errors"

	"github.com/TAG-Epic/shitpost/internal/infrastructure/config"
)

// AppBuilder строитель приложения
type AppBuilder struct {
	config  *config.Config
	options []AppOption
}

// AppOption опция для настройки приложения
type AppOption func(*Application) error

// NewAppBuilder создает новый строитель приложений
func NewAppBuilder() *AppBuilder {
	return &AppBuilder{}
}

// WithConfig устанавливает конфигурацию
func (b *AppBuilder) WithConfig(cfg *config.Config) *AppBuilder {
	b.config = cfg
	return b
}

// WithMode переопределяет режим транспорта (gateway/webhook)
func (b *AppBuilder) WithMode(mode string) *AppBuilder {
	b.options = append(b.options, func(app *Application) error {
		if mode != "" {
			app.config.Discord.Mode = mode
		}
		return nil
	})
	return b
}

// WithOption добавляет произвольную опцию
func (b *AppBuilder) WithOption(option AppOption) *AppBuilder {
	b.options = append(b.options, option)
	return b
}

// Build создает приложение и проверяет конфигурацию
func (b *AppBuilder) Build() (*Application, error) {
	if b.config == nil {
		return nil, errors.New("конфигурация не задана")
	}

	app := &Application{config: b.config}
	for _, option := range b.options {
		if err := option(app); err != nil {
			return nil, err
		}
	}

	if err := app.config.Validate(); err != nil {
		return nil, err
	}
	return app, nil
}
