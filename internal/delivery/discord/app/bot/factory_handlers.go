// internal/delivery/discord/app/bot/factory_handlers.go
package bot

import (
	"fmt"

	"github.com/TAG-Epic/shitpost/internal/delivery/discord"
	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/constants"
	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/handlers"
	show_button_command "github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/handlers/commands/show_button"
	hello_button_component "github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/handlers/components/hello_button"
	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/handlers/router"
	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/middlewares"
	"github.com/TAG-Epic/shitpost/pkg/logger"
)

// NewHandlerRouter создает роутер со всеми хэндлерами.
// Некорректный шаблон прерывает запуск.
func NewHandlerRouter() (router.Router, error) {
	logger.Info("🔧 Регистрация хэндлеров...")

	r := router.NewRouter()
	r.Use(middlewares.Logging())

	for _, h := range allHandlers() {
		if err := r.RegisterHandler(h); err != nil {
			return nil, fmt.Errorf("handler %s: %w", h.GetName(), err)
		}
	}

	logger.Info("✅ Зарегистрировано хэндлеров: %d", r.Stats().Handlers)
	return r, nil
}

// allHandlers хэндлеры в порядке приоритета
func allHandlers() []handlers.Handler {
	return []handlers.Handler{
		// Команды
		show_button_command.NewHandler(),

		// Компоненты
		hello_button_component.NewHandler(),
	}
}

// ApplicationCommands slash-команды приложения
func ApplicationCommands() []discord.ApplicationCommand {
	return []discord.ApplicationCommand{
		{
			Name:        constants.CommandShowButton,
			Description: constants.CommandShowButtonDescription,
		},
	}
}
