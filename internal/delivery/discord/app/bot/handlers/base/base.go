// internal/delivery/discord/app/bot/handlers/base/base.go
package base

import (
	"github.com/TAG-Epic/shitpost/internal/delivery/discord"
	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/handlers"
)

// BaseHandler базовая структура для всех хэндлеров
type BaseHandler struct {
	Name   string
	Format string
	Type   handlers.HandlerType
}

// GetName возвращает имя хэндлера
func (h *BaseHandler) GetName() string {
	return h.Name
}

// GetFormat возвращает шаблон команды/custom_id
func (h *BaseHandler) GetFormat() string {
	return h.Format
}

// GetType возвращает тип хэндлера
func (h *BaseHandler) GetType() handlers.HandlerType {
	return h.Type
}

// Reply формирует результат с обычным сообщением
func (h *BaseHandler) Reply(content string, components ...discord.Component) handlers.HandlerResult {
	return handlers.HandlerResult{
		Response: discord.NewMessageResponse(content, components...),
		Metadata: map[string]interface{}{"handler": h.Name},
	}
}

// AuthorName возвращает отображаемое имя автора взаимодействия
func (h *BaseHandler) AuthorName(interaction *discord.Interaction) string {
	if interaction == nil {
		return ""
	}
	user := interaction.Author()
	if user == nil {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}
