// internal/delivery/discord/app/http_client/interactions.go
package http_client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/TAG-Epic/shitpost/internal/delivery/discord"
	"github.com/TAG-Epic/shitpost/pkg/logger"
)

// Шаблоны маршрутов Discord API
const (
	RouteInteractionCallback = "/interactions/{interaction_id}/{interaction_token}/callback"
	RouteGlobalCommands      = "/applications/{application_id}/commands"
)

// CreateInteractionResponse отправляет ответ на взаимодействие
func (c *Client) CreateInteractionResponse(ctx context.Context, interactionID, token string, response *discord.InteractionResponse) error {
	route, err := NewRoute(http.MethodPost, RouteInteractionCallback,
		"interaction_id", interactionID,
		"interaction_token", token,
	)
	if err != nil {
		return err
	}

	if err := c.Request(ctx, route, response, nil); err != nil {
		return fmt.Errorf("ошибка ответа на взаимодействие %s: %w", interactionID, err)
	}
	return nil
}

// BulkOverwriteGlobalCommands заменяет набор глобальных slash-команд приложения
func (c *Client) BulkOverwriteGlobalCommands(ctx context.Context, applicationID string, commands []discord.ApplicationCommand) ([]discord.ApplicationCommand, error) {
	route, err := NewRoute(http.MethodPut, RouteGlobalCommands, "application_id", applicationID)
	if err != nil {
		return nil, err
	}

	var registered []discord.ApplicationCommand
	if err := c.Request(ctx, route, commands, &registered); err != nil {
		return nil, fmt.Errorf("ошибка регистрации команд: %w", err)
	}

	logger.Info("✅ Зарегистрировано команд: %d", len(registered))
	return registered, nil
}
