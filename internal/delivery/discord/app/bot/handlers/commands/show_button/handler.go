// internal/delivery/discord/app/bot/handlers/commands/show_button/handler.go
package show_button

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/TAG-Epic/shitpost/internal/delivery/discord"
	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/constants"
	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/handlers"
	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/handlers/base"
	"github.com/TAG-Epic/shitpost/pkg/format"
	"github.com/TAG-Epic/shitpost/pkg/logger"
)

// showButtonHandler отвечает на /show-button сообщением с кнопкой
type showButtonHandler struct {
	*base.BaseHandler
	buttonFormat *format.Pattern
	randomNumber func() int
}

// NewHandler создает хэндлер команды /show-button
func NewHandler() handlers.Handler {
	return newHandler(func() int {
		return constants.RandomNumberMin + rand.Intn(constants.RandomNumberMax-constants.RandomNumberMin+1)
	})
}

func newHandler(randomNumber func() int) *showButtonHandler {
	return &showButtonHandler{
		BaseHandler: &base.BaseHandler{
			Name:   "show_button_handler",
			Format: constants.CommandShowButton,
			Type:   handlers.TypeCommand,
		},
		buttonFormat: format.MustCompile(constants.FormatHelloButton),
		randomNumber: randomNumber,
	}
}

// Execute выполняет обработку команды
func (h *showButtonHandler) Execute(_ context.Context, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	number := h.randomNumber()

	customID, err := h.buttonFormat.Build(format.Params{
		constants.ParamRandomNumber: strconv.Itoa(number),
	})
	if err != nil {
		return handlers.HandlerResult{}, fmt.Errorf("не удалось собрать custom_id: %w", err)
	}

	logger.Debug("🎲 %s получил кнопку %s", h.AuthorName(params.Interaction), customID)

	button := discord.Button(constants.ButtonTexts.ClickMe, discord.ButtonPrimary, customID)
	result := h.Reply(constants.MessageTexts.ShowButton, discord.ActionRow(button))
	result.Metadata["random_number"] = number
	return result, nil
}
