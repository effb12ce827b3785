// internal/delivery/discord/app/bot/handlers/components/hello_button/handler.go
package hello_button

import (
	"context"
	"fmt"

	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/constants"
	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/handlers"
	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/handlers/base"
)

// helloButtonHandler отвечает на нажатие кнопки hello-button:{random_number}
type helloButtonHandler struct {
	*base.BaseHandler
}

// NewHandler создает хэндлер кнопки
func NewHandler() handlers.Handler {
	return &helloButtonHandler{
		BaseHandler: &base.BaseHandler{
			Name:   "hello_button_handler",
			Format: constants.FormatHelloButton,
			Type:   handlers.TypeComponent,
		},
	}
}

// Execute выполняет обработку нажатия
func (h *helloButtonHandler) Execute(_ context.Context, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	number, err := params.Args.Int(constants.ParamRandomNumber)
	if err != nil {
		return handlers.HandlerResult{}, err
	}

	return h.Reply(fmt.Sprintf(constants.MessageTexts.HelloButton, number)), nil
}
