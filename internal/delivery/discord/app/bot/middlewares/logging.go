// internal/delivery/discord/app/bot/middlewares/logging.go
package middlewares

import (
	"context"
	"time"

	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/handlers"
	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/handlers/router"
	"github.com/TAG-Epic/shitpost/pkg/logger"
)

// slowHandlerThreshold хэндлеры дольше этого логируются как медленные.
// Discord ждет ответ на взаимодействие не дольше 3 секунд.
const slowHandlerThreshold = 2 * time.Second

// Logging middleware логирования вызова хэндлера
func Logging() router.Middleware {
	return func(ctx context.Context, handler handlers.Handler, params handlers.HandlerParams, next handlers.HandlerFunc) (handlers.HandlerResult, error) {
		startTime := time.Now()
		result, err := next(ctx, params)
		elapsed := time.Since(startTime)

		user := ""
		if params.Interaction != nil {
			if author := params.Interaction.Author(); author != nil {
				user = author.Username
			}
		}

		switch {
		case err != nil:
			logger.Debug("🔴 %s (%s) от %s: %v за %v", handler.GetName(), params.RoutingID, user, err, elapsed)
		case elapsed > slowHandlerThreshold:
			logger.Warn("🐢 Медленный хэндлер %s (%s): %v", handler.GetName(), params.RoutingID, elapsed)
		default:
			logger.Debug("🟢 %s (%s) от %s за %v", handler.GetName(), params.RoutingID, user, elapsed)
		}
		return result, err
	}
}
