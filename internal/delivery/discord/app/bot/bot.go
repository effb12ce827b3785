// internal/delivery/discord/app/bot/bot.go
package bot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/TAG-Epic/shitpost/internal/delivery/discord"
	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/constants"
	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/handlers/router"
	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/http_client"
	"github.com/TAG-Epic/shitpost/internal/infrastructure/config"
	events "github.com/TAG-Epic/shitpost/internal/infrastructure/transport/event_bus"
	"github.com/TAG-Epic/shitpost/pkg/logger"
)

// RESTClient исходящие запросы к Discord, которые нужны боту
type RESTClient interface {
	CreateInteractionResponse(ctx context.Context, interactionID, token string, response *discord.InteractionResponse) error
	BulkOverwriteGlobalCommands(ctx context.Context, applicationID string, commands []discord.ApplicationCommand) ([]discord.ApplicationCommand, error)
}

// InteractionDeduplicator отсекает повторную доставку одного и того же взаимодействия
type InteractionDeduplicator interface {
	MarkInteraction(ctx context.Context, interactionID string, ttl time.Duration) (bool, error)
}

// CommandHashStore хранит хэш последнего зарегистрированного набора команд
type CommandHashStore interface {
	GetCommandHash(ctx context.Context, applicationID string) (string, error)
	SetCommandHash(ctx context.Context, applicationID, hash string) error
}

// Dependencies зависимости для DiscordBot. Dedup и Hashes необязательны.
type Dependencies struct {
	Client RESTClient
	Router router.Router
	Dedup  InteractionDeduplicator
	Hashes CommandHashStore
}

// DiscordBot связывает транспорт, роутер и REST клиент
type DiscordBot struct {
	config *config.Config
	client RESTClient
	router router.Router
	dedup  InteractionDeduplicator
	hashes CommandHashStore

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.RWMutex
	delivered   int64
	rejected    int64
	fallbacks   int64
	duplicates  int64
	startupTime time.Time
}

// NewDiscordBot создает новый экземпляр DiscordBot
func NewDiscordBot(cfg *config.Config, deps Dependencies) *DiscordBot {
	ctx, cancel := context.WithCancel(context.Background())
	return &DiscordBot{
		config:      cfg,
		client:      deps.Client,
		router:      deps.Router,
		dedup:       deps.Dedup,
		hashes:      deps.Hashes,
		ctx:         ctx,
		cancel:      cancel,
		startupTime: time.Now(),
	}
}

// HandleInteraction маршрутизирует взаимодействие и возвращает итог.
// Если хэндлер упал, Response заменяется эфемерным сообщением об ошибке.
// Несовпадение не является ошибкой: Response остается nil.
func (b *DiscordBot) HandleInteraction(ctx context.Context, interaction *discord.Interaction) router.Result {
	result := b.router.Dispatch(ctx, interaction)

	if result.Err != nil {
		result.Response = discord.NewEphemeralResponse(constants.MessageTexts.HandlerError)
	}
	return result
}

// ProcessInteraction полный цикл для gateway: дедупликация, маршрутизация, отправка ответа.
// Ошибки логируются и наружу не выходят.
func (b *DiscordBot) ProcessInteraction(ctx context.Context, interaction *discord.Interaction) {
	if interaction == nil {
		return
	}

	if b.dedup != nil {
		first, err := b.dedup.MarkInteraction(ctx, interaction.ID, b.dedupTTL())
		if err != nil {
			logger.Warn("⚠️ Дедупликация недоступна для %s: %v", interaction.ID, err)
		} else if !first {
			b.mu.Lock()
			b.duplicates++
			b.mu.Unlock()
			logger.Debug("🔁 Взаимодействие %s уже обработано, пропускаем", interaction.ID)
			return
		}
	}

	result := b.HandleInteraction(ctx, interaction)
	if result.Response == nil {
		return
	}

	if err := b.Deliver(ctx, interaction, result.Response); err != nil {
		logger.Error("❌ Не удалось ответить на взаимодействие %s (%s): %v",
			interaction.ID, result.Identifier, err)
	}
}

// Deliver отправляет ответ на взаимодействие.
// При отказе Discord делается одна попытка отправить эфемерное сообщение об ошибке;
// если она прошла, пользователь получил ответ и ошибка не возвращается.
func (b *DiscordBot) Deliver(ctx context.Context, interaction *discord.Interaction, response *discord.InteractionResponse) error {
	err := b.client.CreateInteractionResponse(ctx, interaction.ID, interaction.Token, response)
	if err == nil {
		b.mu.Lock()
		b.delivered++
		b.mu.Unlock()
		return nil
	}

	var rejection *http_client.RemoteRejectionError
	if !errors.As(err, &rejection) {
		return err
	}

	b.mu.Lock()
	b.rejected++
	b.mu.Unlock()
	logger.Warn("⚠️ Discord отклонил ответ на %s: %v", interaction.ID, rejection)

	fallback := discord.NewEphemeralResponse(constants.MessageTexts.HandlerError)
	if fallbackErr := b.client.CreateInteractionResponse(ctx, interaction.ID, interaction.Token, fallback); fallbackErr != nil {
		return fmt.Errorf("fallback response failed: %v: %w", fallbackErr, err)
	}

	b.mu.Lock()
	b.fallbacks++
	b.mu.Unlock()
	logger.Warn("⚠️ На %s отправлен запасной ответ вместо отклоненного", interaction.ID)
	return nil
}

// RegisterCommands перезаписывает глобальные slash-команды.
// Если набор не менялся с прошлого запуска, запрос не отправляется.
func (b *DiscordBot) RegisterCommands(ctx context.Context, commands []discord.ApplicationCommand) error {
	appID := b.config.Discord.ApplicationID

	hash, err := commandsHash(commands)
	if err != nil {
		return fmt.Errorf("failed to hash commands: %w", err)
	}

	if b.hashes != nil {
		stored, err := b.hashes.GetCommandHash(ctx, appID)
		if err == nil && stored == hash {
			logger.Info("✅ Набор команд не изменился, регистрация пропущена")
			return nil
		}
	}

	registered, err := b.client.BulkOverwriteGlobalCommands(ctx, appID, commands)
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	logger.Info("📋 Зарегистрировано команд: %d", len(registered))

	if b.hashes != nil {
		if err := b.hashes.SetCommandHash(ctx, appID, hash); err != nil {
			logger.Warn("⚠️ Не удалось сохранить хэш команд: %v", err)
		}
	}
	return nil
}

// Subscriber подписчик шины на INTERACTION_CREATE
func (b *DiscordBot) Subscriber() events.EventSubscriber {
	return events.NewBaseSubscriber(
		"DiscordBot",
		[]events.EventType{events.EventInteractionCreate},
		func(event events.Event) error {
			interaction, ok := event.Data.(*discord.Interaction)
			if !ok {
				return fmt.Errorf("unexpected %s payload: %T", event.Type, event.Data)
			}
			b.ProcessInteraction(b.ctx, interaction)
			return nil
		},
	)
}

// Stop отменяет контекст исходящих запросов
func (b *DiscordBot) Stop() {
	b.cancel()
}

// GetStats возвращает статистику бота
func (b *DiscordBot) GetStats() map[string]interface{} {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rs := b.router.Stats()
	return map[string]interface{}{
		"uptime":     time.Since(b.startupTime).Round(time.Second).String(),
		"handlers":   rs.Handlers,
		"dispatched": rs.Dispatched,
		"matched":    rs.Matched,
		"unmatched":  rs.Unmatched,
		"failed":     rs.Failed,
		"panicked":   rs.Panicked,
		"delivered":  b.delivered,
		"rejected":   b.rejected,
		"fallbacks":  b.fallbacks,
		"duplicates": b.duplicates,
	}
}

func (b *DiscordBot) dedupTTL() time.Duration {
	if b.config.Redis.DedupTTL > 0 {
		return b.config.Redis.DedupTTL
	}
	return 15 * time.Minute
}

func commandsHash(commands []discord.ApplicationCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
