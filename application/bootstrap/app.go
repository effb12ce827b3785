// application/bootstrap/app.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot"
	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/handlers/router"
	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/http_client"
	"github.com/TAG-Epic/shitpost/internal/infrastructure/cache/redis"
	"github.com/TAG-Epic/shitpost/internal/infrastructure/config"
	storage "github.com/TAG-Epic/shitpost/internal/infrastructure/persistence/in_memory_storage"
	"github.com/TAG-Epic/shitpost/internal/infrastructure/persistence/postgres/database"
	"github.com/TAG-Epic/shitpost/internal/infrastructure/persistence/postgres/repository/interaction_log"
	events "github.com/TAG-Epic/shitpost/internal/infrastructure/transport/event_bus"
	"github.com/TAG-Epic/shitpost/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout    = 10 * time.Second
	statusQueryTimeout = 2 * time.Second
)

// Application состояние процесса: все компоненты создаются в Initialize
// и живут до Stop
type Application struct {
	config *config.Config

	mu        sync.RWMutex
	running   bool
	startTime time.Time

	redisService    *redis.RedisService
	localDedup      *storage.InMemoryDeduplicator
	databaseService *database.DatabaseService
	journal         *bot.InteractionJournal
	client          *http_client.Client
	router          router.Router
	eventBus        *events.EventBus
	discordBot      *bot.DiscordBot
	gateway         *bot.Gateway
	webhook         *bot.WebhookServer
}

// Initialize создает и связывает компоненты.
// Некорректный шаблон хэндлера или недоступное хранилище прерывают запуск.
func (app *Application) Initialize(ctx context.Context) error {
	cfg := app.config

	r, err := bot.NewHandlerRouter()
	if err != nil {
		return fmt.Errorf("регистрация хэндлеров: %w", err)
	}
	app.router = r

	if err := app.startStorage(ctx); err != nil {
		return err
	}

	if app.databaseService != nil {
		repo := interaction_log.NewInteractionLogRepository(app.databaseService.GetDB())
		app.journal = bot.NewInteractionJournal(repo)
		app.router.Observe(app.journal)
	}

	app.client = http_client.NewClient(http_client.Options{
		BaseURL:   cfg.Discord.APIBaseURL,
		Token:     cfg.Discord.Token,
		Timeout:   cfg.Discord.HTTPTimeout,
		RateLimit: cfg.Discord.RateLimit,
		Burst:     cfg.Discord.RateBurst,
	})

	factory := &events.Factory{}
	app.eventBus = factory.NewEventBusFromConfig(cfg)
	factory.RegisterDefaultSubscribers(app.eventBus)

	deps := bot.Dependencies{Client: app.client, Router: app.router}
	if app.redisService != nil {
		if cache := app.redisService.GetCache(); cache != nil {
			deps.Dedup = cache
			deps.Hashes = cache
		}
	}
	if deps.Dedup == nil {
		app.localDedup = storage.NewInMemoryDeduplicator(time.Minute)
		deps.Dedup = app.localDedup
		logger.Debug("Redis выключен, дедупликация взаимодействий в памяти процесса")
	}
	app.discordBot = bot.NewDiscordBot(cfg, deps)
	app.eventBus.Subscribe(events.EventInteractionCreate, app.discordBot.Subscriber())

	if cfg.IsWebhookMode() {
		app.webhook, err = bot.NewWebhookServer(cfg, app.discordBot)
		if err != nil {
			return err
		}
		app.webhook.SetStatusProvider(app.Status)
	} else {
		app.gateway = bot.NewGateway(cfg.Discord, app.eventBus)
	}

	logger.Info("✅ Приложение инициализировано (режим: %s)", cfg.Discord.Mode)
	return nil
}

// startStorage параллельно подключает включенные Redis и PostgreSQL
func (app *Application) startStorage(ctx context.Context) error {
	cfg := app.config
	g, gctx := errgroup.WithContext(ctx)

	if cfg.Redis.Enabled {
		app.redisService = redis.NewRedisService(cfg.Redis)
		g.Go(func() error {
			if err := app.redisService.Start(gctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			return nil
		})
	}

	if cfg.Database.Enabled {
		app.databaseService = database.NewDatabaseService(cfg.Database, cfg.GetPostgresDSN())
		g.Go(func() error {
			if err := app.databaseService.Start(gctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		app.stopStorage()
		return err
	}
	return nil
}

// Run запускает транспорт и блокируется до события critical или отмены ctx.
// Критическая ошибка транспорта возвращается вызывающему.
func (app *Application) Run(ctx context.Context) error {
	app.mu.Lock()
	if app.running {
		app.mu.Unlock()
		return errors.New("приложение уже запущено")
	}
	app.running = true
	app.startTime = time.Now()
	app.mu.Unlock()

	critical, cancelWait := app.eventBus.Waiter(events.EventCritical)
	defer cancelWait()

	app.eventBus.Start()
	if app.journal != nil {
		app.journal.Start()
	}

	if app.config.Discord.RegisterCommands {
		if err := app.discordBot.RegisterCommands(ctx, bot.ApplicationCommands()); err != nil {
			logger.Warn("⚠️ Не удалось зарегистрировать команды: %v", err)
			logger.Info("Бот продолжит работу, но команды могут не отображаться в Discord")
		}
	}

	if err := app.startTransport(); err != nil {
		return err
	}

	logger.Info("🚀 Бот запущен, ожидание событий...")

	select {
	case event := <-critical:
		if err, ok := event.Data.(error); ok {
			return err
		}
		return &bot.CriticalTransportError{Reason: fmt.Sprint(event.Data)}
	case <-ctx.Done():
		logger.Info("📶 Получен сигнал остановки")
		return nil
	}
}

func (app *Application) startTransport() error {
	if app.webhook != nil {
		return app.webhook.Start()
	}
	return app.gateway.Start()
}

// Stop останавливает компоненты в обратном порядке
func (app *Application) Stop() error {
	app.mu.Lock()
	defer app.mu.Unlock()

	logger.Info("🛑 Останавливаем приложение...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if app.webhook != nil {
		if err := app.webhook.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("webhook: %w", err))
		}
	}
	if app.gateway != nil {
		app.gateway.Stop()
	}
	if app.discordBot != nil {
		app.discordBot.Stop()
	}
	if app.eventBus != nil {
		app.eventBus.Stop()
	}
	if app.journal != nil {
		app.journal.Stop()
	}
	if app.localDedup != nil {
		app.localDedup.Stop()
	}
	if err := app.stopStorage(); err != nil {
		errs = append(errs, err)
	}

	if app.running {
		logger.Info("✅ Приложение остановлено. Время работы: %v", time.Since(app.startTime).Round(time.Second))
	}
	app.running = false
	return errors.Join(errs...)
}

func (app *Application) stopStorage() error {
	var errs []error
	if app.databaseService != nil {
		if err := app.databaseService.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		}
	}
	if app.redisService != nil {
		if err := app.redisService.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// IsRunning проверяет, запущено ли приложение
func (app *Application) IsRunning() bool {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.running
}

// Status статус приложения для /health.
// Компоненты не меняются после Initialize, под блокировкой читается только состояние запуска.
func (app *Application) Status(ctx context.Context) map[string]interface{} {
	app.mu.RLock()
	running, startTime := app.running, app.startTime
	app.mu.RUnlock()

	status := map[string]interface{}{
		"running": running,
		"mode":    app.config.Discord.Mode,
	}
	if running {
		status["uptime"] = time.Since(startTime).Round(time.Second).String()
	}
	if app.discordBot != nil {
		status["bot"] = app.discordBot.GetStats()
	}
	if app.eventBus != nil {
		status["event_bus"] = app.eventBus.GetMetricsMap()
	}
	if app.gateway != nil {
		status["gateway_connected"] = app.gateway.HealthCheck()
	}
	if app.redisService != nil {
		status["redis"] = app.redisService.GetStats()
	}
	if app.localDedup != nil {
		status["dedup_in_memory"] = app.localDedup.Len()
	}
	if app.databaseService != nil {
		status["postgres"] = app.databaseService.GetStats()
	}
	if app.journal != nil {
		jctx, cancel := context.WithTimeout(ctx, statusQueryTimeout)
		status["journal"] = app.journal.Summary(jctx)
		cancel()
	}
	return status
}
