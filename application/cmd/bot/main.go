// application/cmd/bot/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/TAG-Epic/shitpost/application/bootstrap"
	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot"
	"github.com/TAG-Epic/shitpost/internal/infrastructure/config"
	"github.com/TAG-Epic/shitpost/pkg/logger"
)

var (
	version   = "1.0.0"
	buildTime = "неизвестно"
)

func main() {
	var (
		cfgPath     string
		logLevel    string
		mode        string
		showHelp    bool
		showVersion bool
	)

	flag.StringVar(&cfgPath, "config", ".env", "Путь к файлу конфигурации")
	flag.StringVar(&logLevel, "log-level", "", "Уровень логирования: debug, info, warn, error (переопределяет .env)")
	flag.StringVar(&mode, "mode", "", "Транспорт: gateway или webhook (переопределяет .env)")
	flag.BoolVar(&showHelp, "help", false, "Показать справку")
	flag.BoolVar(&showVersion, "version", false, "Показать версию")
	flag.Parse()

	if showVersion {
		fmt.Printf("shitpost v%s (сборка: %s)\n", version, buildTime)
		return
	}
	if showHelp {
		flag.Usage()
		return
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Printf("❌ Не удалось загрузить конфигурацию: %v\n", err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	os.Exit(run(cfg, mode))
}

// run возвращает код выхода процесса
func run(cfg *config.Config, mode string) int {
	if cfg.LogFile != "" {
		if err := logger.InitGlobal(cfg.LogFile, cfg.LogLevel, cfg.DebugMode); err != nil {
			fmt.Printf("❌ Не удалось инициализировать файловый логгер: %v. Переход на консольный...\n", err)
			logger.InitConsole(cfg.LogLevel, cfg.DebugMode)
		}
	} else {
		logger.InitConsole(cfg.LogLevel, cfg.DebugMode)
	}
	defer logger.Close()

	logger.Info("🚀 Запуск shitpost v%s", version)
	logger.Info("📅 Время сборки: %s", buildTime)

	app, err := bootstrap.NewAppBuilder().
		WithConfig(cfg).
		WithMode(mode).
		Build()
	if err != nil {
		logger.Error("❌ Валидация конфигурации не пройдена: %v", err)
		return 1
	}
	cfg.PrintSummary()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Initialize(ctx); err != nil {
		logger.Error("❌ Не удалось инициализировать приложение: %v", err)
		_ = app.Stop()
		return 1
	}

	runErr := app.Run(ctx)
	if err := app.Stop(); err != nil {
		logger.Error("❌ Ошибка остановки приложения: %v", err)
	}

	var critical *bot.CriticalTransportError
	switch {
	case errors.As(runErr, &critical):
		logger.Error("💥 Критическая ошибка транспорта, завершение: %v", critical)
		return 1
	case runErr != nil:
		logger.Error("❌ Ошибка работы приложения: %v", runErr)
		return 1
	}

	logger.Info("✅ Приложение успешно остановлено")
	return 0
}
