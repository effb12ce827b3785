// internal/infrastructure/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/TAG-Epic/shitpost/pkg/logger"

	"github.com/joho/godotenv"
)

// Режимы получения взаимодействий
const (
	ModeGateway = "gateway"
	ModeWebhook = "webhook"
)

// ============================================
// КОНФИГУРАЦИЯ DISCORD
// ============================================

// DiscordConfig - подключение к Discord
type DiscordConfig struct {
	Token            string        `mapstructure:"TOKEN"`
	ApplicationID    string        `mapstructure:"BOT_ID"`
	Mode             string        `mapstructure:"DISCORD_MODE"` // "gateway" или "webhook"
	Intents          int           `mapstructure:"DISCORD_INTENTS"`
	APIBaseURL       string        `mapstructure:"DISCORD_API_BASE_URL"`
	GatewayURL       string        `mapstructure:"DISCORD_GATEWAY_URL"`
	PublicKey        string        `mapstructure:"DISCORD_PUBLIC_KEY"` // hex, для webhook режима
	HTTPTimeout      time.Duration `mapstructure:"DISCORD_HTTP_TIMEOUT"`
	RateLimit        float64       `mapstructure:"DISCORD_RATE_LIMIT"` // запросов в секунду
	RateBurst        int           `mapstructure:"DISCORD_RATE_BURST"`
	RegisterCommands bool          `mapstructure:"DISCORD_REGISTER_COMMANDS"`
	ReconnectDelay   time.Duration `mapstructure:"DISCORD_RECONNECT_DELAY"`
	MaxReconnect     time.Duration `mapstructure:"DISCORD_MAX_RECONNECT_DELAY"`
}

// WebhookConfig - HTTP endpoint для взаимодействий
type WebhookConfig struct {
	Port        int    `mapstructure:"WEBHOOK_PORT"`
	Path        string `mapstructure:"WEBHOOK_PATH"`
	MaxBodySize int64  `mapstructure:"WEBHOOK_MAX_BODY_SIZE"`
	UseTLS      bool   `mapstructure:"WEBHOOK_USE_TLS"`
	TLSCertPath string `mapstructure:"WEBHOOK_TLS_CERT_PATH"`
	TLSKeyPath  string `mapstructure:"WEBHOOK_TLS_KEY_PATH"`
}

// EventBusConfig - шина событий
type EventBusConfig struct {
	BufferSize         int  `mapstructure:"EVENT_BUS_BUFFER"`
	WorkerCount        int  `mapstructure:"EVENT_BUS_WORKERS"`
	EnableMetrics      bool `mapstructure:"EVENT_BUS_ENABLE_METRICS"`
	MetricsIntervalSec int  `mapstructure:"EVENT_BUS_METRICS_INTERVAL"`
	EnableLogging      bool `mapstructure:"EVENT_BUS_ENABLE_LOGGING"`
}

// ============================================
// КОНФИГУРАЦИЯ ХРАНИЛИЩ
// ============================================

// DatabaseConfig - конфигурация базы данных
type DatabaseConfig struct {
	Host     string `mapstructure:"DB_HOST"`
	Port     int    `mapstructure:"DB_PORT"`
	User     string `mapstructure:"DB_USER"`
	Password string `mapstructure:"DB_PASSWORD"`
	Name     string `mapstructure:"DB_NAME"`
	SSLMode  string `mapstructure:"DB_SSLMODE"`

	Enabled bool `mapstructure:"DB_ENABLED"`

	// Настройки пула соединений
	MaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	MaxConnLifetime time.Duration `mapstructure:"DB_MAX_CONN_LIFETIME"`
	MaxConnIdleTime time.Duration `mapstructure:"DB_MAX_CONN_IDLE_TIME"`

	EnableAutoMigrate bool `mapstructure:"DB_ENABLE_AUTO_MIGRATE"`
}

// RedisConfig конфигурация Redis
type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     int    `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`

	Enabled bool `mapstructure:"REDIS_ENABLED"`

	// Настройки пула соединений
	PoolSize        int           `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConns    int           `mapstructure:"REDIS_MIN_IDLE_CONNS"`
	MaxRetries      int           `mapstructure:"REDIS_MAX_RETRIES"`
	MinRetryBackoff time.Duration `mapstructure:"REDIS_MIN_RETRY_BACKOFF"`
	MaxRetryBackoff time.Duration `mapstructure:"REDIS_MAX_RETRY_BACKOFF"`
	DialTimeout     time.Duration `mapstructure:"REDIS_DIAL_TIMEOUT"`
	ReadTimeout     time.Duration `mapstructure:"REDIS_READ_TIMEOUT"`
	WriteTimeout    time.Duration `mapstructure:"REDIS_WRITE_TIMEOUT"`
	PoolTimeout     time.Duration `mapstructure:"REDIS_POOL_TIMEOUT"`
	IdleTimeout     time.Duration `mapstructure:"REDIS_IDLE_TIMEOUT"`

	DefaultTTL time.Duration `mapstructure:"REDIS_DEFAULT_TTL"`
	DedupTTL   time.Duration `mapstructure:"REDIS_DEDUP_TTL"` // окно дедупликации взаимодействий
	KeyPrefix  string        `mapstructure:"REDIS_KEY_PREFIX"`
}

// Config - основная структура конфигурации
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	Version     string `mapstructure:"VERSION"`

	Discord  DiscordConfig  `mapstructure:",squash"`
	Webhook  WebhookConfig  `mapstructure:",squash"`
	EventBus EventBusConfig `mapstructure:",squash"`
	Database DatabaseConfig `mapstructure:",squash"`
	Redis    RedisConfig    `mapstructure:",squash"`

	// Логирование
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFile   string `mapstructure:"LOG_FILE"`
	DebugMode bool   `mapstructure:"DEBUG"`
}

// ============================================
// ЗАГРУЗКА КОНФИГУРАЦИИ
// ============================================

// LoadConfig загружает конфигурацию из .env файла и переменных окружения.
// Переменные окружения имеют приоритет над файлом.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		fmt.Printf("⚠️  Config file not found, using environment variables\n")
	}

	cfg := &Config{}

	cfg.Environment = getEnv("ENVIRONMENT", "production")
	cfg.Version = getEnv("VERSION", "1.0.0")

	// ======================
	// DISCORD
	// ======================
	cfg.Discord.Token = getEnv("TOKEN", "")
	cfg.Discord.ApplicationID = getEnv("BOT_ID", "")
	cfg.Discord.Mode = strings.ToLower(getEnv("DISCORD_MODE", ModeGateway))
	cfg.Discord.Intents = getEnvInt("DISCORD_INTENTS", 0)
	cfg.Discord.APIBaseURL = getEnv("DISCORD_API_BASE_URL", "https://discord.com/api/v10")
	cfg.Discord.GatewayURL = getEnv("DISCORD_GATEWAY_URL", "wss://gateway.discord.gg/?v=10&encoding=json")
	cfg.Discord.PublicKey = getEnv("DISCORD_PUBLIC_KEY", "")
	cfg.Discord.HTTPTimeout = getEnvDuration("DISCORD_HTTP_TIMEOUT", 30*time.Second)
	cfg.Discord.RateLimit = getEnvFloat("DISCORD_RATE_LIMIT", 50)
	cfg.Discord.RateBurst = getEnvInt("DISCORD_RATE_BURST", 50)
	cfg.Discord.RegisterCommands = getEnvBool("DISCORD_REGISTER_COMMANDS", true)
	cfg.Discord.ReconnectDelay = getEnvDuration("DISCORD_RECONNECT_DELAY", time.Second)
	cfg.Discord.MaxReconnect = getEnvDuration("DISCORD_MAX_RECONNECT_DELAY", 60*time.Second)

	// ======================
	// WEBHOOK
	// ======================
	cfg.Webhook.Port = getEnvInt("WEBHOOK_PORT", 8080)
	cfg.Webhook.Path = getEnv("WEBHOOK_PATH", "/interactions")
	cfg.Webhook.MaxBodySize = getEnvInt64("WEBHOOK_MAX_BODY_SIZE", 1024*1024) // 1MB
	cfg.Webhook.UseTLS = getEnvBool("WEBHOOK_USE_TLS", false)
	cfg.Webhook.TLSCertPath = getEnv("WEBHOOK_TLS_CERT_PATH", "")
	cfg.Webhook.TLSKeyPath = getEnv("WEBHOOK_TLS_KEY_PATH", "")

	// ======================
	// ШИНА СОБЫТИЙ
	// ======================
	cfg.EventBus.BufferSize = getEnvInt("EVENT_BUS_BUFFER", 1000)
	cfg.EventBus.WorkerCount = getEnvInt("EVENT_BUS_WORKERS", 8)
	cfg.EventBus.EnableMetrics = getEnvBool("EVENT_BUS_ENABLE_METRICS", false)
	cfg.EventBus.MetricsIntervalSec = getEnvInt("EVENT_BUS_METRICS_INTERVAL", 300)
	cfg.EventBus.EnableLogging = getEnvBool("EVENT_BUS_ENABLE_LOGGING", true)

	// ======================
	// БАЗА ДАННЫХ
	// ======================
	cfg.Database.Enabled = getEnvBool("DB_ENABLED", false)
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "")
	cfg.Database.Password = getEnv("DB_PASSWORD", "")
	cfg.Database.Name = getEnv("DB_NAME", "")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 5)
	cfg.Database.MaxConnLifetime = getEnvDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute)
	cfg.Database.MaxConnIdleTime = getEnvDuration("DB_MAX_CONN_IDLE_TIME", 10*time.Minute)
	cfg.Database.EnableAutoMigrate = getEnvBool("DB_ENABLE_AUTO_MIGRATE", true)

	// ======================
	// REDIS
	// ======================
	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", false)
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnvInt("REDIS_PORT", 6379)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	cfg.Redis.PoolSize = getEnvInt("REDIS_POOL_SIZE", 10)
	cfg.Redis.MinIdleConns = getEnvInt("REDIS_MIN_IDLE_CONNS", 2)
	cfg.Redis.MaxRetries = getEnvInt("REDIS_MAX_RETRIES", 3)
	cfg.Redis.MinRetryBackoff = getEnvDuration("REDIS_MIN_RETRY_BACKOFF", 8*time.Millisecond)
	cfg.Redis.MaxRetryBackoff = getEnvDuration("REDIS_MAX_RETRY_BACKOFF", 512*time.Millisecond)
	cfg.Redis.DialTimeout = getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.Redis.ReadTimeout = getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.Redis.WriteTimeout = getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.Redis.PoolTimeout = getEnvDuration("REDIS_POOL_TIMEOUT", 4*time.Second)
	cfg.Redis.IdleTimeout = getEnvDuration("REDIS_IDLE_TIMEOUT", 5*time.Minute)
	cfg.Redis.DefaultTTL = getEnvDuration("REDIS_DEFAULT_TTL", time.Hour)
	cfg.Redis.DedupTTL = getEnvDuration("REDIS_DEDUP_TTL", 15*time.Minute)
	cfg.Redis.KeyPrefix = getEnv("REDIS_KEY_PREFIX", "shitpost:")

	// ======================
	// ЛОГИРОВАНИЕ
	// ======================
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.LogFile = getEnv("LOG_FILE", "")
	cfg.DebugMode = getEnvBool("DEBUG", false)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// ============================================
// ВАЛИДАЦИЯ
// ============================================

// Validate проверяет обязательные параметры и собирает все ошибки сразу
func (c *Config) Validate() error {
	var validationErrors []string

	if c.Discord.Token == "" {
		validationErrors = append(validationErrors, "TOKEN is required")
	}
	if c.Discord.ApplicationID == "" {
		validationErrors = append(validationErrors, "BOT_ID is required")
	} else if _, err := strconv.ParseUint(c.Discord.ApplicationID, 10, 64); err != nil {
		validationErrors = append(validationErrors, "BOT_ID должен быть числовым snowflake")
	}
	if c.Discord.Intents < 0 {
		validationErrors = append(validationErrors, "DISCORD_INTENTS не может быть отрицательным")
	}
	if c.Discord.RateLimit < 0 {
		validationErrors = append(validationErrors, "DISCORD_RATE_LIMIT не может быть отрицательным")
	}

	switch c.Discord.Mode {
	case ModeGateway:
		if c.Discord.GatewayURL == "" {
			validationErrors = append(validationErrors, "DISCORD_GATEWAY_URL обязателен для gateway режима")
		}
	case ModeWebhook:
		if c.Discord.PublicKey == "" {
			validationErrors = append(validationErrors, "DISCORD_PUBLIC_KEY обязателен для webhook режима")
		}
		if c.Webhook.Port <= 0 || c.Webhook.Port > 65535 {
			validationErrors = append(validationErrors, "WEBHOOK_PORT должен быть в диапазоне 1-65535")
		}
		if !strings.HasPrefix(c.Webhook.Path, "/") {
			validationErrors = append(validationErrors, "WEBHOOK_PATH должен начинаться с '/'")
		}
		if c.Webhook.UseTLS {
			if c.Webhook.TLSCertPath == "" {
				validationErrors = append(validationErrors, "WEBHOOK_TLS_CERT_PATH обязателен при использовании TLS")
			}
			if c.Webhook.TLSKeyPath == "" {
				validationErrors = append(validationErrors, "WEBHOOK_TLS_KEY_PATH обязателен при использовании TLS")
			}
		}
	default:
		validationErrors = append(validationErrors, "DISCORD_MODE должен быть 'gateway' или 'webhook'")
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			validationErrors = append(validationErrors, "DB_HOST is required")
		}
		if c.Database.Port <= 0 {
			validationErrors = append(validationErrors, "DB_PORT must be positive")
		}
		if c.Database.User == "" {
			validationErrors = append(validationErrors, "DB_USER is required")
		}
		if c.Database.Name == "" {
			validationErrors = append(validationErrors, "DB_NAME is required")
		}
	}

	if c.Redis.Enabled && c.Redis.DedupTTL <= 0 {
		validationErrors = append(validationErrors, "REDIS_DEDUP_TTL must be positive")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, "; "))
	}

	return nil
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ МЕТОДЫ
// ============================================

// IsWebhookMode true, если взаимодействия приходят по HTTP
func (c *Config) IsWebhookMode() bool {
	return c.Discord.Mode == ModeWebhook
}

// GetPostgresDSN возвращает DSN для подключения к PostgreSQL
func (c *Config) GetPostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr возвращает адрес Redis
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// PrintSummary выводит основные настройки без секретов
func (c *Config) PrintSummary() {
	logger.Info("📋 Конфигурация приложения:")
	logger.Info("   • Окружение: %s (версия %s)", c.Environment, c.Version)
	logger.Info("   • Уровень логирования: %s", c.LogLevel)
	logger.Info("   • Discord режим: %s", c.Discord.Mode)
	logger.Info("   • Application ID: %s", c.Discord.ApplicationID)
	logger.Info("   • Token: %s", MaskToken(c.Discord.Token))
	logger.Info("   • Intents: %d", c.Discord.Intents)
	logger.Info("   • Регистрация команд: %v", c.Discord.RegisterCommands)

	if c.IsWebhookMode() {
		logger.Info("   • Webhook: :%d%s (TLS: %v)", c.Webhook.Port, c.Webhook.Path, c.Webhook.UseTLS)
	} else {
		logger.Info("   • Gateway: %s", c.Discord.GatewayURL)
	}

	logger.Info("   • EventBus: %d обработчиков, буфер %d", c.EventBus.WorkerCount, c.EventBus.BufferSize)

	if c.Database.Enabled {
		logger.Info("   • PostgreSQL: %s:%d/%s", c.Database.Host, c.Database.Port, c.Database.Name)
	} else {
		logger.Info("   • PostgreSQL: отключен")
	}
	if c.Redis.Enabled {
		logger.Info("   • Redis: %s (DB: %d, Pool: %d)", c.GetRedisAddr(), c.Redis.DB, c.Redis.PoolSize)
	} else {
		logger.Info("   • Redis: отключен")
	}
}

// MaskToken скрывает середину токена для логов
func MaskToken(token string) string {
	if len(token) <= 10 {
		return strings.Repeat("*", len(token))
	}
	return token[:5] + "..." + token[len(token)-5:]
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ ФУНКЦИИ
// ============================================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
