// internal/infrastructure/cache/redis/redis_service.go
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/TAG-Epic/shitpost/internal/infrastructure/config"
	"github.com/TAG-Epic/shitpost/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// RedisService сервис для работы с Redis
type RedisService struct {
	mu     sync.RWMutex
	config config.RedisConfig
	client *redis.Client
	cache  *Cache
	state  ServiceState
}

// ServiceState состояние сервиса
type ServiceState string

const (
	StateStopped  ServiceState = "stopped"
	StateStarting ServiceState = "starting"
	StateRunning  ServiceState = "running"
	StateStopping ServiceState = "stopping"
	StateError    ServiceState = "error"
)

// NewRedisService создает новый Redis сервис
func NewRedisService(cfg config.RedisConfig) *RedisService {
	return &RedisService{
		config: cfg,
		state:  StateStopped,
	}
}

// Start подключается к Redis и проверяет соединение
func (rs *RedisService) Start(ctx context.Context) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.state == StateRunning {
		return fmt.Errorf("Redis service already running")
	}

	logger.Info("🔄 Starting Redis service...")
	rs.state = StateStarting

	options := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", rs.config.Host, rs.config.Port),
		Password: rs.config.Password,
		DB:       rs.config.DB,

		PoolSize:     rs.config.PoolSize,
		MinIdleConns: rs.config.MinIdleConns,

		DialTimeout:  rs.config.DialTimeout,
		ReadTimeout:  rs.config.ReadTimeout,
		WriteTimeout: rs.config.WriteTimeout,
		PoolTimeout:  rs.config.PoolTimeout,
		IdleTimeout:  rs.config.IdleTimeout,

		MaxRetries:      rs.config.MaxRetries,
		MinRetryBackoff: rs.config.MinRetryBackoff,
		MaxRetryBackoff: rs.config.MaxRetryBackoff,
	}

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	logger.Info("📡 Connecting to Redis: %s (DB: %d)", options.Addr, rs.config.DB)

	if _, err := client.Ping(pingCtx).Result(); err != nil {
		client.Close()
		rs.state = StateError
		logger.Error("❌ Failed to connect to Redis: %v (address: %s)", err, options.Addr)
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	rs.client = client
	rs.cache = NewCacheWithClient(client, rs.config.KeyPrefix)
	rs.state = StateRunning
	logger.Info("✅ Successfully connected to Redis (pool: %d, prefix: %s)", rs.config.PoolSize, rs.cache.Prefix())

	return nil
}

// Stop закрывает соединения
func (rs *RedisService) Stop() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.state != StateRunning {
		return nil
	}

	logger.Info("🛑 Stopping Redis service...")
	rs.state = StateStopping

	if err := rs.client.Close(); err != nil {
		rs.state = StateError
		logger.Error("❌ Failed to close Redis client: %v", err)
		return fmt.Errorf("failed to close Redis client: %w", err)
	}

	rs.client = nil
	rs.cache = nil
	rs.state = StateStopped
	logger.Info("✅ Redis service stopped")

	return nil
}

// GetClient возвращает клиент Redis
func (rs *RedisService) GetClient() *redis.Client {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.client
}

// GetCache возвращает кэш дедупликации и хэшей команд; nil, пока сервис не запущен
func (rs *RedisService) GetCache() *Cache {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.cache
}

// State возвращает состояние сервиса
func (rs *RedisService) State() ServiceState {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.state
}

// HealthCheck проверяет здоровье Redis
func (rs *RedisService) HealthCheck() bool {
	client := rs.GetClient()
	if rs.State() != StateRunning || client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logger.Warn("⚠️ Redis health check failed: %v", err)
		return false
	}
	return true
}

// GetStats возвращает статистику пула
func (rs *RedisService) GetStats() map[string]interface{} {
	stats := map[string]interface{}{
		"state":      string(rs.State()),
		"key_prefix": rs.config.KeyPrefix,
	}

	if client := rs.GetClient(); client != nil {
		poolStats := client.PoolStats()
		stats["pool_hits"] = poolStats.Hits
		stats["pool_misses"] = poolStats.Misses
		stats["pool_timeouts"] = poolStats.Timeouts
		stats["pool_total_conns"] = poolStats.TotalConns
		stats["pool_idle_conns"] = poolStats.IdleConns
	}

	return stats
}

// Name возвращает имя сервиса
func (rs *RedisService) Name() string {
	return "RedisService"
}
