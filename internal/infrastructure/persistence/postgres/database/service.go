// internal/infrastructure/persistence/postgres/database/service.go
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/TAG-Epic/shitpost/internal/infrastructure/config"
	postgres_migrations "github.com/TAG-Epic/shitpost/internal/infrastructure/persistence/postgres"
	"github.com/TAG-Epic/shitpost/pkg/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DatabaseService сервис для работы с базой данных
type DatabaseService struct {
	config   config.DatabaseConfig
	dsn      string
	db       *sqlx.DB
	mu       sync.RWMutex
	state    ServiceState
	migrator *postgres_migrations.Migrator
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

// NewDatabaseService создает новый сервис базы данных
func NewDatabaseService(cfg config.DatabaseConfig, dsn string) *DatabaseService {
	return &DatabaseService{
		config: cfg,
		dsn:    dsn,
		state:  StateStopped,
	}
}

// Start подключается к PostgreSQL и при необходимости применяет миграции
func (ds *DatabaseService) Start(ctx context.Context) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.state == StateRunning {
		return fmt.Errorf("database service already running")
	}

	logger.Info("🔄 Starting database service...")
	ds.state = StateStarting

	logger.Info("📡 Connecting to PostgreSQL: %s:%d/%s",
		ds.config.Host, ds.config.Port, ds.config.Name)

	db, err := sqlx.Open("postgres", ds.dsn)
	if err != nil {
		ds.state = StateError
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(ds.config.MaxOpenConns)
	db.SetMaxIdleConns(ds.config.MaxIdleConns)
	db.SetConnMaxLifetime(ds.config.MaxConnLifetime)
	db.SetConnMaxIdleTime(ds.config.MaxConnIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		ds.state = StateError
		return fmt.Errorf("failed to ping database: %w", err)
	}

	migrator, err := postgres_migrations.NewMigrator(db)
	if err != nil {
		db.Close()
		ds.state = StateError
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	if ds.config.EnableAutoMigrate {
		if err := migrator.Migrate(ctx); err != nil {
			db.Close()
			ds.state = StateError
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		ds.logMigrationStatus(ctx, migrator)
	}

	ds.db = db
	ds.migrator = migrator
	ds.state = StateRunning

	logger.Info("✅ Successfully connected to PostgreSQL")
	logger.Info("   • Pool: %d/%d connections", ds.config.MaxIdleConns, ds.config.MaxOpenConns)
	return nil
}

// Stop закрывает соединения
func (ds *DatabaseService) Stop() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.state != StateRunning {
		return nil
	}

	logger.Info("🛑 Stopping database service...")
	ds.state = StateStopping

	if ds.db != nil {
		if err := ds.db.Close(); err != nil {
			ds.state = StateError
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	ds.db = nil
	ds.migrator = nil
	ds.state = StateStopped
	logger.Info("✅ Database service stopped")
	return nil
}

func (ds *DatabaseService) logMigrationStatus(ctx context.Context, migrator *postgres_migrations.Migrator) {
	statuses, err := migrator.Status(ctx)
	if err != nil {
		logger.Warn("⚠️ Failed to get migration status: %v", err)
		return
	}
	for _, status := range statuses {
		statusIcon := "⏳"
		switch status.Status {
		case "applied":
			statusIcon = "✅"
		case "checksum_mismatch":
			statusIcon = "⚠️"
		}
		logger.Info("   %s %03d: %s", statusIcon, status.ID, status.Name)
	}
}

// GetMigrationStatus возвращает статус миграций
func (ds *DatabaseService) GetMigrationStatus(ctx context.Context) ([]postgres_migrations.MigrationStatus, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if ds.state != StateRunning || ds.migrator == nil {
		return nil, fmt.Errorf("database service is not running")
	}
	return ds.migrator.Status(ctx)
}

// GetDB возвращает соединение с базой данных
func (ds *DatabaseService) GetDB() *sqlx.DB {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.db
}

// State возвращает состояние сервиса
func (ds *DatabaseService) State() ServiceState {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.state
}

// Name имя сервиса
func (ds *DatabaseService) Name() string {
	return "PostgreSQL"
}

// HealthCheck проверяет здоровье базы данных
func (ds *DatabaseService) HealthCheck() bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if ds.state != StateRunning || ds.db == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ds.db.PingContext(ctx); err != nil {
		logger.Warn("⚠️ Database health check failed: %v", err)
		return false
	}
	return true
}

// GetStats возвращает статистику пула
func (ds *DatabaseService) GetStats() map[string]interface{} {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	stats := map[string]interface{}{
		"state":     ds.state,
		"connected": ds.db != nil,
	}

	if ds.db != nil {
		dbStats := ds.db.Stats()
		stats["open_connections"] = dbStats.OpenConnections
		stats["in_use"] = dbStats.InUse
		stats["idle"] = dbStats.Idle
		stats["wait_count"] = dbStats.WaitCount
		stats["wait_duration"] = dbStats.WaitDuration.String()
	}
	return stats
}
