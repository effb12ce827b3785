// internal/infrastructure/cache/redis/cache.go
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	defaultPrefix    = "shitpost:"
	commandsHashKey  = "commands:hash"
	interactionKeyNS = "interaction:"
)

// Cache дедупликация взаимодействий и хэши команд в Redis под общим префиксом
type Cache struct {
	client redis.UniversalClient
	prefix string
}

// NewCacheWithClient создает Cache с существующим клиентом.
// Пустой prefix заменяется на defaultPrefix.
func NewCacheWithClient(client redis.UniversalClient, prefix string) *Cache {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

// Prefix общий префикс ключей
func (c *Cache) Prefix() string {
	return c.prefix
}

// MarkInteraction атомарно помечает взаимодействие как принятое.
// Возвращает false, если оно уже было принято в пределах ttl (повторная доставка gateway).
func (c *Cache) MarkInteraction(ctx context.Context, interactionID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, c.prefix+interactionKeyNS+interactionID, time.Now().Unix(), ttl).Result()
}

// GetCommandHash возвращает хэш последнего зарегистрированного набора команд
func (c *Cache) GetCommandHash(ctx context.Context, applicationID string) (string, error) {
	hash, err := c.client.Get(ctx, c.prefix+commandsHashKey+":"+applicationID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return hash, err
}

// SetCommandHash сохраняет хэш набора команд без срока жизни
func (c *Cache) SetCommandHash(ctx context.Context, applicationID, hash string) error {
	return c.client.Set(ctx, c.prefix+commandsHashKey+":"+applicationID, hash, 0).Err()
}
