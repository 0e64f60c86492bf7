package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Sastreria-api/pkg/config"
)

const roleKeyPrefix = "authz:roles:"

// RedisRoleCache caché compartida entre instancias. El TTL lo aplica Redis (SET ... EX).
type RedisRoleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient crea el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	options := &redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	// Con password asumimos Redis gestionado, que exige TLS.
	if cfg.Password != "" {
		options.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewRedisRoleCache construye la caché sobre un cliente existente.
func NewRedisRoleCache(client *redis.Client, ttl time.Duration) *RedisRoleCache {
	return &RedisRoleCache{client: client, ttl: ttl}
}

// Get devuelve los roles si la clave existe.
func (c *RedisRoleCache) Get(ctx context.Context, userID string) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, roleKeyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get roles: %w", err)
	}
	var roles []string
	if err := json.Unmarshal(raw, &roles); err != nil {
		return nil, false, fmt.Errorf("decode roles: %w", err)
	}
	return roles, true, nil
}

// Set guarda los roles con expiración.
func (c *RedisRoleCache) Set(ctx context.Context, userID string, roles []string) error {
	if roles == nil {
		roles = []string{}
	}
	raw, err := json.Marshal(roles)
	if err != nil {
		return fmt.Errorf("encode roles: %w", err)
	}
	if err := c.client.Set(ctx, roleKeyPrefix+userID, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set roles: %w", err)
	}
	return nil
}
