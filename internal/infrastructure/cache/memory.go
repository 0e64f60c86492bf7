// Package cache implementa la caché de roles por usuario (memoria o Redis).
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Sastreria-api/pkg/clock"
)

// MemoryRoleCache caché en proceso con TTL. Las entradas solo caducan por tiempo;
// no hay invalidación explícita, así que una revocación puede tardar hasta ttl en verse.
type MemoryRoleCache struct {
	mu    sync.RWMutex
	items map[string]roleEntry
	ttl   time.Duration
	clock clock.Clock
}

type roleEntry struct {
	roles     []string
	expiresAt time.Time
}

// NewMemoryRoleCache construye la caché. clk nil usa el reloj del sistema.
func NewMemoryRoleCache(ttl time.Duration, clk clock.Clock) *MemoryRoleCache {
	if clk == nil {
		clk = clock.System{}
	}
	return &MemoryRoleCache{
		items: make(map[string]roleEntry),
		ttl:   ttl,
		clock: clk,
	}
}

// Get devuelve los roles si hay entrada vigente.
func (c *MemoryRoleCache) Get(_ context.Context, userID string) ([]string, bool, error) {
	c.mu.RLock()
	e, ok := c.items[userID]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !c.clock.Now().Before(e.expiresAt) {
		c.mu.Lock()
		// otra goroutine pudo refrescarla entre ambos locks
		if cur, ok := c.items[userID]; ok && !c.clock.Now().Before(cur.expiresAt) {
			delete(c.items, userID)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return cloneRoles(e.roles), true, nil
}

// Set guarda los roles con el TTL configurado.
func (c *MemoryRoleCache) Set(_ context.Context, userID string, roles []string) error {
	c.mu.Lock()
	c.items[userID] = roleEntry{roles: cloneRoles(roles), expiresAt: c.clock.Now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func cloneRoles(roles []string) []string {
	out := make([]string, len(roles))
	copy(out, roles)
	return out
}
