package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Sastreria-api/internal/infrastructure/cache"
	"github.com/jhoicas/Sastreria-api/pkg/clock"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestMemoryRoleCache_HitDentroDelTTL(t *testing.T) {
	clk := clock.NewFake(t0)
	c := cache.NewMemoryRoleCache(5*time.Minute, clk)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "u1", []string{"sastre"}))
	clk.Advance(4*time.Minute + 59*time.Second)

	roles, ok, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"sastre"}, roles)
}

func TestMemoryRoleCache_ExpiraAlCumplirElTTL(t *testing.T) {
	clk := clock.NewFake(t0)
	c := cache.NewMemoryRoleCache(5*time.Minute, clk)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "u1", []string{"sastre"}))
	clk.Advance(5 * time.Minute)

	_, ok, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryRoleCache_ListaVaciaEsHit(t *testing.T) {
	c := cache.NewMemoryRoleCache(time.Minute, clock.NewFake(t0))
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "sin-roles", nil))
	roles, ok, _ := c.Get(ctx, "sin-roles")
	assert.True(t, ok, "un usuario sin roles también se cachea")
	assert.Empty(t, roles)
}

func TestMemoryRoleCache_DevuelveCopia(t *testing.T) {
	c := cache.NewMemoryRoleCache(time.Minute, clock.NewFake(t0))
	ctx := context.Background()

	in := []string{"sastre"}
	require.NoError(t, c.Set(ctx, "u1", in))
	in[0] = "administrador"

	out, _, _ := c.Get(ctx, "u1")
	out[0] = "otro"

	again, _, _ := c.Get(ctx, "u1")
	assert.Equal(t, []string{"sastre"}, again)
}

func TestMemoryRoleCache_Concurrencia(t *testing.T) {
	c := cache.NewMemoryRoleCache(time.Minute, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = c.Set(ctx, "u1", []string{"sastre"})
		}()
		go func() {
			defer wg.Done()
			_, _, _ = c.Get(ctx, "u1")
		}()
	}
	wg.Wait()

	roles, ok, _ := c.Get(ctx, "u1")
	assert.True(t, ok)
	assert.Equal(t, []string{"sastre"}, roles)
}
