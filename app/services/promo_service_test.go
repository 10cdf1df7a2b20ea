package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/app/repositories"
)

func TestPromoCreate_AppliesDefaults(t *testing.T) {
	svc := NewPromoService(newFakePromoStore())

	promo, err := svc.Create(context.Background(), CreateRequest{
		Code:            "  art10 ",
		DiscountPercent: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, "ART10", promo.Code)
	assert.Equal(t, 100, promo.MaxUses)
	assert.Zero(t, promo.UsedCount)
	assert.True(t, promo.Active)
}

func TestPromoDiscount_TenPercent(t *testing.T) {
	promo := models.PromoCode{Code: "ART10", DiscountPercent: 10}
	assert.InDelta(t, 1000.0, promo.Discount(10000), 1e-9)
}

func TestPromoUse_CountBoundedByMaxUses(t *testing.T) {
	store := newFakePromoStore()
	svc := NewPromoService(store)

	_, err := svc.Create(context.Background(), CreateRequest{
		Code: "LIMIT3", DiscountPercent: 15, MaxUses: 3,
	})
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		promo, err := svc.Use(context.Background(), "limit3")
		require.NoError(t, err)
		assert.Equal(t, i, promo.UsedCount)
	}

	_, err = svc.Use(context.Background(), "LIMIT3")
	// exhausted code reads back as inactive, hence not found
	assert.Error(t, err)

	final, err := store.FindByCode(context.Background(), "LIMIT3")
	require.NoError(t, err)
	assert.Equal(t, 3, final.UsedCount)
	assert.False(t, final.Active)
}

func TestPromoUse_ConcurrentNeverExceedsCeiling(t *testing.T) {
	store := newFakePromoStore()
	svc := NewPromoService(store)

	const maxUses = 5
	_, err := svc.Create(context.Background(), CreateRequest{
		Code: "RACE", DiscountPercent: 20, MaxUses: maxUses,
	})
	require.NoError(t, err)

	const attempts = 20
	var wg sync.WaitGroup
	var okCount int64
	var mu sync.Mutex
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Use(context.Background(), "RACE"); err == nil {
				mu.Lock()
				okCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, maxUses, okCount)

	final, err := store.FindByCode(context.Background(), "RACE")
	require.NoError(t, err)
	assert.Equal(t, maxUses, final.UsedCount)
	assert.False(t, final.Active)
}

func TestPromoVerify(t *testing.T) {
	store := newFakePromoStore()
	svc := NewPromoService(store)

	_, err := svc.Create(context.Background(), CreateRequest{Code: "OK", DiscountPercent: 5})
	require.NoError(t, err)

	promo, err := svc.Verify(context.Background(), "ok")
	require.NoError(t, err)
	assert.Equal(t, 5, promo.DiscountPercent)

	_, err = svc.Verify(context.Background(), "MISSING")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestPromoVerify_ExpiredReadsAsNotFound(t *testing.T) {
	store := newFakePromoStore()
	svc := NewPromoService(store)

	yesterday := time.Now().Add(-24 * time.Hour)
	_, err := svc.Create(context.Background(), CreateRequest{
		Code: "OLD", DiscountPercent: 30, ExpiresAt: &yesterday,
	})
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), "OLD")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = svc.Use(context.Background(), "OLD")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestPromoPruneExpired(t *testing.T) {
	store := newFakePromoStore()
	svc := NewPromoService(store)

	yesterday := time.Now().Add(-24 * time.Hour)
	tomorrow := time.Now().Add(24 * time.Hour)

	_, err := svc.Create(context.Background(), CreateRequest{Code: "DEAD", DiscountPercent: 10, ExpiresAt: &yesterday})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateRequest{Code: "ALIVE", DiscountPercent: 10, ExpiresAt: &tomorrow})
	require.NoError(t, err)

	n, err := svc.PruneExpired(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	dead, err := store.FindByCode(context.Background(), "DEAD")
	require.NoError(t, err)
	assert.False(t, dead.Active)

	alive, err := store.FindByCode(context.Background(), "ALIVE")
	require.NoError(t, err)
	assert.True(t, alive.Active)
}
