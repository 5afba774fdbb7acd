package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/models"
	"storefront-backend/internal/pricing"
)

func TestAddSamePairIncrementsQuantity(t *testing.T) {
	f := newFixture(t, defaultOrderOptions())
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	p1 := f.product(t, "P1", 1000, "8", "9")

	_, err := f.carts.Add(ctx, &models.AddToCartRequest{UserID: alice.ID.Hex(), ProductID: p1.ID.Hex(), Size: "9", Quantity: 1})
	require.NoError(t, err)
	cart, err := f.carts.Add(ctx, &models.AddToCartRequest{UserID: alice.ID.Hex(), ProductID: p1.ID.Hex(), Size: "9", Quantity: 2})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, "P1", cart.Items[0].Name)
	assert.Equal(t, 3000.0, cart.TotalAmount)

	stored, err := f.carts.Get(ctx, alice.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, cart.Items, stored.Items)
	assert.Equal(t, 3000.0, stored.TotalAmount)
}

func TestCartTotalTracksEveryMutation(t *testing.T) {
	f := newFixture(t, defaultOrderOptions())
	ctx := context.Background()
	user := f.register(t, "bob@example.com")
	a := f.product(t, "A", 19.99, "S", "M")
	b := f.product(t, "B", 0.1)
	uid := user.ID.Hex()

	check := func(cart *models.Cart) {
		t.Helper()
		assert.Equal(t, pricing.CartTotal(cart.Items), cart.TotalAmount)
	}

	cart, err := f.carts.Add(ctx, &models.AddToCartRequest{UserID: uid, ProductID: a.ID.Hex(), Size: "S", Quantity: 3})
	require.NoError(t, err)
	check(cart)
	cart, err = f.carts.Add(ctx, &models.AddToCartRequest{UserID: uid, ProductID: a.ID.Hex(), Size: "M", Quantity: 1})
	require.NoError(t, err)
	check(cart)
	cart, err = f.carts.Add(ctx, &models.AddToCartRequest{UserID: uid, ProductID: b.ID.Hex(), Quantity: 3})
	require.NoError(t, err)
	check(cart)
	assert.Len(t, cart.Items, 3)
	assert.Equal(t, 80.26, cart.TotalAmount)

	cart, err = f.carts.UpdateQuantity(ctx, &models.UpdateCartItemRequest{UserID: uid, ProductID: a.ID.Hex(), Size: "S", Quantity: 1})
	require.NoError(t, err)
	check(cart)

	cart, err = f.carts.Remove(ctx, &models.RemoveCartItemRequest{UserID: uid, ProductID: a.ID.Hex(), Size: "M"})
	require.NoError(t, err)
	check(cart)
	assert.Len(t, cart.Items, 2)

	cart, err = f.carts.Clear(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.TotalAmount)
	assert.False(t, cart.ID.IsZero())
}

func TestRemoveMissingPairLeavesCartUnchanged(t *testing.T) {
	f := newFixture(t, defaultOrderOptions())
	ctx := context.Background()
	user := f.register(t, "carol@example.com")
	p := f.product(t, "P", 500, "9", "10")
	uid := user.ID.Hex()

	before, err := f.carts.Add(ctx, &models.AddToCartRequest{UserID: uid, ProductID: p.ID.Hex(), Size: "9", Quantity: 2})
	require.NoError(t, err)

	_, err = f.carts.Remove(ctx, &models.RemoveCartItemRequest{UserID: uid, ProductID: p.ID.Hex(), Size: "10"})
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := f.carts.Get(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.TotalAmount, after.TotalAmount)
}

func TestCartErrors(t *testing.T) {
	f := newFixture(t, defaultOrderOptions())
	ctx := context.Background()
	user := f.register(t, "dan@example.com")
	p := f.product(t, "P", 500, "9")
	uid := user.ID.Hex()

	_, err := f.carts.Add(ctx, &models.AddToCartRequest{UserID: uid, ProductID: p.ID.Hex(), Size: "12", Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.carts.Add(ctx, &models.AddToCartRequest{UserID: uid, ProductID: "64b000000000000000000000", Size: "9", Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.carts.UpdateQuantity(ctx, &models.UpdateCartItemRequest{UserID: uid, ProductID: p.ID.Hex(), Size: "9", Quantity: 2})
	assert.ErrorIs(t, err, ErrNotFound, "no cart yet")

	cart, err := f.carts.Get(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	cart, err = f.carts.Clear(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestConcurrentAddsNeverLoseWrites(t *testing.T) {
	f := newFixture(t, defaultOrderOptions())
	ctx := context.Background()
	user := f.register(t, "erin@example.com")
	p := f.product(t, "P", 10)
	uid := user.ID.Hex()

	_, err := f.carts.Add(ctx, &models.AddToCartRequest{UserID: uid, ProductID: p.ID.Hex(), Quantity: 1})
	require.NoError(t, err)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok = 1
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.carts.Add(ctx, &models.AddToCartRequest{UserID: uid, ProductID: p.ID.Hex(), Quantity: 1})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, ErrConflict), "unexpected error: %v", err)
		}()
	}
	wg.Wait()

	cart, err := f.carts.Get(ctx, uid)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, ok, cart.Items[0].Quantity)
	assert.Equal(t, float64(ok*10), cart.TotalAmount)
}
