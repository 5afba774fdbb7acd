// Package repotest holds the behaviour every repository driver must share.
// Driver test files call Run with a fresh, empty set of repositories.
package repotest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/models"
	"storefront-backend/internal/repository"
)

func Run(t *testing.T, newRepos func(t *testing.T) *repository.Repositories) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newRepos(t)) })
	t.Run("Products", func(t *testing.T) { testProducts(t, newRepos(t)) })
	t.Run("Carts", func(t *testing.T) { testCarts(t, newRepos(t)) })
	t.Run("CartVersionRace", func(t *testing.T) { testCartRace(t, newRepos(t)) })
	t.Run("Orders", func(t *testing.T) { testOrders(t, newRepos(t)) })
}

func testUsers(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	users := repos.Users

	u := &models.User{Name: "Alice", Email: "Alice@Example.com", Password: "hash", IsActive: true, CreatedAt: time.Now()}
	require.NoError(t, users.Create(ctx, u))
	assert.False(t, u.ID.IsZero())

	dup := &models.User{Name: "Other", Email: "alice@example.com"}
	assert.ErrorIs(t, users.Create(ctx, dup), repository.ErrDuplicate)

	got, err := users.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "alice@example.com", got.Email)

	_, err = users.GetByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got.Name = "Alice B"
	got.Address = models.Address{City: "Pune"}
	require.NoError(t, users.UpdateProfile(ctx, got))

	require.NoError(t, users.SetActive(ctx, u.ID, false))
	require.NoError(t, users.SetPassword(ctx, u.ID, "newhash"))
	require.NoError(t, users.TouchLastLogin(ctx, u.ID, time.Now()))

	got, err = users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice B", got.Name)
	assert.Equal(t, "Pune", got.Address.City)
	assert.False(t, got.IsActive)
	assert.Equal(t, "newhash", got.Password)
	assert.NotNil(t, got.LastLogin)

	assert.ErrorIs(t, users.SetActive(ctx, primitive.NewObjectID(), true), repository.ErrNotFound)

	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testProducts(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	products := repos.Products

	now := time.Now()
	shoes := &models.Product{Name: "Runner", Brand: "Fleet", Price: 1000, Category: models.CategoryMen, Collection: models.CollectionLatest, Sizes: []string{"8", "9"}, IsActive: true, CreatedAt: now}
	dress := &models.Product{Name: "Summer Dress", Brand: "Bloom", Price: 1500, Category: models.CategoryWomen, Collection: models.CollectionTrending, IsActive: true, CreatedAt: now.Add(time.Second)}
	hidden := &models.Product{Name: "Old Runner", Brand: "Fleet", Price: 500, Category: models.CategoryMen, Collection: models.CollectionLatest, IsActive: false, CreatedAt: now.Add(2 * time.Second)}
	for _, p := range []*models.Product{shoes, dress, hidden} {
		require.NoError(t, products.Create(ctx, p))
	}

	all, err := products.List(ctx, models.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, dress.ID, all[0].ID, "newest first")

	withInactive, err := products.List(ctx, models.ProductFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, withInactive, 3)

	men, err := products.List(ctx, models.ProductFilter{Category: models.CategoryMen, IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, men, 2)

	search, err := products.List(ctx, models.ProductFilter{Search: "runner"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, shoes.ID, search[0].ID)

	brand, err := products.List(ctx, models.ProductFilter{Brand: "fleet", IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, brand, 2)

	shoes.Stock = 7
	require.NoError(t, products.Update(ctx, shoes))
	got, err := products.GetByID(ctx, shoes.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)
	assert.Equal(t, []string{"8", "9"}, got.Sizes)

	require.NoError(t, products.Delete(ctx, shoes.ID))
	assert.ErrorIs(t, products.Delete(ctx, shoes.ID), repository.ErrNotFound)
	ghost := &models.Product{ID: primitive.NewObjectID(), Name: "Ghost"}
	assert.ErrorIs(t, products.Update(ctx, ghost), repository.ErrNotFound)

	n, err := products.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func testCarts(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	carts := repos.Carts
	userID := primitive.NewObjectID()

	_, err := carts.GetByUser(ctx, userID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	cart := models.NewCart(userID)
	require.NoError(t, carts.Create(ctx, cart))
	assert.ErrorIs(t, carts.Create(ctx, models.NewCart(userID)), repository.ErrDuplicate)

	cart.Items = append(cart.Items, models.CartItem{ProductID: primitive.NewObjectID(), Name: "Runner", Price: 1000, Size: "9", Quantity: 3})
	cart.TotalAmount = 3000
	require.NoError(t, carts.Save(ctx, cart))
	assert.Equal(t, int64(1), cart.Version)

	got, err := carts.GetByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)
	assert.Equal(t, 3000.0, got.TotalAmount)
	assert.Equal(t, int64(1), got.Version)

	stale := *got
	stale.Version = 0
	assert.ErrorIs(t, carts.Save(ctx, &stale), repository.ErrConflict)
}

func testCartRace(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	carts := repos.Carts
	cart := models.NewCart(primitive.NewObjectID())
	require.NoError(t, carts.Create(ctx, cart))

	const writers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := *cart
			c.Items = []models.CartItem{{ProductID: primitive.NewObjectID(), Quantity: 1, Price: 1}}
			c.TotalAmount = 1
			if err := carts.Save(ctx, &c); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one writer holding version 0 may win")
}

func testOrders(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	orders := repos.Orders
	userID := primitive.NewObjectID()

	first := &models.Order{UserID: userID, PaymentID: "pay_1", PaymentStatus: models.PaymentStatusCompleted, Status: models.OrderStatusPending, Total: 10, OrderDate: time.Now().Add(-time.Hour)}
	second := &models.Order{UserID: userID, PaymentMethod: models.PaymentMethodCOD, PaymentStatus: models.PaymentStatusPending, Status: models.OrderStatusPending, Total: 20, OrderDate: time.Now()}
	other := &models.Order{UserID: primitive.NewObjectID(), Status: models.OrderStatusShipped, OrderDate: time.Now()}
	for _, o := range []*models.Order{first, second, other} {
		require.NoError(t, orders.Create(ctx, o))
	}

	mine, err := orders.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)

	shipped, err := orders.List(ctx, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Len(t, shipped, 1)

	require.NoError(t, orders.UpdateStatus(ctx, first.ID, models.OrderStatusConfirmed))
	got, err := orders.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, got.Status)

	n, err := orders.MarkPayment(ctx, "pay_1", models.PaymentStatusRefunded)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	got, err = orders.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, got.PaymentStatus)

	assert.ErrorIs(t, orders.UpdateStatus(ctx, primitive.NewObjectID(), models.OrderStatusShipped), repository.ErrNotFound)
}
