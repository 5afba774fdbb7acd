// Package repository defines the persistence contracts of the storefront.
// Drivers live in sub packages: mongostore for MongoDB, memstore for the
// in-process demo/test store. Both translate their native errors into the
// errors below.
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("entity not found")
	ErrDuplicate = errors.New("duplicate: entity already exists")
	// ErrConflict is returned when a compare-and-swap write lost the race.
	ErrConflict = errors.New("conflict: concurrent modification detected")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteAll(ctx context.Context) (int64, error)
}

type CartRepository interface {
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	// Create fails with ErrDuplicate when the user already has a cart.
	Create(ctx context.Context, cart *models.Cart) error
	// Save writes items and total only if the stored version still equals
	// cart.Version, then bumps cart.Version. A lost race yields ErrConflict.
	Save(ctx context.Context, cart *models.Cart) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Order, error)
	List(ctx context.Context, status string) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
	// MarkPayment sets paymentStatus on every order paid with paymentID and
	// returns how many matched.
	MarkPayment(ctx context.Context, paymentID, status string) (int64, error)
}

// Repositories is what a driver hands to the services.
type Repositories struct {
	Users    UserRepository
	Products ProductRepository
	Carts    CartRepository
	Orders   OrderRepository

	closer func(ctx context.Context) error
}

func NewRepositories(users UserRepository, products ProductRepository, carts CartRepository, orders OrderRepository, closer func(ctx context.Context) error) *Repositories {
	return &Repositories{
		Users:    users,
		Products: products,
		Carts:    carts,
		Orders:   orders,
		closer:   closer,
	}
}

func (r *Repositories) Close(ctx context.Context) error {
	if r.closer == nil {
		return nil
	}
	return r.closer(ctx)
}
