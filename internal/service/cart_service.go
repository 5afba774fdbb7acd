package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/metrics"
	"storefront-backend/internal/models"
	"storefront-backend/internal/pricing"
	"storefront-backend/internal/repository"
)

// cartWriteAttempts bounds the read-modify-write loop when the version check
// keeps failing.
const cartWriteAttempts = 3

type CartService interface {
	Get(ctx context.Context, userID string) (*models.Cart, error)
	Add(ctx context.Context, req *models.AddToCartRequest) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, req *models.UpdateCartItemRequest) (*models.Cart, error)
	Remove(ctx context.Context, req *models.RemoveCartItemRequest) (*models.Cart, error)
	Clear(ctx context.Context, userID string) (*models.Cart, error)
}

type cartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	metrics  *metrics.Metrics
	log      *logging.Logger
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, m *metrics.Metrics, log *logging.Logger) CartService {
	return &cartService{
		carts:    carts,
		products: products,
		metrics:  m,
		log:      log.Named("cart"),
	}
}

// Get returns an empty, unsaved cart when the user has none yet.
func (s *cartService) Get(ctx context.Context, userID string) (*models.Cart, error) {
	uid, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.GetByUser(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewCart(uid), nil
	}
	return cart, err
}

func (s *cartService) Add(ctx context.Context, req *models.AddToCartRequest) (*models.Cart, error) {
	uid, err := parseID(req.UserID, "user")
	if err != nil {
		return nil, err
	}
	pid, err := parseID(req.ProductID, "product")
	if err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, pid)
	if err != nil {
		return nil, notFound(err, "product")
	}
	if !product.IsActive {
		return nil, invalid("product is not available")
	}
	if !product.HasSize(req.Size) {
		return nil, invalid("size %q is not offered for this product", req.Size)
	}

	return s.mutate(ctx, uid, true, func(cart *models.Cart) error {
		if i := cart.IndexOf(pid, req.Size); i >= 0 {
			cart.Items[i].Quantity += req.Quantity
			return nil
		}
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: pid,
			Name:      product.Name,
			Image:     product.Image,
			Price:     product.Price,
			Size:      req.Size,
			Quantity:  req.Quantity,
		})
		return nil
	})
}

func (s *cartService) UpdateQuantity(ctx context.Context, req *models.UpdateCartItemRequest) (*models.Cart, error) {
	uid, err := parseID(req.UserID, "user")
	if err != nil {
		return nil, err
	}
	pid, err := parseID(req.ProductID, "product")
	if err != nil {
		return nil, err
	}
	if req.Quantity < 1 {
		return nil, invalid("quantity must be at least 1")
	}
	return s.mutate(ctx, uid, false, func(cart *models.Cart) error {
		i := cart.IndexOf(pid, req.Size)
		if i < 0 {
			return fmt.Errorf("%w: item not in cart", ErrNotFound)
		}
		cart.Items[i].Quantity = req.Quantity
		return nil
	})
}

func (s *cartService) Remove(ctx context.Context, req *models.RemoveCartItemRequest) (*models.Cart, error) {
	uid, err := parseID(req.UserID, "user")
	if err != nil {
		return nil, err
	}
	pid, err := parseID(req.ProductID, "product")
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, uid, false, func(cart *models.Cart) error {
		i := cart.IndexOf(pid, req.Size)
		if i < 0 {
			return fmt.Errorf("%w: item not in cart", ErrNotFound)
		}
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		return nil
	})
}

// Clear empties the cart but keeps the document.
func (s *cartService) Clear(ctx context.Context, userID string) (*models.Cart, error) {
	uid, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}
	cart, err := s.mutate(ctx, uid, false, func(cart *models.Cart) error {
		cart.Items = []models.CartItem{}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return models.NewCart(uid), nil
	}
	return cart, err
}

// mutate loads the user's cart, applies fn, recomputes the total and writes
// it back with a version check, retrying on lost races. With create set a
// missing cart is created, otherwise it is ErrNotFound.
func (s *cartService) mutate(ctx context.Context, userID primitive.ObjectID, create bool, fn func(*models.Cart) error) (*models.Cart, error) {
	for attempt := 1; attempt <= cartWriteAttempts; attempt++ {
		cart, err := s.carts.GetByUser(ctx, userID)
		isNew := false
		switch {
		case errors.Is(err, repository.ErrNotFound):
			if !create {
				return nil, fmt.Errorf("%w: cart", ErrNotFound)
			}
			cart = models.NewCart(userID)
			isNew = true
		case err != nil:
			return nil, err
		}

		if err := fn(cart); err != nil {
			return nil, err
		}
		cart.TotalAmount = pricing.CartTotal(cart.Items)

		if isNew {
			err = s.carts.Create(ctx, cart)
			if errors.Is(err, repository.ErrDuplicate) {
				err = repository.ErrConflict
			}
		} else {
			err = s.carts.Save(ctx, cart)
		}
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return nil, err
		}
		s.metrics.CartConflicts.Inc()
		s.log.WithContext(ctx).Debug("cart write conflict, retrying", "user_id", userID.Hex(), "attempt", attempt)
	}
	return nil, ErrConflict
}
