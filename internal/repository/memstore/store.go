// Package memstore keeps every repository in process memory. It backs the
// `memory` database driver used for local demos and by the service and API
// tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/models"
	"storefront-backend/internal/repository"
)

type Store struct {
	mu       sync.RWMutex
	users    map[primitive.ObjectID]models.User
	products map[primitive.ObjectID]models.Product
	carts    map[primitive.ObjectID]models.Cart // keyed by user id
	orders   map[primitive.ObjectID]models.Order
}

func New() *Store {
	return &Store{
		users:    make(map[primitive.ObjectID]models.User),
		products: make(map[primitive.ObjectID]models.Product),
		carts:    make(map[primitive.ObjectID]models.Cart),
		orders:   make(map[primitive.ObjectID]models.Order),
	}
}

func (s *Store) Repositories() *repository.Repositories {
	return repository.NewRepositories(
		(*userRepository)(s),
		(*productRepository)(s),
		(*cartRepository)(s),
		(*orderRepository)(s),
		nil,
	)
}

// ---- users ----

type userRepository Store

func (r *userRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) List(_ context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *userRepository) update(id primitive.ObjectID, fn func(u *models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&u)
	r.users[id] = u
	return nil
}

func (r *userRepository) UpdateProfile(_ context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	return r.update(user.ID, func(u *models.User) {
		u.Name = user.Name
		u.Phone = user.Phone
		u.DateOfBirth = user.DateOfBirth
		u.Gender = user.Gender
		u.Address = user.Address
		u.UpdatedAt = user.UpdatedAt
	})
}

func (r *userRepository) SetActive(_ context.Context, id primitive.ObjectID, active bool) error {
	return r.update(id, func(u *models.User) {
		u.IsActive = active
		u.UpdatedAt = time.Now()
	})
}

func (r *userRepository) SetPassword(_ context.Context, id primitive.ObjectID, hash string) error {
	return r.update(id, func(u *models.User) {
		u.Password = hash
		u.UpdatedAt = time.Now()
	})
}

func (r *userRepository) TouchLastLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	return r.update(id, func(u *models.User) {
		u.LastLogin = &at
	})
}

// ---- products ----

type productRepository Store

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}

func cloneProduct(p models.Product) models.Product {
	p.Sizes = cloneStrings(p.Sizes)
	p.Images = cloneStrings(p.Images)
	p.Features = cloneStrings(p.Features)
	return p
}

func (r *productRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	if _, ok := r.products[product.ID]; ok {
		return repository.ErrDuplicate
	}
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

func (r *productRepository) GetByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = cloneProduct(p)
	return &p, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func matchesFilter(p models.Product, f models.ProductFilter) bool {
	if !f.IncludeInactive && !p.IsActive {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Collection != "" && p.Collection != f.Collection {
		return false
	}
	if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
		return false
	}
	if f.Search != "" && !containsFold(p.Name, f.Search) && !containsFold(p.Description, f.Search) && !containsFold(p.Brand, f.Search) {
		return false
	}
	return true
}

func (r *productRepository) List(_ context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Product{}
	for _, p := range r.products {
		if !matchesFilter(p, filter) {
			continue
		}
		p := cloneProduct(p)
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *productRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; !ok {
		return repository.ErrNotFound
	}
	product.UpdatedAt = time.Now()
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

func (r *productRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *productRepository) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.products))
	r.products = make(map[primitive.ObjectID]models.Product)
	return n, nil
}

// ---- carts ----

type cartRepository Store

func cloneCart(c models.Cart) models.Cart {
	c.Items = append([]models.CartItem{}, c.Items...)
	return c
}

func (r *cartRepository) GetByUser(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.carts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c = cloneCart(c)
	return &c, nil
}

func (r *cartRepository) Create(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.carts[cart.UserID]; ok {
		return repository.ErrDuplicate
	}
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	r.carts[cart.UserID] = cloneCart(*cart)
	return nil
}

func (r *cartRepository) Save(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.carts[cart.UserID]
	if !ok || stored.ID != cart.ID || stored.Version != cart.Version {
		return repository.ErrConflict
	}
	cart.Version++
	cart.UpdatedAt = time.Now()
	r.carts[cart.UserID] = cloneCart(*cart)
	return nil
}

// ---- orders ----

type orderRepository Store

func cloneOrder(o models.Order) models.Order {
	if o.Items != nil {
		o.Items = append([]models.OrderItem{}, o.Items...)
	}
	return o
}

func (r *orderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if _, ok := r.orders[order.ID]; ok {
		return repository.ErrDuplicate
	}
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r *orderRepository) GetByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r *orderRepository) collect(keep func(o models.Order) bool) []*models.Order {
	out := []*models.Order{}
	for _, o := range r.orders {
		if !keep(o) {
			continue
		}
		o := cloneOrder(o)
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out
}

func (r *orderRepository) ListByUser(_ context.Context, userID primitive.ObjectID) ([]*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (r *orderRepository) List(_ context.Context, status string) ([]*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(o models.Order) bool { return status == "" || o.Status == status }), nil
}

func (r *orderRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.orders[id] = o
	return nil
}

func (r *orderRepository) MarkPayment(_ context.Context, paymentID, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, o := range r.orders {
		if o.PaymentID != paymentID {
			continue
		}
		o.PaymentStatus = status
		o.UpdatedAt = time.Now()
		r.orders[id] = o
		n++
	}
	return n, nil
}
