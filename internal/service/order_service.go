package service

import (
	"context"
	"fmt"
	"time"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/metrics"
	"storefront-backend/internal/models"
	"storefront-backend/internal/notify"
	"storefront-backend/internal/otp"
	"storefront-backend/internal/pricing"
	"storefront-backend/internal/repository"
)

type OrderService interface {
	Create(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error)
	Get(ctx context.Context, orderID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Order, error)
	List(ctx context.Context, status string) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string) (*models.Order, error)
}

type OrderOptions struct {
	RequireCODOTP bool
	// EnforceTotals rejects orders whose totals differ from the server
	// quote. Off, mismatches are only logged and counted.
	EnforceTotals bool
	Pricing       pricing.Rules
}

type orderService struct {
	orders   repository.OrderRepository
	users    repository.UserRepository
	carts    CartService
	otps     *otp.Service
	notifier *notify.Notifier
	opts     OrderOptions
	metrics  *metrics.Metrics
	log      *logging.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	users repository.UserRepository,
	carts CartService,
	otps *otp.Service,
	notifier *notify.Notifier,
	opts OrderOptions,
	m *metrics.Metrics,
	log *logging.Logger,
) OrderService {
	return &orderService{
		orders:   orders,
		users:    users,
		carts:    carts,
		otps:     otps,
		notifier: notifier,
		opts:     opts,
		metrics:  m,
		log:      log.Named("orders"),
	}
}

// Create stores the order as submitted. Clearing the cart and the
// confirmation email happen after the order is saved and cannot fail it.
func (s *orderService) Create(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	log := s.log.WithContext(ctx)

	uid, err := parseID(req.UserID, "user")
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, uid); err != nil {
		return nil, notFound(err, "user")
	}
	if len(req.Items) == 0 {
		return nil, invalid("order has no items")
	}
	for _, item := range req.Items {
		if item.ProductID.IsZero() {
			return nil, invalid("order item %q has no product id", item.Name)
		}
	}

	if req.PaymentMethod == models.PaymentMethodCOD && s.opts.RequireCODOTP {
		email := req.ShippingAddress.Email
		if email == "" {
			return nil, invalid("shipping email is required for cash on delivery")
		}
		if err := s.otps.Verify(ctx, models.OTPPurposeCheckout, email, req.OTP); err != nil {
			return nil, otpError(err)
		}
	}

	quote := s.opts.Pricing.Quote(req.Items)
	if !quote.Matches(req.Subtotal, req.Shipping, req.Tax, req.Total) {
		s.metrics.OrderTotalMismatches.Inc()
		log.Warn("order totals differ from server quote",
			"user_id", req.UserID,
			"client_subtotal", req.Subtotal, "client_shipping", req.Shipping,
			"client_tax", req.Tax, "client_total", req.Total,
			"quote_subtotal", quote.Subtotal, "quote_shipping", quote.Shipping,
			"quote_tax", quote.Tax, "quote_total", quote.Total,
		)
		if s.opts.EnforceTotals {
			return nil, invalid("order totals do not match: expected total %.2f", quote.Total)
		}
	}

	paymentStatus := req.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = models.PaymentStatusPending
	}
	now := time.Now()
	order := &models.Order{
		UserID:          uid,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentID:       req.PaymentID,
		PaymentStatus:   paymentStatus,
		Subtotal:        req.Subtotal,
		Shipping:        req.Shipping,
		Tax:             req.Tax,
		Total:           req.Total,
		Status:          models.OrderStatusPending,
		OrderDate:       now,
		UpdatedAt:       now,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.metrics.OrdersCreated.WithLabelValues(order.PaymentMethod).Inc()
	log.Info("order created",
		"order_id", order.ID.Hex(),
		"payment_method", order.PaymentMethod,
		"total", order.Total,
	)

	if _, err := s.carts.Clear(ctx, req.UserID); err != nil {
		log.WithError(err).Warn("failed to clear cart after order", "order_id", order.ID.Hex())
	}

	if order.PaymentMethod == models.PaymentMethodCOD && order.ShippingAddress.Email != "" {
		snapshot := *order
		s.notifier.Background(ctx, "order_confirmation", func(ctx context.Context) error {
			return s.notifier.OrderConfirmation(ctx, &snapshot)
		})
	}
	return order, nil
}

func (s *orderService) Get(ctx context.Context, orderID string) (*models.Order, error) {
	id, err := parseID(orderID, "order")
	if err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "order")
	}
	return order, nil
}

func (s *orderService) ListByUser(ctx context.Context, userID string) ([]*models.Order, error) {
	uid, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}
	return s.orders.ListByUser(ctx, uid)
}

func (s *orderService) List(ctx context.Context, status string) ([]*models.Order, error) {
	return s.orders.List(ctx, status)
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(order.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, status)
	}
	if err := s.orders.UpdateStatus(ctx, order.ID, status); err != nil {
		return nil, notFound(err, "order")
	}
	s.log.WithContext(ctx).Info("order status changed",
		"order_id", order.ID.Hex(), "from", order.Status, "to", status)

	order.Status = status
	order.UpdatedAt = time.Now()
	return order, nil
}
