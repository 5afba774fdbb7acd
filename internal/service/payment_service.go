package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/metrics"
	"storefront-backend/internal/models"
	"storefront-backend/internal/notify"
	"storefront-backend/internal/payment"
	"storefront-backend/internal/pricing"
	"storefront-backend/internal/repository"
)

type CheckoutOrder struct {
	*payment.Order
	KeyID string `json:"key"`
}

type RefundResult struct {
	Refund        *payment.Refund `json:"refund"`
	OrdersUpdated int64           `json:"ordersUpdated"`
}

type PaymentService interface {
	CreateOrder(ctx context.Context, req *models.CreatePaymentOrderRequest) (*CheckoutOrder, error)
	// Verify checks the checkout signature and returns the payment id. It
	// does not touch any order and does not guard against replays.
	Verify(ctx context.Context, req *models.VerifyPaymentRequest) (string, error)
	FetchPayment(ctx context.Context, paymentID string) (*payment.Payment, error)
	Refund(ctx context.Context, req *models.RefundRequest) (*RefundResult, error)
}

type PaymentOptions struct {
	Currency string
	Timeout  time.Duration
}

type paymentService struct {
	gateway  payment.Gateway
	signer   *payment.Signer
	orders   repository.OrderRepository
	notifier *notify.Notifier
	opts     PaymentOptions
	metrics  *metrics.Metrics
	log      *logging.Logger
}

func NewPaymentService(
	gateway payment.Gateway,
	signer *payment.Signer,
	orders repository.OrderRepository,
	notifier *notify.Notifier,
	opts PaymentOptions,
	m *metrics.Metrics,
	log *logging.Logger,
) PaymentService {
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &paymentService{
		gateway:  gateway,
		signer:   signer,
		orders:   orders,
		notifier: notifier,
		opts:     opts,
		metrics:  m,
		log:      log.Named("payment"),
	}
}

func newReceipt() string {
	return "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func gatewayError(err error) error {
	if errors.Is(err, payment.ErrPaymentNotFound) {
		return fmt.Errorf("%w: payment", ErrNotFound)
	}
	return fmt.Errorf("%w: %v", ErrGateway, err)
}

func (s *paymentService) CreateOrder(ctx context.Context, req *models.CreatePaymentOrderRequest) (*CheckoutOrder, error) {
	amount := pricing.ToSubunits(req.Amount)
	if amount <= 0 {
		return nil, invalid("amount must be positive")
	}
	currency := req.Currency
	if currency == "" {
		currency = s.opts.Currency
	}
	receipt := req.Receipt
	if receipt == "" {
		receipt = newReceipt()
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	order, err := s.gateway.CreateOrder(ctx, amount, strings.ToUpper(currency), receipt, req.Notes)
	s.metrics.ObserveGateway("create_order", err)
	if err != nil {
		s.log.WithContext(ctx).WithError(err).Error("gateway order creation failed", "amount", amount)
		return nil, gatewayError(err)
	}
	return &CheckoutOrder{Order: order, KeyID: s.gateway.KeyID()}, nil
}

func (s *paymentService) Verify(ctx context.Context, req *models.VerifyPaymentRequest) (string, error) {
	log := s.log.WithContext(ctx)

	if !s.signer.Verify(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		s.metrics.PaymentVerifications.WithLabelValues("invalid").Inc()
		log.Warn("payment signature mismatch",
			"order_id", req.RazorpayOrderID, "payment_id", req.RazorpayPaymentID)
		return "", ErrPaymentVerification
	}
	s.metrics.PaymentVerifications.WithLabelValues("valid").Inc()
	log.Info("payment verified", "order_id", req.RazorpayOrderID, "payment_id", req.RazorpayPaymentID)

	if req.Email != "" {
		receipt := notify.PaymentReceipt{
			Email:     req.Email,
			Name:      req.Name,
			PaymentID: req.RazorpayPaymentID,
			OrderID:   req.RazorpayOrderID,
			Amount:    req.Amount,
		}
		s.notifier.Background(ctx, "payment_confirmation", func(ctx context.Context) error {
			return s.notifier.PaymentConfirmation(ctx, receipt)
		})
	}
	return req.RazorpayPaymentID, nil
}

func (s *paymentService) FetchPayment(ctx context.Context, paymentID string) (*payment.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	p, err := s.gateway.FetchPayment(ctx, paymentID)
	s.metrics.ObserveGateway("fetch_payment", err)
	if err != nil {
		return nil, gatewayError(err)
	}
	return p, nil
}

// Refund refunds through the gateway and, once nothing is left to refund,
// marks the orders paid with that payment as refunded.
func (s *paymentService) Refund(ctx context.Context, req *models.RefundRequest) (*RefundResult, error) {
	log := s.log.WithContext(ctx)
	amount := pricing.ToSubunits(req.Amount)

	gctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	refund, err := s.gateway.Refund(gctx, req.PaymentID, amount, req.Notes)
	s.metrics.ObserveGateway("refund", err)
	if err != nil {
		log.WithError(err).Error("refund failed", "payment_id", req.PaymentID)
		return nil, gatewayError(err)
	}
	log.Info("refund issued", "payment_id", req.PaymentID, "refund_id", refund.ID, "amount", refund.Amount)

	full := amount == 0
	if !full {
		p, err := s.gateway.FetchPayment(gctx, req.PaymentID)
		s.metrics.ObserveGateway("fetch_payment", err)
		if err != nil {
			log.WithError(err).Warn("could not confirm refunded balance", "payment_id", req.PaymentID)
		} else {
			full = p.Refunded >= p.Amount
		}
	}

	result := &RefundResult{Refund: refund}
	if full {
		n, err := s.orders.MarkPayment(ctx, req.PaymentID, models.PaymentStatusRefunded)
		if err != nil {
			log.WithError(err).Error("refund issued but orders not updated", "payment_id", req.PaymentID)
		}
		result.OrdersUpdated = n
	}
	return result, nil
}
