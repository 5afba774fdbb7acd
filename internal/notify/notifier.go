package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/metrics"
	"storefront-backend/internal/models"
)

var ErrNoRecipient = errors.New("no recipient address")

type Config struct {
	StoreEmail string
	StoreName  string
	Timeout    time.Duration
}

type PaymentReceipt struct {
	Email     string
	Name      string
	PaymentID string
	OrderID   string
	Amount    float64
}

// Notifier renders and sends every transactional email.
type Notifier struct {
	sender  Sender
	cfg     Config
	metrics *metrics.Metrics
	log     *logging.Logger
}

func NewNotifier(sender Sender, cfg Config, m *metrics.Metrics, log *logging.Logger) *Notifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.StoreName == "" {
		cfg.StoreName = "Storefront"
	}
	return &Notifier{sender: sender, cfg: cfg, metrics: m, log: log.Named("notify")}
}

func (n *Notifier) send(ctx context.Context, kind, tmpl string, msg Message, v view) error {
	if len(msg.To) == 0 || msg.To[0] == "" {
		n.metrics.ObserveEmail(kind, ErrNoRecipient)
		return ErrNoRecipient
	}
	v.Store = n.cfg.StoreName
	html, err := render(tmpl, v)
	if err != nil {
		n.metrics.ObserveEmail(kind, err)
		return err
	}
	msg.HTML = html

	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	err = n.sender.Send(ctx, msg)
	n.metrics.ObserveEmail(kind, err)
	if err != nil {
		return fmt.Errorf("%s email: %w", kind, err)
	}
	return nil
}

// Background runs fn detached from the request. The request may already be
// answered when it runs, so it gets its own deadline and failures are only
// logged.
func (n *Notifier) Background(ctx context.Context, kind string, fn func(ctx context.Context) error) {
	log := n.log.WithContext(ctx)
	go func() {
		bg, cancel := context.WithTimeout(context.Background(), n.cfg.Timeout)
		defer cancel()
		if err := fn(bg); err != nil {
			log.WithError(err).Warn("background email failed", "kind", kind)
		}
	}()
}

func (n *Notifier) OrderConfirmation(ctx context.Context, order *models.Order) error {
	label := "Online payment"
	if order.PaymentMethod == models.PaymentMethodCOD {
		label = "Cash on delivery"
	}
	return n.send(ctx, "order_confirmation", "order", Message{
		To:      []string{order.ShippingAddress.Email},
		Subject: fmt.Sprintf("%s order confirmation #%s", n.cfg.StoreName, order.ID.Hex()),
		Text:    fmt.Sprintf("Thank you for your order %s. Total: %.2f", order.ID.Hex(), order.Total),
	}, view{PaymentLabel: label, Data: order})
}

func (n *Notifier) PaymentConfirmation(ctx context.Context, r PaymentReceipt) error {
	return n.send(ctx, "payment_confirmation", "payment", Message{
		To:      []string{r.Email},
		Subject: fmt.Sprintf("%s payment received", n.cfg.StoreName),
		Text:    fmt.Sprintf("We received your payment %s.", r.PaymentID),
	}, view{Data: r})
}

func (n *Notifier) OTP(ctx context.Context, email, code string, ttl time.Duration) error {
	minutes := int(ttl.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return n.send(ctx, "otp", "otp", Message{
		To:      []string{email},
		Subject: fmt.Sprintf("Your %s verification code", n.cfg.StoreName),
		Text:    fmt.Sprintf("Your verification code is %s", code),
	}, view{Data: struct {
		Code    string
		Minutes int
	}{code, minutes}})
}

// Contact forwards the message to the store and acknowledges it to the
// sender. Only the store copy is required to succeed.
func (n *Notifier) Contact(ctx context.Context, req models.ContactRequest) error {
	subject := req.Subject
	if subject == "" {
		subject = "New contact message"
	}
	if err := n.send(ctx, "contact", "contact", Message{
		To:      []string{n.cfg.StoreEmail},
		ReplyTo: req.Email,
		Subject: fmt.Sprintf("[Contact] %s", subject),
	}, view{Data: req}); err != nil {
		return err
	}
	if err := n.send(ctx, "contact_ack", "contact_ack", Message{
		To:      []string{req.Email},
		Subject: fmt.Sprintf("We received your message - %s", n.cfg.StoreName),
	}, view{Data: req}); err != nil {
		n.log.WithContext(ctx).WithError(err).Warn("contact acknowledgement failed")
	}
	return nil
}

func (n *Notifier) Feedback(ctx context.Context, req models.FeedbackRequest) error {
	if err := n.send(ctx, "feedback", "feedback", Message{
		To:      []string{n.cfg.StoreEmail},
		ReplyTo: req.Email,
		Subject: fmt.Sprintf("[Feedback] from %s", req.Name),
	}, view{Data: req}); err != nil {
		return err
	}
	if err := n.send(ctx, "feedback_ack", "feedback_ack", Message{
		To:      []string{req.Email},
		Subject: fmt.Sprintf("Thanks for your feedback - %s", n.cfg.StoreName),
	}, view{Data: req}); err != nil {
		n.log.WithContext(ctx).WithError(err).Warn("feedback acknowledgement failed")
	}
	return nil
}
