package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/media"
	"storefront-backend/internal/metrics"
	"storefront-backend/internal/models"
	"storefront-backend/internal/notify"
	"storefront-backend/internal/otp"
	"storefront-backend/internal/payment"
	"storefront-backend/internal/pricing"
	"storefront-backend/internal/repository"
	"storefront-backend/internal/repository/memstore"
)

const testPaymentSecret = "test_secret"

type fixture struct {
	repos   *repository.Repositories
	metrics *metrics.Metrics
	mail    *notify.Recorder
	otps    *otp.Service
	images  *media.MemoryStore
	gateway *payment.DemoGateway
	signer  *payment.Signer

	auth     AuthService
	products ProductService
	carts    CartService
	orders   OrderService
	payments PaymentService
	emails   EmailService
}

func newFixture(t *testing.T, orderOpts OrderOptions) *fixture {
	t.Helper()
	log := logging.Discard()
	f := &fixture{
		repos:   memstore.New().Repositories(),
		metrics: metrics.New(),
		mail:    &notify.Recorder{},
		otps:    otp.NewService(otp.NewMemoryStore(), 5*time.Minute, 3),
		images:  media.NewMemoryStore("http://img.test"),
		signer:  payment.NewSigner(testPaymentSecret),
	}
	f.gateway = payment.NewDemoGateway(f.signer)
	notifier := notify.NewNotifier(f.mail, notify.Config{StoreEmail: "store@example.com", StoreName: "Test Store"}, f.metrics, log)
	tokens := NewTokenIssuer("jwt-test-secret", time.Hour)

	f.auth = NewAuthService(f.repos.Users, tokens, f.otps, AdminCredentials{Email: "admin@example.com", Password: "adminpass"}, log)
	f.products = NewProductService(f.repos.Products, f.images, f.metrics, log)
	f.carts = NewCartService(f.repos.Carts, f.repos.Products, f.metrics, log)
	f.orders = NewOrderService(f.repos.Orders, f.repos.Users, f.carts, f.otps, notifier, orderOpts, f.metrics, log)
	f.payments = NewPaymentService(f.gateway, f.signer, f.repos.Orders, notifier, PaymentOptions{Currency: "INR", Timeout: time.Second}, f.metrics, log)
	f.emails = NewEmailService(notifier, f.otps, f.repos.Users, log)
	return f
}

func defaultOrderOptions() OrderOptions {
	return OrderOptions{
		RequireCODOTP: true,
		Pricing:       pricing.Rules{ShippingFee: 50, FreeShippingAbove: 999},
	}
}

func (f *fixture) register(t *testing.T, email string) *models.User {
	t.Helper()
	resp, err := f.auth.Register(context.Background(), &models.RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Password: "secret123",
	})
	require.NoError(t, err)
	return resp.User
}

func (f *fixture) product(t *testing.T, name string, price float64, sizes ...string) *models.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), &models.Product{
		Name:       name,
		Price:      price,
		Category:   models.CategoryMen,
		Collection: models.CollectionLatest,
		Sizes:      sizes,
	}, nil)
	require.NoError(t, err)
	return p
}
