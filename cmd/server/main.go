package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/api"
	"storefront-backend/internal/config"
	"storefront-backend/internal/logging"
	"storefront-backend/internal/media"
	"storefront-backend/internal/metrics"
	"storefront-backend/internal/notify"
	"storefront-backend/internal/otp"
	"storefront-backend/internal/payment"
	"storefront-backend/internal/pricing"
	"storefront-backend/internal/repository"
	"storefront-backend/internal/repository/memstore"
	"storefront-backend/internal/repository/mongostore"
	"storefront-backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg.Log.Component = "storefront"
	logger := logging.New(cfg.Log)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting storefront", "config", cfg.String())
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repos.Close(closeCtx); err != nil {
			logger.WithError(err).Warn("failed to close database")
		}
	}()

	m := metrics.New()

	gateway, signer, err := newGateway(cfg, logger)
	if err != nil {
		return err
	}
	otpStore, err := newOTPStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	images, err := newImageStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	sender, err := newMailSender(cfg, logger)
	if err != nil {
		return err
	}

	otps := otp.NewService(otpStore, cfg.OTP.TTL, cfg.OTP.MaxAttempts)
	notifier := notify.NewNotifier(sender, notify.Config{
		StoreEmail: cfg.Email.StoreEmail,
		StoreName:  cfg.Email.StoreName,
		Timeout:    cfg.Email.Timeout,
	}, m, logger)
	tokens := service.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	carts := service.NewCartService(repos.Carts, repos.Products, m, logger)
	router := api.NewRouter(api.Deps{
		Auth: service.NewAuthService(repos.Users, tokens, otps, service.AdminCredentials{
			Email:    cfg.Auth.AdminEmail,
			Password: cfg.Auth.AdminPassword,
		}, logger),
		Products: service.NewProductService(repos.Products, images, m, logger),
		Carts:    carts,
		Orders: service.NewOrderService(repos.Orders, repos.Users, carts, otps, notifier, service.OrderOptions{
			RequireCODOTP: cfg.Orders.RequireCODOTP,
			EnforceTotals: cfg.Orders.EnforceTotals,
			Pricing: pricing.Rules{
				ShippingFee:       cfg.Orders.ShippingFee,
				FreeShippingAbove: cfg.Orders.FreeShippingAbove,
				TaxRate:           cfg.Orders.TaxRate,
			},
		}, m, logger),
		Payments: service.NewPaymentService(gateway, signer, repos.Orders, notifier, service.PaymentOptions{
			Currency: cfg.Payment.Currency,
			Timeout:  cfg.Payment.Timeout,
		}, m, logger),
		Emails:         service.NewEmailService(notifier, otps, repos.Users, logger),
		Tokens:         tokens,
		Metrics:        m,
		Log:            logger,
		CORSOrigins:    cfg.Server.CORSOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Env:            string(cfg.Env),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openRepositories(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*repository.Repositories, error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("using in-memory database, data is lost on restart")
		return memstore.New().Repositories(), nil
	}
	store, err := mongostore.Connect(ctx, cfg.Database.URI, cfg.Database.Name, cfg.Database.Timeout, logger)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	return store.Repositories(), nil
}

// newGateway falls back to the offline demo gateway outside production when
// no Razorpay keys are set.
func newGateway(cfg *config.Config, logger *logging.Logger) (payment.Gateway, *payment.Signer, error) {
	if cfg.Payment.KeyID == "" || cfg.Payment.KeySecret == "" {
		logger.Warn("razorpay keys not set, using demo payment gateway")
		signer := payment.NewSigner(cfg.Auth.JWTSecret + ":demo-payments")
		return payment.NewDemoGateway(signer), signer, nil
	}
	gw, err := payment.NewRazorpay(cfg.Payment.KeyID, cfg.Payment.KeySecret)
	if err != nil {
		return nil, nil, err
	}
	return gw, payment.NewSigner(cfg.Payment.KeySecret), nil
}

func newOTPStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (otp.Store, error) {
	if cfg.Redis.URL == "" {
		logger.Warn("redis not configured, verification codes kept in memory")
		return otp.NewMemoryStore(), nil
	}
	store, err := otp.NewRedisStore(ctx, cfg.Redis.URL)
	if err != nil {
		if cfg.Env == config.EnvProduction {
			return nil, err
		}
		logger.WithError(err).Warn("redis unavailable, verification codes kept in memory")
		return otp.NewMemoryStore(), nil
	}
	return store, nil
}

func newImageStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (media.ImageStore, error) {
	if !cfg.Media.Enabled() {
		logger.Warn("image storage not configured, product image uploads are disabled")
		return media.Disabled(), nil
	}
	store, err := media.NewMinIOStore(media.MinIOConfig{
		Endpoint:  cfg.Media.Endpoint,
		AccessKey: cfg.Media.AccessKey,
		SecretKey: cfg.Media.SecretKey,
		Bucket:    cfg.Media.Bucket,
		UseSSL:    cfg.Media.UseSSL,
		PublicURL: cfg.Media.PublicURL,
	})
	if err != nil {
		return nil, err
	}
	bucketCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(bucketCtx); err != nil {
		if cfg.Env == config.EnvProduction {
			return nil, err
		}
		logger.WithError(err).Warn("minio unavailable, product image uploads are disabled")
		return media.Disabled(), nil
	}
	return store, nil
}

func newMailSender(cfg *config.Config, logger *logging.Logger) (notify.Sender, error) {
	if cfg.Email.DemoMode() {
		logger.Warn("EMAIL_USER/EMAIL_PASS not set, emails are logged instead of sent")
		return notify.NewLogSender(logger.Named("mail")), nil
	}
	return notify.NewSMTPSender(notify.SMTPConfig{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.User,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
		Timeout:  cfg.Email.Timeout,
	})
}
