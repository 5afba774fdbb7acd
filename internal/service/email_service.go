package service

import (
	"context"
	"errors"
	"fmt"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/models"
	"storefront-backend/internal/notify"
	"storefront-backend/internal/otp"
	"storefront-backend/internal/repository"
)

type EmailService interface {
	Contact(ctx context.Context, req *models.ContactRequest) error
	Feedback(ctx context.Context, req *models.FeedbackRequest) error
	SendOTP(ctx context.Context, req *models.SendOTPRequest) error
	VerifyOTP(ctx context.Context, req *models.VerifyOTPRequest) error
}

type emailService struct {
	notifier *notify.Notifier
	otps     *otp.Service
	users    repository.UserRepository
	log      *logging.Logger
}

func NewEmailService(notifier *notify.Notifier, otps *otp.Service, users repository.UserRepository, log *logging.Logger) EmailService {
	return &emailService{
		notifier: notifier,
		otps:     otps,
		users:    users,
		log:      log.Named("email"),
	}
}

func deliveryError(err error) error {
	return fmt.Errorf("%w: %v", ErrDelivery, err)
}

func (s *emailService) Contact(ctx context.Context, req *models.ContactRequest) error {
	if err := s.notifier.Contact(ctx, *req); err != nil {
		s.log.WithContext(ctx).WithError(err).Error("contact email failed")
		return deliveryError(err)
	}
	return nil
}

func (s *emailService) Feedback(ctx context.Context, req *models.FeedbackRequest) error {
	if err := s.notifier.Feedback(ctx, *req); err != nil {
		s.log.WithContext(ctx).WithError(err).Error("feedback email failed")
		return deliveryError(err)
	}
	return nil
}

// SendOTP issues and mails a code. Reset codes for unknown addresses are
// silently dropped so the endpoint does not reveal who has an account.
func (s *emailService) SendOTP(ctx context.Context, req *models.SendOTPRequest) error {
	email := normalizeEmail(req.Email)
	log := s.log.WithContext(ctx)

	if req.Purpose == models.OTPPurposeReset {
		_, err := s.users.GetByEmail(ctx, email)
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("reset code requested for unknown email")
			return nil
		}
		if err != nil {
			return err
		}
	}

	code, err := s.otps.Issue(ctx, req.Purpose, email)
	if err != nil {
		return err
	}
	if err := s.notifier.OTP(ctx, email, code, s.otps.TTL()); err != nil {
		log.WithError(err).Error("otp email failed", "purpose", req.Purpose)
		return deliveryError(err)
	}
	return nil
}

// VerifyOTP checks a code without redeeming it; the order or password reset
// it guards redeems it.
func (s *emailService) VerifyOTP(ctx context.Context, req *models.VerifyOTPRequest) error {
	if err := s.otps.Check(ctx, req.Purpose, normalizeEmail(req.Email), req.OTP); err != nil {
		return otpError(err)
	}
	return nil
}
