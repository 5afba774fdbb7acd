package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/models"
)

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

func TestSendAndVerifyOTP(t *testing.T) {
	f := newFixture(t, defaultOrderOptions())
	ctx := context.Background()

	err := f.emails.SendOTP(ctx, &models.SendOTPRequest{Email: "Alice@Example.com", Purpose: models.OTPPurposeCheckout})
	require.NoError(t, err)

	msgs := f.mail.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"alice@example.com"}, msgs[0].To)
	code := codePattern.FindString(msgs[0].Text)
	require.NotEmpty(t, code)

	err = f.emails.VerifyOTP(ctx, &models.VerifyOTPRequest{Email: "alice@example.com", Purpose: models.OTPPurposeCheckout, OTP: code})
	require.NoError(t, err)

	// Verification does not redeem the code; the order does.
	require.NoError(t, f.otps.Verify(ctx, models.OTPPurposeCheckout, "alice@example.com", code))

	err = f.emails.VerifyOTP(ctx, &models.VerifyOTPRequest{Email: "alice@example.com", Purpose: models.OTPPurposeCheckout, OTP: code})
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestResetOTPForUnknownEmailIsSilent(t *testing.T) {
	f := newFixture(t, defaultOrderOptions())
	err := f.emails.SendOTP(context.Background(), &models.SendOTPRequest{Email: "ghost@example.com", Purpose: models.OTPPurposeReset})
	require.NoError(t, err)
	assert.Empty(t, f.mail.Messages())
}

func TestContactAndFeedback(t *testing.T) {
	f := newFixture(t, defaultOrderOptions())
	ctx := context.Background()

	require.NoError(t, f.emails.Contact(ctx, &models.ContactRequest{Name: "Bob", Email: "bob@example.com", Message: "Hello"}))
	require.NoError(t, f.emails.Feedback(ctx, &models.FeedbackRequest{Name: "Bob", Email: "bob@example.com", Rating: 5, Message: "Great"}))
	assert.Len(t, f.mail.Messages(), 4)

	f.mail.Err = errors.New("smtp down")
	err := f.emails.Contact(ctx, &models.ContactRequest{Name: "Bob", Email: "bob@example.com", Message: "Hello"})
	assert.ErrorIs(t, err, ErrDelivery)
}
