// Package service holds the storefront's business rules. Handlers call the
// services; the services call repositories and external adapters.
package service

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/repository"
)

// Errors returned by the services. The API layer maps each one to a status
// code; everything else is an internal error.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountDisabled     = errors.New("account is disabled")
	ErrEmailTaken          = errors.New("email already registered")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidOTP          = errors.New("invalid or expired verification code")
	ErrConflict            = errors.New("concurrent update, please retry")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrPaymentVerification = errors.New("payment verification failed")
	ErrGateway             = errors.New("payment gateway unavailable")
	ErrDelivery            = errors.New("email delivery failed")
	ErrUploadFailed        = errors.New("image upload failed")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// notFound turns a repository miss into ErrNotFound naming what was missing
// and passes other errors through.
func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

func parseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, invalid("invalid %s id", what)
	}
	return id, nil
}
