package models

// Error codes returned to clients next to the human readable message.
const (
	ErrInvalidRequest      = "INVALID_REQUEST"
	ErrUnauthorized        = "UNAUTHORIZED"
	ErrForbidden           = "FORBIDDEN"
	ErrNotFound            = "NOT_FOUND"
	ErrConflict            = "CONFLICT"
	ErrInvalidOperation    = "INVALID_OPERATION"
	ErrPaymentVerification = "PAYMENT_VERIFICATION_FAILED"
	ErrGateway             = "GATEWAY_ERROR"
)
