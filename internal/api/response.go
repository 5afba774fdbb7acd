package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/models"
	"storefront-backend/internal/service"
)

// SendSuccess writes {success: true, message, ...fields}.
func SendSuccess(c *gin.Context, status int, message string, fields gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

func SendError(c *gin.Context, status int, err error, code string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":    false,
		"message":    err.Error(),
		"error_code": code,
	})
}

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{service.ErrInvalidInput, http.StatusBadRequest, models.ErrInvalidRequest},
	{service.ErrInvalidOTP, http.StatusBadRequest, models.ErrInvalidRequest},
	{service.ErrPaymentVerification, http.StatusBadRequest, models.ErrPaymentVerification},
	{service.ErrInvalidTransition, http.StatusBadRequest, models.ErrInvalidOperation},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, models.ErrUnauthorized},
	{service.ErrInvalidToken, http.StatusUnauthorized, models.ErrUnauthorized},
	{service.ErrAccountDisabled, http.StatusForbidden, models.ErrForbidden},
	{service.ErrForbidden, http.StatusForbidden, models.ErrForbidden},
	{service.ErrNotFound, http.StatusNotFound, models.ErrNotFound},
	{service.ErrEmailTaken, http.StatusConflict, models.ErrConflict},
	{service.ErrConflict, http.StatusConflict, models.ErrConflict},
	{service.ErrGateway, http.StatusBadGateway, models.ErrGateway},
	{service.ErrDelivery, http.StatusBadGateway, models.ErrGateway},
}

// respondError is the single place service errors become HTTP responses.
// Unknown errors are logged and answered with a generic 500.
func respondError(c *gin.Context, log *logging.Logger, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				log.WithContext(c.Request.Context()).WithError(err).Error("upstream failure", "path", c.FullPath())
			}
			SendError(c, m.status, err, m.code)
			return
		}
	}

	log.WithContext(c.Request.Context()).WithError(err).Error("request failed", "path", c.FullPath())
	msg := errors.New("internal server error")
	if errors.Is(err, service.ErrUploadFailed) {
		msg = service.ErrUploadFailed
	}
	SendError(c, http.StatusInternalServerError, msg, models.ErrInvalidOperation)
}

func badRequest(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, err, models.ErrInvalidRequest)
}
