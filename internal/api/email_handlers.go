package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/models"
	"storefront-backend/internal/service"
)

type EmailHandlers struct {
	emails service.EmailService
	log    *logging.Logger
}

func NewEmailHandlers(emails service.EmailService, log *logging.Logger) *EmailHandlers {
	return &EmailHandlers{emails: emails, log: log}
}

func (h *EmailHandlers) Contact(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.emails.Contact(c.Request.Context(), &req); err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "Message sent successfully", nil)
}

func (h *EmailHandlers) Feedback(c *gin.Context) {
	var req models.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.emails.Feedback(c.Request.Context(), &req); err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "Feedback sent successfully", nil)
}

func (h *EmailHandlers) SendOTP(c *gin.Context) {
	var req models.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.emails.SendOTP(c.Request.Context(), &req); err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "Verification code sent", nil)
}

func (h *EmailHandlers) VerifyOTP(c *gin.Context) {
	var req models.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.emails.VerifyOTP(c.Request.Context(), &req); err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "Code verified", nil)
}
