package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/models"
	"storefront-backend/internal/service"
)

type PaymentHandlers struct {
	payments service.PaymentService
	log      *logging.Logger
}

func NewPaymentHandlers(payments service.PaymentService, log *logging.Logger) *PaymentHandlers {
	return &PaymentHandlers{payments: payments, log: log}
}

func (h *PaymentHandlers) CreateOrder(c *gin.Context) {
	var req models.CreatePaymentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.payments.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "", gin.H{"order": order.Order, "key": order.KeyID})
}

func (h *PaymentHandlers) Verify(c *gin.Context) {
	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	paymentID, err := h.payments.Verify(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "Payment verified successfully", gin.H{"paymentId": paymentID})
}

func (h *PaymentHandlers) FetchPayment(c *gin.Context) {
	p, err := h.payments.FetchPayment(c.Request.Context(), c.Param("paymentId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "", gin.H{"payment": p})
}

func (h *PaymentHandlers) Refund(c *gin.Context) {
	var req models.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.payments.Refund(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "Refund initiated", gin.H{"refund": res.Refund, "ordersUpdated": res.OrdersUpdated})
}
