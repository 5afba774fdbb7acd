package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/models"
	"storefront-backend/internal/service"
)

type OrderHandlers struct {
	orders service.OrderService
	log    *logging.Logger
}

func NewOrderHandlers(orders service.OrderService, log *logging.Logger) *OrderHandlers {
	return &OrderHandlers{orders: orders, log: log}
}

func (h *OrderHandlers) Create(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !authorizeUser(c, req.UserID) {
		return
	}
	order, err := h.orders.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusCreated, "Order placed successfully", gin.H{
		"orderId": order.ID.Hex(),
		"order":   order,
	})
}

func (h *OrderHandlers) ListByUser(c *gin.Context) {
	userID := c.Param("userId")
	if !authorizeUser(c, userID) {
		return
	}
	orders, err := h.orders.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "", gin.H{"orders": orders, "count": len(orders)})
}

func (h *OrderHandlers) Get(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !authorizeUser(c, order.UserID.Hex()) {
		return
	}
	SendSuccess(c, http.StatusOK, "", gin.H{"order": order})
}

func (h *OrderHandlers) List(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "", gin.H{"orders": orders, "count": len(orders)})
}

func (h *OrderHandlers) UpdateStatus(c *gin.Context) {
	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("orderId"), req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "Order status updated", gin.H{"order": order})
}
