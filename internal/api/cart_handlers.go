package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/models"
	"storefront-backend/internal/service"
)

type CartHandlers struct {
	carts service.CartService
	log   *logging.Logger
}

func NewCartHandlers(carts service.CartService, log *logging.Logger) *CartHandlers {
	return &CartHandlers{carts: carts, log: log}
}

func (h *CartHandlers) respond(c *gin.Context, message string, cart *models.Cart, err error) {
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, message, gin.H{"cart": cart})
}

func (h *CartHandlers) Get(c *gin.Context) {
	userID := c.Param("userId")
	if !authorizeUser(c, userID) {
		return
	}
	cart, err := h.carts.Get(c.Request.Context(), userID)
	h.respond(c, "", cart, err)
}

func (h *CartHandlers) Add(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !authorizeUser(c, req.UserID) {
		return
	}
	cart, err := h.carts.Add(c.Request.Context(), &req)
	h.respond(c, "Item added to cart", cart, err)
}

func (h *CartHandlers) Update(c *gin.Context) {
	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !authorizeUser(c, req.UserID) {
		return
	}
	cart, err := h.carts.UpdateQuantity(c.Request.Context(), &req)
	h.respond(c, "Cart updated", cart, err)
}

func (h *CartHandlers) Remove(c *gin.Context) {
	var req models.RemoveCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !authorizeUser(c, req.UserID) {
		return
	}
	cart, err := h.carts.Remove(c.Request.Context(), &req)
	h.respond(c, "Item removed from cart", cart, err)
}

func (h *CartHandlers) Clear(c *gin.Context) {
	userID := c.Param("userId")
	if !authorizeUser(c, userID) {
		return
	}
	cart, err := h.carts.Clear(c.Request.Context(), userID)
	h.respond(c, "Cart cleared", cart, err)
}
