package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/models"
	"storefront-backend/internal/service"
)

type AuthHandlers struct {
	auth service.AuthService
	log  *logging.Logger
}

func NewAuthHandlers(auth service.AuthService, log *logging.Logger) *AuthHandlers {
	return &AuthHandlers{auth: auth, log: log}
}

func (h *AuthHandlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusCreated, "User registered successfully", gin.H{"user": resp.User, "token": resp.Token})
}

func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "Login successful", gin.H{"user": resp.User, "token": resp.Token})
}

func (h *AuthHandlers) AdminLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.auth.AdminLogin(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "Admin login successful", gin.H{"token": resp.Token, "role": resp.Role})
}

func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), &req); err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "Password updated successfully", nil)
}

func (h *AuthHandlers) GetProfile(c *gin.Context) {
	userID := c.Param("userId")
	if !authorizeUser(c, userID) {
		return
	}
	user, err := h.auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "", gin.H{"user": user})
}

func (h *AuthHandlers) UpdateProfile(c *gin.Context) {
	userID := c.Param("userId")
	if !authorizeUser(c, userID) {
		return
	}
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.auth.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "Profile updated successfully", gin.H{"user": user})
}

func (h *AuthHandlers) ListUsers(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "", gin.H{"users": users, "count": len(users)})
}

func (h *AuthHandlers) GetUser(c *gin.Context) {
	user, err := h.auth.GetUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "", gin.H{"user": user})
}

func (h *AuthHandlers) UpdateUserStatus(c *gin.Context) {
	var req models.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.auth.SetUserActive(c.Request.Context(), c.Param("userId"), *req.IsActive)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "User status updated", gin.H{"user": user})
}
