package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/metrics"
	"storefront-backend/internal/models"
	"storefront-backend/internal/service"
)

const (
	ctxUserID = "userId"
	ctxRole   = "role"

	headerRequestID = "X-Request-ID"
)

func withContextValue(c *gin.Context, key logging.ContextKey, value string) {
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), key, value))
}

// RequestID reuses the caller's X-Request-ID or mints one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Header(headerRequestID, id)
		withContextValue(c, logging.RequestIDKey, id)
		c.Next()
	}
}

func AccessLog(log *logging.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		d := time.Since(start)
		status := c.Writer.Status()
		log.WithContext(c.Request.Context()).HTTPRequestLog(c.Request.Method, c.Request.URL.Path, status, d, c.ClientIP())
		m.ObserveHTTP(c.FullPath(), c.Request.Method, status, d)
	}
}

func Recovery(log *logging.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.WithContext(c.Request.Context()).Error("panic recovered",
			"panic", fmt.Sprint(recovered), "path", c.Request.URL.Path)
		SendError(c, http.StatusInternalServerError, errors.New("internal server error"), models.ErrInvalidOperation)
	})
}

func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", headerRequestID},
		ExposeHeaders:    []string{headerRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func bearerToken(c *gin.Context) (string, bool) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

func setCaller(c *gin.Context, claims *service.Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxRole, claims.Role)
	withContextValue(c, logging.UserIDKey, claims.UserID)
}

// AuthMiddleware rejects requests without a valid bearer token and records
// the caller's id and role on the context.
func AuthMiddleware(tokens *service.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			SendError(c, http.StatusUnauthorized, errors.New("missing token"), models.ErrUnauthorized)
			return
		}
		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			SendError(c, http.StatusUnauthorized, errors.New("invalid token"), models.ErrUnauthorized)
			return
		}
		setCaller(c, claims)
		c.Next()
	}
}

// OptionalAuth records the caller when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(tokens *service.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr, ok := bearerToken(c); ok {
			if claims, err := tokens.Parse(tokenStr); err == nil {
				setCaller(c, claims)
			}
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isAdmin(c) {
			SendError(c, http.StatusForbidden, errors.New("admin access required"), models.ErrForbidden)
			return
		}
		c.Next()
	}
}

func isAdmin(c *gin.Context) bool {
	return c.GetString(ctxRole) == models.RoleAdmin
}

// authorizeUser lets the request through when the caller is userID or an
// admin, and answers 403 otherwise.
func authorizeUser(c *gin.Context, userID string) bool {
	if isAdmin(c) || (userID != "" && c.GetString(ctxUserID) == userID) {
		return true
	}
	SendError(c, http.StatusForbidden, errors.New("not allowed to access another user's data"), models.ErrForbidden)
	return false
}
