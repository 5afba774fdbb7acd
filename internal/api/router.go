// Package api is the HTTP surface of the storefront: gin routes, middleware
// and the JSON envelope.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/metrics"
	"storefront-backend/internal/service"
)

type Deps struct {
	Auth     service.AuthService
	Products service.ProductService
	Carts    service.CartService
	Orders   service.OrderService
	Payments service.PaymentService
	Emails   service.EmailService
	Tokens   *service.TokenIssuer
	Metrics  *metrics.Metrics
	Log      *logging.Logger

	CORSOrigins    []string
	MaxUploadBytes int64
	Env            string
}

func NewRouter(d Deps) *gin.Engine {
	log := d.Log.Named("http")

	r := gin.New()
	r.Use(Recovery(log), RequestID(), AccessLog(log, d.Metrics))
	if len(d.CORSOrigins) > 0 {
		r.Use(CORS(d.CORSOrigins))
	}
	if d.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = d.MaxUploadBytes
	}

	started := time.Now()
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"env":    d.Env,
			"uptime": time.Since(started).Round(time.Second).String(),
		})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	auth := AuthMiddleware(d.Tokens)
	admin := RequireAdmin()

	authH := NewAuthHandlers(d.Auth, log)
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", authH.Register)
		authGroup.POST("/login", authH.Login)
		authGroup.POST("/admin-login", authH.AdminLogin)
		authGroup.POST("/reset-password", authH.ResetPassword)

		authGroup.GET("/profile/:userId", auth, authH.GetProfile)
		authGroup.PUT("/profile/:userId", auth, authH.UpdateProfile)

		authGroup.GET("/users", auth, admin, authH.ListUsers)
		authGroup.GET("/users/:userId", auth, admin, authH.GetUser)
		authGroup.PUT("/users/:userId", auth, admin, authH.UpdateUserStatus)
	}

	productH := NewProductHandlers(d.Products, d.MaxUploadBytes, log)
	productGroup := r.Group("/api/products")
	{
		productGroup.GET("", OptionalAuth(d.Tokens), productH.List)
		productGroup.GET("/:id", OptionalAuth(d.Tokens), productH.Get)
		productGroup.POST("", auth, admin, productH.Create)
		productGroup.PUT("/:id", auth, admin, productH.Update)
		productGroup.DELETE("/:id", auth, admin, productH.Delete)
		productGroup.DELETE("", auth, admin, productH.DeleteAll)
	}

	cartH := NewCartHandlers(d.Carts, log)
	cartGroup := r.Group("/api/cart", auth)
	{
		cartGroup.GET("/:userId", cartH.Get)
		cartGroup.POST("/add", cartH.Add)
		cartGroup.PUT("/update", cartH.Update)
		cartGroup.DELETE("/remove", cartH.Remove)
		cartGroup.DELETE("/clear/:userId", cartH.Clear)
	}

	orderH := NewOrderHandlers(d.Orders, log)
	orderGroup := r.Group("/api/orders", auth)
	{
		orderGroup.POST("/create", orderH.Create)
		orderGroup.GET("/user/:userId", orderH.ListByUser)
		orderGroup.GET("/:orderId", orderH.Get)
		orderGroup.GET("", admin, orderH.List)
		orderGroup.PUT("/:orderId/status", admin, orderH.UpdateStatus)
	}

	paymentH := NewPaymentHandlers(d.Payments, log)
	paymentGroup := r.Group("/api/payment")
	{
		paymentGroup.POST("/create-order", auth, paymentH.CreateOrder)
		paymentGroup.POST("/verify", paymentH.Verify)
		paymentGroup.GET("/payment/:paymentId", auth, admin, paymentH.FetchPayment)
		paymentGroup.POST("/refund", auth, admin, paymentH.Refund)
	}

	emailH := NewEmailHandlers(d.Emails, log)
	emailGroup := r.Group("/api/email")
	{
		emailGroup.POST("/contact", emailH.Contact)
		emailGroup.POST("/feedback", emailH.Feedback)
		emailGroup.POST("/send-otp", emailH.SendOTP)
		emailGroup.POST("/verify-otp", emailH.VerifyOTP)
	}

	return r
}
