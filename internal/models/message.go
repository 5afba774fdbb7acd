package models

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

type FeedbackRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Rating  int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Message string `json:"message" binding:"required"`
}

const (
	OTPPurposeCheckout = "checkout"
	OTPPurposeReset    = "reset"
)

type SendOTPRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Purpose string `json:"purpose" binding:"required,oneof=checkout reset"`
}

type VerifyOTPRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Purpose string `json:"purpose" binding:"required,oneof=checkout reset"`
	OTP     string `json:"otp" binding:"required,len=6,numeric"`
}

type CreatePaymentOrderRequest struct {
	Amount   float64           `json:"amount" binding:"required,gt=0"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string  `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string  `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string  `json:"razorpay_signature" binding:"required"`
	Email             string  `json:"email" binding:"omitempty,email"`
	Name              string  `json:"name"`
	Amount            float64 `json:"amount"`
}

type RefundRequest struct {
	PaymentID string            `json:"paymentId" binding:"required"`
	Amount    float64           `json:"amount" binding:"gte=0"`
	Notes     map[string]string `json:"notes"`
}
