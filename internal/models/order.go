// order.go

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentMethodRazorpay = "razorpay"
	PaymentMethodCOD      = "cod"

	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"

	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

var orderStatusRank = map[string]int{
	OrderStatusPending:    0,
	OrderStatusConfirmed:  1,
	OrderStatusProcessing: 2,
	OrderStatusShipped:    3,
	OrderStatusDelivered:  4,
}

// CanTransition reports whether an order may move from one status to the
// next. Statuses only move forward; cancelling is allowed until delivery.
func CanTransition(from, to string) bool {
	if from == to {
		return false
	}
	if to == OrderStatusCancelled {
		return from != OrderStatusDelivered && from != OrderStatusCancelled
	}
	fromRank, ok := orderStatusRank[from]
	if !ok {
		return false
	}
	toRank, ok := orderStatusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId" binding:"required"`
	Name      string             `bson:"name" json:"name" binding:"required"`
	Image     string             `bson:"image" json:"image"`
	Price     float64            `bson:"price" json:"price" binding:"gte=0"`
	Size      string             `bson:"size" json:"size"`
	Quantity  int                `bson:"quantity" json:"quantity" binding:"required,min=1"`
}

type ShippingAddress struct {
	FullName string `bson:"fullName" json:"fullName" binding:"required"`
	Email    string `bson:"email" json:"email" binding:"omitempty,email"`
	Phone    string `bson:"phone" json:"phone" binding:"required"`
	Street   string `bson:"street" json:"street" binding:"required"`
	City     string `bson:"city" json:"city" binding:"required"`
	State    string `bson:"state" json:"state"`
	ZipCode  string `bson:"zipCode" json:"zipCode" binding:"required"`
	Country  string `bson:"country" json:"country"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	PaymentID       string             `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	PaymentStatus   string             `bson:"paymentStatus" json:"paymentStatus"`
	Subtotal        float64            `bson:"subtotal" json:"subtotal"`
	Shipping        float64            `bson:"shipping" json:"shipping"`
	Tax             float64            `bson:"tax" json:"tax"`
	Total           float64            `bson:"total" json:"total"`
	Status          string             `bson:"status" json:"status"`
	OrderDate       time.Time          `bson:"orderDate" json:"orderDate"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type CreateOrderRequest struct {
	UserID          string          `json:"userId" binding:"required"`
	Items           []OrderItem     `json:"items" binding:"required,min=1,dive"`
	ShippingAddress ShippingAddress `json:"shippingAddress" binding:"required"`
	PaymentMethod   string          `json:"paymentMethod" binding:"required,oneof=razorpay cod"`
	PaymentID       string          `json:"paymentId"`
	PaymentStatus   string          `json:"paymentStatus" binding:"omitempty,oneof=pending completed failed refunded"`
	Subtotal        float64         `json:"subtotal" binding:"gte=0"`
	Shipping        float64         `json:"shipping" binding:"gte=0"`
	Tax             float64         `json:"tax" binding:"gte=0"`
	Total           float64         `json:"total" binding:"gte=0"`
	OTP             string          `json:"otp"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed processing shipped delivered cancelled"`
}
