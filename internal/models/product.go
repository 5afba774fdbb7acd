// product.go

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CategoryMen   = "men"
	CategoryWomen = "women"
	CategoryKids  = "kids"

	CollectionLatest     = "latest"
	CollectionBestseller = "bestseller"
	CollectionTrending   = "trending"

	MaxProductImages = 4
)

type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name" binding:"required"`
	Description   string             `bson:"description" json:"description"`
	Price         float64            `bson:"price" json:"price" binding:"gt=0"`
	Category      string             `bson:"category" json:"category" binding:"required,oneof=men women kids"`
	Brand         string             `bson:"brand" json:"brand"`
	Sizes         []string           `bson:"sizes" json:"sizes"`
	Image         string             `bson:"image" json:"image"`
	Images        []string           `bson:"images" json:"images" binding:"max=4"`
	Stock         int                `bson:"stock" json:"stock" binding:"gte=0"`
	Rating        float64            `bson:"rating" json:"rating" binding:"gte=0,lte=5"`
	Reviews       int                `bson:"reviews" json:"reviews" binding:"gte=0"`
	Collection    string             `bson:"collection" json:"collection" binding:"required,oneof=latest bestseller trending"`
	OriginalPrice *float64           `bson:"originalPrice,omitempty" json:"originalPrice,omitempty" binding:"omitempty,gt=0"`
	Discount      *float64           `bson:"discount,omitempty" json:"discount,omitempty" binding:"omitempty,gte=0,lte=100"`
	Features      []string           `bson:"features" json:"features"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ApplyDefaults fills the values a freshly created product gets when the
// admin form leaves them out.
func (p *Product) ApplyDefaults() {
	if p.Collection == "" {
		p.Collection = CollectionLatest
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	if p.Image == "" && len(p.Images) > 0 {
		p.Image = p.Images[0]
	}
}

// HasSize reports whether size is offered. Products without a size list
// accept any size, including the empty one.
func (p *Product) HasSize(size string) bool {
	if len(p.Sizes) == 0 {
		return true
	}
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

type ProductFilter struct {
	Category        string
	Collection      string
	Brand           string
	Search          string
	IncludeInactive bool
}

type UpdateProductRequest struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Price         *float64  `json:"price" binding:"omitempty,gt=0"`
	Category      *string   `json:"category" binding:"omitempty,oneof=men women kids"`
	Brand         *string   `json:"brand"`
	Sizes         *[]string `json:"sizes"`
	Stock         *int      `json:"stock" binding:"omitempty,gte=0"`
	Rating        *float64  `json:"rating" binding:"omitempty,gte=0,lte=5"`
	Reviews       *int      `json:"reviews" binding:"omitempty,gte=0"`
	Collection    *string   `json:"collection" binding:"omitempty,oneof=latest bestseller trending"`
	OriginalPrice *float64  `json:"originalPrice" binding:"omitempty,gt=0"`
	Discount      *float64  `json:"discount" binding:"omitempty,gte=0,lte=100"`
	Features      *[]string `json:"features"`
	IsActive      *bool     `json:"isActive"`
}

// Apply copies every present field onto p.
func (r *UpdateProductRequest) Apply(p *Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Category != nil {
		p.Category = *r.Category
	}
	if r.Brand != nil {
		p.Brand = *r.Brand
	}
	if r.Sizes != nil {
		p.Sizes = *r.Sizes
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	if r.Rating != nil {
		p.Rating = *r.Rating
	}
	if r.Reviews != nil {
		p.Reviews = *r.Reviews
	}
	if r.Collection != nil {
		p.Collection = *r.Collection
	}
	if r.OriginalPrice != nil {
		p.OriginalPrice = r.OriginalPrice
	}
	if r.Discount != nil {
		p.Discount = r.Discount
	}
	if r.Features != nil {
		p.Features = *r.Features
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
}
