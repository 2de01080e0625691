package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Count       int             `json:"count" db:"count"`
	CategoryID  int64           `json:"category_id" db:"category_id"`
	BrandID     int64           `json:"brand_id" db:"brand_id"`
	Images      []*Image        `json:"images"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ProductPatch carries the fields of a partial product update.
// A nil field is left untouched.
type ProductPatch struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Count       *int
	CategoryID  *int64
	BrandID     *int64
}

// IsEmpty reports whether the patch sets no field at all
func (p ProductPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil &&
		p.Count == nil && p.CategoryID == nil && p.BrandID == nil
}

// Apply returns a copy of product with the patch fields applied
func (p ProductPatch) Apply(product Product) Product {
	if p.Title != nil {
		product.Title = *p.Title
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Count != nil {
		product.Count = *p.Count
	}
	if p.CategoryID != nil {
		product.CategoryID = *p.CategoryID
	}
	if p.BrandID != nil {
		product.BrandID = *p.BrandID
	}
	return product
}

// Image is a picture owned by exactly one product
type Image struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ProductID int64     `json:"product_id" db:"product_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ImagePatch carries the fields of a partial image update
type ImagePatch struct {
	Name      *string
	ProductID *int64
}

func (p ImagePatch) IsEmpty() bool {
	return p.Name == nil && p.ProductID == nil
}

func (p ImagePatch) Apply(image Image) Image {
	if p.Name != nil {
		image.Name = *p.Name
	}
	if p.ProductID != nil {
		image.ProductID = *p.ProductID
	}
	return image
}
