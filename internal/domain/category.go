package domain

import "time"

// Category represents a product category
type Category struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Brand represents a product brand
type Brand struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NamePatch is the partial update shared by categories and brands
type NamePatch struct {
	Name *string
}

func (p NamePatch) IsEmpty() bool {
	return p.Name == nil
}

// ListParams controls offset pagination and the optional name/title search
type ListParams struct {
	Skip   int
	Limit  int
	Search string
}

// Page is one slice of a listing together with the size of the full match set
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}
