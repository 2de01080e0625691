// Package policy decides which role may perform which catalog operation.
package policy

import (
	"fmt"

	"shop-catalog/internal/domain"
)

// Operation names a mutating catalog action
type Operation string

const (
	ProductCreate Operation = "product:create"
	ProductUpdate Operation = "product:update"
	ProductDelete Operation = "product:delete"
	ProductBuy    Operation = "product:buy"

	CategoryCreate Operation = "category:create"
	CategoryUpdate Operation = "category:update"
	CategoryDelete Operation = "category:delete"

	BrandCreate Operation = "brand:create"
	BrandUpdate Operation = "brand:update"
	BrandDelete Operation = "brand:delete"

	ImageCreate Operation = "image:create"
	ImageUpdate Operation = "image:update"
	ImageDelete Operation = "image:delete"
	ImageUpload Operation = "image:upload"
)

// Operations lists every gated operation
var Operations = []Operation{
	ProductCreate, ProductUpdate, ProductDelete, ProductBuy,
	CategoryCreate, CategoryUpdate, CategoryDelete,
	BrandCreate, BrandUpdate, BrandDelete,
	ImageCreate, ImageUpdate, ImageDelete, ImageUpload,
}

func allow(ops ...Operation) map[Operation]struct{} {
	set := make(map[Operation]struct{}, len(ops))
	for _, op := range ops {
		set[op] = struct{}{}
	}
	return set
}

// capabilities is the role -> allowed operations table. Reads are never gated.
var capabilities = map[domain.Role]map[Operation]struct{}{
	domain.RoleAdmin: allow(Operations...),
	domain.RoleManager: allow(
		ProductCreate, ProductUpdate,
		CategoryCreate,
		BrandCreate, BrandUpdate,
		ImageCreate, ImageUpdate, ImageUpload,
	),
	domain.RoleUser: allow(ProductBuy),
}

// Allowed reports whether role may perform op
func Allowed(role domain.Role, op Operation) bool {
	_, ok := capabilities[role][op]
	return ok
}

// Authorize returns an error wrapping domain.ErrForbidden when role may not perform op
func Authorize(role domain.Role, op Operation) error {
	if !Allowed(role, op) {
		return fmt.Errorf("%w: role %q cannot %s", domain.ErrForbidden, role, op)
	}
	return nil
}
