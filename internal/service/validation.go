package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"shop-catalog/internal/domain"
	"shop-catalog/internal/repository"
	"shop-catalog/internal/storage"

	"github.com/shopspring/decimal"
)

// Prices are stored as NUMERIC(12,2)
const priceScale = 2

var maxPrice = decimal.New(1, 10)

// allowedImageExtensions are matched case-insensitively
var allowedImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// Rules holds the validation checks run before any catalog write
type Rules struct {
	categories repository.CategoryRepository
	brands     repository.BrandRepository
	products   repository.ProductRepository
	images     repository.ImageRepository
	files      storage.FileStore
}

// NewRules creates the validation rules over the given stores
func NewRules(
	categories repository.CategoryRepository,
	brands repository.BrandRepository,
	products repository.ProductRepository,
	images repository.ImageRepository,
	files storage.FileStore,
) *Rules {
	return &Rules{
		categories: categories,
		brands:     brands,
		products:   products,
		images:     images,
		files:      files,
	}
}

// CheckImageExtension fails with ErrUnsupportedFileType unless name ends in .jpg, .jpeg or .png
func CheckImageExtension(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowedImageExtensions[ext]; !ok {
		return domain.NewValidationError("name", name, domain.ErrUnsupportedFileType)
	}
	return nil
}

// ValidateProduct checks a complete product: required text, count >= 0, a positive price
// with at most two decimals below 10^10, and that its category and brand exist.
func (r *Rules) ValidateProduct(ctx context.Context, product *domain.Product) error {
	if strings.TrimSpace(product.Title) == "" {
		return domain.NewValidationError("title", product.Title, domain.ErrRequiredField)
	}
	if strings.TrimSpace(product.Description) == "" {
		return domain.NewValidationError("description", product.Description, domain.ErrRequiredField)
	}
	if product.Count < 0 {
		return domain.NewValidationError("count", product.Count, domain.ErrInvalidCount)
	}
	if err := checkPrice(product.Price); err != nil {
		return err
	}

	if _, err := r.categories.FindByID(ctx, product.CategoryID); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return domain.NewValidationError("category_id", product.CategoryID, domain.ErrCategoryNotFound)
		}
		return fmt.Errorf("failed to check category: %w", err)
	}

	if _, err := r.brands.FindByID(ctx, product.BrandID); err != nil {
		if errors.Is(err, domain.ErrBrandNotFound) {
			return domain.NewValidationError("brand_id", product.BrandID, domain.ErrBrandNotFound)
		}
		return fmt.Errorf("failed to check brand: %w", err)
	}

	return nil
}

func checkPrice(price decimal.Decimal) error {
	if !price.IsPositive() || !price.Equal(price.Round(priceScale)) || price.GreaterThanOrEqual(maxPrice) {
		return domain.NewValidationError("price", price, domain.ErrInvalidPrice)
	}
	return nil
}

// ValidateImage checks image against its owning product, the name rules and the file store.
// When previous is set only the fields that differ from it are checked again.
func (r *Rules) ValidateImage(ctx context.Context, image *domain.Image, previous *domain.Image) error {
	productChanged := previous == nil || previous.ProductID != image.ProductID
	nameChanged := previous == nil || previous.Name != image.Name

	if productChanged {
		if _, err := r.products.FindByID(ctx, image.ProductID); err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				return domain.NewValidationError("product_id", image.ProductID, domain.ErrProductNotFound)
			}
			return fmt.Errorf("failed to check product: %w", err)
		}
	}

	if !nameChanged {
		return nil
	}

	if strings.TrimSpace(image.Name) == "" {
		return domain.NewValidationError("name", image.Name, domain.ErrRequiredField)
	}

	if err := CheckImageExtension(image.Name); err != nil {
		return err
	}

	taken, err := r.images.NameTaken(ctx, image.Name, image.ID)
	if err != nil {
		return err
	}
	if taken {
		return domain.NewValidationError("name", image.Name, domain.ErrDuplicateImageName)
	}

	exists, err := r.files.Exists(image.Name)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidName) {
			return domain.NewValidationError("name", image.Name, domain.ErrFileNotFound)
		}
		return fmt.Errorf("failed to check image file: %w", err)
	}
	if !exists {
		return domain.NewValidationError("name", image.Name, domain.ErrFileNotFound)
	}

	return nil
}
