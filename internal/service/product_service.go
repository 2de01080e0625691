// Package service implements the catalog operations on top of the repositories.
package service

import (
	"context"
	"errors"
	"fmt"

	"shop-catalog/internal/domain"
	"shop-catalog/internal/notify"
	"shop-catalog/internal/repository"

	"go.uber.org/zap"
)

// ProductService defines the interface for product business logic
type ProductService interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, params domain.ListParams) (*domain.Page[*domain.Product], error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
	Remove(ctx context.Context, id int64) (*domain.Product, error)
	Buy(ctx context.Context, id int64, quantity int, buyerID int64) (*domain.Product, error)
}

type productService struct {
	products  repository.ProductRepository
	rules     *Rules
	publisher notify.Publisher
	pages     Pagination
	logger    *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	products repository.ProductRepository,
	rules *Rules,
	publisher notify.Publisher,
	pages Pagination,
	logger *zap.Logger,
) ProductService {
	return &productService{
		products:  products,
		rules:     rules,
		publisher: publisher,
		pages:     pages,
		logger:    logger.Named("product"),
	}
}

// Create validates and stores a new product. Nothing is returned unless the row was written.
func (s *productService) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := s.rules.ValidateProduct(ctx, product); err != nil {
		return nil, err
	}

	if err := s.products.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", zap.Error(err), zap.String("title", product.Title))
		return nil, err
	}

	s.logger.Info("Product created", zap.Int64("product_id", product.ID))
	return product, nil
}

// GetByID returns the product with its images
func (s *productService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *productService) List(ctx context.Context, params domain.ListParams) (*domain.Page[*domain.Product], error) {
	params, err := s.pages.Normalize(params)
	if err != nil {
		return nil, err
	}

	products, total, err := s.products.List(ctx, params)
	if err != nil {
		return nil, err
	}

	return &domain.Page[*domain.Product]{Items: products, Total: total, Skip: params.Skip, Limit: params.Limit}, nil
}

// Count returns the number of products in the catalog
func (s *productService) Count(ctx context.Context) (int, error) {
	return s.products.Count(ctx)
}

// Update applies patch to the stored product. The merged result must satisfy every
// product rule before it is written; fields absent from patch are left untouched.
func (s *productService) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	current, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return current, nil
	}

	merged := patch.Apply(*current)
	if err := s.rules.ValidateProduct(ctx, &merged); err != nil {
		return nil, err
	}

	if err := s.products.Update(ctx, &merged); err != nil {
		s.logger.Error("Failed to update product", zap.Error(err), zap.Int64("product_id", id))
		return nil, err
	}

	return &merged, nil
}

// Remove deletes the product together with its images and returns what was deleted
func (s *productService) Remove(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to remove product", zap.Error(err), zap.Int64("product_id", id))
		return nil, err
	}

	s.logger.Info("Product removed",
		zap.Int64("product_id", id),
		zap.Int("images", len(product.Images)),
	)
	return product, nil
}

// Buy takes quantity units from stock. A purchase larger than the stock is
// rejected with ErrInvalidCount and leaves the stored count unchanged.
func (s *productService) Buy(ctx context.Context, id int64, quantity int, buyerID int64) (*domain.Product, error) {
	if quantity < 1 {
		return nil, domain.NewValidationError("count", quantity, domain.ErrInvalidCount)
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if quantity > product.Count {
		return nil, domain.NewValidationError("count", quantity, domain.ErrInvalidCount)
	}

	updated, err := s.products.DecrementCount(ctx, id, quantity)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			// stock was taken by a concurrent purchase after the check above
			return nil, domain.NewValidationError("count", quantity, domain.ErrInvalidCount)
		}
		return nil, fmt.Errorf("failed to buy product: %w", err)
	}

	s.logger.Info("Product bought",
		zap.Int64("product_id", id),
		zap.Int64("user_id", buyerID),
		zap.Int("count", quantity),
		zap.Int("remaining", updated.Count),
	)

	event := notify.NewPurchaseEvent(id, buyerID, quantity, updated.Count)
	if err := s.publisher.PublishPurchase(ctx, event); err != nil {
		s.logger.Warn("Failed to publish purchase event", zap.Error(err), zap.String("event_id", event.ID))
	}

	return updated, nil
}
