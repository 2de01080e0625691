package service

import (
	"context"
	"strings"

	"shop-catalog/internal/domain"
	"shop-catalog/internal/repository"

	"go.uber.org/zap"
)

// CategoryService defines the interface for category business logic
type CategoryService interface {
	Create(ctx context.Context, name string) (*domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context, params domain.ListParams) (*domain.Page[*domain.Category], error)
	Update(ctx context.Context, id int64, patch domain.NamePatch) (*domain.Category, error)
	Remove(ctx context.Context, id int64) (*domain.Category, error)
}

type categoryService struct {
	categories repository.CategoryRepository
	pages      Pagination
	logger     *zap.Logger
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categories repository.CategoryRepository, pages Pagination, logger *zap.Logger) CategoryService {
	return &categoryService{
		categories: categories,
		pages:      pages,
		logger:     logger.Named("category"),
	}
}

func requireName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.NewValidationError("name", name, domain.ErrRequiredField)
	}
	return nil
}

func (s *categoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	if err := requireName(name); err != nil {
		return nil, err
	}

	category := &domain.Category{Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		s.logger.Error("Failed to create category", zap.Error(err))
		return nil, err
	}

	return category, nil
}

func (s *categoryService) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	return s.categories.FindByID(ctx, id)
}

func (s *categoryService) List(ctx context.Context, params domain.ListParams) (*domain.Page[*domain.Category], error) {
	params, err := s.pages.Normalize(params)
	if err != nil {
		return nil, err
	}

	categories, total, err := s.categories.List(ctx, params)
	if err != nil {
		return nil, err
	}

	return &domain.Page[*domain.Category]{Items: categories, Total: total, Skip: params.Skip, Limit: params.Limit}, nil
}

func (s *categoryService) Update(ctx context.Context, id int64, patch domain.NamePatch) (*domain.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return category, nil
	}

	if err := requireName(*patch.Name); err != nil {
		return nil, err
	}

	category.Name = *patch.Name
	if err := s.categories.Update(ctx, category); err != nil {
		s.logger.Error("Failed to update category", zap.Error(err), zap.Int64("category_id", id))
		return nil, err
	}

	return category, nil
}

// Remove deletes a category that no product references
func (s *categoryService) Remove(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	inUse, err := s.categories.HasProducts(ctx, id)
	if err != nil {
		return nil, err
	}
	if inUse {
		return nil, domain.ErrCategoryInUse
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("Category removed", zap.Int64("category_id", id))
	return category, nil
}
