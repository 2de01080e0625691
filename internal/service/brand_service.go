package service

import (
	"context"

	"shop-catalog/internal/domain"
	"shop-catalog/internal/repository"

	"go.uber.org/zap"
)

// BrandService defines the interface for brand business logic
type BrandService interface {
	Create(ctx context.Context, name string) (*domain.Brand, error)
	GetByID(ctx context.Context, id int64) (*domain.Brand, error)
	List(ctx context.Context, params domain.ListParams) (*domain.Page[*domain.Brand], error)
	Update(ctx context.Context, id int64, patch domain.NamePatch) (*domain.Brand, error)
	Remove(ctx context.Context, id int64) (*domain.Brand, error)
}

type brandService struct {
	brands repository.BrandRepository
	pages  Pagination
	logger *zap.Logger
}

// NewBrandService creates a new instance of BrandService
func NewBrandService(brands repository.BrandRepository, pages Pagination, logger *zap.Logger) BrandService {
	return &brandService{
		brands: brands,
		pages:  pages,
		logger: logger.Named("brand"),
	}
}

func (s *brandService) Create(ctx context.Context, name string) (*domain.Brand, error) {
	if err := requireName(name); err != nil {
		return nil, err
	}

	brand := &domain.Brand{Name: name}
	if err := s.brands.Create(ctx, brand); err != nil {
		s.logger.Error("Failed to create brand", zap.Error(err))
		return nil, err
	}

	return brand, nil
}

func (s *brandService) GetByID(ctx context.Context, id int64) (*domain.Brand, error) {
	return s.brands.FindByID(ctx, id)
}

func (s *brandService) List(ctx context.Context, params domain.ListParams) (*domain.Page[*domain.Brand], error) {
	params, err := s.pages.Normalize(params)
	if err != nil {
		return nil, err
	}

	brands, total, err := s.brands.List(ctx, params)
	if err != nil {
		return nil, err
	}

	return &domain.Page[*domain.Brand]{Items: brands, Total: total, Skip: params.Skip, Limit: params.Limit}, nil
}

func (s *brandService) Update(ctx context.Context, id int64, patch domain.NamePatch) (*domain.Brand, error) {
	brand, err := s.brands.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return brand, nil
	}

	if err := requireName(*patch.Name); err != nil {
		return nil, err
	}

	brand.Name = *patch.Name
	if err := s.brands.Update(ctx, brand); err != nil {
		s.logger.Error("Failed to update brand", zap.Error(err), zap.Int64("brand_id", id))
		return nil, err
	}

	return brand, nil
}

// Remove deletes a brand that no product references
func (s *brandService) Remove(ctx context.Context, id int64) (*domain.Brand, error) {
	brand, err := s.brands.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	inUse, err := s.brands.HasProducts(ctx, id)
	if err != nil {
		return nil, err
	}
	if inUse {
		return nil, domain.ErrBrandInUse
	}

	if err := s.brands.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("Brand removed", zap.Int64("brand_id", id))
	return brand, nil
}
