package service

import (
	"context"
	"errors"
	"io"

	"shop-catalog/internal/domain"
	"shop-catalog/internal/repository"
	"shop-catalog/internal/storage"

	"go.uber.org/zap"
)

// UploadResult describes a file accepted by Upload
type UploadResult struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// ImageService defines the interface for image business logic
type ImageService interface {
	Create(ctx context.Context, image *domain.Image) (*domain.Image, error)
	GetByID(ctx context.Context, id int64) (*domain.Image, error)
	List(ctx context.Context, filter repository.ImageFilter) (*domain.Page[*domain.Image], error)
	Update(ctx context.Context, id int64, patch domain.ImagePatch) (*domain.Image, error)
	Remove(ctx context.Context, id int64) (*domain.Image, error)
	Upload(ctx context.Context, name string, content io.Reader) (*UploadResult, error)
}

type imageService struct {
	images repository.ImageRepository
	rules  *Rules
	files  storage.FileStore
	pages  Pagination
	logger *zap.Logger
}

// NewImageService creates a new instance of ImageService
func NewImageService(
	images repository.ImageRepository,
	rules *Rules,
	files storage.FileStore,
	pages Pagination,
	logger *zap.Logger,
) ImageService {
	return &imageService{
		images: images,
		rules:  rules,
		files:  files,
		pages:  pages,
		logger: logger.Named("image"),
	}
}

// Create registers an image whose file is already in the file store
func (s *imageService) Create(ctx context.Context, image *domain.Image) (*domain.Image, error) {
	if err := s.rules.ValidateImage(ctx, image, nil); err != nil {
		return nil, err
	}

	if err := s.images.Create(ctx, image); err != nil {
		s.logger.Error("Failed to create image", zap.Error(err), zap.String("name", image.Name))
		return nil, err
	}

	return image, nil
}

func (s *imageService) GetByID(ctx context.Context, id int64) (*domain.Image, error) {
	return s.images.FindByID(ctx, id)
}

func (s *imageService) List(ctx context.Context, filter repository.ImageFilter) (*domain.Page[*domain.Image], error) {
	params, err := s.pages.Normalize(filter.ListParams)
	if err != nil {
		return nil, err
	}
	filter.ListParams = params

	images, total, err := s.images.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &domain.Page[*domain.Image]{Items: images, Total: total, Skip: params.Skip, Limit: params.Limit}, nil
}

func (s *imageService) Update(ctx context.Context, id int64, patch domain.ImagePatch) (*domain.Image, error) {
	current, err := s.images.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return current, nil
	}

	merged := patch.Apply(*current)
	if err := s.rules.ValidateImage(ctx, &merged, current); err != nil {
		return nil, err
	}

	if err := s.images.Update(ctx, &merged); err != nil {
		s.logger.Error("Failed to update image", zap.Error(err), zap.Int64("image_id", id))
		return nil, err
	}

	return &merged, nil
}

func (s *imageService) Remove(ctx context.Context, id int64) (*domain.Image, error) {
	image, err := s.images.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.images.Delete(ctx, id); err != nil {
		return nil, err
	}

	return image, nil
}

// Upload stores a new image file. Existing files are never replaced.
func (s *imageService) Upload(ctx context.Context, name string, content io.Reader) (*UploadResult, error) {
	if err := CheckImageExtension(name); err != nil {
		return nil, err
	}

	size, err := s.files.Save(name, content)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrFileExists):
			return nil, domain.NewValidationError("file", name, domain.ErrFileExists)
		case errors.Is(err, storage.ErrInvalidName):
			return nil, domain.NewValidationError("file", name, domain.ErrUnsupportedFileType)
		}
		s.logger.Error("Failed to store upload", zap.Error(err), zap.String("name", name))
		return nil, err
	}

	s.logger.Info("Image uploaded", zap.String("name", name), zap.Int64("size", size))
	return &UploadResult{Name: name, Size: size}, nil
}
