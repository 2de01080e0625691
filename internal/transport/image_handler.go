package transport

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"shop-catalog/internal/domain"
	"shop-catalog/internal/middleware"
	"shop-catalog/internal/policy"
	"shop-catalog/internal/repository"
	"shop-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateImageRequest registers an already uploaded file against a product
type CreateImageRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
}

// UpdateImageRequest carries a partial update; absent fields are left untouched
type UpdateImageRequest struct {
	Name      *string `json:"name" validate:"omitempty,max=255"`
	ProductID *int64  `json:"product_id" validate:"omitempty,gt=0"`
}

// ImageHandler handles HTTP requests for images
type ImageHandler struct {
	imageService service.ImageService
	maxUpload    int64
	logger       *zap.Logger
}

// NewImageHandler creates a new ImageHandler. Uploads larger than maxUpload bytes are rejected.
func NewImageHandler(imageService service.ImageService, maxUpload int64, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		maxUpload:    maxUpload,
		logger:       logger,
	}
}

// RegisterRoutes registers all image routes
func (h *ImageHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/image", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.With(middleware.RequirePermission(policy.ImageUpload, h.logger)).Post("/upload", h.Upload)
			r.With(middleware.RequirePermission(policy.ImageCreate, h.logger)).Post("/", h.Create)
			r.With(middleware.RequirePermission(policy.ImageUpdate, h.logger)).Put("/{id}", h.Update)
			r.With(middleware.RequirePermission(policy.ImageDelete, h.logger)).Delete("/{id}", h.Delete)
		})
	})
}

func (h *ImageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateImageRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}

	image, err := h.imageService.Create(r.Context(), &domain.Image{
		Name:      req.Name,
		ProductID: req.ProductID,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "create image")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, image)
}

func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get image")
		return
	}

	image, err := h.imageService.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get image")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, image)
}

// List returns a page of images, optionally restricted to one product via product_id
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list images")
		return
	}

	filter := repository.ImageFilter{ListParams: params}
	if raw := r.URL.Query().Get("product_id"); raw != "" {
		productID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || productID < 1 {
			respondWithServiceError(w, h.logger, domain.NewValidationError("product_id", raw, domain.ErrValidation), "list images")
			return
		}
		filter.ProductID = &productID
	}

	page, err := h.imageService.List(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list images")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

func (h *ImageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update image")
		return
	}

	var req UpdateImageRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}

	image, err := h.imageService.Update(r.Context(), id, domain.ImagePatch{
		Name:      req.Name,
		ProductID: req.ProductID,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update image")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, image)
}

func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "delete image")
		return
	}

	image, err := h.imageService.Remove(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "delete image")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, image)
}

// Upload stores the multipart field "file" under its base name
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.logger.Debug("Upload rejected", zap.Error(err))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithServiceError(w, h.logger, domain.NewValidationError("file", nil, domain.ErrRequiredField), "upload image")
		return
	}
	defer file.Close()

	result, err := h.imageService.Upload(r.Context(), filepath.Base(header.Filename), file)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "upload image")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, result)
}
