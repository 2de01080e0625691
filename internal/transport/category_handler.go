package transport

import (
	"net/http"

	"shop-catalog/internal/domain"
	"shop-catalog/internal/middleware"
	"shop-catalog/internal/policy"
	"shop-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NameRequest is the creation payload for categories and brands
type NameRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// UpdateNameRequest is the partial update payload for categories and brands
type UpdateNameRequest struct {
	Name *string `json:"name" validate:"omitempty,max=255"`
}

// CategoryHandler handles HTTP requests for categories
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// RegisterRoutes registers all category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/category", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.With(middleware.RequirePermission(policy.CategoryCreate, h.logger)).Post("/", h.Create)
			r.With(middleware.RequirePermission(policy.CategoryUpdate, h.logger)).Put("/{id}", h.Update)
			r.With(middleware.RequirePermission(policy.CategoryDelete, h.logger)).Delete("/{id}", h.Delete)
		})
	})
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}

	category, err := h.categoryService.Create(r.Context(), req.Name)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "create category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get category")
		return
	}

	category, err := h.categoryService.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list categories")
		return
	}

	page, err := h.categoryService.List(r.Context(), params)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update category")
		return
	}

	var req UpdateNameRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}

	category, err := h.categoryService.Update(r.Context(), id, domain.NamePatch{Name: req.Name})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "delete category")
		return
	}

	category, err := h.categoryService.Remove(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "delete category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}
