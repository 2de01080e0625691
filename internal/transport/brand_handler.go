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

// BrandHandler handles HTTP requests for brands
type BrandHandler struct {
	brandService service.BrandService
	logger       *zap.Logger
}

// NewBrandHandler creates a new BrandHandler
func NewBrandHandler(brandService service.BrandService, logger *zap.Logger) *BrandHandler {
	return &BrandHandler{
		brandService: brandService,
		logger:       logger,
	}
}

// RegisterRoutes registers all brand routes
func (h *BrandHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/brand", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.With(middleware.RequirePermission(policy.BrandCreate, h.logger)).Post("/", h.Create)
			r.With(middleware.RequirePermission(policy.BrandUpdate, h.logger)).Put("/{id}", h.Update)
			r.With(middleware.RequirePermission(policy.BrandDelete, h.logger)).Delete("/{id}", h.Delete)
		})
	})
}

func (h *BrandHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}

	brand, err := h.brandService.Create(r.Context(), req.Name)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "create brand")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, brand)
}

func (h *BrandHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get brand")
		return
	}

	brand, err := h.brandService.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get brand")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, brand)
}

func (h *BrandHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list brands")
		return
	}

	page, err := h.brandService.List(r.Context(), params)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list brands")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

func (h *BrandHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update brand")
		return
	}

	var req UpdateNameRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}

	brand, err := h.brandService.Update(r.Context(), id, domain.NamePatch{Name: req.Name})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update brand")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, brand)
}

func (h *BrandHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "delete brand")
		return
	}

	brand, err := h.brandService.Remove(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "delete brand")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, brand)
}
