package transport

import (
	"net/http"

	"shop-catalog/internal/domain"
	"shop-catalog/internal/middleware"
	"shop-catalog/internal/policy"
	"shop-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Title       string          `json:"title" validate:"required,max=255"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"required,gt=0"`
	Count       *int            `json:"count" validate:"required,gte=0"`
	CategoryID  int64           `json:"category_id" validate:"required,gt=0"`
	BrandID     int64           `json:"brand_id" validate:"required,gt=0"`
}

// UpdateProductRequest carries a partial update; absent fields are left untouched
type UpdateProductRequest struct {
	Title       *string          `json:"title" validate:"omitempty,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gt=0"`
	Count       *int             `json:"count" validate:"omitempty,gte=0"`
	CategoryID  *int64           `json:"category_id" validate:"omitempty,gt=0"`
	BrandID     *int64           `json:"brand_id" validate:"omitempty,gt=0"`
}

func (req UpdateProductRequest) patch() domain.ProductPatch {
	return domain.ProductPatch{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Count:       req.Count,
		CategoryID:  req.CategoryID,
		BrandID:     req.BrandID,
	}
}

// BuyRequest represents a purchase
type BuyRequest struct {
	Count int `json:"count" validate:"required,gte=1"`
}

// CountResponse represents the product count
type CountResponse struct {
	Count int `json:"count"`
}

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes. Reads are public.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/product", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/count", h.Count)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.With(middleware.RequirePermission(policy.ProductCreate, h.logger)).Post("/", h.Create)
			r.With(middleware.RequirePermission(policy.ProductUpdate, h.logger)).Put("/{id}", h.Update)
			r.With(middleware.RequirePermission(policy.ProductDelete, h.logger)).Delete("/{id}", h.Delete)
			r.With(middleware.RequirePermission(policy.ProductBuy, h.logger)).Put("/buy/{id}", h.Buy)
		})
	})
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}

	product, err := h.productService.Create(r.Context(), &domain.Product{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Count:       *req.Count,
		CategoryID:  req.CategoryID,
		BrandID:     req.BrandID,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "create product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Get returns a single product with its images
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get product")
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// List returns a page of products, optionally filtered by search_query
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list products")
		return
	}

	page, err := h.productService.List(r.Context(), params)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

// Count returns the number of products
func (h *ProductHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.productService.Count(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "count products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CountResponse{Count: count})
}

// Update applies a partial update
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update product")
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}

	product, err := h.productService.Update(r.Context(), id, req.patch())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes the product and its images, returning the deleted product
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "delete product")
		return
	}

	product, err := h.productService.Remove(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "delete product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Buy takes the requested count from stock
func (h *ProductHandler) Buy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "buy product")
		return
	}

	var req BuyRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())

	product, err := h.productService.Buy(r.Context(), id, req.Count, userID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "buy product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}
