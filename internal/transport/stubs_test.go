package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shop-catalog/internal/domain"
	"shop-catalog/internal/middleware"
	"shop-catalog/internal/repository"
	"shop-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

// Stub services embed the interface; calling an unset hook panics, which flags an unexpected call.

type stubProductService struct {
	service.ProductService
	create func(*domain.Product) (*domain.Product, error)
	get    func(int64) (*domain.Product, error)
	list   func(domain.ListParams) (*domain.Page[*domain.Product], error)
	count  func() (int, error)
	update func(int64, domain.ProductPatch) (*domain.Product, error)
	remove func(int64) (*domain.Product, error)
	buy    func(id int64, quantity int, buyerID int64) (*domain.Product, error)
}

func (s *stubProductService) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	return s.create(p)
}

func (s *stubProductService) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	return s.get(id)
}

func (s *stubProductService) List(_ context.Context, params domain.ListParams) (*domain.Page[*domain.Product], error) {
	return s.list(params)
}

func (s *stubProductService) Count(context.Context) (int, error) {
	return s.count()
}

func (s *stubProductService) Update(_ context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	return s.update(id, patch)
}

func (s *stubProductService) Remove(_ context.Context, id int64) (*domain.Product, error) {
	return s.remove(id)
}

func (s *stubProductService) Buy(_ context.Context, id int64, quantity int, buyerID int64) (*domain.Product, error) {
	return s.buy(id, quantity, buyerID)
}

type stubCategoryService struct {
	service.CategoryService
	create func(string) (*domain.Category, error)
	update func(int64, domain.NamePatch) (*domain.Category, error)
	remove func(int64) (*domain.Category, error)
	list   func(domain.ListParams) (*domain.Page[*domain.Category], error)
}

func (s *stubCategoryService) Create(_ context.Context, name string) (*domain.Category, error) {
	return s.create(name)
}

func (s *stubCategoryService) Update(_ context.Context, id int64, patch domain.NamePatch) (*domain.Category, error) {
	return s.update(id, patch)
}

func (s *stubCategoryService) Remove(_ context.Context, id int64) (*domain.Category, error) {
	return s.remove(id)
}

func (s *stubCategoryService) List(_ context.Context, params domain.ListParams) (*domain.Page[*domain.Category], error) {
	return s.list(params)
}

type stubBrandService struct {
	service.BrandService
	create func(string) (*domain.Brand, error)
	update func(int64, domain.NamePatch) (*domain.Brand, error)
	remove func(int64) (*domain.Brand, error)
}

func (s *stubBrandService) Create(_ context.Context, name string) (*domain.Brand, error) {
	return s.create(name)
}

func (s *stubBrandService) Update(_ context.Context, id int64, patch domain.NamePatch) (*domain.Brand, error) {
	return s.update(id, patch)
}

func (s *stubBrandService) Remove(_ context.Context, id int64) (*domain.Brand, error) {
	return s.remove(id)
}

type stubImageService struct {
	service.ImageService
	create func(*domain.Image) (*domain.Image, error)
	list   func(repository.ImageFilter) (*domain.Page[*domain.Image], error)
	update func(int64, domain.ImagePatch) (*domain.Image, error)
	upload func(name string, content []byte) (*service.UploadResult, error)
}

func (s *stubImageService) Create(_ context.Context, image *domain.Image) (*domain.Image, error) {
	return s.create(image)
}

func (s *stubImageService) List(_ context.Context, filter repository.ImageFilter) (*domain.Page[*domain.Image], error) {
	return s.list(filter)
}

func (s *stubImageService) Update(_ context.Context, id int64, patch domain.ImagePatch) (*domain.Image, error) {
	return s.update(id, patch)
}

func (s *stubImageService) Upload(_ context.Context, name string, content io.Reader) (*service.UploadResult, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	return s.upload(name, data)
}

type stubUserService struct {
	users map[int64]*domain.User
}

func (s *stubUserService) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

type routeRegistrar interface {
	RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler)
}

func newTestRouter(handlers ...routeRegistrar) http.Handler {
	r := chi.NewRouter()
	auth := middleware.AuthMiddleware(testSecret, zap.NewNop())
	for _, h := range handlers {
		h.RegisterRoutes(r, auth)
	}
	return r
}

func tokenFor(t *testing.T, userID int64, role domain.Role) string {
	t.Helper()
	token, err := middleware.SignToken(testSecret, userID, role, time.Hour)
	require.NoError(t, err)
	return token
}

func serve(handler http.Handler, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, _ := json.Marshal(b)
		reader = bytes.NewBuffer(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeErrorResponse(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorDetail {
	t.Helper()
	var resp middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp.Error
}
