package transport

import (
	"encoding/json"
	"net/http"
	"testing"

	"shop-catalog/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newProductRouter(svc *stubProductService) http.Handler {
	return newTestRouter(NewProductHandler(svc, zap.NewNop()))
}

func validProductBody() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Trail runner",
		"description": "Light shoe",
		"price":       59.9,
		"count":       5,
		"category_id": 1,
		"brand_id":    2,
	}
}

func TestProductHandler_ListIsPublicAndForwardsParams(t *testing.T) {
	var got domain.ListParams
	svc := &stubProductService{
		list: func(params domain.ListParams) (*domain.Page[*domain.Product], error) {
			got = params
			return &domain.Page[*domain.Product]{Items: []*domain.Product{}, Total: 0, Skip: params.Skip, Limit: params.Limit}, nil
		},
	}

	w := serve(newProductRouter(svc), http.MethodGet, "/product/?skip=5&limit=2&search_query=run", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.ListParams{Skip: 5, Limit: 2, Search: "run"}, got)

	var page domain.Page[*domain.Product]
	require.NoError(t, json.NewDecoder(w.Body).Decode(&page))
	assert.Equal(t, 5, page.Skip)
	assert.Equal(t, 2, page.Limit)
}

func TestProductHandler_ListRejectsBadPagination(t *testing.T) {
	svc := &stubProductService{}
	router := newProductRouter(svc)

	for _, target := range []string{"/product/?limit=0", "/product/?limit=ten", "/product/?skip=x"} {
		w := serve(router, http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestProductHandler_Count(t *testing.T) {
	svc := &stubProductService{count: func() (int, error) { return 42, nil }}

	w := serve(newProductRouter(svc), http.MethodGet, "/product/count", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp CountResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 42, resp.Count)
}

func TestProductHandler_Get(t *testing.T) {
	svc := &stubProductService{
		get: func(id int64) (*domain.Product, error) {
			if id == 7 {
				return &domain.Product{ID: 7, Title: "Kettle", Price: decimal.RequireFromString("19.99")}, nil
			}
			return nil, domain.ErrProductNotFound
		},
	}
	router := newProductRouter(svc)

	w := serve(router, http.MethodGet, "/product/7", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var product domain.Product
	require.NoError(t, json.NewDecoder(w.Body).Decode(&product))
	assert.Equal(t, "Kettle", product.Title)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("19.99")))

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/product/8", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/product/abc", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/product/0", "", nil).Code)
}

func TestProductHandler_CreateRequiresAuthAndPermission(t *testing.T) {
	svc := &stubProductService{
		create: func(p *domain.Product) (*domain.Product, error) {
			p.ID = 1
			return p, nil
		},
	}
	router := newProductRouter(svc)

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodPost, "/product/", "", validProductBody()).Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPost, "/product/", tokenFor(t, 3, domain.RoleUser), validProductBody()).Code)

	w := serve(router, http.MethodPost, "/product/", tokenFor(t, 2, domain.RoleManager), validProductBody())
	require.Equal(t, http.StatusCreated, w.Code)

	var product domain.Product
	require.NoError(t, json.NewDecoder(w.Body).Decode(&product))
	assert.Equal(t, int64(1), product.ID)
	assert.Equal(t, 5, product.Count)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("59.9")))
}

func TestProductHandler_CreateValidatesBody(t *testing.T) {
	svc := &stubProductService{}
	router := newProductRouter(svc)
	token := tokenFor(t, 1, domain.RoleAdmin)

	tests := []struct {
		name  string
		field string
		edit  func(map[string]interface{})
	}{
		{"missing title", "title", func(b map[string]interface{}) { delete(b, "title") }},
		{"missing count", "count", func(b map[string]interface{}) { delete(b, "count") }},
		{"negative count", "count", func(b map[string]interface{}) { b["count"] = -1 }},
		{"zero price", "price", func(b map[string]interface{}) { b["price"] = 0 }},
		{"negative price", "price", func(b map[string]interface{}) { b["price"] = -4.5 }},
		{"missing brand", "brand_id", func(b map[string]interface{}) { delete(b, "brand_id") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validProductBody()
			tt.edit(body)

			w := serve(router, http.MethodPost, "/product/", token, body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			detail := decodeErrorResponse(t, w)
			errs, ok := detail.Details["validation_errors"].([]interface{})
			require.True(t, ok)
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.field, errs[0].(map[string]interface{})["field"])
		})
	}

	w := serve(router, http.MethodPost, "/product/", token, "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_CreateMissingReferenceIsNotFound(t *testing.T) {
	svc := &stubProductService{
		create: func(p *domain.Product) (*domain.Product, error) {
			return nil, domain.NewValidationError("category_id", p.CategoryID, domain.ErrCategoryNotFound)
		},
	}

	w := serve(newProductRouter(svc), http.MethodPost, "/product/", tokenFor(t, 1, domain.RoleAdmin), validProductBody())

	require.Equal(t, http.StatusNotFound, w.Code)
	detail := decodeErrorResponse(t, w)
	assert.Equal(t, domain.ErrCategoryNotFound.Error(), detail.Message)
	assert.Equal(t, "category_id", detail.Details["field"])
}

func TestProductHandler_UpdateSendsOnlyGivenFields(t *testing.T) {
	var gotID int64
	var gotPatch domain.ProductPatch
	svc := &stubProductService{
		update: func(id int64, patch domain.ProductPatch) (*domain.Product, error) {
			gotID, gotPatch = id, patch
			return &domain.Product{ID: id, Title: *patch.Title}, nil
		},
	}

	w := serve(newProductRouter(svc), http.MethodPut, "/product/4", tokenFor(t, 2, domain.RoleManager),
		map[string]interface{}{"title": "Renamed"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(4), gotID)
	require.NotNil(t, gotPatch.Title)
	assert.Equal(t, "Renamed", *gotPatch.Title)
	assert.Nil(t, gotPatch.Description)
	assert.Nil(t, gotPatch.Price)
	assert.Nil(t, gotPatch.Count)
	assert.Nil(t, gotPatch.CategoryID)
	assert.Nil(t, gotPatch.BrandID)
}

func TestProductHandler_DeleteIsAdminOnly(t *testing.T) {
	svc := &stubProductService{
		remove: func(id int64) (*domain.Product, error) {
			return &domain.Product{ID: id, Title: "Gone"}, nil
		},
	}
	router := newProductRouter(svc)

	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodDelete, "/product/3", tokenFor(t, 2, domain.RoleManager), nil).Code)

	w := serve(router, http.MethodDelete, "/product/3", tokenFor(t, 1, domain.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var product domain.Product
	require.NoError(t, json.NewDecoder(w.Body).Decode(&product))
	assert.Equal(t, int64(3), product.ID)
}

func TestProductHandler_BuyPassesBuyer(t *testing.T) {
	var gotID, gotBuyer int64
	var gotQuantity int
	svc := &stubProductService{
		buy: func(id int64, quantity int, buyerID int64) (*domain.Product, error) {
			gotID, gotQuantity, gotBuyer = id, quantity, buyerID
			return &domain.Product{ID: id, Count: 3}, nil
		},
	}

	w := serve(newProductRouter(svc), http.MethodPut, "/product/buy/9", tokenFor(t, 77, domain.RoleUser),
		map[string]interface{}{"count": 2})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(9), gotID)
	assert.Equal(t, 2, gotQuantity)
	assert.Equal(t, int64(77), gotBuyer)
}

func TestProductHandler_BuyRejections(t *testing.T) {
	svc := &stubProductService{
		buy: func(id int64, quantity int, buyerID int64) (*domain.Product, error) {
			return nil, domain.NewValidationError("count", quantity, domain.ErrInvalidCount)
		},
	}
	router := newProductRouter(svc)
	token := tokenFor(t, 5, domain.RoleUser)

	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPut, "/product/buy/1", tokenFor(t, 2, domain.RoleManager),
		map[string]interface{}{"count": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodPut, "/product/buy/1", token,
		map[string]interface{}{"count": 0}).Code)

	w := serve(router, http.MethodPut, "/product/buy/1", token, map[string]interface{}{"count": 100})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.ErrInvalidCount.Error(), decodeErrorResponse(t, w).Message)
}

func TestProperty_BuyQuantityBelowOneNeverReachesService(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("buy with count < 1 answers 400", prop.ForAll(
		func(quantity int) bool {
			svc := &stubProductService{}
			w := serve(newProductRouter(svc), http.MethodPut, "/product/buy/1", tokenFor(t, 5, domain.RoleAdmin),
				map[string]interface{}{"count": quantity})
			return w.Code == http.StatusBadRequest
		},
		gen.IntRange(-1000, 0),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
