package transport

import (
	"net/http"
	"strconv"

	"shop-catalog/internal/domain"

	"github.com/go-chi/chi/v5"
)

// pathID reads the {id} URL parameter
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, domain.NewValidationError("id", raw, domain.ErrValidation)
	}
	return id, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, raw, domain.ErrInvalidPagination)
	}
	return v, nil
}

// listParams reads skip, limit and search_query. A missing limit stays 0 and
// is replaced by the default page size in the service.
func listParams(r *http.Request) (domain.ListParams, error) {
	skip, err := queryInt(r, "skip")
	if err != nil {
		return domain.ListParams{}, err
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		return domain.ListParams{}, err
	}
	if r.URL.Query().Has("limit") && limit == 0 {
		return domain.ListParams{}, domain.NewValidationError("limit", 0, domain.ErrInvalidPagination)
	}

	return domain.ListParams{
		Skip:   skip,
		Limit:  limit,
		Search: r.URL.Query().Get("search_query"),
	}, nil
}
