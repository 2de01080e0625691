package service

import "shop-catalog/internal/domain"

// Pagination bounds the page size of every listing
type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

// Normalize fills a missing limit with the default and rejects out-of-range values
func (p Pagination) Normalize(params domain.ListParams) (domain.ListParams, error) {
	if params.Skip < 0 {
		return params, domain.NewValidationError("skip", params.Skip, domain.ErrInvalidPagination)
	}
	if params.Limit == 0 {
		params.Limit = p.DefaultLimit
	}
	if params.Limit < 1 || params.Limit > p.MaxLimit {
		return params, domain.NewValidationError("limit", params.Limit, domain.ErrInvalidPagination)
	}
	return params, nil
}
