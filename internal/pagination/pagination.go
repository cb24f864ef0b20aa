// Package pagination parses page/limit query parameters and derives offsets for list endpoints.
package pagination

import (
	"net/url"
	"strconv"
)

// Params is a 1-based page request
type Params struct {
	Page   int
	Limit  int
	Offset int
}

const (
	MaxLimit     = 100
	DefaultPage  = 1
	DefaultLimit = 10
)

type PaginationOption func(*Params)

// WithDefaultLimit overrides DefaultLimit when limit is positive
func WithDefaultLimit(limit int) PaginationOption {
	return func(p *Params) {
		if limit > 0 {
			p.Limit = limit
		}
	}
}

func New(page, limit int) *Params {
	params := &Params{Page: page, Limit: limit}
	params.normalize()
	return params
}

// GetPaginationParams ignores malformed or non-positive values and clamps limit to MaxLimit
func GetPaginationParams(q url.Values, opts ...PaginationOption) *Params {
	params := &Params{
		Page:  DefaultPage,
		Limit: DefaultLimit,
	}

	for _, opt := range opts {
		opt(params)
	}

	if pageStr := q.Get("page"); pageStr != "" {
		if val, err := strconv.Atoi(pageStr); err == nil && val > 0 {
			params.Page = val
		}
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		if val, err := strconv.Atoi(limitStr); err == nil && val > 0 {
			params.Limit = val
		}
	}

	params.normalize()
	return params
}

func (p *Params) normalize() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	p.Offset = (p.Page - 1) * p.Limit
}

func (p *Params) TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

func (p *Params) HasNext(total int64) bool {
	return int64(p.Offset+p.Limit) < total
}
