package rest

import "time"

// DefaultPageSize is applied when a list request carries no page_size.
const DefaultPageSize = 20

// PageParams are the implicit query parameters every list endpoint
// accepts. They are declared statically here and embedded into resource
// filter structs instead of being injected into each schema at request
// time.
type PageParams struct {
	Page     int `form:"page,default=1" binding:"omitempty,gt=0"`
	PageSize int `form:"page_size,default=20" binding:"omitempty,gt=0"`
}

// Paging is the resolved window for one list request.
type Paging struct {
	Page     int
	PageSize int
	Pages    int
	Offset   int
	Bound    int
	Total    int64
}

// ComputePaging clamps the requested page into [1, last_page] and derives
// the offset and bound for it. last_page is ceil(total/page_size); an
// empty result set keeps last_page at 0 while the display page stays 1.
func ComputePaging(total int64, p PageParams) Paging {
	size := p.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	pages := int(total / int64(size))
	if total%int64(size) != 0 {
		pages++
	}

	page := p.Page
	if page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}

	offset := (page - 1) * size
	bound := size * page
	if int64(bound) > total {
		bound = int(total)
	}

	return Paging{
		Page:     page,
		PageSize: size,
		Pages:    pages,
		Offset:   offset,
		Bound:    bound,
		Total:    total,
	}
}

// Meta describes the pagination window of a list response.
type Meta struct {
	Total       int64  `json:"total"`
	Pages       int    `json:"pages"`
	Quantity    int    `json:"quantity"`
	CurrentTime string `json:"current_time"`
}

// ListResponse is the envelope every list endpoint returns.
type ListResponse struct {
	Meta    Meta  `json:"meta"`
	Objects []any `json:"objects"`
}

// NewListResponse assembles the list envelope for already-serialized
// objects.
func NewListResponse(objects []any, paging Paging) ListResponse {
	if objects == nil {
		objects = []any{}
	}
	return ListResponse{
		Meta: Meta{
			Total:       paging.Total,
			Pages:       paging.Pages,
			Quantity:    paging.PageSize,
			CurrentTime: time.Now().UTC().Format(time.ANSIC),
		},
		Objects: objects,
	}
}
