package pagination

import (
	"math"
	"strconv"
)

const (
	DefaultLimit    = 10
	MaxLimit        = 100
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*MaxPageSize inside a signed 32-bit offset.
	MaxPage = math.MaxInt32 / MaxPageSize
)

// Offset is limit/offset paging used by parcel listings.
type Offset struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ParseOffset reads raw query values. Missing, unparsable or non-positive
// limits fall back to DefaultLimit; limits above MaxLimit are clamped;
// negative offsets become zero.
func ParseOffset(limitStr, offsetStr string) Offset {
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset, err := strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		offset = 0
	}
	return Offset{Limit: limit, Offset: offset}
}

// OffsetMeta is returned alongside offset-paged lists.
type OffsetMeta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func (o Offset) Meta(total int) OffsetMeta {
	return OffsetMeta{Total: total, Limit: o.Limit, Offset: o.Offset}
}

// Page is 1-based page/page_size paging used by visitor listings.
type Page struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// ParsePage reads raw query values; anything non-positive or unparsable
// takes the default. Page sizes above MaxPageSize and pages above MaxPage
// are clamped. Out-of-range numbers that fail to parse take the default too.
func ParsePage(pageStr, sizeStr string) Page {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page <= 0 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Page: page, PageSize: size}
}

// Offset never goes negative, even for hand-built pages.
func (p Page) Offset() int {
	if p.Page <= 1 || p.PageSize <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

func (p Page) Limit() int { return p.PageSize }

func (p Page) TotalPages(total int) int {
	if p.PageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + p.PageSize - 1) / p.PageSize
}

type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

func (p Page) Meta(total int) PageMeta {
	return PageMeta{Total: total, Page: p.Page, PageSize: p.PageSize, TotalPages: p.TotalPages(total)}
}
