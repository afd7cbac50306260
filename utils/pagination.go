package utils

import "strconv"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination is the paging block returned next to every list
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination builds the paging block for a page of a list with total items
func NewPagination(page, limit int, total int64) Pagination {
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: TotalPages(total, limit)}
}

// TotalPages is ceil(total/limit), and 0 for an empty list
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// ParsePage reads page and limit query values, falling back to defaults on
// missing or invalid input and capping limit at MaxLimit
func ParsePage(pageParam, limitParam string) (page, limit int) {
	page, err := strconv.Atoi(pageParam)
	if err != nil {
		page = 0
	}
	limit, err = strconv.Atoi(limitParam)
	if err != nil {
		limit = 0
	}
	return NormalizePage(page, limit)
}

// NormalizePage applies the defaults and the MaxLimit cap to already parsed values
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// Offset is the number of rows skipped before page
func Offset(page, limit int) int {
	return (page - 1) * limit
}
