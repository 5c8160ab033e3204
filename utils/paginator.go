package utils

import "github.com/gin-gonic/gin"

// Page describes one fixed-size window over an ordered result set.
type Page struct {
	Number     int
	Size       int
	Offset     int
	TotalItems int64
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// Paginate resolves a requested page number against the total item count.
// Out-of-range requests clamp rather than error: anything below 1 becomes
// page 1 and anything past the end becomes the last page. An empty result
// set still has exactly one (empty) page, so the returned page is always
// valid.
func Paginate(total int64, page, size int) Page {
	if size < 1 {
		size = 1
	}
	totalPages := int((total + int64(size) - 1) / int64(size))
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return Page{
		Number:     page,
		Size:       size,
		Offset:     (page - 1) * size,
		TotalItems: total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Meta returns the pagination envelope used by list endpoints.
func (p Page) Meta() gin.H {
	return gin.H{
		"page":        p.Number,
		"page_size":   p.Size,
		"total":       p.TotalItems,
		"total_pages": p.TotalPages,
		"has_next":    p.HasNext,
		"has_prev":    p.HasPrev,
	}
}
