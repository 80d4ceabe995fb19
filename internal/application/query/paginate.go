package query

import "github.com/garyjia/claimflow/internal/domain/entity"

// DefaultPageSize is the fixed page size of every view
const DefaultPageSize = 10

// Page is one page of claims
type Page struct {
	Items      []*entity.Claim `json:"items"`
	Number     int             `json:"page"`
	Size       int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
	Total      int             `json:"total"`
}

// TotalPages returns the page count for n items; zero items means zero pages
func TotalPages(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	return (n + size - 1) / size
}

// Paginate slices out page number (1-based). It does not clamp: an out-of-range
// page yields an empty, non-nil item slice.
func Paginate(claims []*entity.Claim, size, number int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	page := Page{
		Items:      []*entity.Claim{},
		Number:     number,
		Size:       size,
		TotalPages: TotalPages(len(claims), size),
		Total:      len(claims),
	}
	if number < 1 || number > page.TotalPages {
		return page
	}

	start := (number - 1) * size
	end := min(start+size, len(claims))
	page.Items = claims[start:end]
	return page
}

// ClampPage brings number into [1, totalPages]. With no pages it returns 1.
func ClampPage(number, totalPages int) int {
	if totalPages < 1 || number < 1 {
		return 1
	}
	return min(number, totalPages)
}
