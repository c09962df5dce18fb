package listview

// Pager is the pagination control state. Page is zero-based.
type Pager struct {
	Page       int
	TotalPages int
}

// NewPager clamps page into [0, totalPages-1]. totalPages below one is
// treated as a single page.
func NewPager(page, totalPages int) Pager {
	if totalPages < 1 {
		totalPages = 1
	}
	return Pager{Page: Clamp(page, totalPages), TotalPages: totalPages}
}

// Clamp bounds page to the valid range for totalPages.
func Clamp(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 0 {
		return 0
	}
	if page > totalPages-1 {
		return totalPages - 1
	}
	return page
}

// HasPrev is false on the first page.
func (p Pager) HasPrev() bool { return p.Page > 0 }

// HasNext is false on the last page.
func (p Pager) HasNext() bool { return p.Page < p.TotalPages-1 }

// Prev returns the previous page index, clamped.
func (p Pager) Prev() int { return Clamp(p.Page-1, p.TotalPages) }

// Next returns the next page index, clamped.
func (p Pager) Next() int { return Clamp(p.Page+1, p.TotalPages) }

// Request validates a page-change request. Out of range requests are
// rejected.
func (p Pager) Request(page int) (int, bool) {
	if page < 0 || page >= p.TotalPages {
		return p.Page, false
	}
	return page, true
}

// Display is the one-based "page / total" label.
func (p Pager) Display() (current, total int) {
	return p.Page + 1, p.TotalPages
}
