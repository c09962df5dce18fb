package listview

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultPageSize matches the page size every list screen requests.
const DefaultPageSize = 10

// Sort directions.
const (
	Asc  = "asc"
	Desc = "desc"
)

// Sort is the advisory sort state of a table.
type Sort struct {
	Key string
	Dir string
}

// Toggle returns the state after a click on column key: the same column flips
// direction, a different column starts ascending.
func (s Sort) Toggle(key string) Sort {
	if s.Key == key {
		if s.Dir == Asc {
			return Sort{Key: key, Dir: Desc}
		}
		return Sort{Key: key, Dir: Asc}
	}
	return Sort{Key: key, Dir: Asc}
}

// Marker returns the header indicator for column key.
func (s Sort) Marker(key string) string {
	if s.Key != key || key == "" {
		return ""
	}
	if s.Dir == Desc {
		return "▼"
	}
	return "▲"
}

// Query is the per-screen list state carried in the URL.
type Query struct {
	Page   int
	Size   int
	Status string
	Sort   Sort
}

// ParseQuery reads page, size, status, sort and dir from v. Invalid numbers
// fall back to the first page and the default size.
func ParseQuery(v url.Values) Query {
	q := Query{Page: 0, Size: DefaultPageSize}
	if p, err := strconv.Atoi(v.Get("page")); err == nil && p > 0 {
		q.Page = p
	}
	if s, err := strconv.Atoi(v.Get("size")); err == nil && s > 0 && s <= 100 {
		q.Size = s
	}
	q.Status = strings.ToUpper(strings.TrimSpace(v.Get("status")))
	q.Sort.Key = strings.TrimSpace(v.Get("sort"))
	if q.Sort.Key != "" {
		q.Sort.Dir = Asc
		if strings.EqualFold(v.Get("dir"), Desc) {
			q.Sort.Dir = Desc
		}
	}
	return q
}

// Backend returns the query parameters sent to the REST API.
func (q Query) Backend() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	size := q.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	v.Set("size", strconv.Itoa(size))
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Sort.Key != "" {
		v.Set("sort", q.Sort.Key+","+q.Sort.Dir)
	}
	return v
}

// Link returns the console URL for path with q applied, overriding page.
func (q Query) Link(path string, page int) string {
	v := url.Values{}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if q.Size > 0 && q.Size != DefaultPageSize {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Sort.Key != "" {
		v.Set("sort", q.Sort.Key)
		v.Set("dir", q.Sort.Dir)
	}
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

// SortLink returns the URL a header click on key navigates to. Sorting
// returns to the first page.
func (q Query) SortLink(path, key string) string {
	next := q
	next.Sort = q.Sort.Toggle(key)
	return next.Link(path, 0)
}
