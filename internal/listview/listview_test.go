package listview

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func TestNormalizeShapes(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		rows  int
		pages int
	}{
		{"envelope", `{"content":[{"id":1},{"id":2}],"totalPages":4}`, 2, 4},
		{"bare array", `[{"id":1},{"id":2},{"id":3}]`, 3, 1},
		{"envelope without total", `{"content":[{"id":1}]}`, 1, 1},
		{"envelope zero total", `{"content":[],"totalPages":0}`, 0, 1},
		{"empty array", `[]`, 0, 1},
		{"null body", `null`, 0, 1},
		{"empty body", ``, 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := Normalize[row]([]byte(tc.raw))
			require.NoError(t, err)
			assert.Len(t, page.Rows, tc.rows)
			assert.Equal(t, tc.pages, page.TotalPages)
			assert.NotNil(t, page.Rows)
		})
	}
}

func TestNormalizeTotals(t *testing.T) {
	page, err := Normalize[row]([]byte(`{"content":[{"id":1}],"totalPages":3,"totalElements":25}`))
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)

	page, err = Normalize[row]([]byte(`{"content":[{"id":1}],"totalPages":3}`))
	require.NoError(t, err)
	assert.Equal(t, -1, page.Total)

	page, err = Normalize[row]([]byte(`[{"id":1},{"id":2}]`))
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestNormalizeRejectsScalars(t *testing.T) {
	_, err := Normalize[row]([]byte(`"oops"`))
	assert.ErrorIs(t, err, ErrUnsupportedShape)

	_, err = Normalize[row]([]byte(`{"content":"nope"}`))
	assert.Error(t, err)
}

func TestPagerBoundaries(t *testing.T) {
	for total := 0; total <= 6; total++ {
		for page := -2; page <= 8; page++ {
			p := NewPager(page, total)
			assert.GreaterOrEqual(t, p.Page, 0)
			assert.Less(t, p.Page, p.TotalPages)
			assert.Equal(t, p.Page > 0, p.HasPrev(), "page=%d total=%d", page, total)
			assert.Equal(t, p.Page < p.TotalPages-1, p.HasNext(), "page=%d total=%d", page, total)
			assert.GreaterOrEqual(t, p.Prev(), 0)
			assert.Less(t, p.Next(), p.TotalPages)
		}
	}
}

func TestPagerSinglePageDisablesBoth(t *testing.T) {
	p := NewPager(0, 1)
	assert.False(t, p.HasPrev())
	assert.False(t, p.HasNext())
	cur, total := p.Display()
	assert.Equal(t, 1, cur)
	assert.Equal(t, 1, total)
}

func TestPagerRequestRejectsOutOfRange(t *testing.T) {
	p := NewPager(1, 3)
	got, ok := p.Request(2)
	assert.True(t, ok)
	assert.Equal(t, 2, got)

	got, ok = p.Request(3)
	assert.False(t, ok)
	assert.Equal(t, 1, got)

	_, ok = p.Request(-1)
	assert.False(t, ok)
}

func TestSortToggle(t *testing.T) {
	var s Sort
	s = s.Toggle("name")
	assert.Equal(t, Sort{Key: "name", Dir: Asc}, s)
	s = s.Toggle("name")
	assert.Equal(t, Sort{Key: "name", Dir: Desc}, s)
	s = s.Toggle("name")
	assert.Equal(t, Sort{Key: "name", Dir: Asc}, s)
	s = s.Toggle("email")
	assert.Equal(t, Sort{Key: "email", Dir: Asc}, s)
	assert.Equal(t, "▲", s.Marker("email"))
	assert.Empty(t, s.Marker("name"))
}

func TestParseQueryAndBackend(t *testing.T) {
	q := ParseQuery(url.Values{"page": {"3"}, "size": {"abc"}, "status": {"pending"}, "sort": {"name"}, "dir": {"DESC"}})
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, DefaultPageSize, q.Size)
	assert.Equal(t, "PENDING", q.Status)
	assert.Equal(t, Sort{Key: "name", Dir: Desc}, q.Sort)

	v := q.Backend()
	assert.Equal(t, "3", v.Get("page"))
	assert.Equal(t, "10", v.Get("size"))
	assert.Equal(t, "PENDING", v.Get("status"))
	assert.Equal(t, "name,desc", v.Get("sort"))

	neg := ParseQuery(url.Values{"page": {"-4"}})
	assert.Equal(t, 0, neg.Page)
}

func TestQueryLinks(t *testing.T) {
	q := Query{Page: 2, Size: DefaultPageSize, Status: "APPROVED"}
	assert.Equal(t, "/leaves/approval?page=3&status=APPROVED", q.Link("/leaves/approval", 3))
	assert.Equal(t, "/employees", Query{}.Link("/employees", 0))
	assert.Equal(t, "/employees?dir=asc&sort=name", Query{}.SortLink("/employees", "name"))
}

func TestBuildTableDefaultAndCustomCells(t *testing.T) {
	cols := []Column[row]{
		{Key: "id", Label: "ID"},
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "active", Label: "Active"},
		{Key: "actions", Label: "", Render: func(r row) Cell {
			return Cell{Actions: []Action{{Label: "View", Href: "/x"}, {Label: "Delete", Method: "POST"}}}
		}},
	}
	rows := []row{{ID: 1, Name: "Ada", Active: true}, {ID: 2, Name: "Lin"}}
	tbl := BuildTable(cols, rows, Query{Sort: Sort{Key: "name", Dir: Asc}}, "/employees")

	require.Len(t, tbl.Headers, 4)
	assert.Equal(t, "▲", tbl.Headers[1].Marker)
	assert.Equal(t, "/employees?dir=desc&sort=name", tbl.Headers[1].Href)
	assert.Empty(t, tbl.Headers[0].Href)

	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "1", tbl.Rows[0][0].Text)
	assert.Equal(t, "Ada", tbl.Rows[0][1].Text)
	assert.Equal(t, "Yes", tbl.Rows[0][2].Text)
	assert.Equal(t, "No", tbl.Rows[1][2].Text)
	assert.Equal(t, []string{"View | Delete"}, tbl.PlainRows()[0][3:])
	assert.Equal(t, []string{"ID", "Name", "Active", ""}, tbl.HeaderLabels())
}

func TestBuildTableEmpty(t *testing.T) {
	tbl := BuildTable([]Column[row]{{Key: "id", Label: "ID"}}, nil, Query{}, "/x")
	assert.True(t, tbl.Empty())
}

func TestLoadPropagatesErrors(t *testing.T) {
	boom := errors.New("backend down")
	_, err := Load(context.Background(), func(context.Context, Query) (Page[row], error) {
		return Page[row]{}, boom
	}, Query{})
	assert.ErrorIs(t, err, boom)
}

func TestLoadClampsPage(t *testing.T) {
	var fetched []int
	view, err := Load(context.Background(), func(_ context.Context, q Query) (Page[row], error) {
		fetched = append(fetched, q.Page)
		if q.Page > 1 {
			return Page[row]{TotalPages: 2}, nil
		}
		return Page[row]{Rows: []row{{ID: q.Page + 1}}, TotalPages: 2}, nil
	}, Query{Page: 9})
	require.NoError(t, err)
	assert.Equal(t, []int{9, 1}, fetched)
	assert.Equal(t, 1, view.Pager.Page)
	assert.Equal(t, 1, view.Query.Page)
	assert.Equal(t, []row{{ID: 2}}, view.Rows)
	assert.False(t, view.Pager.HasNext())
	assert.True(t, view.Pager.HasPrev())
}

func TestLoadOutOfRangePageShowsLastPageRows(t *testing.T) {
	var fetched []int
	fetch := func(_ context.Context, q Query) (Page[row], error) {
		fetched = append(fetched, q.Page)
		if q.Page >= 5 {
			return Page[row]{TotalPages: 5}, nil
		}
		return Page[row]{Rows: []row{{ID: q.Page}}, TotalPages: 5}, nil
	}
	view, err := Load(context.Background(), fetch, Query{Page: 99})
	require.NoError(t, err)
	assert.Equal(t, []int{99, 4}, fetched)
	assert.Equal(t, view.Pager.Page, view.Query.Page)
	assert.Equal(t, []row{{ID: 4}}, view.Rows)
	current, total := view.Pager.Display()
	assert.Equal(t, 5, current)
	assert.Equal(t, 5, total)

	fetched = nil
	view, err = Load(context.Background(), fetch, Query{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, fetched, "in-range pages are fetched once")
	assert.Equal(t, 2, view.Query.Page)
}

func TestLoadRefetchErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	_, err := Load(context.Background(), func(_ context.Context, q Query) (Page[row], error) {
		calls++
		if calls > 1 {
			return Page[row]{}, boom
		}
		return Page[row]{TotalPages: 3}, nil
	}, Query{Page: 7})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}
