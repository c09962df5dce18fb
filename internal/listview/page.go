// Package listview is the paginated table contract shared by every collection
// screen: query parsing, response normalization, pager state, sort toggling
// and cell rendering.
package listview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnsupportedShape is returned when a list response is neither an envelope
// nor a bare array.
var ErrUnsupportedShape = errors.New("listview: unsupported list shape")

// Page is one normalized page of rows. Total is the number of rows across
// all pages, or -1 when the backend did not say.
type Page[T any] struct {
	Rows       []T
	TotalPages int
	Total      int
}

type envelope[T any] struct {
	Content       []T  `json:"content"`
	TotalPages    int  `json:"totalPages"`
	TotalElements *int `json:"totalElements"`
}

// Normalize accepts either {"content": [...], "totalPages": N} or a bare JSON
// array. A bare array is a single page.
func Normalize[T any](raw []byte) (Page[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Page[T]{Rows: []T{}, TotalPages: 1, Total: 0}, nil
	}
	switch trimmed[0] {
	case '[':
		var rows []T
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return Page[T]{}, fmt.Errorf("listview: decode array: %w", err)
		}
		if rows == nil {
			rows = []T{}
		}
		return Page[T]{Rows: rows, TotalPages: 1, Total: len(rows)}, nil
	case '{':
		var env envelope[T]
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return Page[T]{}, fmt.Errorf("listview: decode envelope: %w", err)
		}
		if env.Content == nil {
			env.Content = []T{}
		}
		if env.TotalPages < 1 {
			env.TotalPages = 1
		}
		total := -1
		switch {
		case env.TotalElements != nil:
			total = *env.TotalElements
		case env.TotalPages == 1:
			total = len(env.Content)
		}
		return Page[T]{Rows: env.Content, TotalPages: env.TotalPages, Total: total}, nil
	}
	return Page[T]{}, ErrUnsupportedShape
}

// Fetcher loads one page for a query.
type Fetcher[T any] func(ctx context.Context, q Query) (Page[T], error)

// View is everything a screen needs to render a list.
type View[T any] struct {
	Query Query
	Rows  []T
	Pager Pager
}

// Load runs fetch and assembles the view. A page outside the range the
// backend reports is clamped and fetched again, so rows, query and pager
// always describe the same page. Fetch errors are returned untouched;
// presenting them is the caller's job.
func Load[T any](ctx context.Context, fetch Fetcher[T], q Query) (View[T], error) {
	page, err := fetch(ctx, q)
	if err != nil {
		return View[T]{Query: q}, err
	}
	if clamped := Clamp(q.Page, page.TotalPages); clamped != q.Page {
		q.Page = clamped
		if page, err = fetch(ctx, q); err != nil {
			return View[T]{Query: q}, err
		}
	}
	pager := NewPager(q.Page, page.TotalPages)
	q.Page = pager.Page
	return View[T]{
		Query: q,
		Rows:  page.Rows,
		Pager: pager,
	}, nil
}
