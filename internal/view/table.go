// Package view holds the client-side table state: a full cache per
// entity, a substring filter, and clamped pagination. Nothing here
// talks to the network.
package view

import "strings"

// Table paginates a filtered snapshot of rows. The zero value is not
// usable; construct with New.
type Table[T any] struct {
	pageSize int
	page     int
	rows     []T
	filtered []T
	query    string
	search   func(T) []string
}

// New builds a table over rows matched by the given search-string
// extractor. A nil extractor disables filtering (the activity table).
func New[T any](pageSize int, search func(T) []string) *Table[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Table[T]{
		pageSize: pageSize,
		page:     1,
		search:   search,
	}
}

// SetRows replaces the cache wholesale and recomputes the visible page.
func (t *Table[T]) SetRows(rows []T) {
	t.rows = rows
	t.refilter()
}

// SetFilter applies a case-insensitive substring filter and returns to
// the first page.
func (t *Table[T]) SetFilter(query string) {
	t.query = strings.ToLower(strings.TrimSpace(query))
	t.page = 1
	t.refilter()
}

func (t *Table[T]) Filter() string { return t.query }

func (t *Table[T]) refilter() {
	if t.query == "" || t.search == nil {
		t.filtered = t.rows
	} else {
		filtered := make([]T, 0, len(t.rows))
		for _, row := range t.rows {
			for _, field := range t.search(row) {
				if strings.Contains(strings.ToLower(field), t.query) {
					filtered = append(filtered, row)
					break
				}
			}
		}
		t.filtered = filtered
	}
	t.clamp()
}

func (t *Table[T]) clamp() {
	if max := t.PageCount(); t.page > max {
		t.page = max
	}
	if t.page < 1 {
		t.page = 1
	}
}

func (t *Table[T]) PageCount() int {
	pages := (len(t.filtered) + t.pageSize - 1) / t.pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

func (t *Table[T]) Page() int { return t.page }

// Rows returns the slice visible on the current page.
func (t *Table[T]) Rows() []T {
	start := (t.page - 1) * t.pageSize
	if start >= len(t.filtered) {
		return nil
	}
	end := start + t.pageSize
	if end > len(t.filtered) {
		end = len(t.filtered)
	}
	return t.filtered[start:end]
}

func (t *Table[T]) FilteredCount() int { return len(t.filtered) }

func (t *Table[T]) HasPrev() bool { return t.page > 1 }
func (t *Table[T]) HasNext() bool { return t.page < t.PageCount() }

// Next advances one page. Out-of-range navigation is a no-op; callers
// disable the control instead of wrapping.
func (t *Table[T]) Next() {
	if t.HasNext() {
		t.page++
	}
}

func (t *Table[T]) Prev() {
	if t.HasPrev() {
		t.page--
	}
}
