package filter

import (
	"sort"
	"strings"
)

// LoadState tells whether a collection is waiting for fresh data.
type LoadState int

const (
	Loading LoadState = iota
	Loaded
)

func (s LoadState) String() string {
	if s == Loading {
		return "loading"
	}
	return "loaded"
}

// CompareFunc orders two rows: negative, zero or positive.
type CompareFunc[T any] func(a, b T) int

// Collection is one data domain of the dashboard: the raw rows, the visible
// permutation, cached highlights and the selection cursor.
//
// Filtered holds indices into Items. Highlights is either nil (no query) or
// parallel to Filtered. Selected indexes Filtered and is 0 when it is empty.
type Collection[T any] struct {
	Items      []T
	State      LoadState
	Filtered   []int
	Highlights [][]int
	Selected   int

	fields FieldsFunc[T]
	order  CompareFunc[T]
	desc   bool
}

// NewCollection creates an empty collection in the Loading state.
func NewCollection[T any](fields FieldsFunc[T]) *Collection[T] {
	return &Collection[T]{State: Loading, fields: fields}
}

// Replace swaps in a new set of rows wholesale and recomputes the view.
func (c *Collection[T]) Replace(items []T, query string) {
	c.Items = items
	c.State = Loaded
	c.Refilter(query)
}

// Refilter recomputes the visible permutation and highlights for query,
// re-applies the current order and clamps the selection.
func (c *Collection[T]) Refilter(query string) {
	c.Filtered, c.Highlights = Apply(c.Items, query, c.fields)
	c.applyOrder()
	c.Clamp()
}

// SetOrder sorts the visible rows with cmp (nil restores match order on the
// next Refilter). The order sticks across later refilters.
func (c *Collection[T]) SetOrder(cmp CompareFunc[T], descending bool) {
	c.order = cmp
	c.desc = descending
	c.applyOrder()
	c.Clamp()
}

// Sorted reports whether a column order is in effect.
func (c *Collection[T]) Sorted() bool {
	return c.order != nil
}

// applyOrder permutes Filtered and Highlights in lockstep.
func (c *Collection[T]) applyOrder() {
	if c.order == nil || len(c.Filtered) < 2 {
		return
	}
	perm := make([]int, len(c.Filtered))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		r := c.order(c.Items[c.Filtered[perm[a]]], c.Items[c.Filtered[perm[b]]])
		if c.desc {
			return r > 0
		}
		return r < 0
	})

	filtered := make([]int, len(perm))
	var highlights [][]int
	if c.Highlights != nil {
		highlights = make([][]int, len(perm))
	}
	for i, p := range perm {
		filtered[i] = c.Filtered[p]
		if highlights != nil {
			highlights[i] = c.Highlights[p]
		}
	}
	c.Filtered = filtered
	c.Highlights = highlights
}

// Len returns the number of visible rows.
func (c *Collection[T]) Len() int {
	return len(c.Filtered)
}

// At returns the visible row at position i.
func (c *Collection[T]) At(i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(c.Filtered) {
		return zero, false
	}
	return c.Items[c.Filtered[i]], true
}

// Current returns the selected row.
func (c *Collection[T]) Current() (T, bool) {
	return c.At(c.Selected)
}

// Highlight returns the cached match positions for visible row i.
func (c *Collection[T]) Highlight(i int) []int {
	if i < 0 || i >= len(c.Highlights) {
		return nil
	}
	return c.Highlights[i]
}

// MoveUp moves the cursor up one row, stopping at the top.
func (c *Collection[T]) MoveUp() {
	if c.Selected > 0 {
		c.Selected--
	}
}

// MoveDown moves the cursor down one row, stopping at the bottom.
func (c *Collection[T]) MoveDown() {
	if c.Selected+1 < len(c.Filtered) {
		c.Selected++
	}
}

// PageDown moves the cursor n rows down, stopping at the bottom.
func (c *Collection[T]) PageDown(n int) {
	c.Selected += n
	c.Clamp()
}

// PageUp moves the cursor n rows up, stopping at the top.
func (c *Collection[T]) PageUp(n int) {
	c.Selected -= n
	c.Clamp()
}

// Select moves the cursor to i, clamped.
func (c *Collection[T]) Select(i int) {
	c.Selected = i
	c.Clamp()
}

// Clamp keeps the cursor inside the visible rows.
func (c *Collection[T]) Clamp() {
	switch {
	case len(c.Filtered) == 0 || c.Selected < 0:
		c.Selected = 0
	case c.Selected >= len(c.Filtered):
		c.Selected = len(c.Filtered) - 1
	}
}

// CompareFold compares strings case-insensitively.
func CompareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// CompareBool orders false before true.
func CompareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
