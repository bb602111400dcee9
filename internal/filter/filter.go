// Package filter narrows and orders the dashboard's collections. Each
// collection keeps a permutation of visible indices together with the fuzzy
// match positions of its primary field, so rendering never re-runs the
// matcher.
package filter

import (
	"sort"

	"github.com/sahilm/fuzzy"
)

// Match scores text against a non-empty query. Positions are rune indices of
// the matched characters. ok is false when the query is not a subsequence of
// text (case-insensitively).
func Match(query, text string) (score int, positions []int, ok bool) {
	if query == "" {
		return 0, nil, true
	}
	matches := fuzzy.Find(query, []string{text})
	if len(matches) == 0 {
		return 0, nil, false
	}
	m := matches[0]
	return m.Score, runePositions(text, m.MatchedIndexes), true
}

// runePositions converts byte offsets into rune indices.
func runePositions(text string, offsets []int) []int {
	if len(offsets) == 0 {
		return nil
	}
	out := make([]int, 0, len(offsets))
	next := 0
	r := 0
	for b := range text {
		for next < len(offsets) && offsets[next] == b {
			out = append(out, r)
			next++
		}
		r++
		if next == len(offsets) {
			break
		}
	}
	return out
}

// FieldsFunc returns the searchable fields of a row. The first field is the
// primary one whose match positions are kept for highlighting.
type FieldsFunc[T any] func(T) []string

// Apply filters items by query. It returns the surviving indices ordered by
// descending score (ties keep collection order) and, parallel to them, the
// primary field's match positions. An empty query returns the identity
// permutation and no highlights.
func Apply[T any](items []T, query string, fields FieldsFunc[T]) ([]int, [][]int) {
	if query == "" {
		idx := make([]int, len(items))
		for i := range idx {
			idx[i] = i
		}
		return idx, nil
	}

	type hit struct {
		index     int
		score     int
		highlight []int
	}
	var hits []hit
	for i, item := range items {
		best, matched := 0, false
		var highlight []int
		for f, text := range fields(item) {
			score, pos, ok := Match(query, text)
			if !ok {
				continue
			}
			if f == 0 {
				highlight = pos
			}
			if !matched || score > best {
				best = score
			}
			matched = true
		}
		if matched {
			hits = append(hits, hit{index: i, score: best, highlight: highlight})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].score > hits[b].score
	})

	idx := make([]int, len(hits))
	hl := make([][]int, len(hits))
	for i, h := range hits {
		idx[i] = h.index
		hl[i] = h.highlight
	}
	return idx, hl
}
