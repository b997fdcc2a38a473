package memory

import "sort"

type row[T any] struct {
	seq int64
	val T
}

// table is an insertion-ordered map. It is not safe on its own;
// Store.mu guards every table.
type table[T any] struct {
	rows map[string]row[T]
}

func newTable[T any]() table[T] {
	return table[T]{rows: make(map[string]row[T])}
}

func (t table[T]) get(id string) (T, bool) {
	r, ok := t.rows[id]
	return r.val, ok
}

// put inserts or overwrites; an overwrite keeps the original position
func (t table[T]) put(id string, seq int64, v T) {
	if r, ok := t.rows[id]; ok {
		seq = r.seq
	}
	t.rows[id] = row[T]{seq: seq, val: v}
}

func (t table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

// removeOwned drops every row whose owner is userID
func (t table[T]) removeOwned(userID string, owner func(T) string) {
	for id, r := range t.rows {
		if owner(r.val) == userID {
			delete(t.rows, id)
		}
	}
}

func (t table[T]) filter(keep func(T) bool) []T {
	matched := make([]row[T], 0)
	for _, r := range t.rows {
		if keep == nil || keep(r.val) {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })

	out := make([]T, len(matched))
	for i, r := range matched {
		out[i] = r.val
	}
	return out
}

func (t table[T]) first(match func(T) bool) (T, bool) {
	matched := t.filter(match)
	if len(matched) == 0 {
		var zero T
		return zero, false
	}
	return matched[0], true
}
