package strand

import (
	"slices"
	"sort"
)

type lesser[E any] interface {
	less(v E) bool
}

// priorityqueue is an ordered queue with binary-search insertion. It keeps
// its elements fully sorted, which makes peeking the front and removing an
// element by identity cheap; both are needed for alarm scheduling.
type priorityqueue[E interface {
	lesser[E]
	comparable
}] struct {
	s []E
}

func (q *priorityqueue[E]) Empty() bool {
	return len(q.s) == 0
}

func (q *priorityqueue[E]) Push(v E) {
	i := sort.Search(len(q.s), func(i int) bool { return v.less(q.s[i]) })
	q.s = slices.Insert(q.s, i, v)
}

func (q *priorityqueue[E]) Peek() E {
	return q.s[0]
}

func (q *priorityqueue[E]) Pop() E {
	var zero E
	v := q.s[0]
	copy(q.s, q.s[1:])
	q.s[len(q.s)-1] = zero
	q.s = q.s[:len(q.s)-1]
	return v
}

func (q *priorityqueue[E]) Remove(v E) bool {
	i := slices.Index(q.s, v)
	if i == -1 {
		return false
	}
	q.s = slices.Delete(q.s, i, i+1)
	return true
}
