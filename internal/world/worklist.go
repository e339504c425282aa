package world

import (
	"github.com/zyedidia/generic/queue"
	"github.com/zyedidia/generic/stack"
)

// worklist holds the indexes of placed cells that still need expanding.
type worklist interface {
	push(indexes []int)
	pop() int
	len() int
}

func newWorklist(t Traversal) worklist {
	if t == TraversalBreadth {
		return &fifoList{q: queue.New[int]()}
	}
	return &lifoList{s: stack.New[int]()}
}

// lifoList pushes siblings in reverse so the first sibling is expanded first and
// its whole subtree completes before the second is popped. This is the order a
// recursive expand-then-recurse walk visits cells in.
type lifoList struct {
	s *stack.Stack[int]
	n int
}

func (l *lifoList) push(indexes []int) {
	for i := len(indexes) - 1; i >= 0; i-- {
		l.s.Push(indexes[i])
		l.n++
	}
}

func (l *lifoList) pop() int {
	l.n--
	return l.s.Pop()
}

func (l *lifoList) len() int {
	return l.n
}

type fifoList struct {
	q *queue.Queue[int]
	n int
}

func (l *fifoList) push(indexes []int) {
	for _, i := range indexes {
		l.q.Enqueue(i)
		l.n++
	}
}

func (l *fifoList) pop() int {
	l.n--
	return l.q.Dequeue()
}

func (l *fifoList) len() int {
	return l.n
}
