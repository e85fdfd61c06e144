// Package heap is a binary min-heap over elements ordered by their Dist.
package heap

import (
	"container/heap"
)

type Distancer interface {
	Dist() float64
}

type queue[T Distancer] []T

func (q queue[T]) Len() int           { return len(q) }
func (q queue[T]) Less(i, j int) bool { return q[i].Dist() < q[j].Dist() }
func (q queue[T]) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *queue[T]) Push(x any) {
	*q = append(*q, x.(T))
}

func (q *queue[T]) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	var zero T
	old[n-1] = zero
	*q = old[:n-1]
	return item
}

// Heap is not safe for concurrent use. The zero value is an empty heap.
type Heap[T Distancer] struct {
	data queue[T]
}

func New[T Distancer]() *Heap[T] {
	return &Heap[T]{}
}

func (h *Heap[T]) Push(item T) {
	heap.Push(&h.data, item)
}

// Pop removes and returns the element with the smallest Dist. Callers track
// Size; popping an empty heap panics.
func (h *Heap[T]) Pop() T {
	if len(h.data) == 0 {
		panic("heap: pop from empty heap")
	}
	return heap.Pop(&h.data).(T)
}

func (h *Heap[T]) Size() int {
	return len(h.data)
}

// Free empties the heap and drops every reference it held.
func (h *Heap[T]) Free() {
	h.data = nil
}
