package heap

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	dist float64
	name string
}

func (i item) Dist() float64 { return i.dist }

func TestPopReturnsMinimum(t *testing.T) {
	h := New[item]()
	for _, d := range []float64{5, 1, 4, 2, 3} {
		h.Push(item{dist: d})
	}
	require.Equal(t, 5, h.Size())
	for want := 1.0; want <= 5; want++ {
		assert.Equal(t, want, h.Pop().dist)
	}
	assert.Equal(t, 0, h.Size())
}

func TestInterleavedPushPop(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	h := New[item]()
	var held []float64
	pushes, pops := 0, 0
	for i := 0; i < 2000; i++ {
		if len(held) == 0 || rnd.Intn(3) > 0 {
			d := float64(rnd.Intn(100))
			h.Push(item{dist: d})
			held = append(held, d)
			pushes++
		} else {
			sort.Float64s(held)
			got := h.Pop()
			assert.Equal(t, held[0], got.dist)
			held = held[1:]
			pops++
		}
		require.Equal(t, pushes-pops, h.Size())
	}
}

func TestDistinctHeapsHaveDistinctData(t *testing.T) {
	a := New[item]()
	b := New[item]()
	a.Push(item{dist: 1, name: "a"})
	assert.Equal(t, 1, a.Size())
	assert.Equal(t, 0, b.Size())

	b.Push(item{dist: 0, name: "b"})
	assert.Equal(t, "a", a.Pop().name)
	assert.Equal(t, "b", b.Pop().name)
}

func TestFree(t *testing.T) {
	h := &Heap[item]{}
	h.Push(item{dist: 3})
	h.Push(item{dist: 2})
	h.Free()
	assert.Equal(t, 0, h.Size())
	assert.Panics(t, func() { h.Pop() })

	h.Push(item{dist: 9})
	assert.Equal(t, 9.0, h.Pop().dist)
}
