package game

import (
	"github.com/zucenko/pacroom/heap"
	"github.com/zucenko/pacroom/maze"
)

type searchNode struct {
	x, y int
	real float64
	dist float64
	// first is the step taken out of the start cell to reach this node.
	first maze.Direction
}

func (n searchNode) Dist() float64 { return n.dist }

// Search returns the first step on a short path from cell (sx, sy) to cell
// (tx, ty), or maze.NONE when there is none. open is consumed: every cell the
// search generates is marked false, so callers pass a private copy.
func Search(g *maze.Grid, open [][]bool, sx, sy, tx, ty int) maze.Direction {
	if sx == tx && sy == ty {
		return maze.NONE
	}
	w, h := g.Width(), g.Height()
	q := heap.New[searchNode]()
	defer q.Free()

	open[sy][sx] = false
	q.Push(searchNode{x: sx, y: sy, dist: g.CellDistance(sx, sy, tx, ty), first: maze.NONE})
	last := maze.NONE
	for expanded := 0; q.Size() > 0; expanded++ {
		if expanded >= SEARCH_LIMIT {
			return last
		}
		cur := q.Pop()
		last = cur.first
		for _, d := range maze.DIRECTIONS {
			dx, dy := d.Delta()
			nx, ny := wrap(cur.x+dx, w), wrap(cur.y+dy, h)
			if !open[ny][nx] {
				continue
			}
			open[ny][nx] = false
			first := cur.first
			if first == maze.NONE {
				first = d
			}
			if nx == tx && ny == ty {
				return first
			}
			real := cur.real + 1
			q.Push(searchNode{x: nx, y: ny, real: real, dist: real + g.CellDistance(nx, ny, tx, ty), first: first})
		}
		if q.Size() == 1 {
			return q.Pop().first
		}
	}
	return maze.NONE
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
