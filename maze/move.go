package maze

import (
	"fmt"
	"math"
)

type Direction int

const (
	LEFT Direction = iota
	UP
	RIGHT
	DOWN
)

// NONE marks the absence of a direction, e.g. when a search finds no path.
const NONE Direction = -1

var DIRECTIONS = [4]Direction{LEFT, UP, RIGHT, DOWN}

func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

func (d Direction) Delta() (int, int) {
	switch d {
	case LEFT:
		return -1, 0
	case UP:
		return 0, -1
	case RIGHT:
		return 1, 0
	case DOWN:
		return 0, 1
	default:
		return 0, 0
	}
}

func (d Direction) Valid() bool {
	return d >= LEFT && d <= DOWN
}

func (d Direction) String() string {
	switch d {
	case LEFT:
		return "LEFT"
	case UP:
		return "UP"
	case RIGHT:
		return "RIGHT"
	case DOWN:
		return "DOWN"
	default:
		return fmt.Sprintf("n/a:%d", int(d))
	}
}

// forbidden reports whether a mover standing on a from cell may not enter
// dest. Ghosts inside the house may leave through the door; nothing outside
// may enter it.
func forbidden(dest, from Cell, player bool) bool {
	switch {
	case dest == Wall:
		return true
	case player:
		return dest == GhostHome || dest == NoEntry
	case from == GhostHome:
		return false
	case from == NoEntry:
		return dest == GhostHome
	default:
		return dest == GhostHome || dest == NoEntry
	}
}

// Forbidden reports whether a mover on cell (fromX, fromY) may not enter
// cell (x, y).
func (g *Grid) Forbidden(x, y, fromX, fromY int, player bool) bool {
	return forbidden(g.Kind(x, y), g.Kind(fromX, fromY), player)
}

// CellOf returns the cell a sub-cell position belongs to.
func CellOf(x, y int) (int, int) {
	return floorDiv(x, FRAMES_PER_CELL), floorDiv(y, FRAMES_PER_CELL)
}

// Centered reports whether a position sits exactly on a cell.
func Centered(x, y int) bool {
	return x%FRAMES_PER_CELL == 0 && y%FRAMES_PER_CELL == 0
}

// MoveCharacter advances a position by one sub-step in direction d. The move
// is rejected, returning the original position, when the cell being entered
// is forbidden for the mover.
func MoveCharacter(g *Grid, x, y int, d Direction, player bool) (int, int) {
	dx, dy := d.Delta()
	if dx == 0 && dy == 0 {
		return x, y
	}
	nx, ny := x+dx, y+dy
	cx, cy := leading(nx, dx), leading(ny, dy)
	fx, fy := CellOf(x, y)
	if g.Forbidden(cx, cy, fx, fy, player) {
		return x, y
	}
	return mod(nx, g.Width()*FRAMES_PER_CELL), mod(ny, g.Height()*FRAMES_PER_CELL)
}

// leading is the cell index the front edge of a mover occupies on one axis.
func leading(v, delta int) int {
	if delta > 0 {
		return floorDiv(v+FRAMES_PER_CELL-1, FRAMES_PER_CELL)
	}
	return floorDiv(v, FRAMES_PER_CELL)
}

// Distance is the Euclidean distance on a w×h torus: each axis uses the
// smallest of the direct and the two wrapped deltas.
func Distance(w, h, x1, y1, x2, y2 int) float64 {
	dx := float64(axis(x1-x2, w))
	dy := float64(axis(y1-y2, h))
	return math.Sqrt(dx*dx + dy*dy)
}

func axis(d, size int) int {
	best := abs(d)
	if v := abs(d + size); v < best {
		best = v
	}
	if v := abs(d - size); v < best {
		best = v
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
