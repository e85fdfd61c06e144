package maze

import (
	"errors"
	"fmt"
	"strings"
)

// FRAMES_PER_CELL is the number of sub-steps a character needs to cross one cell.
const FRAMES_PER_CELL = 5

// Cell is a single maze code as it appears in the template text.
type Cell byte

const (
	Wall        Cell = '#'
	Empty       Cell = ' '
	Pellet      Cell = '.'
	Cheese      Cell = 'o'
	PlayerStart Cell = 'P'
	GhostHome   Cell = 'G'
	NoEntry     Cell = '-'
)

var (
	ErrEmptyTemplate   = errors.New("maze template is empty")
	ErrRaggedTemplate  = errors.New("maze rows have different widths")
	ErrUnknownCell     = errors.New("unknown maze cell code")
	ErrNoGhostHome     = errors.New("maze has no ghost home cell")
	ErrBlockedStart    = errors.New("player start cell is not standable")
	ErrTooSmallForWrap = errors.New("maze must be at least 3x3")
)

type Point struct {
	X, Y int
}

// Template is the immutable maze layout. One Template is shared read-only by
// every Game created from it.
type Template struct {
	cells      [][]Cell
	width      int
	height     int
	ghostHomes []Point
	pellets    int
}

func ParseTemplate(rows []string) (*Template, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTemplate
	}
	width := len(rows[0])
	if width < 3 || len(rows) < 3 {
		return nil, ErrTooSmallForWrap
	}
	t := &Template{width: width, height: len(rows)}
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has width %d, want %d: %w", y, len(row), width, ErrRaggedTemplate)
		}
		line := make([]Cell, width)
		for x := 0; x < width; x++ {
			c := Cell(row[x])
			switch c {
			case Wall, Empty, PlayerStart, NoEntry:
			case Pellet, Cheese:
				t.pellets++
			case GhostHome:
				t.ghostHomes = append(t.ghostHomes, Point{X: x, Y: y})
			default:
				return nil, fmt.Errorf("%q at %d,%d: %w", row[x], x, y, ErrUnknownCell)
			}
			line[x] = c
		}
		t.cells = append(t.cells, line)
	}
	if len(t.ghostHomes) == 0 {
		return nil, ErrNoGhostHome
	}
	for n := 1; n <= MAX_PLAYERS; n++ {
		for _, s := range Starts(n) {
			if s.X >= t.width || s.Y >= t.height || forbidden(t.cells[s.Y][s.X], Empty, true) {
				return nil, fmt.Errorf("start %d,%d for %d players: %w", s.X, s.Y, n, ErrBlockedStart)
			}
		}
	}
	return t, nil
}

func (t *Template) Width() int  { return t.width }
func (t *Template) Height() int { return t.height }

// Pellets counts pellets and power pellets in the layout.
func (t *Template) Pellets() int { return t.pellets }

// GhostHomes returns a copy of the ghost home cells in row-major order.
func (t *Template) GhostHomes() []Point {
	return append([]Point(nil), t.ghostHomes...)
}

// Kind returns the template code at a cell, wrapping coordinates toroidally.
func (t *Template) Kind(x, y int) Cell {
	c := t.cells[mod(y, t.height)][mod(x, t.width)]
	if c == PlayerStart {
		return Empty
	}
	return c
}

// Grid is the per-round state derived from a Template: the display grid with
// pellets still present and the traversability grid used by ghost search.
type Grid struct {
	template    *Template
	display     [][]Cell
	traversable [][]bool
	pellets     int
}

func NewGrid(t *Template) *Grid {
	g := &Grid{
		template:    t,
		display:     make([][]Cell, t.height),
		traversable: make([][]bool, t.height),
		pellets:     t.pellets,
	}
	for y := 0; y < t.height; y++ {
		g.display[y] = make([]Cell, t.width)
		g.traversable[y] = make([]bool, t.width)
		for x := 0; x < t.width; x++ {
			c := t.Kind(x, y)
			g.display[y][x] = c
			g.traversable[y][x] = !forbidden(c, Empty, true)
		}
	}
	return g
}

func (g *Grid) Template() *Template { return g.template }
func (g *Grid) Width() int          { return g.template.width }
func (g *Grid) Height() int         { return g.template.height }

// Pellets is the number of pellets left in this round.
func (g *Grid) Pellets() int { return g.pellets }

// At returns the display code at a cell.
func (g *Grid) At(x, y int) Cell {
	return g.display[mod(y, g.Height())][mod(x, g.Width())]
}

// Kind returns the template code at a cell; eaten pellets do not change it.
func (g *Grid) Kind(x, y int) Cell {
	return g.template.Kind(x, y)
}

// Eat removes the pellet or power pellet at a cell. It returns what was there
// and whether anything was removed.
func (g *Grid) Eat(x, y int) (Cell, bool) {
	x, y = mod(x, g.Width()), mod(y, g.Height())
	c := g.display[y][x]
	if c != Pellet && c != Cheese {
		return c, false
	}
	g.display[y][x] = Empty
	g.pellets--
	return c, true
}

// Traversable returns a fresh copy of the traversability grid, indexed [y][x].
func (g *Grid) Traversable() [][]bool {
	out := make([][]bool, len(g.traversable))
	for y, row := range g.traversable {
		out[y] = append([]bool(nil), row...)
	}
	return out
}

// Rows renders the display grid one string per row.
func (g *Grid) Rows() []string {
	rows := make([]string, len(g.display))
	var b strings.Builder
	for y, line := range g.display {
		b.Reset()
		for _, c := range line {
			b.WriteByte(byte(c))
		}
		rows[y] = b.String()
	}
	return rows
}

// CellDistance is the toroidal distance between two cells.
func (g *Grid) CellDistance(x1, y1, x2, y2 int) float64 {
	return Distance(g.Width(), g.Height(), x1, y1, x2, y2)
}

// PixelDistance is the toroidal distance between two sub-cell positions.
func (g *Grid) PixelDistance(x1, y1, x2, y2 int) float64 {
	return Distance(g.Width()*FRAMES_PER_CELL, g.Height()*FRAMES_PER_CELL, x1, y1, x2, y2)
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}

func floorDiv(a, n int) int {
	if a < 0 {
		return -((-a + n - 1) / n)
	}
	return a / n
}
