package game

import (
	"math/rand"

	"github.com/zucenko/pacroom/maze"
	"github.com/zucenko/pacroom/model"
)

type Ghost struct {
	x, y         int
	direction    maze.Direction
	difficulty   float64
	cheeseEffect int
}

var _ model.Serializer[model.GhostState] = (*Ghost)(nil)

func (gh *Ghost) Position() (int, int) { return gh.x, gh.y }

// Vulnerable ghosts are edible and move at half speed.
func (gh *Ghost) Vulnerable() bool { return gh.cheeseEffect > 0 }

func (gh *Ghost) countdown() {
	if gh.cheeseEffect > 0 {
		gh.cheeseEffect--
	}
}

func (gh *Ghost) place(home maze.Point) {
	gh.x, gh.y = home.X*maze.FRAMES_PER_CELL, home.Y*maze.FRAMES_PER_CELL
	gh.direction = maze.UP
	gh.cheeseEffect = 0
}

// inHouse reports whether the ghost stands in the ghost home or its door.
func (gh *Ghost) inHouse(g *maze.Grid) bool {
	k := g.Kind(maze.CellOf(gh.x, gh.y))
	return k == maze.GhostHome || k == maze.NoEntry
}

// randomWalk picks uniformly among the open neighbours, never reversing when
// there is another way to go.
func (gh *Ghost) randomWalk(g *maze.Grid, rnd *rand.Rand) maze.Direction {
	cx, cy := maze.CellOf(gh.x, gh.y)
	choices := make([]maze.Direction, 0, 4)
	for _, d := range maze.DIRECTIONS {
		dx, dy := d.Delta()
		if !g.Forbidden(cx+dx, cy+dy, cx, cy, false) {
			choices = append(choices, d)
		}
	}
	if len(choices) > 1 {
		back := gh.direction.Opposite()
		for i, d := range choices {
			if d == back {
				choices = append(choices[:i], choices[i+1:]...)
				break
			}
		}
	}
	if len(choices) == 0 {
		return gh.direction
	}
	return choices[rnd.Intn(len(choices))]
}

func (gh *Ghost) Serialize() model.GhostState {
	return model.GhostState{X: gh.x, Y: gh.y, CheeseEffect: gh.cheeseEffect}
}
