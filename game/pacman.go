package game

import (
	"github.com/zucenko/pacroom/maze"
	"github.com/zucenko/pacroom/model"
)

// Player is one pacman, bound to a room slot for the whole game.
type Player struct {
	slot           int
	x, y           int
	direction      maze.Direction
	nextDirection  maze.Direction
	lifes          int
	score          int
	combo          int
	cheesePower    int
	cheeseEffect   int
	killedRecently int
	highScored     bool
}

var _ model.Serializer[model.PlayerState] = (*Player)(nil)

func newPlayer(slot, lifes int) *Player {
	return &Player{slot: slot, lifes: lifes}
}

func (p *Player) Alive() bool { return p.lifes >= 0 }

// Active players take part in collisions, eat pellets and move.
func (p *Player) Active() bool { return p.Alive() && p.killedRecently == 0 }

func (p *Player) Score() int { return p.score }

func (p *Player) Position() (int, int) { return p.x, p.y }

func (p *Player) place(s maze.Start) {
	p.x, p.y = s.X*maze.FRAMES_PER_CELL, s.Y*maze.FRAMES_PER_CELL
	p.direction, p.nextDirection = s.Direction, s.Direction
	p.combo = 0
	p.cheesePower = 0
	p.cheeseEffect = 0
	p.killedRecently = 0
}

// setNextDirection buffers a turn. A reversal needs no free cell and no
// alignment, so it applies at once.
func (p *Player) setNextDirection(d maze.Direction) {
	p.nextDirection = d
	if d == p.direction.Opposite() {
		p.direction = d
	}
}

// award adds base points scaled by the combo multiplier and returns them.
func (p *Player) award(base int) int {
	amount := base * (1 + p.combo)
	p.score += amount
	return amount
}

// countdown runs the per-tick timers at the start of a tick.
func (p *Player) countdown() {
	if p.cheesePower > 0 {
		p.cheesePower--
		if p.cheesePower == 0 {
			p.combo = 0
		}
	}
	if p.cheeseEffect > 0 {
		p.cheeseEffect--
	}
	if p.killedRecently > 0 {
		p.killedRecently--
	}
}

// step turns when aligned and the turn is open, then moves one sub-step.
func (p *Player) step(g *maze.Grid) {
	if p.nextDirection != p.direction && maze.Centered(p.x, p.y) {
		cx, cy := maze.CellOf(p.x, p.y)
		dx, dy := p.nextDirection.Delta()
		if !g.Forbidden(cx+dx, cy+dy, cx, cy, true) {
			p.direction = p.nextDirection
		}
	}
	p.x, p.y = maze.MoveCharacter(g, p.x, p.y, p.direction, true)
}

func (p *Player) Serialize() model.PlayerState {
	return model.PlayerState{
		X:              p.x,
		Y:              p.y,
		Direction:      int(p.direction),
		Combo:          p.combo,
		CheesePower:    p.cheesePower,
		CheeseEffect:   p.cheeseEffect,
		Score:          p.score,
		KilledRecently: p.killedRecently,
		Lifes:          p.lifes,
	}
}
