package game

import (
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"

	"github.com/zucenko/pacroom/maze"
	"github.com/zucenko/pacroom/model"
	"github.com/zucenko/pacroom/schedule"
)

// COLLISION is the largest sub-cell distance at which two characters touch.
const COLLISION = maze.FRAMES_PER_CELL / 2.0

// Room is what a Game needs from the room that owns it.
type Room interface {
	// Broadcast sends an event to every current member of the room.
	Broadcast(event string, data any)
	// NotifyEnd is called once, when no player is left alive.
	NotifyEnd(final []model.PlayerState)
	// NotifyHighScore is called the first time a player's score reaches
	// the high score threshold.
	NotifyHighScore(slot int, score int)
}

// Game is the authoritative simulation of one room. All methods must be
// called from the scheduler's goroutine.
type Game struct {
	template  *maze.Template
	grid      *maze.Grid
	room      Room
	scheduler schedule.Scheduler
	rnd       *rand.Rand
	settings  Settings

	players []*Player
	ghosts  [GHOSTS]*Ghost
	round   int
	ready   mapset.Set[int]
	started time.Time
	tick    schedule.Task
	over    bool

	log *log.Entry
}

func New(t *maze.Template, players int, room Room, scheduler schedule.Scheduler, rnd *rand.Rand, settings Settings) *Game {
	if players < 1 || players > maze.MAX_PLAYERS {
		panic(fmt.Sprintf("game for %d players", players))
	}
	g := &Game{
		template:  t,
		room:      room,
		scheduler: scheduler,
		rnd:       rnd,
		settings:  settings,
		players:   make([]*Player, players),
		ready:     mapset.New[int](),
		log:       log.WithField("players", players),
	}
	for i := range g.players {
		g.players[i] = newPlayer(i, settings.Lifes)
	}
	for i := range g.ghosts {
		g.ghosts[i] = &Ghost{}
	}
	return g
}

func (g *Game) Round() int             { return g.round }
func (g *Game) Grid() *maze.Grid       { return g.grid }
func (g *Game) Players() []*Player     { return g.players }
func (g *Game) Ghosts() [GHOSTS]*Ghost { return g.ghosts }
func (g *Game) Running() bool          { return g.tick != nil }
func (g *Game) Over() bool             { return g.over }
func (g *Game) solo() bool             { return len(g.players) == 1 }

// Refresh starts a round: a fresh maze when the last one was cleared, every
// character back on its start cell, and a ready event that waits for every
// slot to call Start. With nobody left alive the game ends instead.
func (g *Game) Refresh() {
	g.cancelTick()
	if g.grid == nil || g.grid.Pellets() == 0 {
		g.round++
		g.grid = maze.NewGrid(g.template)
		g.log = g.log.WithField("round", g.round)
		g.log.Info("Game.Refresh new maze")
	}
	starts := maze.Starts(len(g.players))
	for i, p := range g.players {
		p.place(starts[i])
		g.grid.Eat(starts[i].X, starts[i].Y)
	}
	diff := difficulty(g.round)
	for _, gh := range g.ghosts {
		gh.difficulty = diff
		g.placeGhost(gh)
	}
	g.ready = mapset.New[int]()

	if !g.anyAlive() {
		g.end()
		return
	}
	g.room.Broadcast(model.EV_READY, model.Ready{
		Map: g.grid.Rows(),
		Constants: model.Constants{
			FPS:                  g.settings.FPS,
			FRAMES_PER_CELL:      maze.FRAMES_PER_CELL,
			CHEESE_EFFECT_FRAMES: g.settings.CheeseEffectFrames,
		},
	})
}

// Start records that a slot is ready. The first tick is scheduled once every
// slot is.
func (g *Game) Start(slot int) {
	if g.over || slot < 0 || slot >= len(g.players) {
		return
	}
	g.ready.Put(slot)
	if g.tick != nil || g.ready.Size() < len(g.players) || !g.anyAlive() {
		return
	}
	if g.started.IsZero() {
		g.started = g.scheduler.Now()
	}
	g.log.Info("Game.Start all slots ready")
	g.schedule()
}

func (g *Game) SetPacmanDirection(d maze.Direction, slot int) {
	if g.over || !d.Valid() || slot < 0 || slot >= len(g.players) {
		return
	}
	g.players[slot].setNextDirection(d)
}

// Quit stops the game for good and tells the remaining members.
func (g *Game) Quit() {
	if g.over {
		return
	}
	g.over = true
	g.cancelTick()
	g.log.Info("Game.Quit")
	g.room.Broadcast(model.EV_END_OF_GAME, model.EndOfGame{Pacmans: g.pacmans()})
}

func (g *Game) schedule() {
	g.tick = g.scheduler.After(g.settings.TickInterval(), g.step)
}

func (g *Game) cancelTick() {
	if g.tick != nil {
		g.tick.Cancel()
		g.tick = nil
	}
}

func (g *Game) end() {
	g.over = true
	g.cancelTick()
	final := g.pacmans()
	g.log.Info("Game.end nobody left alive")
	g.room.Broadcast(model.EV_END_OF_GAME, model.EndOfGame{Pacmans: final})
	g.room.NotifyEnd(final)
}

type tickEvents struct {
	eat    []model.Cell
	points []model.Points
}

// step is one tick: timers, collisions, pellets, then movement and the update.
func (g *Game) step() {
	g.tick = nil
	ev := tickEvents{eat: make([]model.Cell, 0), points: make([]model.Points, 0)}
	for _, p := range g.players {
		p.countdown()
	}
	for _, gh := range g.ghosts {
		gh.countdown()
	}

	if g.ghostCollisions(&ev) {
		return
	}
	if !g.solo() {
		g.playerCollisions(&ev)
	}
	if g.eatPellets(&ev) {
		return
	}
	if !g.solo() && !g.anyAlive() {
		g.Refresh()
		return
	}

	for _, p := range g.players {
		if p.Active() {
			p.step(g.grid)
		}
	}
	for _, gh := range g.ghosts {
		g.moveGhost(gh)
	}
	g.room.Broadcast(model.EV_UPDATE, model.Update{
		Elapsed: g.scheduler.Now().Sub(g.started).Milliseconds(),
		Eat:     ev.eat,
		Points:  ev.points,
		Pacmans: g.pacmans(),
		Ghosts:  g.ghostStates(),
	})
	g.schedule()
}

// ghostCollisions reports true when a solo death ended the round.
func (g *Game) ghostCollisions(ev *tickEvents) bool {
	for _, p := range g.players {
		if !p.Active() {
			continue
		}
		for _, gh := range g.ghosts {
			if g.grid.PixelDistance(p.x, p.y, gh.x, gh.y) > COLLISION {
				continue
			}
			if p.cheesePower > 0 && gh.Vulnerable() {
				g.credit(ev, p, GHOST_POINTS, model.POINTS_GHOST, gh.x, gh.y)
				p.combo++
				g.placeGhost(gh)
				continue
			}
			if g.solo() {
				p.lifes--
				g.log.WithField("lifes", p.lifes).Info("Game pacman caught")
				g.Refresh()
				return true
			}
			g.kill(p)
			break
		}
	}
	return false
}

func (g *Game) playerCollisions(ev *tickEvents) {
	for i, a := range g.players {
		for _, b := range g.players[i+1:] {
			if !a.Active() || !b.Active() {
				continue
			}
			if g.grid.PixelDistance(a.x, a.y, b.x, b.y) > COLLISION {
				continue
			}
			switch {
			case a.cheesePower > 0 && b.cheeseEffect > 0:
				g.devour(ev, a, b)
			case b.cheesePower > 0 && a.cheeseEffect > 0:
				g.devour(ev, b, a)
			default:
				g.bounce(a, b)
			}
		}
	}
}

func (g *Game) devour(ev *tickEvents, hunter, prey *Player) {
	g.credit(ev, hunter, PACMAN_POINTS, model.POINTS_PACMAN, prey.x, prey.y)
	hunter.combo++
	g.kill(prey)
}

// bounce turns two touching players away from each other: apart vertically
// on a shared column, apart horizontally on a shared row, otherwise back the
// way each came.
func (g *Game) bounce(a, b *Player) {
	switch {
	case a.x == b.x:
		if before(a.y, b.y, g.grid.Height()*maze.FRAMES_PER_CELL) {
			a.setNextDirection(maze.UP)
			b.setNextDirection(maze.DOWN)
		} else {
			a.setNextDirection(maze.DOWN)
			b.setNextDirection(maze.UP)
		}
	case a.y == b.y:
		if before(a.x, b.x, g.grid.Width()*maze.FRAMES_PER_CELL) {
			a.setNextDirection(maze.LEFT)
			b.setNextDirection(maze.RIGHT)
		} else {
			a.setNextDirection(maze.RIGHT)
			b.setNextDirection(maze.LEFT)
		}
	default:
		a.setNextDirection(a.direction.Opposite())
		b.setNextDirection(b.direction.Opposite())
	}
}

// before reports whether a lies on the short side before b on a ring.
func before(a, b, size int) bool {
	d := wrap(b-a, size)
	return d > 0 && d <= size/2
}

// kill takes a life in a multiplayer game. A survivor goes back to its start
// cell and sits out KilledRecentlyFrames ticks.
func (g *Game) kill(p *Player) {
	p.lifes--
	p.combo = 0
	p.cheesePower = 0
	p.cheeseEffect = 0
	g.log.WithFields(log.Fields{"slot": p.slot, "lifes": p.lifes}).Info("Game pacman killed")
	if !p.Alive() {
		return
	}
	p.place(maze.Starts(len(g.players))[p.slot])
	p.killedRecently = g.settings.KilledRecentlyFrames
}

// eatPellets reports true when the last pellet went and the round restarted.
func (g *Game) eatPellets(ev *tickEvents) bool {
	for _, p := range g.players {
		if !p.Active() || !maze.Centered(p.x, p.y) {
			continue
		}
		cx, cy := maze.CellOf(p.x, p.y)
		c, ok := g.grid.Eat(cx, cy)
		if !ok {
			continue
		}
		ev.eat = append(ev.eat, model.Cell{X: cx, Y: cy})
		if c == maze.Cheese {
			g.credit(ev, p, CHEESE_POINTS, model.POINTS_CHEESE, p.x, p.y)
			g.cheese(p)
		} else {
			g.credit(ev, p, PELLET_POINTS, model.POINTS_PELLET, p.x, p.y)
		}
		if g.grid.Pellets() == 0 {
			g.log.Info("Game maze cleared")
			g.Refresh()
			return true
		}
	}
	return false
}

// cheese arms the eater and, at the same moment, makes every other player and
// every ghost vulnerable.
func (g *Game) cheese(eater *Player) {
	frames := g.settings.CheeseEffectFrames
	eater.cheesePower = frames
	eater.cheeseEffect = 0
	for _, p := range g.players {
		if p != eater && p.Alive() {
			p.cheeseEffect = frames
		}
	}
	for _, gh := range g.ghosts {
		gh.cheeseEffect = frames
	}
}

func (g *Game) credit(ev *tickEvents, p *Player, base int, kind string, x, y int) {
	amount := p.award(base)
	ev.points = append(ev.points, model.Points{Type: kind, X: x, Y: y, Amount: amount, Index: p.slot})
	threshold := g.settings.HighScoreThreshold
	if threshold > 0 && !p.highScored && p.score >= threshold {
		p.highScored = true
		g.room.NotifyHighScore(p.slot, p.score)
	}
}

func (g *Game) moveGhost(gh *Ghost) {
	if gh.Vulnerable() && gh.cheeseEffect%2 == 1 {
		return
	}
	if maze.Centered(gh.x, gh.y) {
		gh.direction = g.ghostDirection(gh)
	}
	gh.x, gh.y = maze.MoveCharacter(g.grid, gh.x, gh.y, gh.direction, false)
}

func (g *Game) ghostDirection(gh *Ghost) maze.Direction {
	if gh.Vulnerable() || gh.inHouse(g.grid) || g.rnd.Float64() >= gh.difficulty {
		return gh.randomWalk(g.grid, g.rnd)
	}
	target := g.nearestPlayer(gh)
	if target == nil {
		return gh.randomWalk(g.grid, g.rnd)
	}
	open := g.grid.Traversable()
	for _, other := range g.ghosts {
		ox, oy := maze.CellOf(other.x, other.y)
		open[oy][ox] = false
	}
	sx, sy := maze.CellOf(gh.x, gh.y)
	tx, ty := maze.CellOf(target.x, target.y)
	if d := Search(g.grid, open, sx, sy, tx, ty); d != maze.NONE {
		return d
	}
	return gh.randomWalk(g.grid, g.rnd)
}

// nearestPlayer picks the closest living player, the lowest slot on ties.
func (g *Game) nearestPlayer(gh *Ghost) *Player {
	var best *Player
	bestDist := 0.0
	for _, p := range g.players {
		if !p.Alive() {
			continue
		}
		d := g.grid.PixelDistance(gh.x, gh.y, p.x, p.y)
		if best == nil || d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

func (g *Game) placeGhost(gh *Ghost) {
	homes := g.template.GhostHomes()
	gh.place(homes[g.rnd.Intn(len(homes))])
}

func (g *Game) anyAlive() bool {
	for _, p := range g.players {
		if p.Alive() {
			return true
		}
	}
	return false
}

func (g *Game) pacmans() []model.PlayerState {
	out := make([]model.PlayerState, len(g.players))
	for i, p := range g.players {
		out[i] = p.Serialize()
	}
	return out
}

func (g *Game) ghostStates() []model.GhostState {
	out := make([]model.GhostState, len(g.ghosts))
	for i, gh := range g.ghosts {
		out[i] = gh.Serialize()
	}
	return out
}
