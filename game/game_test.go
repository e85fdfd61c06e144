package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zucenko/pacroom/maze"
	"github.com/zucenko/pacroom/model"
	"github.com/zucenko/pacroom/schedule"
)

type recorder struct {
	events []string
	data   []any
	ended  [][]model.PlayerState
	high   [][2]int
}

func (r *recorder) Broadcast(event string, data any) {
	r.events = append(r.events, event)
	r.data = append(r.data, data)
}

func (r *recorder) NotifyEnd(final []model.PlayerState) { r.ended = append(r.ended, final) }

func (r *recorder) NotifyHighScore(slot int, score int) {
	r.high = append(r.high, [2]int{slot, score})
}

func (r *recorder) count(event string) int {
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

func (r *recorder) lastUpdate(t *testing.T) model.Update {
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i] == model.EV_UPDATE {
			return r.data[i].(model.Update)
		}
	}
	require.FailNow(t, "no update broadcast")
	return model.Update{}
}

func newTestGame(t *testing.T, players int, settings Settings) (*Game, *recorder, *schedule.Manual) {
	t.Helper()
	room := &recorder{}
	clock := schedule.NewManual()
	g := New(maze.DefaultTemplate(), players, room, clock, rand.New(rand.NewSource(7)), settings)
	g.Refresh()
	require.Equal(t, 1, room.count(model.EV_READY))
	return g, room, clock
}

func startAll(g *Game) {
	for i := range g.players {
		g.Start(i)
	}
}

func tick(g *Game, clock *schedule.Manual) {
	clock.Advance(g.settings.TickInterval())
}

func at(x, y int) (int, int) {
	return x * maze.FRAMES_PER_CELL, y * maze.FRAMES_PER_CELL
}

func TestRefreshBroadcastsReady(t *testing.T) {
	g, room, _ := newTestGame(t, 1, DefaultSettings())
	ready := room.data[0].(model.Ready)
	assert.Len(t, ready.Map, 31)
	assert.Equal(t, model.Constants{FPS: 20, FRAMES_PER_CELL: 5, CHEESE_EFFECT_FRAMES: 200}, ready.Constants)
	assert.Equal(t, 1, g.Round())
	assert.False(t, g.Running())

	x, y := g.players[0].Position()
	assert.Equal(t, 65, x)
	assert.Equal(t, 115, y)
	for _, gh := range g.ghosts {
		assert.True(t, gh.inHouse(g.grid))
		assert.InDelta(t, 0.125, gh.difficulty, 1e-9)
	}
}

func TestStartWaitsForEverySlot(t *testing.T) {
	g, _, clock := newTestGame(t, 2, DefaultSettings())
	g.Start(0)
	g.Start(0)
	g.Start(5)
	assert.False(t, g.Running())
	assert.Equal(t, 0, clock.Pending())

	g.Start(1)
	assert.True(t, g.Running())
	assert.Equal(t, 1, clock.Pending())
}

func TestSinglePelletPickup(t *testing.T) {
	settings := DefaultSettings()
	settings.HighScoreThreshold = 10
	g, room, clock := newTestGame(t, 1, settings)
	startAll(g)

	for i := 0; i < 5; i++ {
		tick(g, clock)
	}
	x, _ := g.players[0].Position()
	require.Equal(t, 60, x)
	assert.Empty(t, room.lastUpdate(t).Eat)

	tick(g, clock)
	u := room.lastUpdate(t)
	assert.Equal(t, int64(300), u.Elapsed)
	assert.Equal(t, []model.Cell{{X: 12, Y: 23}}, u.Eat)
	assert.Equal(t, []model.Points{{Type: model.POINTS_PELLET, X: 60, Y: 115, Amount: 10, Index: 0}}, u.Points)
	assert.Equal(t, 10, u.Pacmans[0].Score)
	assert.Equal(t, maze.Empty, g.grid.At(12, 23))
	assert.Equal(t, 243, g.grid.Pellets())
	assert.Equal(t, [][2]int{{0, 10}}, room.high)

	for i := 0; i < 5; i++ {
		tick(g, clock)
	}
	assert.Equal(t, 20, g.players[0].Score())
	assert.Len(t, room.high, 1, "threshold fires once")
	assert.Equal(t, 11, room.count(model.EV_UPDATE))
}

func TestPowerPelletMakesGhostsVulnerable(t *testing.T) {
	g, room, clock := newTestGame(t, 1, DefaultSettings())
	startAll(g)
	p := g.players[0]
	p.x, p.y = at(1, 23)

	tick(g, clock)
	u := room.lastUpdate(t)
	assert.Equal(t, []model.Cell{{X: 1, Y: 23}}, u.Eat)
	assert.Equal(t, model.POINTS_CHEESE, u.Points[0].Type)
	assert.Equal(t, 50, u.Points[0].Amount)
	assert.Equal(t, CHEESE_EFFECT_FRAMES, u.Pacmans[0].CheesePower)
	for _, gs := range u.Ghosts {
		assert.Equal(t, CHEESE_EFFECT_FRAMES, gs.CheeseEffect)
	}

	tick(g, clock)
	u = room.lastUpdate(t)
	assert.Equal(t, CHEESE_EFFECT_FRAMES-1, u.Pacmans[0].CheesePower)
	for _, gs := range u.Ghosts {
		assert.Equal(t, CHEESE_EFFECT_FRAMES-1, gs.CheeseEffect)
	}
}

func TestPowerPelletOnlyAffectsOthersInMultiplayer(t *testing.T) {
	g, _, _ := newTestGame(t, 2, DefaultSettings())
	g.players[1].lifes = -1
	g.cheese(g.players[0])
	assert.Equal(t, CHEESE_EFFECT_FRAMES, g.players[0].cheesePower)
	assert.Equal(t, 0, g.players[0].cheeseEffect)
	assert.Equal(t, 0, g.players[1].cheeseEffect, "dead players are left alone")
}

func TestGhostEaten(t *testing.T) {
	g, _, _ := newTestGame(t, 1, DefaultSettings())
	p := g.players[0]
	g.grid.Eat(1, 1)
	p.x, p.y = at(1, 1)
	p.cheesePower = 10
	gh := g.ghosts[0]
	gh.x, gh.y = at(1, 1)
	gh.cheeseEffect = 10

	ev := tickEvents{}
	require.False(t, g.ghostCollisions(&ev))
	assert.Equal(t, 100, p.score)
	assert.Equal(t, 1, p.combo)
	assert.Equal(t, []model.Points{{Type: model.POINTS_GHOST, X: 5, Y: 5, Amount: 100, Index: 0}}, ev.points)

	assert.False(t, gh.Vulnerable())
	assert.True(t, maze.Centered(gh.x, gh.y))
	assert.Contains(t, g.template.GhostHomes(), maze.Point{X: gh.x / maze.FRAMES_PER_CELL, Y: gh.y / maze.FRAMES_PER_CELL})

	// the combo scales the next ghost
	other := g.ghosts[1]
	other.x, other.y = at(1, 1)
	other.cheeseEffect = 10
	g.ghostCollisions(&ev)
	assert.Equal(t, 300, p.score)
	assert.Equal(t, 2, p.combo)
}

func TestComboResetsWhenPowerRunsOut(t *testing.T) {
	p := newPlayer(0, LIFES)
	p.cheesePower, p.combo = 1, 3
	p.countdown()
	assert.Equal(t, 0, p.cheesePower)
	assert.Equal(t, 0, p.combo)
}

func TestSoloCaughtLosesLifeAndRefreshes(t *testing.T) {
	g, room, clock := newTestGame(t, 1, DefaultSettings())
	startAll(g)
	p := g.players[0]
	p.x, p.y = at(1, 1)
	g.ghosts[0].x, g.ghosts[0].y = at(1, 1)

	tick(g, clock)
	assert.Equal(t, LIFES-1, p.lifes)
	assert.Equal(t, 2, room.count(model.EV_READY))
	assert.Equal(t, 0, room.count(model.EV_UPDATE))
	assert.False(t, g.Running())
	assert.False(t, g.Over())
	x, y := p.Position()
	assert.Equal(t, 65, x)
	assert.Equal(t, 115, y)

	g.Start(0)
	assert.True(t, g.Running())
}

func TestSoloLastLifeEndsGame(t *testing.T) {
	g, room, clock := newTestGame(t, 1, DefaultSettings())
	startAll(g)
	p := g.players[0]
	p.lifes = 0
	p.x, p.y = at(1, 1)
	g.ghosts[0].x, g.ghosts[0].y = at(1, 1)

	tick(g, clock)
	assert.True(t, g.Over())
	assert.False(t, g.Running())
	assert.Equal(t, 0, clock.Pending())
	assert.Equal(t, 1, room.count(model.EV_END_OF_GAME))
	assert.Equal(t, 1, room.count(model.EV_READY))
	require.Len(t, room.ended, 1)
	assert.Equal(t, -1, room.ended[0][0].Lifes)

	g.Start(0)
	assert.False(t, g.Running())
}

func TestLastPelletRefreshesOnce(t *testing.T) {
	g, room, clock := newTestGame(t, 1, DefaultSettings())
	startAll(g)
	for y := 0; y < g.grid.Height(); y++ {
		for x := 0; x < g.grid.Width(); x++ {
			if x != 12 || y != 23 {
				g.grid.Eat(x, y)
			}
		}
	}
	require.Equal(t, 1, g.grid.Pellets())
	p := g.players[0]
	p.x, p.y = at(12, 23)
	p.score = 0

	tick(g, clock)
	assert.Equal(t, 2, room.count(model.EV_READY))
	assert.Equal(t, 0, room.count(model.EV_UPDATE))
	assert.Equal(t, 2, g.Round())
	assert.Equal(t, 244, g.grid.Pellets())
	assert.Equal(t, 10, p.score)
	assert.False(t, g.Running())
	for _, gh := range g.ghosts {
		assert.InDelta(t, 4.0/11.0, gh.difficulty, 1e-9)
	}
}

func TestMultiplayerKillSitsOut(t *testing.T) {
	g, room, clock := newTestGame(t, 2, DefaultSettings())
	startAll(g)
	p := g.players[0]
	p.combo, p.cheesePower = 2, 0
	g.ghosts[0].x, g.ghosts[0].y = p.Position()

	tick(g, clock)
	u := room.lastUpdate(t)
	assert.Equal(t, LIFES-1, u.Pacmans[0].Lifes)
	assert.Equal(t, KILLED_RECENTLY_FRAMES, u.Pacmans[0].KilledRecently)
	assert.Equal(t, 0, u.Pacmans[0].Combo)
	assert.Equal(t, 5, u.Pacmans[0].X, "frozen on the start cell")

	tick(g, clock)
	assert.Equal(t, KILLED_RECENTLY_FRAMES-1, g.players[0].killedRecently)
	x, _ := g.players[0].Position()
	assert.Equal(t, 5, x)
}

func TestMultiplayerAllDeadEndsGame(t *testing.T) {
	g, room, clock := newTestGame(t, 2, DefaultSettings())
	startAll(g)
	for i, p := range g.players {
		p.lifes = 0
		g.ghosts[i].x, g.ghosts[i].y = p.Position()
	}

	tick(g, clock)
	assert.True(t, g.Over())
	assert.Equal(t, 0, room.count(model.EV_UPDATE))
	assert.Equal(t, 1, room.count(model.EV_END_OF_GAME))
	require.Len(t, room.ended, 1)
	assert.Len(t, room.ended[0], 2)
}

func TestPlayersDevour(t *testing.T) {
	g, _, _ := newTestGame(t, 2, DefaultSettings())
	hunter, prey := g.players[0], g.players[1]
	hunter.x, hunter.y, hunter.cheesePower = 50, 25, 20
	prey.x, prey.y, prey.cheeseEffect = 52, 25, 20

	ev := tickEvents{}
	g.playerCollisions(&ev)
	assert.Equal(t, 100, hunter.score)
	assert.Equal(t, 1, hunter.combo)
	assert.Equal(t, LIFES-1, prey.lifes)
	assert.Equal(t, KILLED_RECENTLY_FRAMES, prey.killedRecently)
	x, y := prey.Position()
	assert.Equal(t, 130, x)
	assert.Equal(t, 145, y)
	assert.Equal(t, []model.Points{{Type: model.POINTS_PACMAN, X: 52, Y: 25, Amount: 100, Index: 0}}, ev.points)
}

func TestPlayersBounce(t *testing.T) {
	g, _, _ := newTestGame(t, 2, DefaultSettings())
	a, b := g.players[0], g.players[1]
	a.x, a.y, a.direction, a.nextDirection = 50, 25, maze.RIGHT, maze.RIGHT
	b.x, b.y, b.direction, b.nextDirection = 52, 25, maze.LEFT, maze.LEFT

	g.playerCollisions(&tickEvents{})
	assert.Equal(t, maze.LEFT, a.direction)
	assert.Equal(t, maze.RIGHT, b.direction)
	assert.Equal(t, LIFES, a.lifes)
	assert.Equal(t, LIFES, b.lifes)

	// across the wrap seam the order flips
	a.x, b.x = 1, 139
	a.direction, b.direction = maze.LEFT, maze.RIGHT
	g.playerCollisions(&tickEvents{})
	assert.Equal(t, maze.RIGHT, a.direction)
	assert.Equal(t, maze.LEFT, b.direction)
}

func TestQuit(t *testing.T) {
	g, room, clock := newTestGame(t, 1, DefaultSettings())
	startAll(g)
	tick(g, clock)

	g.Quit()
	g.Quit()
	assert.True(t, g.Over())
	assert.False(t, g.Running())
	assert.Equal(t, 0, clock.Pending())
	assert.Equal(t, 1, room.count(model.EV_END_OF_GAME))
	assert.Empty(t, room.ended)

	clock.Advance(time.Second)
	assert.Equal(t, 1, room.count(model.EV_UPDATE))
}

func TestSetPacmanDirectionIgnoresBadInput(t *testing.T) {
	g, _, _ := newTestGame(t, 1, DefaultSettings())
	g.SetPacmanDirection(maze.Direction(9), 0)
	g.SetPacmanDirection(maze.UP, 3)
	assert.Equal(t, maze.LEFT, g.players[0].nextDirection)

	g.SetPacmanDirection(maze.RIGHT, 0)
	assert.Equal(t, maze.RIGHT, g.players[0].direction)
}

func TestNearestPlayerPrefersLowestSlot(t *testing.T) {
	g, _, _ := newTestGame(t, 2, DefaultSettings())
	gh := g.ghosts[0]
	gh.x, gh.y = 50, 50
	g.players[0].x, g.players[0].y = 40, 50
	g.players[1].x, g.players[1].y = 60, 50
	assert.Same(t, g.players[0], g.nearestPlayer(gh))

	g.players[0].lifes = -1
	assert.Same(t, g.players[1], g.nearestPlayer(gh))
}

func TestVulnerableGhostsMoveAtHalfSpeed(t *testing.T) {
	g, _, _ := newTestGame(t, 1, DefaultSettings())
	gh := g.ghosts[0]
	gh.x, gh.y = 31, 25
	gh.direction = maze.RIGHT
	gh.cheeseEffect = 7

	g.moveGhost(gh)
	assert.Equal(t, 31, gh.x, "odd frames skip")
	gh.cheeseEffect = 6
	g.moveGhost(gh)
	assert.Equal(t, 32, gh.x)
}
