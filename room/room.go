package room

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/zucenko/pacroom/game"
	"github.com/zucenko/pacroom/maze"
	"github.com/zucenko/pacroom/model"
	"github.com/zucenko/pacroom/schedule"
)

const (
	CAPACITY     = maze.MAX_PLAYERS
	WAIT_SECONDS = 10
)

var ErrRoomFull = errors.New("room is full")

type RoomState int

const (
	RS_JOIN RoomState = iota
	RS_WAIT
	RS_PLAY
)

func (s RoomState) Name() string {
	switch s {
	case RS_JOIN:
		return model.ROOM_JOIN
	case RS_WAIT:
		return model.ROOM_WAIT
	case RS_PLAY:
		return model.ROOM_PLAY
	default:
		return fmt.Sprintf("n/a:%d", s)
	}
}

// hooks is what a Room needs from the directory that owns it. roomChanged is
// only called for transitions the room makes on its own.
type hooks interface {
	emit(members []string, event string, data any)
	roomChanged(r *Room)
	gameEnded(r *Room, members []string, final []model.PlayerState)
	highScore(r *Room, member string, score int)
}

// Room groups up to CAPACITY clients. A member's index in the member list is
// its slot in the game.
type Room struct {
	id        string
	status    RoomState
	wait      int
	members   []string
	game      *game.Game
	countdown schedule.Task

	hooks     hooks
	scheduler schedule.Scheduler
	opts      *Options
	log       *log.Entry
}

var _ game.Room = (*Room)(nil)
var _ model.Serializer[model.RoomState] = (*Room)(nil)

func newRoom(h hooks, scheduler schedule.Scheduler, opts *Options) *Room {
	id := uuid.NewString()
	return &Room{
		id:        id,
		status:    RS_JOIN,
		members:   make([]string, 0, CAPACITY),
		hooks:     h,
		scheduler: scheduler,
		opts:      opts,
		log:       log.WithField("room", id),
	}
}

func (r *Room) ID() string         { return r.id }
func (r *Room) Status() RoomState  { return r.status }
func (r *Room) Wait() int          { return r.wait }
func (r *Room) Full() bool         { return len(r.members) >= CAPACITY }
func (r *Room) Empty() bool        { return len(r.members) == 0 }
func (r *Room) Game() *game.Game   { return r.game }
func (r *Room) Members() []string  { return append([]string(nil), r.members...) }
func (r *Room) Has(id string) bool { return r.slot(id) >= 0 }

func (r *Room) slot(id string) int {
	for i, m := range r.members {
		if m == id {
			return i
		}
	}
	return -1
}

func (r *Room) mustBe(s RoomState, op string) {
	if r.status != s {
		panic(fmt.Sprintf("room %s: %s in state %s, want %s", r.id, op, r.status.Name(), s.Name()))
	}
}

func (r *Room) mustSlot(id, op string) int {
	i := r.slot(id)
	if i < 0 {
		panic(fmt.Sprintf("room %s: %s for non-member %s", r.id, op, id))
	}
	return i
}

// Join adds a client as the next slot. Only open rooms take members.
func (r *Room) Join(id string) error {
	r.mustBe(RS_JOIN, "Join")
	if r.Has(id) {
		panic(fmt.Sprintf("room %s: %s joined twice", r.id, id))
	}
	if r.Full() {
		return ErrRoomFull
	}
	r.members = append(r.members, id)
	r.log.WithField("sid", id).Info("Room.Join")
	return nil
}

// RunGame closes the room and starts the countdown to play.
func (r *Room) RunGame() {
	r.mustBe(RS_JOIN, "RunGame")
	if r.Empty() {
		panic(fmt.Sprintf("room %s: RunGame without members", r.id))
	}
	r.status = RS_WAIT
	r.wait = r.opts.WaitSeconds
	r.log.WithField("wait", r.wait).Info("Room.RunGame")
	r.scheduleCountdown()
}

func (r *Room) scheduleCountdown() {
	r.countdown = r.scheduler.After(time.Second, r.tickCountdown)
}

func (r *Room) tickCountdown() {
	r.countdown = nil
	r.wait--
	if r.wait <= 0 {
		r.play()
		return
	}
	r.scheduleCountdown()
	r.hooks.roomChanged(r)
}

func (r *Room) play() {
	r.status = RS_PLAY
	r.wait = 0
	r.game = game.New(r.opts.Template, len(r.members), r, r.scheduler, r.opts.Rand, r.opts.Settings)
	r.log.WithField("players", len(r.members)).Info("Room.play")
	r.hooks.roomChanged(r)
	r.game.Refresh()
}

func (r *Room) cancelCountdown() {
	if r.countdown != nil {
		r.countdown.Cancel()
		r.countdown = nil
	}
	r.wait = 0
}

func (r *Room) CancelGame() {
	r.mustBe(RS_WAIT, "CancelGame")
	r.cancelCountdown()
	r.status = RS_JOIN
	r.log.Info("Room.CancelGame")
}

func (r *Room) StartGame(id string) {
	r.mustBe(RS_PLAY, "StartGame")
	r.game.Start(r.mustSlot(id, "StartGame"))
}

// Leave removes a member. A countdown is cancelled and a running game ends
// for everyone still in the room.
func (r *Room) Leave(id string) {
	i := r.mustSlot(id, "Leave")
	r.members = append(r.members[:i], r.members[i+1:]...)
	r.log.WithField("sid", id).Info("Room.Leave")
	switch r.status {
	case RS_WAIT:
		r.cancelCountdown()
		r.status = RS_JOIN
	case RS_PLAY:
		g := r.game
		r.game = nil
		r.status = RS_JOIN
		g.Quit()
	}
}

func (r *Room) ReceiveKeyboard(id string, d maze.Direction) {
	if r.status != RS_PLAY {
		return
	}
	r.game.SetPacmanDirection(d, r.mustSlot(id, "ReceiveKeyboard"))
}

func (r *Room) Broadcast(event string, data any) {
	r.hooks.emit(r.members, event, data)
}

// NotifyEnd is called by the game once nobody is left alive.
func (r *Room) NotifyEnd(final []model.PlayerState) {
	r.mustBe(RS_PLAY, "NotifyEnd")
	r.game = nil
	r.status = RS_JOIN
	r.log.Info("Room.NotifyEnd")
	r.hooks.gameEnded(r, r.Members(), final)
}

func (r *Room) NotifyHighScore(slot int, score int) {
	if slot < 0 || slot >= len(r.members) {
		panic(fmt.Sprintf("room %s: high score for slot %d of %d", r.id, slot, len(r.members)))
	}
	r.hooks.highScore(r, r.members[slot], score)
}

func (r *Room) Serialize() model.RoomState {
	return model.RoomState{
		ID:     r.id,
		Status: r.status.Name(),
		Wait:   r.wait,
		Users:  r.Members(),
		IsFull: r.Full(),
	}
}
