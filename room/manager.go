package room

import (
	"errors"
	"fmt"
	"math/rand"

	log "github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"

	"github.com/zucenko/pacroom/game"
	"github.com/zucenko/pacroom/maze"
	"github.com/zucenko/pacroom/model"
	"github.com/zucenko/pacroom/rewards"
	"github.com/zucenko/pacroom/schedule"
)

var (
	ErrUnknownClient = errors.New("client is not registered")
	ErrAlreadyInRoom = errors.New("client is already in a room")
	ErrNotInRoom     = errors.New("client is not in that room")
	ErrUnknownRoom   = errors.New("room does not exist")
	ErrWrongState    = errors.New("room state does not allow this")
)

// Emitter delivers one server event to one connected client.
type Emitter interface {
	Emit(sid string, event string, data any)
}

// Options are shared by every room a Manager creates.
type Options struct {
	Template    *maze.Template
	Settings    game.Settings
	WaitSeconds int
	Rand        *rand.Rand
}

func DefaultOptions() Options {
	return Options{
		Template:    maze.DefaultTemplate(),
		Settings:    game.DefaultSettings(),
		WaitSeconds: WAIT_SECONDS,
		Rand:        rand.New(rand.NewSource(1)),
	}
}

type client struct {
	username string
	address  string
	room     string
}

// Manager is the directory of connected clients and rooms. Every method must
// run on the scheduler's goroutine.
type Manager struct {
	clients   map[string]*client
	rooms     map[string]*Room
	order     []string
	emitter   Emitter
	notifier  rewards.Notifier
	scheduler schedule.Scheduler
	opts      Options
}

var _ hooks = (*Manager)(nil)

func NewManager(emitter Emitter, notifier rewards.Notifier, scheduler schedule.Scheduler, opts Options) *Manager {
	return &Manager{
		clients:   make(map[string]*client),
		rooms:     make(map[string]*Room),
		order:     make([]string, 0),
		emitter:   emitter,
		notifier:  notifier,
		scheduler: scheduler,
		opts:      opts,
	}
}

func (m *Manager) Room(id string) *Room { return m.rooms[id] }
func (m *Manager) Clients() int         { return len(m.clients) }

// RoomOf returns the room a client is in, or nil.
func (m *Manager) RoomOf(sid string) *Room {
	c, ok := m.clients[sid]
	if !ok || c.room == "" {
		return nil
	}
	return m.mustRoom(c.room)
}

func (m *Manager) mustRoom(id string) *Room {
	r, ok := m.rooms[id]
	if !ok {
		panic(fmt.Sprintf("directory references missing room %s", id))
	}
	return r
}

func (m *Manager) lookup(sid string) (*client, error) {
	c, ok := m.clients[sid]
	if !ok {
		return nil, fmt.Errorf("%s: %w", sid, ErrUnknownClient)
	}
	return c, nil
}

// member returns the client's current room.
func (m *Manager) member(sid string) (*client, *Room, error) {
	c, err := m.lookup(sid)
	if err != nil {
		return nil, nil, err
	}
	if c.room == "" {
		return nil, nil, fmt.Errorf("%s: %w", sid, ErrNotInRoom)
	}
	r := m.mustRoom(c.room)
	if !r.Has(sid) {
		panic(fmt.Sprintf("client %s points at room %s which does not list it", sid, r.id))
	}
	return c, r, nil
}

func (m *Manager) Register(sid string) {
	if _, ok := m.clients[sid]; ok {
		panic(fmt.Sprintf("client %s registered twice", sid))
	}
	m.clients[sid] = &client{}
	log.WithField("sid", sid).Info("Manager.Register")
	m.NotifyChanges("")
}

// Unregister forgets a disconnected client, leaving its room first.
func (m *Manager) Unregister(sid string) {
	c, ok := m.clients[sid]
	if !ok {
		return
	}
	if c.room != "" {
		m.leave(sid, c)
	}
	delete(m.clients, sid)
	log.WithField("sid", sid).Info("Manager.Unregister")
	m.NotifyChanges("")
}

func (m *Manager) Rename(sid string, details model.Details) error {
	c, err := m.lookup(sid)
	if err != nil {
		return err
	}
	c.username, c.address = details.Username, details.Address
	m.NotifyChanges("")
	return nil
}

// CreateRoom opens a new room with the client as its first member.
func (m *Manager) CreateRoom(sid string, details model.Details) (string, error) {
	c, err := m.lookup(sid)
	if err != nil {
		return "", err
	}
	if c.room != "" {
		return "", fmt.Errorf("%s: %w", sid, ErrAlreadyInRoom)
	}
	r := newRoom(m, m.scheduler, &m.opts)
	m.rooms[r.id] = r
	m.order = append(m.order, r.id)
	if err := r.Join(sid); err != nil {
		panic(err)
	}
	c.username, c.address, c.room = details.Username, details.Address, r.id
	log.WithFields(log.Fields{"sid": sid, "room": r.id}).Info("Manager.CreateRoom")
	m.NotifyChanges("")
	return r.id, nil
}

func (m *Manager) JoinRoom(sid, roomID string, details model.Details) error {
	c, err := m.lookup(sid)
	if err != nil {
		return err
	}
	if c.room != "" {
		return fmt.Errorf("%s: %w", sid, ErrAlreadyInRoom)
	}
	r, ok := m.rooms[roomID]
	if !ok {
		return fmt.Errorf("%s: %w", roomID, ErrUnknownRoom)
	}
	if r.status != RS_JOIN {
		return fmt.Errorf("join %s in %s: %w", roomID, r.status.Name(), ErrWrongState)
	}
	if err := r.Join(sid); err != nil {
		return fmt.Errorf("%s: %w", roomID, err)
	}
	c.username, c.address, c.room = details.Username, details.Address, r.id
	m.NotifyChanges("")
	return nil
}

func (m *Manager) LeaveRoom(sid string) error {
	c, _, err := m.member(sid)
	if err != nil {
		return err
	}
	m.leave(sid, c)
	m.NotifyChanges("")
	return nil
}

func (m *Manager) leave(sid string, c *client) {
	r := m.mustRoom(c.room)
	c.room = ""
	r.Leave(sid)
	if r.Empty() && r.status == RS_JOIN {
		m.removeRoom(r.id)
	}
}

func (m *Manager) removeRoom(id string) {
	delete(m.rooms, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	log.WithField("room", id).Info("Manager.removeRoom empty")
}

// AckRoom confirms the client's view of its room by sending it the directory.
func (m *Manager) AckRoom(sid, roomID string) error {
	c, _, err := m.member(sid)
	if err != nil {
		return err
	}
	if c.room != roomID {
		return fmt.Errorf("%s acked %s: %w", sid, roomID, ErrNotInRoom)
	}
	m.NotifyChanges(sid)
	return nil
}

func (m *Manager) RunGame(sid string) error {
	_, r, err := m.member(sid)
	if err != nil {
		return err
	}
	if r.status != RS_JOIN {
		return fmt.Errorf("run in %s: %w", r.status.Name(), ErrWrongState)
	}
	r.RunGame()
	m.NotifyChanges("")
	return nil
}

func (m *Manager) CancelGame(sid string) error {
	_, r, err := m.member(sid)
	if err != nil {
		return err
	}
	if r.status != RS_WAIT {
		return fmt.Errorf("cancel in %s: %w", r.status.Name(), ErrWrongState)
	}
	r.CancelGame()
	m.NotifyChanges("")
	return nil
}

func (m *Manager) StartGame(sid string) error {
	_, r, err := m.member(sid)
	if err != nil {
		return err
	}
	if r.status != RS_PLAY {
		return fmt.Errorf("start in %s: %w", r.status.Name(), ErrWrongState)
	}
	r.StartGame(sid)
	return nil
}

// Keyboard steers the client's pacman. Outside play it does nothing.
func (m *Manager) Keyboard(sid string, d maze.Direction) error {
	_, r, err := m.member(sid)
	if err != nil {
		return err
	}
	r.ReceiveKeyboard(sid, d)
	return nil
}

// NewSolo is the legacy single player entry: a fresh room that starts its
// countdown at once.
func (m *Manager) NewSolo(sid string, details model.Details) (string, error) {
	id, err := m.CreateRoom(sid, details)
	if err != nil {
		return "", err
	}
	return id, m.RunGame(sid)
}

// Notify sends the directory to one client.
func (m *Manager) Notify(sid string) error {
	if _, err := m.lookup(sid); err != nil {
		return err
	}
	m.NotifyChanges(sid)
	return nil
}

// Rooms serializes the directory in creation order.
func (m *Manager) Rooms() []model.RoomState {
	out := make([]model.RoomState, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.mustRoom(id).Serialize())
	}
	return out
}

// NotifyChanges sends rooms_update to target, or to every client when target
// is empty.
func (m *Manager) NotifyChanges(target string) {
	recipients := mapset.New[string]()
	if target != "" {
		if _, ok := m.clients[target]; ok {
			recipients.Put(target)
		}
	} else {
		for sid := range m.clients {
			recipients.Put(sid)
		}
	}
	if recipients.Size() == 0 {
		return
	}
	users := make(map[string]string, len(m.clients))
	addresses := make(map[string]string, len(m.clients))
	for sid, c := range m.clients {
		users[sid] = c.username
		addresses[sid] = c.address
	}
	rooms := m.Rooms()
	now := m.scheduler.Now().UnixMilli()
	recipients.Each(func(sid string) {
		m.emitter.Emit(sid, model.EV_ROOMS_UPDATE, model.RoomsUpdate{
			Sid:       sid,
			Users:     users,
			Addresses: addresses,
			Rooms:     rooms,
			Time:      now,
		})
	})
}

func (m *Manager) emit(members []string, event string, data any) {
	for _, sid := range members {
		m.emitter.Emit(sid, event, data)
	}
}

func (m *Manager) roomChanged(*Room) {
	m.NotifyChanges("")
}

func (m *Manager) gameEnded(r *Room, members []string, final []model.PlayerState) {
	roster := make([]model.FinalScore, 0, len(final))
	for i, p := range final {
		entry := model.FinalScore{Score: p.Score}
		if i < len(members) {
			if c, ok := m.clients[members[i]]; ok {
				entry.Address = c.address
			}
		}
		roster = append(roster, entry)
	}
	m.notifier.GameEnded(r.id, roster)
	m.NotifyChanges("")
}

func (m *Manager) highScore(r *Room, member string, score int) {
	entry := model.FinalScore{Score: score}
	if c, ok := m.clients[member]; ok {
		entry.Address = c.address
	}
	m.notifier.HighScore(r.id, entry)
}
