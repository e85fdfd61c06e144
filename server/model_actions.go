package server

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/zucenko/pacroom/model"
	"github.com/zucenko/pacroom/rewards"
	"github.com/zucenko/pacroom/room"
	"github.com/zucenko/pacroom/schedule"
)

func NewGameServer(loop *schedule.Loop, notifier rewards.Notifier, opts room.Options) *GameServer {
	s := &GameServer{
		Upgrader: &websocket.Upgrader{},
		loop:     loop,
		sessions: make(map[string]*PlayerSession),
	}
	s.Manager = room.NewManager(s, notifier, loop, opts)
	return s
}

// Emit queues an event for one client. It runs on the loop goroutine and
// never blocks: a full queue drops the event.
func (s *GameServer) Emit(sid string, event string, data any) {
	ps, ok := s.sessions[sid]
	if !ok {
		return
	}
	frame, err := ps.Codec.Marshal(event, data)
	if err != nil {
		ps.log.Errorf("GameServer.Emit cant encode %s: %v", event, err)
		return
	}
	select {
	case ps.MessagesToSend <- frame:
	default:
		ps.log.Warnf("GameServer.Emit dropping %s, MessagesToSend FULL", event)
	}
}

// call runs fn on the loop and waits for it, at most LOOP_TIMEOUT.
func (s *GameServer) call(fn func()) bool {
	done := make(chan struct{})
	if !s.loop.Post(func() {
		fn()
		close(done)
	}) {
		return false
	}
	select {
	case <-done:
		return true
	case <-time.After(LOOP_TIMEOUT):
		return false
	}
}

func (s *GameServer) HandleHttpCall() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codec, err := model.CodecByName(r.URL.Query().Get("codec"))
		if err != nil {
			log.Warnf("HandleHttpCall %v", err)
			w.WriteHeader(HTTP_BAD_REQUEST)
			return
		}
		con, err := s.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("HandleHttpCall websocket upgrade err %v", err)
			return
		}
		defer con.Close()

		ps := s.newPlayerSession(con, codec)
		if !s.loop.Post(func() {
			s.sessions[ps.Id] = ps
			s.Manager.Register(ps.Id)
		}) {
			log.Warn("HandleHttpCall loop stopped")
			return
		}
		ps.State = PS_PLAY
		go ps.LoopChannelWrite()
		ps.LoopChannelRead()

		ps.State = PS_OVER
		close(ps.closed)
		<-ps.written
		s.loop.Post(func() {
			delete(s.sessions, ps.Id)
			s.Manager.Unregister(ps.Id)
		})
		ps.log.WithFields(log.Fields{
			"in":    ps.DebugInMessages,
			"out":   ps.DebugOutMessages,
			"pings": ps.DebugPings,
		}).Info("HandleHttpCall session over")
	}
}

// HandleRooms serves the room directory as JSON.
func (s *GameServer) HandleRooms() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rooms []model.RoomState
		if !s.call(func() { rooms = s.Manager.Rooms() }) {
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rooms); err != nil {
			log.Warnf("HandleRooms %v", err)
		}
	}
}

// HandleHealth answers ok while the loop is serving.
func (s *GameServer) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.call(func() {}) {
			w.WriteHeader(HTTP_SERVER_ERR)
			return
		}
		w.Write([]byte("ok"))
	}
}

func (s *GameServer) newPlayerSession(conn *websocket.Conn, codec model.Codec) *PlayerSession {
	id := uuid.NewString()
	ps := &PlayerSession{
		State:          PS_NEW,
		Id:             id,
		Conn:           conn,
		Codec:          codec,
		server:         s,
		MessagesToSend: make(chan []byte, SEND_BUFFER),
		closed:         make(chan struct{}),
		written:        make(chan struct{}),
		log:            log.WithFields(log.Fields{"sid": id, "codec": codec.Name()}),
	}
	conn.SetPingHandler(
		func(message string) error {
			err := conn.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(WRITE_WAIT))
			ps.DebugLastPing = time.Now()
			ps.DebugPings++
			if err == websocket.ErrCloseSent {
				return nil
			} else if e, ok := err.(net.Error); ok && e.Timeout() {
				return nil
			}
			return err
		})
	return ps
}

// LoopChannelRead turns frames into loop commands until the connection ends.
// Malformed frames are logged and dropped.
func (ps *PlayerSession) LoopChannelRead() {
	ps.log.Info("LoopChannelRead STARTED")
	for {
		_, data, err := ps.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ps.log.Warnf("LoopChannelRead err reading message from Conn %v", err)
			}
			break
		}
		ps.DebugLastMessage = time.Now()
		ps.DebugInMessages++

		frame, err := ps.Codec.Unmarshal(data)
		if err != nil {
			ps.log.Warnf("LoopChannelRead cant decode frame: %v", err)
			continue
		}
		cmd, err := parse(frame)
		if err != nil {
			ps.log.WithField("event", frame.Event).Warnf("LoopChannelRead dropping: %v", err)
			continue
		}
		if cmd == nil {
			continue
		}
		event := frame.Event
		if !ps.server.loop.Post(func() {
			if err := cmd(ps.server.Manager, ps.Id); err != nil {
				ps.log.WithField("event", event).Warnf("rejected: %v", err)
			}
		}) {
			break
		}
	}
	ps.log.Info("LoopChannelRead ENDED")
}

// LoopChannelWrite only consumes, so a slow client never blocks the loop.
func (ps *PlayerSession) LoopChannelWrite() {
	ps.log.Info("PlayerSession.LoopChannelWrite STARTED")
	defer close(ps.written)
	ping := time.NewTicker(PING_PERIOD)
	defer ping.Stop()
	messageType := websocket.TextMessage
	if ps.Codec.Binary() {
		messageType = websocket.BinaryMessage
	}
	failed := true
loop:
	for {
		select {
		case <-ps.closed:
			failed = false
			break loop
		case mes := <-ps.MessagesToSend:
			ps.Conn.SetWriteDeadline(time.Now().Add(WRITE_WAIT))
			w, err := ps.Conn.NextWriter(messageType)
			if err != nil {
				ps.log.Warnf("PlayerSession.LoopChannelWrite cant get writer %v", err)
				break loop
			}
			if _, err = w.Write(mes); err != nil {
				ps.log.Warnf("PlayerSession.LoopChannelWrite cant write %v", err)
				break loop
			}
			if err = w.Close(); err != nil {
				ps.log.Warnf("PlayerSession.LoopChannelWrite cant flush %v", err)
				break loop
			}
			ps.DebugOutMessages++
		case <-ping.C:
			if err := ps.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(WRITE_WAIT)); err != nil {
				ps.log.Warnf("PlayerSession.LoopChannelWrite ping failed %v", err)
				break loop
			}
		}
	}
	if failed {
		// unblocks LoopChannelRead
		ps.Conn.Close()
	}
	ps.log.Info("LoopChannelWrite ENDED")
}
