package server

import (
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/zucenko/pacroom/model"
	"github.com/zucenko/pacroom/room"
	"github.com/zucenko/pacroom/schedule"
)

// GameServer connects websocket clients to the room directory. The sessions
// map and the Manager are only touched from the loop goroutine.
type GameServer struct {
	Upgrader *websocket.Upgrader
	Manager  *room.Manager

	loop     *schedule.Loop
	sessions map[string]*PlayerSession
}

var _ room.Emitter = (*GameServer)(nil)

// PlayerSession is one websocket connection. The reader and the handler share
// a goroutine; the writer owns another.
type PlayerSession struct {
	State  PlayerSessionState
	Id     string
	Conn   *websocket.Conn
	Codec  model.Codec
	server *GameServer

	MessagesToSend chan []byte
	closed         chan struct{}
	written        chan struct{}

	DebugInMessages  int
	DebugOutMessages int
	DebugLastMessage time.Time
	DebugLastPing    time.Time
	DebugPings       int

	log *log.Entry
}
