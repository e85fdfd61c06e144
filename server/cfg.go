package server

import (
	"errors"
	"fmt"
	"time"
)

const HTTP_SUCCESS = 200
const HTTP_BAD_REQUEST = 400
const HTTP_TIMEOUT = 408
const HTTP_SERVER_ERR = 503

const (
	// LOOP_TIMEOUT bounds how long an HTTP handler waits for the loop.
	LOOP_TIMEOUT = 200 * time.Millisecond
	WRITE_WAIT   = time.Second
	PING_PERIOD  = 30 * time.Second
	SEND_BUFFER  = 64
)

var (
	ErrUnknownEvent = errors.New("unknown event")
	ErrBadKeycode   = errors.New("keycode is not an arrow key")
	ErrMissingRoom  = errors.New("room_id is missing")
)

type PlayerSessionState int

const (
	PS_NEW PlayerSessionState = iota + 1
	PS_PLAY
	PS_OVER
)

func (ps PlayerSessionState) Name() string {
	switch ps {
	case PS_NEW:
		return "NEW"
	case PS_PLAY:
		return "PLAY"
	case PS_OVER:
		return "OVER"
	default:
		return fmt.Sprintf("n/a:%d", ps)
	}
}
