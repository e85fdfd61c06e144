package server

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/zucenko/pacroom/maze"
	"github.com/zucenko/pacroom/model"
	"github.com/zucenko/pacroom/room"
)

// command is a validated client request, run on the loop goroutine.
type command func(m *room.Manager, sid string) error

// parse validates an inbound frame. A nil command with a nil error means the
// frame needs no action.
func parse(frame model.Frame) (command, error) {
	switch frame.Event {
	case model.EV_NEW:
		var d model.Details
		if err := decodeOptional(frame, &d); err != nil {
			return nil, err
		}
		return func(m *room.Manager, sid string) error {
			_, err := m.NewSolo(sid, d)
			return err
		}, nil

	case model.EV_CHANGE_USERNAME:
		var cu model.ChangeUsername
		if err := frame.Decode(&cu); err != nil {
			return nil, err
		}
		return func(m *room.Manager, sid string) error {
			return m.Rename(sid, model.Details(cu))
		}, nil

	case model.EV_JOIN_ROOM:
		var jr model.JoinRoom
		if err := frame.Decode(&jr); err != nil {
			return nil, err
		}
		if jr.RoomID == "" {
			return nil, ErrMissingRoom
		}
		return func(m *room.Manager, sid string) error {
			return m.JoinRoom(sid, jr.RoomID, jr.Details)
		}, nil

	case model.EV_CREATE_ROOM:
		var cr model.CreateRoom
		if err := decodeOptional(frame, &cr); err != nil {
			return nil, err
		}
		return func(m *room.Manager, sid string) error {
			_, err := m.CreateRoom(sid, cr.Details)
			return err
		}, nil

	case model.EV_LEAVE_ROOM:
		return (*room.Manager).LeaveRoom, nil

	case model.EV_ACK_ROOM:
		var ack model.AckRoom
		if err := frame.Decode(&ack); err != nil {
			return nil, err
		}
		if ack.RoomID == "" {
			return nil, ErrMissingRoom
		}
		return func(m *room.Manager, sid string) error {
			return m.AckRoom(sid, ack.RoomID)
		}, nil

	case model.EV_RUN_GAME:
		return (*room.Manager).RunGame, nil

	case model.EV_CANCEL_GAME:
		return (*room.Manager).CancelGame, nil

	case model.EV_START:
		return (*room.Manager).StartGame, nil

	case model.EV_KEYDOWN:
		var kd model.Keydown
		if err := frame.Decode(&kd); err != nil {
			return nil, err
		}
		if kd.Keycode < model.KEY_LEFT || kd.Keycode > model.KEY_DOWN {
			return nil, fmt.Errorf("%d: %w", kd.Keycode, ErrBadKeycode)
		}
		d := maze.Direction(kd.Keycode - model.KEY_LEFT)
		return func(m *room.Manager, sid string) error {
			return m.Keyboard(sid, d)
		}, nil

	case model.EV_NOTIFY:
		return (*room.Manager).Notify, nil

	case model.EV_END_OF_GAME:
		// scores are computed here, a client's own report is only logged
		var report model.EndOfGameReport
		if err := decodeOptional(frame, &report); err != nil {
			return nil, err
		}
		log.WithField("pacmans", report.Pacmans).Info("client end_of_game report ignored")
		return nil, nil

	default:
		return nil, fmt.Errorf("%q: %w", frame.Event, ErrUnknownEvent)
	}
}

// decodeOptional decodes the payload when there is one.
func decodeOptional(frame model.Frame, v any) error {
	err := frame.Decode(v)
	if err != nil && !frame.HasData() {
		return nil
	}
	return err
}
