package model

const (
	EV_NEW             = "new"
	EV_CHANGE_USERNAME = "change_username"
	EV_JOIN_ROOM       = "join_room"
	EV_CREATE_ROOM     = "create_room"
	EV_LEAVE_ROOM      = "leave_room"
	EV_ACK_ROOM        = "ack_room"
	EV_RUN_GAME        = "run_game"
	EV_CANCEL_GAME     = "cancel_game"
	EV_START           = "start"
	EV_KEYDOWN         = "keydown"
	EV_NOTIFY          = "notify"
)

// Browser key codes for the arrow keys; KEY_LEFT+d is direction d.
const (
	KEY_LEFT  = 37
	KEY_UP    = 38
	KEY_RIGHT = 39
	KEY_DOWN  = 40
)

type Details struct {
	Username string `json:"username"`
	Address  string `json:"address"`
}

type ChangeUsername Details

type JoinRoom struct {
	RoomID  string  `json:"room_id"`
	Details Details `json:"details"`
}

type CreateRoom struct {
	Details Details `json:"details"`
}

type AckRoom struct {
	RoomID string `json:"room_id"`
}

type Keydown struct {
	Keycode int `json:"keycode"`
}

// FinalScore is one entry of a client's end_of_game report.
type FinalScore struct {
	Address string `json:"address"`
	Score   int    `json:"score"`
}

type EndOfGameReport struct {
	Pacmans []FinalScore `json:"pacmans"`
}
