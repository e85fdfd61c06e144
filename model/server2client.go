package model

const (
	EV_READY        = "ready"
	EV_UPDATE       = "update"
	EV_END_OF_GAME  = "end_of_game"
	EV_ROOMS_UPDATE = "rooms_update"
)

type Constants struct {
	FPS                  int `json:"FPS"`
	FRAMES_PER_CELL      int `json:"FRAMES_PER_CELL"`
	CHEESE_EFFECT_FRAMES int `json:"CHEESE_EFFECT_FRAMES"`
}

type Ready struct {
	Map       []string  `json:"map"`
	Constants Constants `json:"constants"`
}

type Update struct {
	Elapsed int64         `json:"elapsed"`
	Eat     []Cell        `json:"eat"`
	Points  []Points      `json:"points"`
	Pacmans []PlayerState `json:"pacmans"`
	Ghosts  []GhostState  `json:"ghosts"`
}

type EndOfGame struct {
	Pacmans []PlayerState `json:"pacmans"`
}

type RoomsUpdate struct {
	Sid       string            `json:"sid"`
	Users     map[string]string `json:"users"`
	Addresses map[string]string `json:"addresses"`
	Rooms     []RoomState       `json:"rooms"`
	Time      int64             `json:"time"`
}
