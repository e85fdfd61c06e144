package model

// Serializer is implemented by every entity that appears on the wire. It
// returns a plain record shaped exactly like the protocol payload.
type Serializer[T any] interface {
	Serialize() T
}

type PlayerState struct {
	X              int `json:"x"`
	Y              int `json:"y"`
	Direction      int `json:"direction"`
	Combo          int `json:"combo"`
	CheesePower    int `json:"cheese_power"`
	CheeseEffect   int `json:"cheese_effect"`
	Score          int `json:"score"`
	KilledRecently int `json:"killed_recently"`
	Lifes          int `json:"lifes"`
}

type GhostState struct {
	X            int `json:"x"`
	Y            int `json:"y"`
	CheeseEffect int `json:"cheese_effect"`
}

// Cell addresses a maze cell, not a sub-cell position.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

const (
	POINTS_PELLET = "pellet"
	POINTS_CHEESE = "cheese"
	POINTS_GHOST  = "ghost"
	POINTS_PACMAN = "pacman"
)

// Points is a scoring event at a sub-cell position, credited to the player in
// slot Index.
type Points struct {
	Type   string `json:"type"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Amount int    `json:"amount"`
	Index  int    `json:"index"`
}

const (
	ROOM_JOIN = "join"
	ROOM_WAIT = "wait"
	ROOM_PLAY = "play"
)

type RoomState struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Wait   int      `json:"wait"`
	Users  []string `json:"users"`
	IsFull bool     `json:"is_full"`
}
