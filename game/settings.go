package game

import (
	"errors"
	"time"
)

const (
	FPS                    = 20
	CHEESE_EFFECT_FRAMES   = 200
	KILLED_RECENTLY_FRAMES = 2 * FPS
	LIFES                  = 3
	GHOSTS                 = 4

	PELLET_POINTS = 10
	CHEESE_POINTS = 50
	GHOST_POINTS  = 100
	PACMAN_POINTS = 100

	// SEARCH_LIMIT caps node expansions in a single ghost search.
	SEARCH_LIMIT = 1000
)

var ErrBadSettings = errors.New("invalid game settings")

// Settings are the per-server tunables a Game is created with.
type Settings struct {
	FPS                  int
	CheeseEffectFrames   int
	KilledRecentlyFrames int
	Lifes                int
	// HighScoreThreshold of 0 disables high score notifications.
	HighScoreThreshold int
}

func DefaultSettings() Settings {
	return Settings{
		FPS:                  FPS,
		CheeseEffectFrames:   CHEESE_EFFECT_FRAMES,
		KilledRecentlyFrames: KILLED_RECENTLY_FRAMES,
		Lifes:                LIFES,
	}
}

func (s Settings) Validate() error {
	if s.FPS <= 0 || s.FPS > 1000 || s.CheeseEffectFrames <= 0 || s.KilledRecentlyFrames < 0 || s.Lifes < 0 || s.HighScoreThreshold < 0 {
		return ErrBadSettings
	}
	return nil
}

func (s Settings) TickInterval() time.Duration {
	return time.Second / time.Duration(s.FPS)
}

// difficulty is the chance a ghost chases instead of wandering in a round.
func difficulty(round int) float64 {
	r2 := float64(round * round)
	return r2 / (r2 + 7)
}
