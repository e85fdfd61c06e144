package config

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/zucenko/pacroom/game"
	"github.com/zucenko/pacroom/maze"
	"github.com/zucenko/pacroom/room"
)

const DEFAULT_PORT = "8080"

var (
	ErrBadEnv      = errors.New("invalid environment variable")
	ErrBadGameFile = errors.New("invalid game file")
)

// Config is everything the server binary is started with.
type Config struct {
	Port      string
	LogLevel  log.Level
	LogFormat string
	// Seed is nil when SEED is unset.
	Seed *int64

	Template    *maze.Template
	Settings    game.Settings
	WaitSeconds int
}

// gameFile is the optional YAML file named by GAME_CONFIG. Absent keys keep
// their defaults.
type gameFile struct {
	FPS                  *int     `yaml:"fps"`
	FramesPerCell        *int     `yaml:"frames_per_cell"`
	CheeseEffectFrames   *int     `yaml:"cheese_effect_frames"`
	KilledRecentlyFrames *int     `yaml:"killed_recently_frames"`
	Lives                *int     `yaml:"lives"`
	WaitSeconds          *int     `yaml:"wait_seconds"`
	HighScoreThreshold   *int     `yaml:"high_score_threshold"`
	Maze                 []string `yaml:"maze"`
}

func Default() Config {
	return Config{
		Port:        DEFAULT_PORT,
		LogLevel:    log.InfoLevel,
		LogFormat:   "text",
		Template:    maze.DefaultTemplate(),
		Settings:    game.DefaultSettings(),
		WaitSeconds: room.WAIT_SECONDS,
	}
}

// Load reads .env when present, then the environment, then the game file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Infof("config .env not loaded: %v", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a variable lookup. The game file is applied
// before HIGH_SCORE_THRESHOLD, so the variable wins.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	if v, ok := lookup("PORT"); ok && v != "" {
		c.Port = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		level, err := log.ParseLevel(v)
		if err != nil {
			return c, fmt.Errorf("LOG_LEVEL %q: %w", v, ErrBadEnv)
		}
		c.LogLevel = level
	}
	if v, ok := lookup("LOG_FORMAT"); ok && v != "" {
		if v != "text" && v != "json" {
			return c, fmt.Errorf("LOG_FORMAT %q: %w", v, ErrBadEnv)
		}
		c.LogFormat = v
	}
	if v, ok := lookup("SEED"); ok && v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c, fmt.Errorf("SEED %q: %w", v, ErrBadEnv)
		}
		c.Seed = &seed
	}
	if path, ok := lookup("GAME_CONFIG"); ok && path != "" {
		f, err := os.Open(path)
		if err != nil {
			return c, fmt.Errorf("GAME_CONFIG: %w", err)
		}
		defer f.Close()
		if err := c.ReadGameFile(f); err != nil {
			return c, fmt.Errorf("%s: %w", path, err)
		}
	}
	if v, ok := lookup("HIGH_SCORE_THRESHOLD"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c, fmt.Errorf("HIGH_SCORE_THRESHOLD %q: %w", v, ErrBadEnv)
		}
		c.Settings.HighScoreThreshold = n
	}
	return c, nil
}

// ReadGameFile overlays a YAML game file on c.
func (c *Config) ReadGameFile(r io.Reader) error {
	var f gameFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrBadGameFile, err)
	}
	if f.FramesPerCell != nil && *f.FramesPerCell != maze.FRAMES_PER_CELL {
		return fmt.Errorf("%w: frames_per_cell must be %d", ErrBadGameFile, maze.FRAMES_PER_CELL)
	}
	s := c.Settings
	set(&s.FPS, f.FPS)
	set(&s.CheeseEffectFrames, f.CheeseEffectFrames)
	set(&s.KilledRecentlyFrames, f.KilledRecentlyFrames)
	set(&s.Lifes, f.Lives)
	set(&s.HighScoreThreshold, f.HighScoreThreshold)
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrBadGameFile, err)
	}
	wait := c.WaitSeconds
	set(&wait, f.WaitSeconds)
	if wait < 1 {
		return fmt.Errorf("%w: wait_seconds must be positive", ErrBadGameFile)
	}
	if len(f.Maze) > 0 {
		t, err := maze.ParseTemplate(f.Maze)
		if err != nil {
			return fmt.Errorf("%w: maze: %v", ErrBadGameFile, err)
		}
		c.Template = t
	}
	c.Settings, c.WaitSeconds = s, wait
	return nil
}

func set(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// SetupLogging applies the level and formatter to the standard logger.
func (c Config) SetupLogging() {
	log.SetLevel(c.LogLevel)
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// Rand is the source every game draws from: seeded by SEED when given.
func (c Config) Rand() *rand.Rand {
	if c.Seed != nil {
		return rand.New(rand.NewSource(*c.Seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// RoomOptions hands the game settings to the room directory.
func (c Config) RoomOptions() room.Options {
	return room.Options{
		Template:    c.Template,
		Settings:    c.Settings,
		WaitSeconds: c.WaitSeconds,
		Rand:        c.Rand(),
	}
}
