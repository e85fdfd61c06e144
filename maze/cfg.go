package maze

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

const MAX_PLAYERS = 4

//go:embed data/default.txt
var defaultMaze string

// Start is a slot's initial cell and heading.
type Start struct {
	X, Y      int
	Direction Direction
}

// starts[n-1] holds the layout for a room of n players, indexed by slot.
var starts = [MAX_PLAYERS][]Start{
	{{X: 13, Y: 23, Direction: LEFT}},
	{{X: 1, Y: 1, Direction: RIGHT}, {X: 26, Y: 29, Direction: LEFT}},
	{{X: 1, Y: 1, Direction: RIGHT}, {X: 26, Y: 1, Direction: LEFT}, {X: 13, Y: 23, Direction: LEFT}},
	{{X: 1, Y: 1, Direction: RIGHT}, {X: 26, Y: 1, Direction: LEFT}, {X: 1, Y: 29, Direction: RIGHT}, {X: 26, Y: 29, Direction: LEFT}},
}

// Starts returns the start layout for n simultaneous players.
func Starts(n int) []Start {
	if n < 1 || n > MAX_PLAYERS {
		panic(fmt.Sprintf("no start layout for %d players", n))
	}
	return starts[n-1]
}

// DefaultTemplate is the built-in maze.
func DefaultTemplate() *Template {
	t, err := Read(strings.NewReader(defaultMaze))
	if err != nil {
		panic(err)
	}
	return t
}

// Load reads a maze template from a text file, one row per line.
func Load(path string) (*Template, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Read(file)
}

func Read(reader io.Reader) (*Template, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanLines)
	rows := make([]string, 0)
	for scanner.Scan() {
		s := strings.TrimRight(scanner.Text(), "\r")
		if s == "" {
			// blank lines only ever appear at the end of a file
			continue
		}
		rows = append(rows, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ParseTemplate(rows)
}
