package rewards

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zucenko/pacroom/model"
)

type recording struct {
	mu     sync.Mutex
	ended  [][]model.FinalScore
	high   []model.FinalScore
	rooms  []string
	signal chan struct{}
}

func newRecording() *recording {
	return &recording{signal: make(chan struct{}, 16)}
}

func (r *recording) GameEnded(roomID string, roster []model.FinalScore) {
	r.mu.Lock()
	r.ended = append(r.ended, roster)
	r.rooms = append(r.rooms, roomID)
	r.mu.Unlock()
	r.signal <- struct{}{}
}

func (r *recording) HighScore(roomID string, entry model.FinalScore) {
	r.mu.Lock()
	r.high = append(r.high, entry)
	r.rooms = append(r.rooms, roomID)
	r.mu.Unlock()
	r.signal <- struct{}{}
}

func (r *recording) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.signal:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "notification not delivered")
	}
}

func TestAsyncDelivers(t *testing.T) {
	rec := newRecording()
	a := NewAsync(rec, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	roster := []model.FinalScore{{Address: "addr-1", Score: 120}, {Address: "addr-2", Score: 40}}
	a.GameEnded("room-1", roster)
	roster[0].Score = 0
	rec.wait(t)
	a.HighScore("room-1", model.FinalScore{Address: "addr-1", Score: 5000})
	rec.wait(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.ended, 1)
	assert.Equal(t, 120, rec.ended[0][0].Score, "roster is copied before queueing")
	assert.Equal(t, []model.FinalScore{{Address: "addr-1", Score: 5000}}, rec.high)
	assert.Equal(t, []string{"room-1", "room-1"}, rec.rooms)
}

func TestAsyncDropsWhenFull(t *testing.T) {
	rec := newRecording()
	a := NewAsync(rec, 1)
	a.HighScore("r", model.FinalScore{Score: 1})
	a.HighScore("r", model.FinalScore{Score: 2})
	assert.Len(t, a.jobs, 1)
}

type panicking struct{ *recording }

func (p *panicking) GameEnded(string, []model.FinalScore) { panic("backend down") }

func TestAsyncSurvivesPanickingNotifier(t *testing.T) {
	p := &panicking{newRecording()}
	a := NewAsync(p, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	a.GameEnded("r", nil)
	a.HighScore("r", model.FinalScore{Address: "x", Score: 3})
	p.wait(t)
	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Len(t, p.high, 1)
}

func TestAsyncRunStops(t *testing.T) {
	a := NewAsync(Logger{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- a.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "Run did not stop")
	}
}
