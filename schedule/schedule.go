// Package schedule runs every game and lobby callback on one goroutine and
// hands out cancellable delayed tasks.
package schedule

import (
	"context"
	"runtime/debug"
	"time"

	log "github.com/sirupsen/logrus"
)

// Task is a handle to a pending callback.
type Task interface {
	// Cancel prevents the callback from running if it has not started yet.
	Cancel()
}

type Scheduler interface {
	// After runs fn once, d from now, on the scheduler's goroutine.
	After(d time.Duration, fn func()) Task
	Now() time.Time
}

// Loop serializes callbacks posted from any goroutine. Core state touched only
// from Loop callbacks needs no locking.
type Loop struct {
	events chan func()
	done   chan struct{}
}

func NewLoop(buffer int) *Loop {
	return &Loop{
		events: make(chan func(), buffer),
		done:   make(chan struct{}),
	}
}

// Post queues fn for execution. It blocks while the queue is full and
// returns false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.events <- fn:
		return true
	case <-l.done:
		return false
	}
}

func (l *Loop) Now() time.Time { return time.Now() }

type loopTask struct {
	timer     *time.Timer
	cancelled bool
}

func (t *loopTask) Cancel() {
	t.cancelled = true
	t.timer.Stop()
}

// After must be called from a Loop callback, as must Cancel on the result.
func (l *Loop) After(d time.Duration, fn func()) Task {
	task := &loopTask{}
	task.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if task.cancelled {
				return
			}
			fn()
		})
	})
	return task
}

// Run executes posted callbacks until ctx is done. A panicking callback is
// logged and the loop keeps serving.
func (l *Loop) Run(ctx context.Context) error {
	log.Info("Loop starting")
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			log.Info("Loop stopped")
			return nil
		case fn := <-l.events:
			l.run(fn)
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Errorf("Loop callback failed\n%s", debug.Stack())
		}
	}()
	fn()
}
