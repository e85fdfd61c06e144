package rewards

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/zucenko/pacroom/model"
)

// Notifier is the outside world's view of a game: who finished with what,
// and who crossed the high score threshold. Implementations never affect the
// simulation.
type Notifier interface {
	GameEnded(roomID string, roster []model.FinalScore)
	HighScore(roomID string, entry model.FinalScore)
}

// Logger records notifications in the server log. It is the default when no
// payment backend is wired in.
type Logger struct{}

func (Logger) GameEnded(roomID string, roster []model.FinalScore) {
	log.WithFields(log.Fields{"room": roomID, "roster": roster}).Info("rewards game ended")
}

func (Logger) HighScore(roomID string, entry model.FinalScore) {
	log.WithFields(log.Fields{"room": roomID, "address": entry.Address, "score": entry.Score}).Info("rewards high score")
}

// Async hands notifications to a single worker goroutine so the caller never
// waits on the wrapped Notifier. When the queue is full the notification is
// dropped with a warning.
type Async struct {
	next Notifier
	jobs chan func()
}

var _ Notifier = (*Async)(nil)

func NewAsync(next Notifier, buffer int) *Async {
	return &Async{next: next, jobs: make(chan func(), buffer)}
}

func (a *Async) GameEnded(roomID string, roster []model.FinalScore) {
	roster = append([]model.FinalScore(nil), roster...)
	a.enqueue("GameEnded", func() { a.next.GameEnded(roomID, roster) })
}

func (a *Async) HighScore(roomID string, entry model.FinalScore) {
	a.enqueue("HighScore", func() { a.next.HighScore(roomID, entry) })
}

func (a *Async) enqueue(name string, job func()) {
	select {
	case a.jobs <- job:
	default:
		log.Warnf("rewards.Async %s dropped, queue full", name)
	}
}

// Run delivers queued notifications until ctx is done. A panicking Notifier
// is logged and does not stop delivery.
func (a *Async) Run(ctx context.Context) error {
	log.Info("rewards.Async.Run start")
	for {
		select {
		case <-ctx.Done():
			log.Info("rewards.Async.Run stop")
			return nil
		case job := <-a.jobs:
			a.deliver(job)
		}
	}
}

func (a *Async) deliver(job func()) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("rewards.Async notifier panicked")
		}
	}()
	job()
}
