package lobby

import (
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-night-backend/internal/engine"
)

// The turn clock acts for a seat that sits on its turn too long: check when
// nothing is owed, fold otherwise. Fires come back through the inbox, and a
// fire whose generation is no longer current is dropped.

func (l *Lobby) syncClock() {
	if !l.state.HandLive() {
		l.stopClock()
		l.clock = clockKey{}
		return
	}
	key := clockKey{hand: l.state.HandNumber, phase: l.state.Phase, turn: l.state.TurnIndex}
	if key == l.clock {
		return
	}
	l.clock = key
	l.armClock()
}

func (l *Lobby) armClock() {
	l.stopClock()
	if l.opts.TurnTimeout <= 0 || !l.state.HandLive() {
		return
	}
	gen := l.timerGen
	l.timer = time.AfterFunc(l.opts.TurnTimeout, func() {
		select {
		case l.inbox <- timerFired{gen: gen}:
		case <-l.done:
		}
	})
}

// stopClock also invalidates a fire that is already queued.
func (l *Lobby) stopClock() {
	l.timerGen++
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

func (l *Lobby) clockFired(gen int) {
	if gen != l.timerGen {
		return
	}
	id := l.state.CurrentPlayer()
	if id == "" {
		return
	}
	events, next, err := engine.Apply(l.state, engine.Command{Type: engine.CmdTimeout, PlayerID: id})
	if err != nil {
		l.log.Debug("turn clock action rejected", zap.String("player", id), zap.Error(err))
		return
	}
	l.log.Info("turn clock expired", zap.String("player", id), zap.Duration("after", l.opts.TurnTimeout))
	// A timed out seat whose turn comes round again gets a fresh clock.
	l.clock = clockKey{}
	l.commit(next, events)
	l.drainDropped()
}
