package lobby

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-night-backend/internal/engine"
)

// ErrClosed is returned when a message is sent to a lobby that has stopped.
var ErrClosed = errors.New("lobby closed")

type Msg interface{ isLobbyMsg() }

// FromClient is a player command. PlayerID comes from the session, never from
// the client frame.
type FromClient struct {
	PlayerID engine.PlayerID
	Cmd      engine.Command
}

func (FromClient) isLobbyMsg() {}

// Join seats a player and registers where its events go. Reply gets nil once
// seated or the engine error that rejected the seat.
type Join struct {
	PlayerID      engine.PlayerID
	DisplayName   string
	StartingStack int64
	Outbox        chan Outbound
	Reply         chan error
}

func (Join) isLobbyMsg() {}

// Leave is a disconnect. Mid-hand the seat is folded and removed when the hand
// ends.
type Leave struct{ PlayerID engine.PlayerID }

func (Leave) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

// PrimeTimer restarts the turn clock for the seat on turn.
type PrimeTimer struct{}

func (PrimeTimer) isLobbyMsg() {}

type timerFired struct{ gen int }

func (timerFired) isLobbyMsg() {}

type Outbound struct {
	Version int
	Event   engine.Event
}

type View struct {
	Code       string
	Version    int
	NumClients int
	State      engine.State
}

type Options struct {
	Log         *zap.Logger
	TurnTimeout time.Duration // 0 disables the turn clock
	// OnEmpty runs on its own goroutine once the last seat is gone or the
	// table aborted. The lobby has stopped by then.
	OnEmpty func(*Lobby)
}

type clockKey struct {
	hand  int
	phase engine.Phase
	turn  int
}

type Lobby struct {
	code    string
	log     *zap.Logger
	opts    Options
	inbox   chan Msg
	state   engine.State
	version int
	clients map[engine.PlayerID]chan Outbound
	dropped []engine.PlayerID

	timer    *time.Timer
	timerGen int
	clock    clockKey

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewLobby(parent context.Context, code string, initial engine.State, opts Options) *Lobby {
	ctx, cancel := context.WithCancel(parent)
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	l := &Lobby{
		code:    code,
		log:     opts.Log.With(zap.String("room", code)),
		opts:    opts,
		inbox:   make(chan Msg, 64),
		state:   initial,
		clients: make(map[engine.PlayerID]chan Outbound),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go l.loop()
	return l
}

func (l *Lobby) Code() string { return l.code }

// Inbox is the raw mailbox. Send is preferred since it gives up once the lobby
// has stopped.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

func (l *Lobby) Done() <-chan struct{} { return l.done }

func (l *Lobby) Closed() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// Close stops the lobby without waiting for queued messages.
func (l *Lobby) Close() { l.cancel() }

func (l *Lobby) Send(ctx context.Context, m Msg) error {
	if l.Closed() {
		return ErrClosed
	}
	select {
	case l.inbox <- m:
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Join seats a player and waits for the verdict.
func (l *Lobby) Join(ctx context.Context, msg Join) error {
	msg.Reply = make(chan error, 1)
	if err := l.Send(ctx, msg); err != nil {
		return err
	}
	select {
	case err := <-msg.Reply:
		return err
	case <-l.done:
		// A rejected first join closes the lobby right after replying.
		select {
		case err := <-msg.Reply:
			return err
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Lobby) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := l.Send(ctx, GetState{Reply: reply}); err != nil {
		return View{}, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-l.done:
		return View{}, ErrClosed
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

func (l *Lobby) loop() {
	defer close(l.done)
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			if stop := l.handle(m); stop {
				return
			}
		}
	}
}

// handle processes one message. A panic out of the engine means this table's
// state can no longer be trusted: the room is closed and nothing else is hurt.
func (l *Lobby) handle(m Msg) (stop bool) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("table aborted", zap.Any("panic", r), zap.Stack("stack"))
			l.shutdown()
			l.notifyEmpty()
			stop = true
		}
	}()

	switch msg := m.(type) {
	case Join:
		l.join(msg)
		return l.closeIfEmpty()

	case Leave:
		l.leave(msg.PlayerID)
		return l.closeIfEmpty()

	case FromClient:
		l.fromClient(msg)
		return l.closeIfEmpty()

	case GetState:
		msg.Reply <- View{
			Code:       l.code,
			Version:    l.version,
			NumClients: len(l.clients),
			State:      l.state.Clone(),
		}

	case PrimeTimer:
		l.armClock()

	case timerFired:
		l.clockFired(msg.gen)
		return l.closeIfEmpty()

	case Shutdown:
		l.shutdown()
		return true
	}
	return false
}

func (l *Lobby) join(msg Join) {
	events, next, err := engine.Apply(l.state, engine.Command{
		Type:        engine.CmdJoin,
		PlayerID:    msg.PlayerID,
		DisplayName: msg.DisplayName,
		Amount:      msg.StartingStack,
	})
	if err != nil {
		l.log.Debug("join rejected", zap.String("player", msg.PlayerID), zap.Error(err))
		msg.Reply <- err
		return
	}
	l.clients[msg.PlayerID] = msg.Outbox
	l.commit(next, events)
	l.log.Info("player seated", zap.String("player", msg.PlayerID), zap.Int("seats", len(l.state.Seats)))
	msg.Reply <- nil
	l.drainDropped()
}

func (l *Lobby) leave(id engine.PlayerID) {
	if ch, ok := l.clients[id]; ok {
		close(ch)
		delete(l.clients, id)
	}
	l.leaveSeat(id)
	l.drainDropped()
}

func (l *Lobby) leaveSeat(id engine.PlayerID) {
	events, next, err := engine.Apply(l.state, engine.Command{Type: engine.CmdLeave, PlayerID: id})
	if err != nil {
		// Already gone, e.g. removed at the end of the hand.
		return
	}
	l.log.Info("player left", zap.String("player", id), zap.Bool("mid_hand", l.state.HandLive()))
	l.commit(next, events)
}

var clientCommands = map[engine.CommandType]bool{
	engine.CmdSetBlinds: true,
	engine.CmdStartHand: true,
	engine.CmdRaise:     true,
	engine.CmdCall:      true,
	engine.CmdCheck:     true,
	engine.CmdFold:      true,
	engine.CmdAllIn:     true,
}

func (l *Lobby) fromClient(msg FromClient) {
	cmd := msg.Cmd
	cmd.PlayerID = msg.PlayerID

	var events []engine.Event
	var next engine.State
	err := engine.ErrUnsupportedCommand
	if clientCommands[cmd.Type] {
		events, next, err = engine.Apply(l.state, cmd)
	}
	if err != nil {
		l.log.Debug("action rejected",
			zap.String("player", cmd.PlayerID),
			zap.String("cmd", string(cmd.Type)),
			zap.Error(err))
		l.sendTo(cmd.PlayerID, Outbound{Version: l.version, Event: engine.Rejected(cmd.PlayerID, err)})
		l.drainDropped()
		return
	}
	l.commit(next, events)
	l.drainDropped()
}

// commit installs the new state and fans the events out.
func (l *Lobby) commit(next engine.State, events []engine.Event) {
	l.state = next
	l.version++
	for _, ev := range events {
		l.logEvent(ev)
		for id := range l.clients {
			l.sendTo(id, Outbound{Version: l.version, Event: visibleTo(ev, id)})
		}
	}
	l.syncClock()
}

// visibleTo strips other seats' hole cards from handStarted.
func visibleTo(ev engine.Event, id engine.PlayerID) engine.Event {
	if ev.Type != engine.EvtHandStarted {
		return ev
	}
	own := make(map[engine.PlayerID][2]engine.Card, 1)
	if hole, ok := ev.HoleCards[id]; ok {
		own[id] = hole
	}
	ev.HoleCards = own
	return ev
}

func (l *Lobby) sendTo(id engine.PlayerID, out Outbound) {
	ch, ok := l.clients[id]
	if !ok {
		return
	}
	select {
	case ch <- out:
		// ok
	default:
		// Client is slow/full - drop them. Its seat goes through Leave below.
		l.log.Warn("dropping slow client", zap.String("player", id))
		close(ch)
		delete(l.clients, id)
		l.dropped = append(l.dropped, id)
	}
}

func (l *Lobby) drainDropped() {
	for len(l.dropped) > 0 {
		id := l.dropped[0]
		l.dropped = l.dropped[1:]
		l.leaveSeat(id)
	}
}

func (l *Lobby) logEvent(ev engine.Event) {
	switch ev.Type {
	case engine.EvtHandStarted:
		l.log.Info("hand started",
			zap.Int("hand", l.state.HandNumber),
			zap.Int("dealer", ev.DealerIndex),
			zap.Int("players", len(ev.HoleCards)))
	case engine.EvtHandEnded:
		fields := []zap.Field{zap.Int("hand", l.state.HandNumber)}
		for _, w := range ev.Winners {
			fields = append(fields, zap.Int64(w.PlayerID, w.Amount))
		}
		l.log.Info("hand ended", fields...)
	}
}

func (l *Lobby) closeIfEmpty() bool {
	if len(l.state.Seats) > 0 || len(l.clients) > 0 {
		return false
	}
	l.log.Info("table empty, closing")
	l.shutdown()
	l.notifyEmpty()
	return true
}

func (l *Lobby) notifyEmpty() {
	if l.opts.OnEmpty != nil {
		go l.opts.OnEmpty(l)
	}
}

func (l *Lobby) shutdown() {
	l.stopClock()
	for id, ch := range l.clients {
		close(ch) // Tell client no more events
		delete(l.clients, id)
	}
	l.cancel()
}
