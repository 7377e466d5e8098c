package hub

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-night-backend/internal/engine"
	"github.com/DoyleJ11/poker-night-backend/internal/lobby"
)

var (
	ErrUnknownRoom = errors.New("unknown room")
	ErrClosed      = errors.New("hub closed")
)

type HubMsg interface{ isHubMsg() }

type GetLobby struct {
	Code  string
	Reply chan *lobby.Lobby // nil when there is no live lobby
}

// EnsureLobby returns the live lobby for Code, creating it if needed.
type EnsureLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

// RemoveLobby only removes Lobby itself, never a newer lobby under the same code.
type RemoveLobby struct {
	Code  string
	Lobby *lobby.Lobby
}

type CountLobbies struct {
	Reply chan int
}

type ShutdownHub struct{}

func (GetLobby) isHubMsg()     {}
func (EnsureLobby) isHubMsg()  {}
func (RemoveLobby) isHubMsg()  {}
func (CountLobbies) isHubMsg() {}
func (ShutdownHub) isHubMsg()  {}

// Options are the table defaults for lobbies the hub creates.
type Options struct {
	Log         *zap.Logger
	Blinds      engine.Blinds
	MaxSeats    int
	TurnTimeout time.Duration
}

type Hub struct {
	inbox   chan HubMsg
	lobbies map[string]*lobby.Lobby
	log     *zap.Logger
	opts    Options
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
}

func NewHub(parent context.Context, opts Options) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Blinds.Big <= 0 {
		opts.Blinds = engine.Blinds{Small: 10, Big: 20}
	}
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*lobby.Lobby),
		log:     opts.Log,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	defer close(h.stopped)
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case GetLobby:
				msg.Reply <- h.live(msg.Code) // May be nil

			case EnsureLobby:
				if lb := h.live(msg.Code); lb != nil {
					msg.Reply <- lb
					break
				}
				msg.Reply <- h.create(msg.Code)

			case RemoveLobby:
				if h.lobbies[msg.Code] == msg.Lobby {
					delete(h.lobbies, msg.Code)
					h.log.Info("lobby removed", zap.String("room", msg.Code), zap.Int("rooms", len(h.lobbies)))
				}

			case CountLobbies:
				n := 0
				for code := range h.lobbies {
					if h.live(code) != nil {
						n++
					}
				}
				msg.Reply <- n

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

// live returns the lobby for code unless it has already stopped.
func (h *Hub) live(code string) *lobby.Lobby {
	lb := h.lobbies[code]
	if lb == nil || lb.Closed() {
		return nil
	}
	return lb
}

func (h *Hub) create(code string) *lobby.Lobby {
	initial := engine.NewState(h.opts.Blinds, engine.Rules{MaxSeats: h.opts.MaxSeats})
	lb := lobby.NewLobby(h.ctx, code, initial, lobby.Options{
		Log:         h.log,
		TurnTimeout: h.opts.TurnTimeout,
		OnEmpty:     func(lb *lobby.Lobby) { h.remove(code, lb) },
	})
	h.lobbies[code] = lb
	h.log.Info("lobby created", zap.String("room", code), zap.Int("rooms", len(h.lobbies)))
	return lb
}

func (h *Hub) remove(code string, lb *lobby.Lobby) {
	select {
	case h.inbox <- RemoveLobby{Code: code, Lobby: lb}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) shutdown() {
	h.cancel()
	for code, lb := range h.lobbies {
		lb.Close()
		<-lb.Done()
		delete(h.lobbies, code)
	}
}

func (h *Hub) send(ctx context.Context, m HubMsg) error {
	if h.ctx.Err() != nil {
		return ErrClosed
	}
	select {
	case h.inbox <- m:
		return nil
	case <-h.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func recv[T any](ctx context.Context, h *Hub, reply <-chan T) (T, error) {
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-h.ctx.Done():
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Ensure returns the room's lobby, creating it on first use.
func (h *Hub) Ensure(ctx context.Context, code string) (*lobby.Lobby, error) {
	reply := make(chan *lobby.Lobby, 1)
	if err := h.send(ctx, EnsureLobby{Code: code, Reply: reply}); err != nil {
		return nil, err
	}
	return recv(ctx, h, reply)
}

func (h *Hub) Lookup(ctx context.Context, code string) (*lobby.Lobby, error) {
	reply := make(chan *lobby.Lobby, 1)
	if err := h.send(ctx, GetLobby{Code: code, Reply: reply}); err != nil {
		return nil, err
	}
	lb, err := recv(ctx, h, reply)
	if err != nil {
		return nil, err
	}
	if lb == nil {
		return nil, ErrUnknownRoom
	}
	return lb, nil
}

func (h *Hub) Count(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	if err := h.send(ctx, CountLobbies{Reply: reply}); err != nil {
		return 0, err
	}
	return recv(ctx, h, reply)
}

// Shutdown stops every lobby and then the hub.
func (h *Hub) Shutdown(ctx context.Context) error {
	if err := h.send(ctx, ShutdownHub{}); err != nil && !errors.Is(err, ErrClosed) {
		return err
	}
	select {
	case <-h.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
